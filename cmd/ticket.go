package cmd

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"helpdesk/internal/bootstrap/logging"
	"helpdesk/internal/domain/ticket"
	"helpdesk/internal/errs"
	"helpdesk/internal/usecase/desk"
)

var ticketCmd = &cobra.Command{
	Use:   "ticket",
	Short: "Create, triage and inspect tickets",
}

var ticketCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a ticket",
	RunE: withApp(func(cmd *cobra.Command, svc services) error {
		ctx := cmd.Context()

		title, _ := cmd.Flags().GetString("title")
		description, err := resolveText(cmd, "description", true)
		if err != nil {
			return err
		}
		notes, err := resolveText(cmd, "notes", false)
		if err != nil {
			return err
		}
		requesterName, _ := cmd.Flags().GetString("requester-name")
		requesterEmail, _ := cmd.Flags().GetString("requester-email")
		requesterPhone, _ := cmd.Flags().GetString("requester-phone")
		priority, _ := cmd.Flags().GetString("priority")

		ticketID, err := svc.Desk.CreateTicket(ctx, desk.CreateTicketInput{
			Title:          title,
			Description:    description,
			RequesterName:  requesterName,
			RequesterEmail: requesterEmail,
			RequesterPhone: requesterPhone,
			Priority:       priority,
			SensitiveNotes: notes,
			Secret:         resolveSecret(cmd),
		})
		if err != nil {
			logging.Error(ctx, "create ticket failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "create ticket")
		}

		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "created ticket: %s\n", ticket.FormatRef(ticketID)); err != nil {
			return errs.Wrap(err, "write create output")
		}
		return nil
	}),
}

var ticketAssignCmd = &cobra.Command{
	Use:   "assign <ticket>",
	Short: "Assign a ticket and move it to In Progress",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(cmd *cobra.Command, svc services) error {
		ctx := cmd.Context()

		ticketID, err := parseTicketArg(cmd.Flags().Args())
		if err != nil {
			return err
		}
		assignee, _ := cmd.Flags().GetString("to")
		if assignee == "" {
			if assignee, err = resolveIdentity(cmd, true); err != nil {
				return err
			}
		}

		if err := svc.Desk.AssignTicket(ctx, ticketID, assignee); err != nil {
			logging.Error(ctx, "assign ticket failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "assign ticket")
		}

		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "assigned ticket: %s assignee=%s\n", ticket.FormatRef(ticketID), assignee); err != nil {
			return errs.Wrap(err, "write assign output")
		}
		return nil
	}),
}

var ticketUpdateCmd = &cobra.Command{
	Use:   "update <ticket>",
	Short: "Change status and/or add a comment",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(cmd *cobra.Command, svc services) error {
		ctx := cmd.Context()

		ticketID, err := parseTicketArg(cmd.Flags().Args())
		if err != nil {
			return err
		}
		author, err := resolveIdentity(cmd, true)
		if err != nil {
			return err
		}
		status, _ := cmd.Flags().GetString("status")
		templateID, _ := cmd.Flags().GetUint64("template")
		comment, err := resolveText(cmd, "comment", false)
		if err != nil {
			return err
		}

		if err := svc.Desk.UpdateTicket(ctx, desk.UpdateTicketInput{
			TicketID:          ticketID,
			Status:            status,
			Comment:           comment,
			CommentTemplateID: templateID,
			Author:            author,
		}); err != nil {
			logging.Error(ctx, "update ticket failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "update ticket")
		}

		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "updated ticket: %s\n", ticket.FormatRef(ticketID)); err != nil {
			return errs.Wrap(err, "write update output")
		}
		return nil
	}),
}

var ticketCommentCmd = &cobra.Command{
	Use:   "comment <ticket>",
	Short: "Add a comment without changing status",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(cmd *cobra.Command, svc services) error {
		ctx := cmd.Context()

		ticketID, err := parseTicketArg(cmd.Flags().Args())
		if err != nil {
			return err
		}
		author, err := resolveIdentity(cmd, true)
		if err != nil {
			return err
		}
		text, err := resolveText(cmd, "text", true)
		if err != nil {
			return err
		}

		if err := svc.Desk.AddComment(ctx, ticketID, author, text); err != nil {
			logging.Error(ctx, "comment ticket failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "comment ticket")
		}

		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "commented on ticket: %s\n", ticket.FormatRef(ticketID)); err != nil {
			return errs.Wrap(err, "write comment output")
		}
		return nil
	}),
}

var ticketLinkKBCmd = &cobra.Command{
	Use:   "link-kb <ticket>",
	Short: "Link a knowledge-base article to a ticket",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(cmd *cobra.Command, svc services) error {
		ctx := cmd.Context()

		ticketID, err := parseTicketArg(cmd.Flags().Args())
		if err != nil {
			return err
		}
		author, err := resolveIdentity(cmd, true)
		if err != nil {
			return err
		}
		articleID, _ := cmd.Flags().GetUint64("article")

		if err := svc.Desk.LinkKBArticle(ctx, ticketID, articleID, author); err != nil {
			logging.Error(ctx, "link kb article failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "link kb article")
		}

		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "linked article %d to ticket: %s\n", articleID, ticket.FormatRef(ticketID)); err != nil {
			return errs.Wrap(err, "write link output")
		}
		return nil
	}),
}

var ticketShowCmd = &cobra.Command{
	Use:   "show <ticket>",
	Short: "Show a ticket with decrypted notes and history",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(cmd *cobra.Command, svc services) error {
		ctx := cmd.Context()

		ticketID, err := parseTicketArg(cmd.Flags().Args())
		if err != nil {
			return err
		}

		detail, err := svc.Desk.OpenTicket(ctx, ticketID, resolveSecret(cmd))
		if err != nil {
			return errs.Wrap(err, "show ticket")
		}

		view := newTicketDetailView(detail)
		return writeOutput(cmd, view, func(w io.Writer) error {
			return writeTicketDetailText(w, view)
		})
	}),
}

var ticketListCmd = &cobra.Command{
	Use:   "list",
	Short: "List active or archived tickets",
	RunE: withApp(func(cmd *cobra.Command, svc services) error {
		ctx := cmd.Context()

		identity, err := resolveIdentity(cmd, false)
		if err != nil {
			return err
		}
		scope, _ := cmd.Flags().GetString("scope")
		filterBy, _ := cmd.Flags().GetString("filter")
		search, _ := cmd.Flags().GetString("search")
		sortBy, _ := cmd.Flags().GetString("sort")

		items, err := svc.Desk.ListTickets(ctx, desk.ListTicketsInput{
			Scope:    scope,
			FilterBy: filterBy,
			Search:   search,
			SortBy:   sortBy,
			Identity: identity,
		})
		if err != nil {
			return errs.Wrap(err, "list tickets")
		}

		views := make([]ticketView, 0, len(items))
		for _, item := range items {
			views = append(views, newTicketView(item))
		}
		return writeOutput(cmd, views, func(w io.Writer) error {
			if len(views) == 0 {
				_, err := fmt.Fprintln(w, "no tickets")
				return err
			}
			for _, view := range views {
				if _, err := fmt.Fprintf(w, "%s [%s] %s assignee=%s created=%s title=%s\n",
					view.Ref, view.Status, view.Priority, valueOr(view.AssignedTo, "-"), view.CreatedAt, view.Title); err != nil {
					return err
				}
			}
			return nil
		})
	}),
}

var ticketHistoryCmd = &cobra.Command{
	Use:   "history <ticket>",
	Short: "Print the audit trail of a ticket",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(cmd *cobra.Command, svc services) error {
		ctx := cmd.Context()

		ticketID, err := parseTicketArg(cmd.Flags().Args())
		if err != nil {
			return err
		}

		events, err := svc.Desk.History(ctx, ticketID)
		if err != nil {
			return errs.Wrap(err, "ticket history")
		}

		views := newEventViews(events)
		return writeOutput(cmd, views, func(w io.Writer) error {
			return writeEventsText(w, views)
		})
	}),
}

func writeTicketDetailText(w io.Writer, view ticketDetailView) error {
	t := view.Ticket
	lines := []string{
		fmt.Sprintf("%s %s", t.Ref, t.Title),
		fmt.Sprintf("Status: %s  Priority: %s  Assignee: %s", t.Status, t.Priority, valueOr(t.AssignedTo, "-")),
		fmt.Sprintf("Requester: %s <%s> %s", t.RequesterName, t.RequesterEmail, t.RequesterPhone),
		fmt.Sprintf("Created: %s  Updated: %s", t.CreatedAt, t.UpdatedAt),
	}
	if t.KBArticleTitle != nil {
		lines = append(lines, "KB article: "+*t.KBArticleTitle)
	}
	lines = append(lines, "", t.Description, "")
	switch desk.NotesState(view.Notes.State) {
	case desk.NotesDecrypted, desk.NotesFailed:
		lines = append(lines, "Notes: "+view.Notes.Text, "")
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return writeEventsText(w, view.History)
}

func writeEventsText(w io.Writer, events []eventView) error {
	if len(events) == 0 {
		_, err := fmt.Fprintln(w, "no events")
		return err
	}
	for _, event := range events {
		if _, err := fmt.Fprintf(w, "%s  %-8s %s: %s\n", event.CreatedAt, event.Type, event.Author, event.Text); err != nil {
			return err
		}
	}
	return nil
}

func init() {
	rootCmd.AddCommand(ticketCmd)
	ticketCmd.AddCommand(
		ticketCreateCmd,
		ticketAssignCmd,
		ticketUpdateCmd,
		ticketCommentCmd,
		ticketLinkKBCmd,
		ticketShowCmd,
		ticketListCmd,
		ticketHistoryCmd,
	)

	ticketCreateCmd.Flags().String("title", "", "Ticket title")
	addTextFlags(ticketCreateCmd, "description", "Problem description")
	ticketCreateCmd.Flags().String("requester-name", "", "Requester name")
	ticketCreateCmd.Flags().String("requester-email", "", "Requester email")
	ticketCreateCmd.Flags().String("requester-phone", "", "Requester phone")
	ticketCreateCmd.Flags().String("priority", ticket.DefaultPriority.String(), "Priority (High|Medium|Low)")
	addTextFlags(ticketCreateCmd, "notes", "Sensitive notes, stored encrypted")
	addSecretFlag(ticketCreateCmd)

	ticketAssignCmd.Flags().String("to", "", "Assignee (default: --user)")

	ticketUpdateCmd.Flags().String("status", "", "New status (New|In Progress|Pending|Resolved|Closed); empty keeps the current one")
	addTextFlags(ticketUpdateCmd, "comment", "Comment text")
	ticketUpdateCmd.Flags().Uint64("template", 0, "Use a comment template instead of --comment")

	addTextFlags(ticketCommentCmd, "text", "Comment text")

	ticketLinkKBCmd.Flags().Uint64("article", 0, "KB article id")

	addSecretFlag(ticketShowCmd)
	addFormatFlag(ticketShowCmd)

	ticketListCmd.Flags().String("scope", string(ticket.ScopeActive), "Listing scope (active|archived)")
	ticketListCmd.Flags().String("filter", string(ticket.FilterAll), "Filter (all|mine|unassigned)")
	ticketListCmd.Flags().String("search", "", "Substring match on title or description")
	ticketListCmd.Flags().String("sort", string(ticket.SortCreatedDesc), "Sort (created_at_desc|created_at_asc|priority|status)")
	addFormatFlag(ticketListCmd)

	addFormatFlag(ticketHistoryCmd)
}
