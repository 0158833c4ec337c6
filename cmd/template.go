package cmd

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"helpdesk/internal/bootstrap/logging"
	"helpdesk/internal/errs"
	"helpdesk/internal/ports"
	"helpdesk/internal/usecase/knowledge"
)

type templateView struct {
	ID      uint64 `json:"id" yaml:"id"`
	Title   string `json:"title" yaml:"title"`
	Content string `json:"content" yaml:"content"`
}

func newTemplateView(template ports.Template) templateView {
	return templateView{ID: template.TemplateID, Title: template.Title, Content: template.Content}
}

var templateCmd = &cobra.Command{
	Use:   "template",
	Short: "Manage canned comment templates",
}

func templateInputFromFlags(cmd *cobra.Command) (knowledge.TemplateInput, error) {
	title, _ := cmd.Flags().GetString("title")
	content, err := resolveText(cmd, "content", false)
	if err != nil {
		return knowledge.TemplateInput{}, err
	}
	return knowledge.TemplateInput{Title: title, Content: content}, nil
}

var templateCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a template",
	RunE: withApp(func(cmd *cobra.Command, svc services) error {
		ctx := cmd.Context()

		input, err := templateInputFromFlags(cmd)
		if err != nil {
			return err
		}
		templateID, err := svc.Knowledge.CreateTemplate(ctx, input)
		if err != nil {
			logging.Error(ctx, "create template failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "create template")
		}

		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "created template: %d\n", templateID); err != nil {
			return errs.Wrap(err, "write create output")
		}
		return nil
	}),
}

var templateListCmd = &cobra.Command{
	Use:   "list",
	Short: "List templates",
	RunE: withApp(func(cmd *cobra.Command, svc services) error {
		templates, err := svc.Knowledge.ListTemplates(cmd.Context())
		if err != nil {
			return errs.Wrap(err, "list templates")
		}

		views := make([]templateView, 0, len(templates))
		for _, template := range templates {
			views = append(views, newTemplateView(template))
		}
		return writeOutput(cmd, views, func(w io.Writer) error {
			if len(views) == 0 {
				_, err := fmt.Fprintln(w, "no templates")
				return err
			}
			for _, view := range views {
				if _, err := fmt.Fprintf(w, "%d  %s\n", view.ID, view.Title); err != nil {
					return err
				}
			}
			return nil
		})
	}),
}

var templateShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a template",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(cmd *cobra.Command, svc services) error {
		templateID, err := parseIDArg("template", cmd.Flags().Args())
		if err != nil {
			return err
		}
		template, err := svc.Knowledge.GetTemplate(cmd.Context(), templateID)
		if err != nil {
			return errs.Wrap(err, "show template")
		}

		view := newTemplateView(template)
		return writeOutput(cmd, view, func(w io.Writer) error {
			_, err := fmt.Fprintf(w, "%d %s\n\n%s\n", view.ID, view.Title, view.Content)
			return err
		})
	}),
}

var templateUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Replace a template's title and content",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(cmd *cobra.Command, svc services) error {
		ctx := cmd.Context()

		templateID, err := parseIDArg("template", cmd.Flags().Args())
		if err != nil {
			return err
		}
		input, err := templateInputFromFlags(cmd)
		if err != nil {
			return err
		}
		if err := svc.Knowledge.UpdateTemplate(ctx, templateID, input); err != nil {
			logging.Error(ctx, "update template failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "update template")
		}

		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "updated template: %d\n", templateID); err != nil {
			return errs.Wrap(err, "write update output")
		}
		return nil
	}),
}

var templateDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a template",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(cmd *cobra.Command, svc services) error {
		ctx := cmd.Context()

		templateID, err := parseIDArg("template", cmd.Flags().Args())
		if err != nil {
			return err
		}
		if err := svc.Knowledge.DeleteTemplate(ctx, templateID); err != nil {
			logging.Error(ctx, "delete template failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "delete template")
		}

		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "deleted template: %d\n", templateID); err != nil {
			return errs.Wrap(err, "write delete output")
		}
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(templateCmd)
	templateCmd.AddCommand(templateCreateCmd, templateListCmd, templateShowCmd, templateUpdateCmd, templateDeleteCmd)

	for _, cmd := range []*cobra.Command{templateCreateCmd, templateUpdateCmd} {
		cmd.Flags().String("title", "", "Template title")
		addTextFlags(cmd, "content", "Template text")
	}
	addFormatFlag(templateListCmd)
	addFormatFlag(templateShowCmd)
}
