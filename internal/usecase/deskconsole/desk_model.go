package deskconsole

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"helpdesk/internal/bootstrap/logging"
	"helpdesk/internal/domain/ticket"
	"helpdesk/internal/ports"
	"helpdesk/internal/usecase/desk"
)

const maxShownEvents = 5
const maxActionLines = 8

// Desk is the slice of the ticket store the console drives.
type Desk interface {
	ListTickets(ctx context.Context, input desk.ListTicketsInput) ([]ports.Ticket, error)
	OpenTicket(ctx context.Context, ticketID uint64, secret []byte) (desk.TicketDetail, error)
	AssignTicket(ctx context.Context, ticketID uint64, assignee string) error
	UpdateTicket(ctx context.Context, input desk.UpdateTicketInput) error
}

type Options struct {
	Identity        string
	Secret          []byte
	Scope           string
	FilterBy        string
	SortBy          string
	RefreshInterval time.Duration
}

var filterCycle = []ticket.FilterBy{ticket.FilterAll, ticket.FilterMine, ticket.FilterUnassigned}
var sortCycle = []ticket.SortBy{ticket.SortCreatedDesc, ticket.SortCreatedAsc, ticket.SortPriority, ticket.SortStatus}

type deskModel struct {
	ctx             context.Context
	service         Desk
	identity        string
	secret          []byte
	scope           ticket.Scope
	filterBy        ticket.FilterBy
	sortBy          ticket.SortBy
	refreshInterval time.Duration

	tickets       []ports.Ticket
	selectedIndex int
	detail        desk.TicketDetail
	hasDetail     bool
	status        string
	actionLogs    []string
}

type ticketsLoadedMsg struct {
	items []ports.Ticket
	err   error
}

type ticketDetailLoadedMsg struct {
	ticketID uint64
	detail   desk.TicketDetail
	err      error
}

type tickMsg struct{}

type actionDoneMsg struct {
	action   string
	ticketID uint64
	result   string
	err      error
}

func NewDeskModel(ctx context.Context, service Desk, options Options) tea.Model {
	scope, err := ticket.ParseScope(options.Scope)
	if err != nil {
		scope = ticket.ScopeActive
	}
	interval := options.RefreshInterval
	if interval <= 0 {
		interval = 5 * time.Second
	}

	return &deskModel{
		ctx:             ctx,
		service:         service,
		identity:        strings.TrimSpace(options.Identity),
		secret:          options.Secret,
		scope:           scope,
		filterBy:        ticket.ParseFilterBy(options.FilterBy),
		sortBy:          ticket.ParseSortBy(options.SortBy),
		refreshInterval: interval,
		status:          "loading",
	}
}

func (m *deskModel) Init() tea.Cmd {
	return tea.Batch(m.loadTicketsCmd(), m.tickCmd())
}

func (m *deskModel) Update(message tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := message.(type) {
	case tickMsg:
		return m, tea.Batch(m.loadTicketsCmd(), m.tickCmd())
	case ticketsLoadedMsg:
		if msg.err != nil {
			m.status = "refresh failed: " + msg.err.Error()
			return m, nil
		}
		m.tickets = msg.items
		if len(m.tickets) == 0 {
			m.selectedIndex = 0
			m.hasDetail = false
			m.status = "no tickets"
			return m, nil
		}
		if m.selectedIndex < 0 {
			m.selectedIndex = 0
		}
		if m.selectedIndex >= len(m.tickets) {
			m.selectedIndex = len(m.tickets) - 1
		}
		m.status = fmt.Sprintf("refreshed, %d ticket(s)", len(m.tickets))
		return m, m.loadSelectedDetailCmd()
	case ticketDetailLoadedMsg:
		if !m.isCurrentSelection(msg.ticketID) {
			return m, nil
		}
		if msg.err != nil {
			m.hasDetail = false
			m.status = "detail failed: " + msg.err.Error()
			return m, nil
		}
		m.detail = msg.detail
		m.hasDetail = true
		return m, nil
	case actionDoneMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("%s failed: %v", msg.action, msg.err)
		} else {
			m.status = fmt.Sprintf("%s done: %s", msg.action, msg.result)
		}
		m.appendActionLog(msg.action, msg.ticketID, msg.result, msg.err)
		return m, m.loadTicketsCmd()
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "g":
			m.status = "refreshing"
			return m, m.loadTicketsCmd()
		case "up", "k":
			if m.selectedIndex > 0 {
				m.selectedIndex--
				return m, m.loadSelectedDetailCmd()
			}
			return m, nil
		case "down", "j":
			if m.selectedIndex < len(m.tickets)-1 {
				m.selectedIndex++
				return m, m.loadSelectedDetailCmd()
			}
			return m, nil
		case "a":
			if m.scope == ticket.ScopeActive {
				m.scope = ticket.ScopeArchived
			} else {
				m.scope = ticket.ScopeActive
			}
			m.selectedIndex = 0
			return m, m.loadTicketsCmd()
		case "f":
			m.filterBy = nextFilter(m.filterBy)
			m.selectedIndex = 0
			return m, m.loadTicketsCmd()
		case "o":
			m.sortBy = nextSort(m.sortBy)
			return m, m.loadTicketsCmd()
		case "t":
			return m, m.takeCmd()
		case "p":
			return m, m.setStatusCmd(ticket.StatusPending)
		case "v":
			return m, m.setStatusCmd(ticket.StatusResolved)
		case "x":
			return m, m.setStatusCmd(ticket.StatusClosed)
		case "n":
			return m, m.setStatusCmd(ticket.StatusNew)
		}
	}
	return m, nil
}

func (m *deskModel) View() string {
	titleStyle := lipgloss.NewStyle().Bold(true)
	sectionStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	selectedStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("229")).Background(lipgloss.Color("62"))
	warnStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("203"))

	var builder strings.Builder
	builder.WriteString(titleStyle.Render("Helpdesk Console"))
	builder.WriteString("\n")
	builder.WriteString(dimStyle.Render(fmt.Sprintf(
		"user=%s scope=%s filter=%s sort=%s refresh=%s",
		firstNonEmpty(m.identity, "-"),
		m.scope,
		m.filterBy,
		m.sortBy,
		m.refreshInterval,
	)))
	builder.WriteString("\n\n")

	builder.WriteString(sectionStyle.Render("Tickets"))
	builder.WriteString("\n")
	if len(m.tickets) == 0 {
		builder.WriteString(dimStyle.Render("- no tickets"))
		builder.WriteString("\n\n")
	} else {
		for index, item := range m.tickets {
			line := fmt.Sprintf(
				"%s [%s] %s assignee=%s title=%s",
				ticket.FormatRef(item.TicketID),
				item.Status,
				item.Priority,
				assigneeLabel(item.AssignedTo),
				item.Title,
			)
			if index == m.selectedIndex {
				builder.WriteString(selectedStyle.Render("> " + line))
			} else {
				builder.WriteString("  " + line)
			}
			builder.WriteString("\n")
		}
		builder.WriteString("\n")
	}

	builder.WriteString(sectionStyle.Render("Detail"))
	builder.WriteString("\n")
	if !m.hasDetail {
		builder.WriteString(dimStyle.Render("- no detail"))
		builder.WriteString("\n\n")
	} else {
		current := m.detail.Ticket
		builder.WriteString(fmt.Sprintf("Ticket: %s %s\n", ticket.FormatRef(current.TicketID), current.Title))
		builder.WriteString(fmt.Sprintf("Status: %s  Priority: %s\n", current.Status, current.Priority))
		builder.WriteString(fmt.Sprintf("Requester: %s <%s>\n", firstNonEmpty(current.RequesterName, "-"), firstNonEmpty(current.RequesterEmail, "-")))
		builder.WriteString(fmt.Sprintf("Assignee: %s\n", assigneeLabel(current.AssignedTo)))
		if current.KBArticleTitle != nil {
			builder.WriteString(fmt.Sprintf("KB: %s\n", *current.KBArticleTitle))
		}
		builder.WriteString(fmt.Sprintf("Updated: %s\n", current.UpdatedAt))
		switch m.detail.Notes.State {
		case desk.NotesDecrypted:
			builder.WriteString("Notes: " + firstNonEmptyLine(m.detail.Notes.Text) + "\n")
		case desk.NotesFailed:
			builder.WriteString(warnStyle.Render("Notes: "+m.detail.Notes.Text) + "\n")
		}

		builder.WriteString("\nRecent Events:\n")
		events := m.detail.History
		if len(events) == 0 {
			builder.WriteString("- none\n")
		} else {
			start := len(events) - maxShownEvents
			if start < 0 {
				start = 0
			}
			for _, event := range events[start:] {
				builder.WriteString(fmt.Sprintf("- %s %s %s\n", event.CreatedAt, event.Author, firstNonEmptyLine(event.Text)))
			}
		}
		builder.WriteString("\n")
	}

	builder.WriteString(sectionStyle.Render("Status"))
	builder.WriteString("\n")
	builder.WriteString("- " + firstNonEmpty(m.status, "ready"))
	builder.WriteString("\n\n")

	builder.WriteString(sectionStyle.Render("Actions"))
	builder.WriteString("\n")
	builder.WriteString("- t take (assign to me)\n")
	builder.WriteString("- p pending  v resolved  x closed  n reopen\n")
	builder.WriteString("- a active/archived  f filter  o sort\n")
	builder.WriteString("\n")

	if len(m.actionLogs) > 0 {
		builder.WriteString(sectionStyle.Render("Session Log"))
		builder.WriteString("\n")
		for _, line := range m.actionLogs {
			builder.WriteString("- " + line)
			builder.WriteString("\n")
		}
		builder.WriteString("\n")
	}

	builder.WriteString(dimStyle.Render("Keys: up/k down/j move  g refresh  q quit"))
	return builder.String()
}

func (m *deskModel) tickCmd() tea.Cmd {
	return tea.Tick(m.refreshInterval, func(time.Time) tea.Msg {
		return tickMsg{}
	})
}

func (m *deskModel) loadTicketsCmd() tea.Cmd {
	input := desk.ListTicketsInput{
		Scope:    string(m.scope),
		FilterBy: string(m.filterBy),
		SortBy:   string(m.sortBy),
		Identity: m.identity,
	}
	return func() tea.Msg {
		items, err := m.service.ListTickets(m.ctx, input)
		return ticketsLoadedMsg{items: items, err: err}
	}
}

func (m *deskModel) loadSelectedDetailCmd() tea.Cmd {
	selected, ok := m.selectedTicket()
	if !ok {
		return nil
	}

	return func() tea.Msg {
		detail, err := m.service.OpenTicket(m.ctx, selected.TicketID, m.secret)
		return ticketDetailLoadedMsg{ticketID: selected.TicketID, detail: detail, err: err}
	}
}

func (m *deskModel) takeCmd() tea.Cmd {
	selected, ok := m.selectedTicket()
	if !ok {
		m.status = "no ticket selected"
		return nil
	}
	if m.identity == "" {
		m.status = "take needs --user"
		return nil
	}
	m.status = "assigning..."
	return func() tea.Msg {
		if err := m.service.AssignTicket(m.ctx, selected.TicketID, m.identity); err != nil {
			return actionDoneMsg{action: "take", ticketID: selected.TicketID, err: err}
		}
		return actionDoneMsg{action: "take", ticketID: selected.TicketID, result: m.identity}
	}
}

func (m *deskModel) setStatusCmd(status ticket.Status) tea.Cmd {
	selected, ok := m.selectedTicket()
	if !ok {
		m.status = "no ticket selected"
		return nil
	}
	if m.identity == "" {
		m.status = "status change needs --user"
		return nil
	}
	if selected.Status == status {
		m.status = fmt.Sprintf("%s is already %s", ticket.FormatRef(selected.TicketID), status)
		return nil
	}
	m.status = "updating..."
	return func() tea.Msg {
		err := m.service.UpdateTicket(m.ctx, desk.UpdateTicketInput{
			TicketID: selected.TicketID,
			Status:   string(status),
			Author:   m.identity,
		})
		if err != nil {
			return actionDoneMsg{action: "status", ticketID: selected.TicketID, err: err}
		}
		return actionDoneMsg{action: "status", ticketID: selected.TicketID, result: string(status)}
	}
}

func (m *deskModel) selectedTicket() (ports.Ticket, bool) {
	if len(m.tickets) == 0 {
		return ports.Ticket{}, false
	}
	if m.selectedIndex < 0 || m.selectedIndex >= len(m.tickets) {
		return ports.Ticket{}, false
	}
	return m.tickets[m.selectedIndex], true
}

func (m *deskModel) isCurrentSelection(ticketID uint64) bool {
	selected, ok := m.selectedTicket()
	if !ok {
		return false
	}
	return selected.TicketID == ticketID
}

func (m *deskModel) appendActionLog(action string, ticketID uint64, result string, opErr error) {
	outcome := strings.TrimSpace(result)
	if opErr != nil {
		outcome = "error: " + opErr.Error()
	}
	if outcome == "" {
		outcome = "ok"
	}

	timestamp := time.Now().UTC().Format(time.RFC3339)
	ref := ticket.FormatRef(ticketID)
	line := fmt.Sprintf("%s user=%s ticket=%s action=%s result=%s", timestamp, m.identity, ref, action, outcome)
	m.actionLogs = append([]string{line}, m.actionLogs...)
	if len(m.actionLogs) > maxActionLines {
		m.actionLogs = m.actionLogs[:maxActionLines]
	}

	logging.Info(m.ctx, "desk console action",
		slog.String("user", m.identity),
		slog.String("ticket_ref", ref),
		slog.String("action", action),
		slog.String("result", outcome),
	)
}

func nextFilter(current ticket.FilterBy) ticket.FilterBy {
	for index, value := range filterCycle {
		if value == current {
			return filterCycle[(index+1)%len(filterCycle)]
		}
	}
	return filterCycle[0]
}

func nextSort(current ticket.SortBy) ticket.SortBy {
	for index, value := range sortCycle {
		if value == current {
			return sortCycle[(index+1)%len(sortCycle)]
		}
	}
	return sortCycle[0]
}

func assigneeLabel(assignee *string) string {
	if assignee == nil {
		return "-"
	}
	return firstNonEmpty(*assignee, "-")
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		normalized := strings.TrimSpace(value)
		if normalized != "" {
			return normalized
		}
	}
	return ""
}

func firstNonEmptyLine(body string) string {
	for _, raw := range strings.Split(body, "\n") {
		line := strings.TrimSpace(raw)
		if line != "" {
			return line
		}
	}
	return "empty"
}
