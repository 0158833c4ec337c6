package cmd

import (
	"helpdesk/internal/domain/ticket"
	"helpdesk/internal/ports"
	"helpdesk/internal/usecase/desk"
)

type ticketView struct {
	Ref            string  `json:"ref" yaml:"ref"`
	ID             uint64  `json:"id" yaml:"id"`
	Title          string  `json:"title" yaml:"title"`
	Description    string  `json:"description,omitempty" yaml:"description,omitempty"`
	RequesterName  string  `json:"requester_name,omitempty" yaml:"requester_name,omitempty"`
	RequesterEmail string  `json:"requester_email,omitempty" yaml:"requester_email,omitempty"`
	RequesterPhone string  `json:"requester_phone,omitempty" yaml:"requester_phone,omitempty"`
	Status         string  `json:"status" yaml:"status"`
	Priority       string  `json:"priority" yaml:"priority"`
	AssignedTo     *string `json:"assigned_to" yaml:"assigned_to"`
	KBArticleID    *uint64 `json:"kb_article_id,omitempty" yaml:"kb_article_id,omitempty"`
	KBArticleTitle *string `json:"kb_article_title,omitempty" yaml:"kb_article_title,omitempty"`
	HasNotes       bool    `json:"has_notes" yaml:"has_notes"`
	CreatedAt      string  `json:"created_at" yaml:"created_at"`
	UpdatedAt      string  `json:"updated_at" yaml:"updated_at"`
}

type eventView struct {
	ID        uint64 `json:"id" yaml:"id"`
	Type      string `json:"type" yaml:"type"`
	Author    string `json:"author" yaml:"author"`
	Text      string `json:"text" yaml:"text"`
	CreatedAt string `json:"created_at" yaml:"created_at"`
}

type notesView struct {
	State string `json:"state" yaml:"state"`
	Text  string `json:"text,omitempty" yaml:"text,omitempty"`
}

type ticketDetailView struct {
	Ticket  ticketView  `json:"ticket" yaml:"ticket"`
	Notes   notesView   `json:"notes" yaml:"notes"`
	History []eventView `json:"history" yaml:"history"`
}

func newTicketView(item ports.Ticket) ticketView {
	return ticketView{
		Ref:            ticket.FormatRef(item.TicketID),
		ID:             item.TicketID,
		Title:          item.Title,
		Description:    item.Description,
		RequesterName:  item.RequesterName,
		RequesterEmail: item.RequesterEmail,
		RequesterPhone: item.RequesterPhone,
		Status:         item.Status.String(),
		Priority:       item.Priority.String(),
		AssignedTo:     item.AssignedTo,
		KBArticleID:    item.KBArticleID,
		KBArticleTitle: item.KBArticleTitle,
		HasNotes:       item.SensitiveNotes != nil,
		CreatedAt:      item.CreatedAt,
		UpdatedAt:      item.UpdatedAt,
	}
}

func newEventViews(events []ports.AuditEvent) []eventView {
	out := make([]eventView, 0, len(events))
	for _, event := range events {
		out = append(out, eventView{
			ID:        event.EventID,
			Type:      string(event.EventType),
			Author:    event.Author,
			Text:      event.Text,
			CreatedAt: event.CreatedAt,
		})
	}
	return out
}

func newTicketDetailView(detail desk.TicketDetail) ticketDetailView {
	return ticketDetailView{
		Ticket:  newTicketView(detail.Ticket),
		Notes:   notesView{State: string(detail.Notes.State), Text: detail.Notes.Text},
		History: newEventViews(detail.History),
	}
}
