package desk

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"helpdesk/internal/bootstrap/logging"
	"helpdesk/internal/domain/ticket"
	"helpdesk/internal/errs"
	"helpdesk/internal/ports"
)

type Options struct {
	SystemIdentity  string
	UnassignedLabel string
}

// Service is the ticket store: every state change goes through it and is
// committed together with its audit event.
type Service struct {
	tickets   ports.TicketRepository
	audit     ports.AuditLog
	knowledge ports.KnowledgeRepository
	uow       ports.UnitOfWork
	cipher    ports.NotesCipher
	cache     ports.Cache
	opts      Options
	now       func() time.Time
}

// NewService wires the ticket store. cache is optional.
func NewService(
	tickets ports.TicketRepository,
	audit ports.AuditLog,
	knowledge ports.KnowledgeRepository,
	uow ports.UnitOfWork,
	cipher ports.NotesCipher,
	cache ports.Cache,
	opts Options,
) *Service {
	if strings.TrimSpace(opts.SystemIdentity) == "" {
		opts.SystemIdentity = ticket.DefaultSystemIdentity
	}
	if strings.TrimSpace(opts.UnassignedLabel) == "" {
		opts.UnassignedLabel = ticket.DefaultUnassignedLabel
	}

	return &Service{
		tickets:   tickets,
		audit:     audit,
		knowledge: knowledge,
		uow:       uow,
		cipher:    cipher,
		cache:     cache,
		opts:      opts,
		now:       time.Now,
	}
}

type CreateTicketInput struct {
	Title          string `json:"title" validate:"required"`
	Description    string `json:"description" validate:"required"`
	RequesterName  string `json:"requester_name"`
	RequesterEmail string `json:"requester_email"`
	RequesterPhone string `json:"requester_phone"`
	Priority       string `json:"priority"`
	SensitiveNotes string `json:"-"`
	Secret         []byte `json:"-"`
}

type UpdateTicketInput struct {
	TicketID uint64 `json:"ticket_id" validate:"gt=0"`
	// Status empty keeps the current status.
	Status            string `json:"status"`
	Comment           string `json:"comment"`
	CommentTemplateID uint64 `json:"comment_template_id"`
	Author            string `json:"author" validate:"required"`
}

type ListTicketsInput struct {
	Scope    string
	FilterBy string
	Search   string
	SortBy   string
	Identity string
}

type NotesState string

const (
	NotesNone      NotesState = "none"
	NotesDecrypted NotesState = "decrypted"
	NotesFailed    NotesState = "failed"
)

type Notes struct {
	State NotesState
	Text  string
}

// TicketDetail is what a ticket page renders: the joined ticket row, the
// notes decrypted once, and the ordered audit trail.
type TicketDetail struct {
	Ticket  ports.Ticket
	Notes   Notes
	History []ports.AuditEvent
}

func (s *Service) checkReady(ctx context.Context) error {
	if ctx == nil {
		return errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return errs.Wrap(err, "check context")
	}
	if s.tickets == nil {
		return errors.New("ticket repository is required")
	}
	if s.audit == nil {
		return errors.New("audit log is required")
	}
	return nil
}

func (s *Service) checkWritable(ctx context.Context) error {
	if err := s.checkReady(ctx); err != nil {
		return err
	}
	if s.uow == nil {
		return errors.New("unit of work is required")
	}
	return nil
}

// stamp returns the current time, nudged past after so a ticket's
// updated_at never goes backwards when the wall clock does.
func (s *Service) stamp(after ...string) string {
	now := s.now().UTC()
	for _, value := range after {
		if value == "" {
			continue
		}
		if previous, err := ports.ParseTimestamp(value); err == nil && !now.After(previous) {
			now = previous.Add(time.Nanosecond)
		}
	}
	return ports.FormatTimestamp(now)
}

// eventStamp lands after both the ticket row and the newest audit event.
// Comments do not touch updated_at, so the ticket row alone is not enough.
func (s *Service) eventStamp(ctx context.Context, ticketID uint64, updatedAt string) (string, error) {
	latest, err := s.audit.LatestEventAt(ctx, ticketID)
	if err != nil {
		return "", err
	}
	return s.stamp(updatedAt, latest), nil
}

func (s *Service) appendEvent(ctx context.Context, ticketID uint64, author string, text string, eventType ticket.EventType, createdAt string) error {
	_, err := s.audit.Append(ctx, ports.AuditEventCreate{
		TicketID:  ticketID,
		Author:    author,
		Text:      text,
		CreatedAt: createdAt,
		EventType: eventType,
	})
	return err
}

// dropReportCache runs after commit; a stale report only lives until its
// ttl, so failures are logged and ignored.
func (s *Service) dropReportCache(ctx context.Context) {
	if s.cache == nil {
		return
	}
	for _, key := range ports.ReportCacheKeys() {
		if err := s.cache.Delete(ctx, key); err != nil {
			logging.Warn(
				logging.WithComponent(ctx, "usecase.desk"),
				"drop report cache failed",
				slog.String("key", key),
				slog.Any("err", errs.Loggable(err)),
			)
		}
	}
}

func logCtx(ctx context.Context, ticketID uint64) context.Context {
	return logging.WithTicketRef(logging.WithComponent(ctx, "usecase.desk"), ticket.FormatRef(ticketID))
}
