package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"accidentapi/internal/ai"
	"accidentapi/internal/conversation"
	"accidentapi/internal/model"
	"accidentapi/internal/notify"
	"accidentapi/internal/otel"
	"accidentapi/internal/repository"
)

// DefaultSystemPrompt instructs the model to append a state block to every reply.
const DefaultSystemPrompt = `You are an assistant helping a driver report a traffic accident.
Ask one short question at a time. Collect: date, time, location, vehicles and licence plates,
other parties, injuries, police involvement, insurance policy number and a short description.
When the facts are collected, ask for photos of the damage and documents.
Finish by summarising the report and asking the driver to confirm it.

After every reply append a state block exactly like:
<state>{"phase":"collecting","extracted_data":{"location":"..."},"ready_for_upload":false}</state>
phase is one of greeting, collecting, evidence, review, complete.
extracted_data holds only facts the driver stated. Set ready_for_upload to true when you ask for photos.`

const (
	maxMessageLen        = 4000
	defaultNotifyTimeout = 30 * time.Second
)

// LoadSystemPrompt reads the prompt from path, or returns DefaultSystemPrompt when path is empty.
func LoadSystemPrompt(path string) (string, error) {
	if path == "" {
		return DefaultSystemPrompt, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read system prompt: %w", err)
	}
	p := strings.TrimSpace(string(b))
	if p == "" {
		return DefaultSystemPrompt, nil
	}
	return p, nil
}

// ChatResult is the outcome of one conversation turn.
type ChatResult struct {
	TicketID      string         `json:"ticket_id"`
	Reply         string         `json:"reply"`
	Phase         string         `json:"phase"`
	ExtractedData map[string]any `json:"extracted_data"`
	UploadAllowed bool           `json:"upload_allowed"`
}

// ChatService runs the reporting conversation for a ticket.
type ChatService interface {
	// Send records the user message, asks the model for the next turn and
	// persists the reply. An empty ticketID starts a new ticket.
	Send(ctx context.Context, ticketID, message string) (*ChatResult, error)
}

type chatService struct {
	repo          repository.TicketRepository
	model         ai.ChatModel
	notifier      notify.Notifier
	notifyTimeout time.Duration
	prompt        string
	sanitize      *bluemonday.Policy
	log           *slog.Logger
	now           func() time.Time
}

func NewChatService(repo repository.TicketRepository, model ai.ChatModel, notifier notify.Notifier, systemPrompt string, log *slog.Logger) ChatService {
	if notifier == nil {
		notifier = notify.Noop{}
	}
	if systemPrompt == "" {
		systemPrompt = DefaultSystemPrompt
	}
	if log == nil {
		log = slog.Default()
	}
	return &chatService{
		repo:          repo,
		model:         model,
		notifier:      notifier,
		notifyTimeout: defaultNotifyTimeout,
		prompt:        systemPrompt,
		sanitize:      bluemonday.StrictPolicy(),
		log:           log,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

func (s *chatService) Send(ctx context.Context, ticketID, message string) (_ *ChatResult, err error) {
	ctx, end := otel.Start(ctx, "chat.send", attribute.Bool("chat.new_ticket", ticketID == ""))
	defer func() { end(err) }()

	message = plainText(s.sanitize, message)
	if message == "" {
		return nil, ErrMessageRequired
	}
	if len(message) > maxMessageLen {
		return nil, ErrTextTooLong
	}

	t, created, err := s.loadOrNew(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	previous := conversation.Phase(t.Phase)

	t.Transcript = append(t.Transcript, model.Message{Role: model.RoleUser, Content: message, Timestamp: s.now()})

	raw, err := s.model.Complete(ctx, s.buildPrompt(t))
	if err != nil {
		return nil, fmt.Errorf("chat completion: %w", err)
	}

	tracker := conversation.NewTracker(previous, t.ExtractedData)
	reply := tracker.Observe(raw)

	t.Transcript = append(t.Transcript, model.Message{Role: model.RoleAssistant, Content: reply, Timestamp: s.now()})
	t.Phase = string(tracker.Phase())
	t.ExtractedData = tracker.Extracted()
	t.UpdatedAt = s.now()

	if err := s.persist(ctx, t, created); err != nil {
		return nil, err
	}

	if tracker.Phase() == conversation.PhaseComplete && previous != conversation.PhaseComplete {
		s.notifyCompleted(ctx, t)
	}

	trace.SpanFromContext(ctx).SetAttributes(
		attribute.String("ticket.id", t.ID),
		attribute.String("ticket.phase", t.Phase),
	)
	s.log.Debug("chat_turn",
		"ticket_id", t.ID,
		"new_ticket", created,
		"phase_from", string(previous),
		"phase_to", t.Phase,
	)

	return &ChatResult{
		TicketID:      t.ID,
		Reply:         reply,
		Phase:         t.Phase,
		ExtractedData: t.ExtractedData,
		UploadAllowed: tracker.AllowsUpload(),
	}, nil
}

// notifyCompleted mails the back office without holding up the reply.
// The send outlives the request but is bounded by notifyTimeout.
func (s *chatService) notifyCompleted(ctx context.Context, t *model.Ticket) {
	snapshot := *t
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.notifyTimeout)
	go func() {
		defer cancel()
		if err := s.notifier.TicketCompleted(ctx, &snapshot); err != nil {
			s.log.Warn("ticket_notify_failed", "ticket_id", snapshot.ID, "error", err)
		}
	}()
}

// loadOrNew fetches the ticket, or builds an unsaved one when id is empty.
// New tickets are only stored once the first turn has a reply.
func (s *chatService) loadOrNew(ctx context.Context, id string) (*model.Ticket, bool, error) {
	if id != "" {
		t, err := s.repo.FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, false, ErrNotFound
			}
			return nil, false, err
		}
		return t, false, nil
	}

	now := s.now()
	return &model.Ticket{
		ID:            uuid.New().String(),
		Transcript:    []model.Message{},
		ExtractedData: map[string]any{},
		Status:        model.StatusOpen,
		Phase:         string(conversation.PhaseGreeting),
		CreatedAt:     now,
		UpdatedAt:     now,
	}, true, nil
}

func (s *chatService) persist(ctx context.Context, t *model.Ticket, created bool) error {
	if created {
		if _, err := s.repo.Create(ctx, t); err != nil {
			return fmt.Errorf("create ticket: %w", err)
		}
		return nil
	}
	if err := s.repo.Update(ctx, t); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("save transcript: %w", err)
	}
	return nil
}

// buildPrompt sends the system prompt, the known state and the whole transcript.
func (s *chatService) buildPrompt(t *model.Ticket) []ai.Message {
	state, _ := json.Marshal(map[string]any{
		"phase":          t.Phase,
		"extracted_data": t.ExtractedData,
	})
	msgs := make([]ai.Message, 0, len(t.Transcript)+2)
	msgs = append(msgs,
		ai.Message{Role: ai.RoleSystem, Content: s.prompt},
		ai.Message{Role: ai.RoleSystem, Content: "Current state: " + string(state)},
	)
	for _, m := range t.Transcript {
		role := ai.RoleUser
		if m.Role == model.RoleAssistant {
			role = ai.RoleAssistant
		}
		msgs = append(msgs, ai.Message{Role: role, Content: m.Content})
	}
	return msgs
}
