package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path"
	"time"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"

	"accidentapi/internal/conversation"
	"accidentapi/internal/model"
	"accidentapi/internal/repository"
	"accidentapi/internal/storage"
)

// TicketListResult is the service-level DTO for paginated tickets.
type TicketListResult struct {
	Items []model.Ticket `json:"data"`
	Total int            `json:"total"`
}

// TicketStats summarises tickets for the admin dashboard.
type TicketStats struct {
	Total    int                        `json:"total"`
	ByStatus map[model.TicketStatus]int `json:"by_status"`
}

// TicketUpdate carries a partial update. Nil fields are left unchanged.
type TicketUpdate struct {
	Transcript    []model.Message
	ExtractedData map[string]any
	Status        *model.TicketStatus
	Phase         *string
}

// AttachmentUpload describes evidence sent for a ticket.
type AttachmentUpload struct {
	TicketID    string
	Reader      io.Reader
	Filename    string
	ContentType string
	Size        int64
	// Override skips the phase check; set for admins.
	Override bool
}

// TicketService defines the use cases for accident report tickets.
type TicketService interface {
	// Create starts a ticket in status open and phase greeting.
	Create(ctx context.Context, extracted map[string]any) (*model.Ticket, error)

	// Get returns a single ticket with its attachments.
	Get(ctx context.Context, id string) (*model.Ticket, error)

	// List returns tickets newest first using limit/offset and an optional status filter.
	List(ctx context.Context, status model.TicketStatus, limit, offset int) (*TicketListResult, error)

	// Update applies a partial update and returns the stored ticket.
	Update(ctx context.Context, id string, upd TicketUpdate) (*model.Ticket, error)

	// Delete removes stored objects first, then the ticket record.
	Delete(ctx context.Context, id string) error

	// UploadAttachment stores the file, then records it; the object is removed if recording fails.
	UploadAttachment(ctx context.Context, in AttachmentUpload) (*model.Attachment, error)

	// DeleteAttachment removes one attachment and its stored object.
	DeleteAttachment(ctx context.Context, ticketID, attachmentID string) error

	// Stats counts tickets by status.
	Stats(ctx context.Context) (*TicketStats, error)
}

type ticketService struct {
	repo     repository.TicketRepository
	store    storage.Storage
	policy   UploadPolicy
	sanitize *bluemonday.Policy
	log      *slog.Logger
	now      func() time.Time
}

// NewTicketService constructs a TicketService.
func NewTicketService(repo repository.TicketRepository, store storage.Storage, policy UploadPolicy, log *slog.Logger) TicketService {
	if log == nil {
		log = slog.Default()
	}
	return &ticketService{
		repo:     repo,
		store:    store,
		policy:   policy,
		sanitize: bluemonday.StrictPolicy(),
		log:      log,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *ticketService) Create(ctx context.Context, extracted map[string]any) (*model.Ticket, error) {
	now := s.now()
	if extracted == nil {
		extracted = map[string]any{}
	}
	t := &model.Ticket{
		ID:            uuid.New().String(),
		Transcript:    []model.Message{},
		ExtractedData: extracted,
		Status:        model.StatusOpen,
		Phase:         string(conversation.PhaseGreeting),
		Attachments:   []model.Attachment{},
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	stored, err := s.repo.Create(ctx, t)
	if err != nil {
		return nil, fmt.Errorf("create ticket: %w", err)
	}
	return stored, nil
}

func (s *ticketService) Get(ctx context.Context, id string) (*model.Ticket, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	t, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return t, nil
}

// List returns paginated tickets without exposing repository types.
func (s *ticketService) List(ctx context.Context, status model.TicketStatus, limit, offset int) (*TicketListResult, error) {
	if status != "" && !status.Valid() {
		return nil, ErrInvalidStatus
	}
	if limit <= 0 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}

	res, err := s.repo.List(ctx, repository.TicketFilter{Status: status, Limit: limit, Offset: offset})
	if err != nil {
		return nil, err
	}
	return &TicketListResult{Items: res.Items, Total: res.Total}, nil
}

func (s *ticketService) Update(ctx context.Context, id string, upd TicketUpdate) (*model.Ticket, error) {
	if upd.Status != nil && !upd.Status.Valid() {
		return nil, ErrInvalidStatus
	}
	if upd.Phase != nil && !conversation.Phase(*upd.Phase).Known() {
		return nil, ErrInvalidPhase
	}

	t, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if upd.Transcript != nil {
		t.Transcript = s.sanitizeTranscript(upd.Transcript)
	}
	if upd.ExtractedData != nil {
		t.ExtractedData = upd.ExtractedData
	}
	if upd.Status != nil {
		t.Status = *upd.Status
	}
	if upd.Phase != nil {
		t.Phase = *upd.Phase
	}
	t.UpdatedAt = s.now()

	if err := s.save(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// save persists t, mapping a vanished row to ErrNotFound.
func (s *ticketService) save(ctx context.Context, t *model.Ticket) error {
	if err := s.repo.Update(ctx, t); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("update ticket: %w", err)
	}
	return nil
}

func (s *ticketService) sanitizeTranscript(in []model.Message) []model.Message {
	out := make([]model.Message, 0, len(in))
	for _, m := range in {
		m.Content = plainText(s.sanitize, m.Content)
		if m.Timestamp.IsZero() {
			m.Timestamp = s.now()
		}
		out = append(out, m)
	}
	return out
}

// Delete removes every stored object of the ticket, then its record.
// If an object cannot be removed the record is kept so the key is not lost.
func (s *ticketService) Delete(ctx context.Context, id string) error {
	t, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	for _, a := range t.Attachments {
		if a.StorageKey == "" {
			continue
		}
		if err := s.store.Delete(ctx, a.StorageKey); err != nil {
			return fmt.Errorf("delete storage: %w", err)
		}
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

func (s *ticketService) UploadAttachment(ctx context.Context, in AttachmentUpload) (*model.Attachment, error) {
	if in.Reader == nil {
		return nil, ErrReaderNil
	}
	if err := s.policy.Check(in.ContentType, in.Size); err != nil {
		return nil, err
	}
	t, err := s.Get(ctx, in.TicketID)
	if err != nil {
		return nil, err
	}
	if !in.Override && !conversation.PhaseAllowsUpload(conversation.Phase(t.Phase)) {
		return nil, ErrUploadNotAllowed
	}

	key := objectKey(path.Join("tickets", t.ID), in.Filename)
	info, err := s.store.Put(ctx, key, in.Reader, storage.PutObjectOptions{
		Size:        in.Size,
		ContentType: in.ContentType,
		Metadata: map[string]string{
			storage.MetaOriginalFilename: in.Filename,
			storage.MetaTicketID:         t.ID,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("upload to storage: %w", err)
	}

	url, err := s.store.URL(ctx, info.Key)
	if err != nil {
		return nil, s.rollback(ctx, info.Key, fmt.Errorf("resolve url: %w", err))
	}
	a := &model.Attachment{
		ID:         uuid.New().String(),
		TicketID:   t.ID,
		Filename:   in.Filename,
		URL:        url,
		Type:       in.ContentType,
		Size:       info.Size,
		StorageKey: info.Key,
		CreatedAt:  s.now(),
	}
	if err := s.repo.AddAttachment(ctx, a); err != nil {
		return nil, s.rollback(ctx, info.Key, fmt.Errorf("db save failed: %w", err))
	}
	return a, nil
}

// rollback deletes an orphaned object and folds any delete error into cause.
func (s *ticketService) rollback(ctx context.Context, key string, cause error) error {
	if delErr := s.store.Delete(ctx, key); delErr != nil {
		s.log.Error("upload_rollback_failed", "storage_key", key, "error", delErr)
		return fmt.Errorf("%w; rollback delete failed: %v", cause, delErr)
	}
	return cause
}

func (s *ticketService) DeleteAttachment(ctx context.Context, ticketID, attachmentID string) error {
	if attachmentID == "" {
		return ErrIDRequired
	}
	t, err := s.Get(ctx, ticketID)
	if err != nil {
		return err
	}
	var target *model.Attachment
	for i := range t.Attachments {
		if t.Attachments[i].ID == attachmentID {
			target = &t.Attachments[i]
			break
		}
	}
	if target == nil {
		return ErrAttachmentNotFound
	}
	if err := s.store.Delete(ctx, target.StorageKey); err != nil {
		return fmt.Errorf("delete storage: %w", err)
	}
	if err := s.repo.DeleteAttachment(ctx, ticketID, attachmentID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrAttachmentNotFound
		}
		return err
	}
	return nil
}

func (s *ticketService) Stats(ctx context.Context) (*TicketStats, error) {
	counts, err := s.repo.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	st := &TicketStats{ByStatus: map[model.TicketStatus]int{
		model.StatusOpen:     0,
		model.StatusInReview: 0,
		model.StatusClosed:   0,
	}}
	for status, n := range counts {
		st.ByStatus[status] = n
		st.Total += n
	}
	return st, nil
}
