package repository

import (
	"context"
	"errors"

	"accidentapi/internal/model"
)

var (
	// ErrNotFound is returned when the requested record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrConflict is returned when a unique key is already taken.
	ErrConflict = errors.New("record already exists")
)

// TicketRepository defines persistence for tickets and their attachments.
// No business logic here — strictly persistence operations.
type TicketRepository interface {
	// Create inserts a new ticket. The caller provides ID and timestamps.
	Create(ctx context.Context, t *model.Ticket) (*model.Ticket, error)

	// FindByID returns a ticket with its attachments, or ErrNotFound.
	FindByID(ctx context.Context, id string) (*model.Ticket, error)

	// List returns a page of tickets (newest first) and the total count for the filter.
	List(ctx context.Context, f TicketFilter) (*PageResult[model.Ticket], error)

	// Update overwrites transcript, extracted data, status, phase and updated_at.
	Update(ctx context.Context, t *model.Ticket) error

	// Delete removes a ticket and its attachment rows. Missing rows yield ErrNotFound.
	Delete(ctx context.Context, id string) error

	// AddAttachment stores attachment metadata for an existing ticket, or
	// returns ErrNotFound when the ticket does not exist.
	AddAttachment(ctx context.Context, a *model.Attachment) error

	// DeleteAttachment removes one attachment of a ticket.
	DeleteAttachment(ctx context.Context, ticketID, attachmentID string) error

	// CountByStatus returns the number of tickets per status.
	CountByStatus(ctx context.Context) (map[model.TicketStatus]int, error)
}

// UserRepository defines persistence for back-office users.
type UserRepository interface {
	// Create inserts a user, returning ErrConflict when the username exists.
	Create(ctx context.Context, u *model.User) error
	// FindByUsername returns the user or ErrNotFound.
	FindByUsername(ctx context.Context, username string) (*model.User, error)
	// List returns all users ordered by username.
	List(ctx context.Context) ([]model.User, error)
}

// Store bundles the repositories served by one backend.
type Store interface {
	Tickets() TicketRepository
	Users() UserRepository
	// Ping reports whether the backend is reachable.
	Ping(ctx context.Context) error
	Close() error
}

// TicketFilter holds limit/offset pagination and an optional status filter.
type TicketFilter struct {
	Status model.TicketStatus
	Limit  int
	Offset int
}

// PageResult is a generic pagination result wrapper.
// T is typically a model type.
type PageResult[T any] struct {
	Items []T
	Total int
}
