package model

import "time"

// TicketStatus is the review state of an accident report.
type TicketStatus string

const (
	StatusOpen     TicketStatus = "open"
	StatusInReview TicketStatus = "in_review"
	StatusClosed   TicketStatus = "closed"
)

// Valid reports whether s is one of the known statuses.
func (s TicketStatus) Valid() bool {
	switch s {
	case StatusOpen, StatusInReview, StatusClosed:
		return true
	}
	return false
}

// Message roles stored in a ticket transcript.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one turn of the reporting conversation.
type Message struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Ticket represents a stored accident report.
// This is a pure domain model with no database-specific dependencies or tags.
type Ticket struct {
	ID            string         `json:"id"`
	Transcript    []Message      `json:"transcript"`
	ExtractedData map[string]any `json:"extracted_data"`
	Status        TicketStatus   `json:"status"`
	Phase         string         `json:"phase"`
	Attachments   []Attachment   `json:"attachments"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

// Attachment is a file uploaded as evidence for a ticket.
type Attachment struct {
	ID         string    `json:"id"`
	TicketID   string    `json:"ticket_id"`
	Filename   string    `json:"filename"`
	URL        string    `json:"url"`
	Type       string    `json:"type"`
	Size       int64     `json:"size"`
	StorageKey string    `json:"storage_key"`
	CreatedAt  time.Time `json:"created_at"`
}
