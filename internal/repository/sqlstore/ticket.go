package sqlstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"accidentapi/internal/model"
	"accidentapi/internal/repository"
)

// TicketSQL is a database/sql implementation of repository.TicketRepository.
// It uses parameterized queries and contains no business logic.
type TicketSQL struct {
	db      *sql.DB
	dialect Dialect
}

// NewTicketSQL creates a new TicketSQL repository.
func NewTicketSQL(db *sql.DB, d Dialect) *TicketSQL {
	return &TicketSQL{db: db, dialect: d}
}

var _ repository.TicketRepository = (*TicketSQL)(nil)

const ticketColumns = `id, transcript, extracted_data, status, phase, created_at, updated_at`

const attachmentColumns = `id, ticket_id, filename, url, type, size, storage_key, created_at`

// Create inserts a new ticket row and returns the stored record.
func (r *TicketSQL) Create(ctx context.Context, t *model.Ticket) (*model.Ticket, error) {
	transcript, extracted, err := encodeTicketJSON(t)
	if err != nil {
		return nil, err
	}
	q := `INSERT INTO tickets (` + ticketColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?)`
	if _, err := r.db.ExecContext(ctx, r.dialect.Rebind(q),
		t.ID,
		transcript,
		extracted,
		string(t.Status),
		t.Phase,
		t.CreatedAt,
		t.UpdatedAt,
	); err != nil {
		if isUniqueViolation(err) {
			return nil, repository.ErrConflict
		}
		return nil, err
	}
	out := *t
	if out.Attachments == nil {
		out.Attachments = []model.Attachment{}
	}
	return &out, nil
}

// FindByID fetches a single ticket and its attachments.
func (r *TicketSQL) FindByID(ctx context.Context, id string) (*model.Ticket, error) {
	q := `SELECT ` + ticketColumns + ` FROM tickets WHERE id = ?`
	row := r.db.QueryRowContext(ctx, r.dialect.Rebind(q), id)
	t, err := scanTicket(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	byTicket, err := r.attachmentsFor(ctx, []string{t.ID})
	if err != nil {
		return nil, err
	}
	t.Attachments = byTicket[t.ID]
	if t.Attachments == nil {
		t.Attachments = []model.Attachment{}
	}
	return t, nil
}

// List returns tickets using LIMIT/OFFSET pagination and a total count.
func (r *TicketSQL) List(ctx context.Context, f repository.TicketFilter) (*repository.PageResult[model.Ticket], error) {
	where := ""
	args := make([]any, 0, 3)
	if f.Status != "" {
		where = ` WHERE status = ?`
		args = append(args, string(f.Status))
	}

	var total int
	qCount := `SELECT COUNT(*) FROM tickets` + where
	if err := r.db.QueryRowContext(ctx, r.dialect.Rebind(qCount), args...).Scan(&total); err != nil {
		return nil, err
	}

	qList := `SELECT ` + ticketColumns + ` FROM tickets` + where + `
		ORDER BY created_at DESC, id DESC
		LIMIT ? OFFSET ?`
	rows, err := r.db.QueryContext(ctx, r.dialect.Rebind(qList), append(args, f.Limit, f.Offset)...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Ticket, 0)
	ids := make([]string, 0)
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *t)
		ids = append(ids, t.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	byTicket, err := r.attachmentsFor(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range items {
		if a := byTicket[items[i].ID]; a != nil {
			items[i].Attachments = a
		} else {
			items[i].Attachments = []model.Attachment{}
		}
	}

	return &repository.PageResult[model.Ticket]{
		Items: items,
		Total: total,
	}, nil
}

// Update overwrites the mutable columns of a ticket.
func (r *TicketSQL) Update(ctx context.Context, t *model.Ticket) error {
	transcript, extracted, err := encodeTicketJSON(t)
	if err != nil {
		return err
	}
	q := `UPDATE tickets
		SET transcript = ?, extracted_data = ?, status = ?, phase = ?, updated_at = ?
		WHERE id = ?`
	res, err := r.db.ExecContext(ctx, r.dialect.Rebind(q),
		transcript,
		extracted,
		string(t.Status),
		t.Phase,
		t.UpdatedAt,
		t.ID,
	)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

// Delete removes a ticket and its attachment rows in one transaction.
func (r *TicketSQL) Delete(ctx context.Context, id string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, r.dialect.Rebind(`DELETE FROM attachments WHERE ticket_id = ?`), id); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, r.dialect.Rebind(`DELETE FROM tickets WHERE id = ?`), id)
	if err != nil {
		return err
	}
	if err := requireAffected(res); err != nil {
		return err
	}
	return tx.Commit()
}

// AddAttachment inserts attachment metadata.
func (r *TicketSQL) AddAttachment(ctx context.Context, a *model.Attachment) error {
	q := `INSERT INTO attachments (` + attachmentColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, r.dialect.Rebind(q),
		a.ID,
		a.TicketID,
		a.Filename,
		a.URL,
		a.Type,
		a.Size,
		a.StorageKey,
		a.CreatedAt,
	)
	if err != nil && isForeignKeyViolation(err) {
		return repository.ErrNotFound
	}
	return err
}

// DeleteAttachment removes one attachment row scoped to its ticket.
func (r *TicketSQL) DeleteAttachment(ctx context.Context, ticketID, attachmentID string) error {
	q := `DELETE FROM attachments WHERE id = ? AND ticket_id = ?`
	res, err := r.db.ExecContext(ctx, r.dialect.Rebind(q), attachmentID, ticketID)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

// CountByStatus aggregates ticket counts per status.
func (r *TicketSQL) CountByStatus(ctx context.Context) (map[model.TicketStatus]int, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT status, COUNT(*) FROM tickets GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[model.TicketStatus]int)
	for rows.Next() {
		var (
			status string
			n      int
		)
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		out[model.TicketStatus(status)] = n
	}
	return out, rows.Err()
}

func (r *TicketSQL) attachmentsFor(ctx context.Context, ticketIDs []string) (map[string][]model.Attachment, error) {
	out := make(map[string][]model.Attachment, len(ticketIDs))
	if len(ticketIDs) == 0 {
		return out, nil
	}
	q := `SELECT ` + attachmentColumns + ` FROM attachments
		WHERE ticket_id IN (` + placeholders(len(ticketIDs)) + `)
		ORDER BY created_at ASC, id ASC`
	args := make([]any, len(ticketIDs))
	for i, id := range ticketIDs {
		args[i] = id
	}
	rows, err := r.db.QueryContext(ctx, r.dialect.Rebind(q), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var a model.Attachment
		if err := rows.Scan(
			&a.ID,
			&a.TicketID,
			&a.Filename,
			&a.URL,
			&a.Type,
			&a.Size,
			&a.StorageKey,
			&a.CreatedAt,
		); err != nil {
			return nil, err
		}
		out[a.TicketID] = append(out[a.TicketID], a)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTicket(s rowScanner) (*model.Ticket, error) {
	var (
		t          model.Ticket
		status     string
		transcript string
		extracted  string
	)
	if err := s.Scan(
		&t.ID,
		&transcript,
		&extracted,
		&status,
		&t.Phase,
		&t.CreatedAt,
		&t.UpdatedAt,
	); err != nil {
		return nil, err
	}
	t.Status = model.TicketStatus(status)
	if err := json.Unmarshal([]byte(transcript), &t.Transcript); err != nil {
		return nil, fmt.Errorf("decode transcript of %s: %w", t.ID, err)
	}
	if err := json.Unmarshal([]byte(extracted), &t.ExtractedData); err != nil {
		return nil, fmt.Errorf("decode extracted_data of %s: %w", t.ID, err)
	}
	if t.Transcript == nil {
		t.Transcript = []model.Message{}
	}
	if t.ExtractedData == nil {
		t.ExtractedData = map[string]any{}
	}
	return &t, nil
}

func encodeTicketJSON(t *model.Ticket) (string, string, error) {
	transcript := t.Transcript
	if transcript == nil {
		transcript = []model.Message{}
	}
	extracted := t.ExtractedData
	if extracted == nil {
		extracted = map[string]any{}
	}
	tb, err := json.Marshal(transcript)
	if err != nil {
		return "", "", fmt.Errorf("encode transcript: %w", err)
	}
	eb, err := json.Marshal(extracted)
	if err != nil {
		return "", "", fmt.Errorf("encode extracted_data: %w", err)
	}
	return string(tb), string(eb), nil
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return repository.ErrNotFound
	}
	return nil
}
