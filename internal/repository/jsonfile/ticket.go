package jsonfile

import (
	"context"
	"sort"

	"accidentapi/internal/model"
	"accidentapi/internal/repository"
)

type ticketRepo Store

var _ repository.TicketRepository = (*ticketRepo)(nil)

func (r *ticketRepo) Create(ctx context.Context, t *model.Ticket) (*model.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.tickets[t.ID]; ok {
		return nil, repository.ErrConflict
	}
	stored := cloneTicket(t)
	r.tickets[t.ID] = stored
	if err := (*Store)(r).flush(); err != nil {
		delete(r.tickets, t.ID)
		return nil, err
	}
	return cloneTicket(stored), nil
}

func (r *ticketRepo) FindByID(ctx context.Context, id string) (*model.Ticket, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.tickets[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return cloneTicket(t), nil
}

func (r *ticketRepo) List(ctx context.Context, f repository.TicketFilter) (*repository.PageResult[model.Ticket], error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := make([]*model.Ticket, 0, len(r.tickets))
	for _, t := range r.tickets {
		if f.Status != "" && t.Status != f.Status {
			continue
		}
		matched = append(matched, t)
	}
	// Newest first, ties broken by id descending to match the SQL store.
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].ID > matched[j].ID
	})

	items := make([]model.Ticket, 0)
	start := f.Offset
	if start < 0 {
		start = 0
	}
	for i := start; i < len(matched) && (f.Limit <= 0 || len(items) < f.Limit); i++ {
		items = append(items, *cloneTicket(matched[i]))
	}
	return &repository.PageResult[model.Ticket]{Items: items, Total: len(matched)}, nil
}

func (r *ticketRepo) Update(ctx context.Context, t *model.Ticket) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cur, ok := r.tickets[t.ID]
	if !ok {
		return repository.ErrNotFound
	}
	prev := cloneTicket(cur)
	next := cloneTicket(t)
	next.CreatedAt = cur.CreatedAt
	next.Attachments = cur.Attachments
	r.tickets[t.ID] = next
	if err := (*Store)(r).flush(); err != nil {
		r.tickets[t.ID] = prev
		return err
	}
	return nil
}

func (r *ticketRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	prev, ok := r.tickets[id]
	if !ok {
		return repository.ErrNotFound
	}
	delete(r.tickets, id)
	if err := (*Store)(r).flush(); err != nil {
		r.tickets[id] = prev
		return err
	}
	return nil
}

func (r *ticketRepo) AddAttachment(ctx context.Context, a *model.Attachment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.tickets[a.TicketID]
	if !ok {
		return repository.ErrNotFound
	}
	prev := t.Attachments
	t.Attachments = append(append([]model.Attachment{}, prev...), *a)
	if err := (*Store)(r).flush(); err != nil {
		t.Attachments = prev
		return err
	}
	return nil
}

func (r *ticketRepo) DeleteAttachment(ctx context.Context, ticketID, attachmentID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.tickets[ticketID]
	if !ok {
		return repository.ErrNotFound
	}
	prev := t.Attachments
	kept := make([]model.Attachment, 0, len(prev))
	for _, a := range prev {
		if a.ID != attachmentID {
			kept = append(kept, a)
		}
	}
	if len(kept) == len(prev) {
		return repository.ErrNotFound
	}
	t.Attachments = kept
	if err := (*Store)(r).flush(); err != nil {
		t.Attachments = prev
		return err
	}
	return nil
}

func (r *ticketRepo) CountByStatus(ctx context.Context) (map[model.TicketStatus]int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[model.TicketStatus]int)
	for _, t := range r.tickets {
		out[t.Status]++
	}
	return out, nil
}

// cloneTicket copies the slices and the top-level map so callers cannot mutate stored state.
func cloneTicket(t *model.Ticket) *model.Ticket {
	c := *t
	c.Transcript = append([]model.Message{}, t.Transcript...)
	c.Attachments = append([]model.Attachment{}, t.Attachments...)
	c.ExtractedData = make(map[string]any, len(t.ExtractedData))
	for k, v := range t.ExtractedData {
		c.ExtractedData[k] = v
	}
	return &c
}
