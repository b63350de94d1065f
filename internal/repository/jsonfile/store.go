// Package jsonfile keeps tickets and users in a single JSON document on disk.
//
// The whole document is held in memory and rewritten on every mutation through a
// temp file and rename, so a crash never leaves a half-written store behind.
package jsonfile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"accidentapi/internal/model"
	"accidentapi/internal/repository"
)

// document is the on-disk layout.
type document struct {
	Tickets []model.Ticket `json:"tickets"`
	Users   []userRecord   `json:"users"`
}

// userRecord persists the password hash that model.User hides from JSON.
type userRecord struct {
	Username     string     `json:"username"`
	PasswordHash string     `json:"password_hash"`
	Role         model.Role `json:"role"`
	CreatedAt    time.Time  `json:"created_at"`
}

// Store implements repository.Store on top of a JSON file.
// It is safe for concurrent use within one process.
type Store struct {
	path string

	mu      sync.RWMutex
	tickets map[string]*model.Ticket
	users   map[string]userRecord
}

var _ repository.Store = (*Store)(nil)

// Open loads the store at path. A missing file yields an empty store.
func Open(path string) (*Store, error) {
	if path == "" {
		return nil, errors.New("json store path is required")
	}
	s := &Store{
		path:    path,
		tickets: make(map[string]*model.Ticket),
		users:   make(map[string]userRecord),
	}

	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return s, nil
		}
		return nil, fmt.Errorf("read json store: %w", err)
	}
	if len(b) == 0 {
		return s, nil
	}

	var doc document
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("decode json store: %w", err)
	}
	for i := range doc.Tickets {
		t := doc.Tickets[i]
		s.tickets[t.ID] = &t
	}
	for _, u := range doc.Users {
		s.users[u.Username] = u
	}
	return s, nil
}

func (s *Store) Tickets() repository.TicketRepository { return (*ticketRepo)(s) }

func (s *Store) Users() repository.UserRepository { return (*userRepo)(s) }

// Ping checks that the store directory is still accessible.
func (s *Store) Ping(ctx context.Context) error {
	_, err := os.Stat(filepath.Dir(s.path))
	return err
}

func (s *Store) Close() error { return nil }

// flush writes the current state to disk. Callers must hold the write lock.
func (s *Store) flush() error {
	doc := document{
		Tickets: make([]model.Ticket, 0, len(s.tickets)),
		Users:   make([]userRecord, 0, len(s.users)),
	}
	for _, t := range s.tickets {
		doc.Tickets = append(doc.Tickets, *t)
	}
	sort.Slice(doc.Tickets, func(i, j int) bool {
		return doc.Tickets[i].CreatedAt.Before(doc.Tickets[j].CreatedAt)
	})
	for _, u := range s.users {
		doc.Users = append(doc.Users, u)
	}
	sort.Slice(doc.Users, func(i, j int) bool { return doc.Users[i].Username < doc.Users[j].Username })

	b, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode json store: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create store dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".tickets-*.json")
	if err != nil {
		return fmt.Errorf("create temp store: %w", err)
	}
	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write temp store: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close temp store: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replace json store: %w", err)
	}
	return nil
}
