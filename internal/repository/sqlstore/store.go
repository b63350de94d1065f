// Package sqlstore persists tickets and users in SQLite or PostgreSQL through database/sql.
package sqlstore

import (
	"context"
	"database/sql"

	"accidentapi/internal/repository"
)

// Store groups the SQL repositories sharing one connection pool.
type Store struct {
	db      *sql.DB
	tickets *TicketSQL
	users   *UserSQL
}

// New wraps an open database handle.
func New(db *sql.DB, d Dialect) *Store {
	return &Store{
		db:      db,
		tickets: NewTicketSQL(db, d),
		users:   NewUserSQL(db, d),
	}
}

var _ repository.Store = (*Store)(nil)

func (s *Store) Tickets() repository.TicketRepository { return s.tickets }

func (s *Store) Users() repository.UserRepository { return s.users }

func (s *Store) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }

func (s *Store) Close() error { return s.db.Close() }
