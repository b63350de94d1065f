package sqlstore

import (
	"context"
	"database/sql"
	"errors"

	"accidentapi/internal/model"
	"accidentapi/internal/repository"
)

// UserSQL is a database/sql implementation of repository.UserRepository.
type UserSQL struct {
	db      *sql.DB
	dialect Dialect
}

// NewUserSQL creates a new UserSQL repository.
func NewUserSQL(db *sql.DB, d Dialect) *UserSQL {
	return &UserSQL{db: db, dialect: d}
}

var _ repository.UserRepository = (*UserSQL)(nil)

func (r *UserSQL) Create(ctx context.Context, u *model.User) error {
	q := `INSERT INTO users (username, password_hash, role, created_at) VALUES (?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, r.dialect.Rebind(q), u.Username, u.PasswordHash, string(u.Role), u.CreatedAt)
	if err != nil && isUniqueViolation(err) {
		return repository.ErrConflict
	}
	return err
}

func (r *UserSQL) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	q := `SELECT username, password_hash, role, created_at FROM users WHERE username = ?`
	var (
		u    model.User
		role string
	)
	err := r.db.QueryRowContext(ctx, r.dialect.Rebind(q), username).Scan(&u.Username, &u.PasswordHash, &role, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	u.Role = model.Role(role)
	return &u, nil
}

func (r *UserSQL) List(ctx context.Context) ([]model.User, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT username, password_hash, role, created_at FROM users ORDER BY username`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.User, 0)
	for rows.Next() {
		var (
			u    model.User
			role string
		)
		if err := rows.Scan(&u.Username, &u.PasswordHash, &role, &u.CreatedAt); err != nil {
			return nil, err
		}
		u.Role = model.Role(role)
		out = append(out, u)
	}
	return out, rows.Err()
}
