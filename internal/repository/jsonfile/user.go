package jsonfile

import (
	"context"
	"sort"

	"accidentapi/internal/model"
	"accidentapi/internal/repository"
)

type userRepo Store

var _ repository.UserRepository = (*userRepo)(nil)

func (r *userRepo) Create(ctx context.Context, u *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[u.Username]; ok {
		return repository.ErrConflict
	}
	r.users[u.Username] = userRecord{
		Username:     u.Username,
		PasswordHash: u.PasswordHash,
		Role:         u.Role,
		CreatedAt:    u.CreatedAt,
	}
	if err := (*Store)(r).flush(); err != nil {
		delete(r.users, u.Username)
		return err
	}
	return nil
}

func (r *userRepo) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.users[username]
	if !ok {
		return nil, repository.ErrNotFound
	}
	u := rec.toModel()
	return &u, nil
}

func (r *userRepo) List(ctx context.Context) ([]model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]model.User, 0, len(r.users))
	for _, rec := range r.users {
		out = append(out, rec.toModel())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out, nil
}

func (u userRecord) toModel() model.User {
	return model.User{
		Username:     u.Username,
		PasswordHash: u.PasswordHash,
		Role:         u.Role,
		CreatedAt:    u.CreatedAt,
	}
}
