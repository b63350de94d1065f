package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"accidentapi/internal/config"
	"accidentapi/internal/model"
	"accidentapi/internal/repository"
	repoMocks "accidentapi/internal/repository/mocks"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

var testAuthCfg = config.AuthConfig{JWTSecret: "test-secret", TokenTTL: time.Hour, BcryptCost: bcrypt.MinCost}

func newAuthSvc(t *testing.T, users repository.UserRepository) AuthService {
	t.Helper()
	svc, err := NewAuthService(users, testAuthCfg)
	require.NoError(t, err)
	return svc
}

func hashFor(t *testing.T, pw string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.MinCost)
	require.NoError(t, err)
	return string(h)
}

func TestNewAuthService_RequiresSecret(t *testing.T) {
	_, err := NewAuthService(nil, config.AuthConfig{})
	assert.Error(t, err)
}

func TestAuthService_LoginAndVerify(t *testing.T) {
	ctx := context.Background()
	mUsers := new(repoMocks.MockUserRepository)
	mUsers.On("FindByUsername", ctx, "ana").Return(&model.User{Username: "ana", Role: model.RoleAgent, PasswordHash: hashFor(t, "correct horse")}, nil)
	svc := newAuthSvc(t, mUsers)

	res, err := svc.Login(ctx, " ana ", "correct horse")
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)
	assert.Equal(t, "ana", res.User.Username)
	assert.WithinDuration(t, time.Now().Add(time.Hour), res.ExpiresAt, time.Minute)

	claims, err := svc.Verify(res.Token)
	require.NoError(t, err)
	assert.Equal(t, "ana", claims.Username)
	assert.Equal(t, model.RoleAgent, claims.Role)
}

func TestAuthService_LoginFailures(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name       string
		username   string
		password   string
		setupMocks func(m *repoMocks.MockUserRepository)
		wantErr    error
	}{
		{
			name:     "wrong password",
			username: "ana",
			password: "nope",
			setupMocks: func(m *repoMocks.MockUserRepository) {
				m.On("FindByUsername", ctx, "ana").Return(&model.User{Username: "ana", Role: model.RoleAgent, PasswordHash: hashFor(t, "right-password")}, nil)
			},
			wantErr: ErrInvalidCredentials,
		},
		{
			name:     "unknown user",
			username: "ghost",
			password: "whatever",
			setupMocks: func(m *repoMocks.MockUserRepository) {
				m.On("FindByUsername", ctx, "ghost").Return(nil, repository.ErrNotFound)
			},
			wantErr: ErrInvalidCredentials,
		},
		{
			name:       "empty input",
			setupMocks: func(m *repoMocks.MockUserRepository) {},
			wantErr:    ErrInvalidCredentials,
		},
		{
			name:     "repository error",
			username: "ana",
			password: "x",
			setupMocks: func(m *repoMocks.MockUserRepository) {
				m.On("FindByUsername", ctx, "ana").Return(nil, errors.New("db down"))
			},
			wantErr: errors.New("db down"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := new(repoMocks.MockUserRepository)
			tt.setupMocks(m)

			_, err := newAuthSvc(t, m).Login(ctx, tt.username, tt.password)

			if errors.Is(tt.wantErr, ErrInvalidCredentials) {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.EqualError(t, err, tt.wantErr.Error())
			}
			m.AssertExpectations(t)
		})
	}
}

func TestAuthService_VerifyRejects(t *testing.T) {
	svc := newAuthSvc(t, nil)

	_, err := svc.Verify("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)

	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		Username:         "ana",
		Role:             model.RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute))},
	})
	s, err := expired.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	_, err = svc.Verify(s)
	assert.ErrorIs(t, err, ErrInvalidToken)

	forged := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{Username: "ana", Role: model.RoleAdmin})
	s, err = forged.SignedString([]byte("other-secret"))
	require.NoError(t, err)
	_, err = svc.Verify(s)
	assert.ErrorIs(t, err, ErrInvalidToken)

	badRole := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{Username: "ana", Role: "root"})
	s, err = badRole.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	_, err = svc.Verify(s)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestAuthService_CreateUser(t *testing.T) {
	ctx := context.Background()

	t.Run("hashes password", func(t *testing.T) {
		m := new(repoMocks.MockUserRepository)
		m.On("Create", ctx, mock.MatchedBy(func(u *model.User) bool {
			return u.Username == "bob" && u.Role == model.RoleAgent &&
				bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("s3cret-pass")) == nil
		})).Return(nil)

		u, err := newAuthSvc(t, m).CreateUser(ctx, "bob", "s3cret-pass", model.RoleAgent)
		require.NoError(t, err)
		assert.Equal(t, "bob", u.Username)
		m.AssertExpectations(t)
	})

	t.Run("duplicate", func(t *testing.T) {
		m := new(repoMocks.MockUserRepository)
		m.On("Create", ctx, mock.Anything).Return(repository.ErrConflict)
		_, err := newAuthSvc(t, m).CreateUser(ctx, "bob", "s3cret-pass", model.RoleAgent)
		assert.ErrorIs(t, err, ErrUserExists)
	})

	t.Run("validation", func(t *testing.T) {
		svc := newAuthSvc(t, nil)
		_, err := svc.CreateUser(ctx, "", "s3cret-pass", model.RoleAgent)
		assert.ErrorIs(t, err, ErrInvalidUser)
		_, err = svc.CreateUser(ctx, "bob", "short", model.RoleAgent)
		assert.ErrorIs(t, err, ErrInvalidUser)
		_, err = svc.CreateUser(ctx, "bob", "s3cret-pass", "root")
		assert.ErrorIs(t, err, ErrInvalidRole)
	})
}

func TestAuthService_ListUsers(t *testing.T) {
	ctx := context.Background()

	m := new(repoMocks.MockUserRepository)
	m.On("List", ctx).Return([]model.User{{Username: "admin", Role: model.RoleAdmin}}, nil).Once()
	users, err := newAuthSvc(t, m).ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "admin", users[0].Username)

	m.On("List", ctx).Return(nil, errors.New("db down")).Once()
	_, err = newAuthSvc(t, m).ListUsers(ctx)
	assert.ErrorContains(t, err, "list users")
	m.AssertExpectations(t)
}

func TestAuthService_EnsureAdmin(t *testing.T) {
	ctx := context.Background()

	t.Run("creates when missing", func(t *testing.T) {
		m := new(repoMocks.MockUserRepository)
		m.On("FindByUsername", ctx, "admin").Return(nil, repository.ErrNotFound)
		m.On("Create", ctx, mock.MatchedBy(func(u *model.User) bool { return u.Role == model.RoleAdmin })).Return(nil)

		created, err := newAuthSvc(t, m).EnsureAdmin(ctx, "admin", "admin-password")
		require.NoError(t, err)
		assert.True(t, created)
		m.AssertExpectations(t)
	})

	t.Run("keeps existing", func(t *testing.T) {
		m := new(repoMocks.MockUserRepository)
		m.On("FindByUsername", ctx, "admin").Return(&model.User{Username: "admin"}, nil)

		created, err := newAuthSvc(t, m).EnsureAdmin(ctx, "admin", "admin-password")
		require.NoError(t, err)
		assert.False(t, created)
	})

	t.Run("no password configured", func(t *testing.T) {
		created, err := newAuthSvc(t, nil).EnsureAdmin(ctx, "admin", "")
		require.NoError(t, err)
		assert.False(t, created)
	})
}
