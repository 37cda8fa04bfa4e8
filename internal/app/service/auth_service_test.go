package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"school_journal/internal/common"
	"school_journal/internal/common/security"
	"school_journal/internal/domain/model"
)

type fakeUserRepo struct {
	users map[string]*model.User // by username
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[string]*model.User{}}
}

func (r *fakeUserRepo) Create(_ context.Context, user *model.User) error {
	if _, exists := r.users[user.Username]; exists {
		return fmt.Errorf("username already exists: %w", common.ErrConflict)
	}
	r.users[user.Username] = user
	return nil
}

func (r *fakeUserRepo) FindByUsername(_ context.Context, username string) (*model.User, error) {
	user, ok := r.users[username]
	if !ok {
		return nil, common.ErrNotFound
	}
	return user, nil
}

func (r *fakeUserRepo) FindByID(_ context.Context, id string) (*model.User, error) {
	for _, user := range r.users {
		if user.ID == id {
			return user, nil
		}
	}
	return nil, common.ErrNotFound
}

func newAuthService(repo *fakeUserRepo) *AuthService {
	tokens := security.NewTokenService([]byte("test-secret"), time.Hour)
	return NewAuthService(repo, tokens)
}

func TestRegister_IssuesToken(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newAuthService(repo)

	resp, err := svc.Register(context.Background(), RegisterRequest{Username: "alice", Password: "pw", Role: model.RoleTeacher})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)

	stored := repo.users["alice"]
	require.NotNil(t, stored)
	assert.Equal(t, model.RoleTeacher, stored.Role)
	assert.NotEqual(t, "pw", stored.HashedPassword)
}

func TestRegister_DuplicateUsername(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newAuthService(repo)

	_, err := svc.Register(context.Background(), RegisterRequest{Username: "alice", Password: "pw", Role: model.RoleTeacher})
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), RegisterRequest{Username: "alice", Password: "other", Role: model.RoleStudent})
	assert.ErrorIs(t, err, common.ErrConflict)
	assert.Len(t, repo.users, 1)
}

func TestRegister_RejectsUnknownRole(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newAuthService(repo)

	_, err := svc.Register(context.Background(), RegisterRequest{Username: "alice", Password: "pw", Role: "admin"})
	assert.ErrorIs(t, err, common.ErrValidation)
	assert.Empty(t, repo.users)
}

func TestRegister_RejectsEmptyFields(t *testing.T) {
	svc := newAuthService(newFakeUserRepo())

	_, err := svc.Register(context.Background(), RegisterRequest{Username: "", Password: "pw", Role: model.RoleStudent})
	assert.ErrorIs(t, err, common.ErrValidation)

	_, err = svc.Register(context.Background(), RegisterRequest{Username: "alice", Password: "", Role: model.RoleStudent})
	assert.ErrorIs(t, err, common.ErrValidation)
}

func TestLogin_Success(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newAuthService(repo)

	_, err := svc.Register(context.Background(), RegisterRequest{Username: "alice", Password: "pw", Role: model.RoleStudent})
	require.NoError(t, err)

	resp, err := svc.Login(context.Background(), LoginRequest{Username: "alice", Password: "pw"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
}

// Unknown username and wrong password must produce the exact same
// failure, so neither leaks which part was wrong.
func TestLogin_FailuresAreIndistinguishable(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newAuthService(repo)

	_, err := svc.Register(context.Background(), RegisterRequest{Username: "alice", Password: "pw", Role: model.RoleStudent})
	require.NoError(t, err)

	_, wrongPassword := svc.Login(context.Background(), LoginRequest{Username: "alice", Password: "nope"})
	_, unknownUser := svc.Login(context.Background(), LoginRequest{Username: "nobody", Password: "pw"})

	require.Error(t, wrongPassword)
	require.Error(t, unknownUser)
	assert.ErrorIs(t, wrongPassword, common.ErrUnauthorized)
	assert.ErrorIs(t, unknownUser, common.ErrUnauthorized)
	assert.Equal(t, wrongPassword.Error(), unknownUser.Error())
}
