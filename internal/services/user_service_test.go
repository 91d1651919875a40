package services

import (
	"context"
	"errors"
	"testing"

	"golang-cart-backend/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUserRepo struct {
	users   map[uuid.UUID]*models.User
	created int
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[uuid.UUID]*models.User)}
}

func (r *fakeUserRepo) Create(_ context.Context, user *models.User) error {
	r.users[user.ID] = user
	r.created++
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, errors.New("user not found")
	}
	return user, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, errors.New("user not found")
}

func (r *fakeUserRepo) Update(_ context.Context, user *models.User) error {
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.users, id)
	return nil
}

func TestEnsureCreatesUserOnFirstSight(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewUserService(repo)
	id := uuid.NewString()

	user, err := svc.Ensure(context.Background(), id, "jamie@example.com")
	require.NoError(t, err)

	assert.Equal(t, id, user.ID.String())
	assert.Equal(t, "jamie@example.com", user.Email)
	assert.Equal(t, "jamie", user.Name)
	assert.Equal(t, 1, repo.created)
}

func TestEnsureReturnsExistingUser(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewUserService(repo)
	id := uuid.NewString()
	ctx := context.Background()

	first, err := svc.Ensure(ctx, id, "jamie@example.com")
	require.NoError(t, err)

	second, err := svc.Ensure(ctx, id, "jamie@example.com")
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 1, repo.created)
}

func TestEnsureRejectsMalformedID(t *testing.T) {
	svc := NewUserService(newFakeUserRepo())

	_, err := svc.Ensure(context.Background(), "not-a-uuid", "jamie@example.com")
	assert.Error(t, err)
}
