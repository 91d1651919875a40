package services

import (
	"context"
	"errors"
	"strings"

	"golang-cart-backend/internal/models"
	"golang-cart-backend/internal/repositories"

	"github.com/google/uuid"
)

// UserService provisions the minimal user row cart ownership hangs off.
// Account lifecycle lives with the auth collaborator; this service only
// mirrors identities asserted by validated tokens.
type UserService struct {
	userRepo repositories.UserRepository
}

func NewUserService(userRepo repositories.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

// Ensure returns the user row for a validated identity, creating it on first
// sight so the server cart always has an owner to attach to.
func (s *UserService) Ensure(ctx context.Context, userID, email string) (*models.User, error) {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return nil, errors.New("invalid user ID")
	}

	if user, err := s.userRepo.GetByID(ctx, uid); err == nil {
		return user, nil
	}

	name := email
	if at := strings.Index(email, "@"); at > 0 {
		name = email[:at]
	}
	user := &models.User{ID: uid, Name: name, Email: email}
	if err := s.userRepo.Create(ctx, user); err != nil {
		// Lost a race with a concurrent first request for the same identity.
		if existing, getErr := s.userRepo.GetByID(ctx, uid); getErr == nil {
			return existing, nil
		}
		return nil, err
	}
	return user, nil
}
