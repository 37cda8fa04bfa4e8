package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"school_journal/internal/common"
	"school_journal/internal/common/security"
	"school_journal/internal/domain/model"
	"school_journal/internal/domain/repository"
)

type AuthService struct {
	userRepo repository.UserRepository
	tokens   *security.TokenService
}

func NewAuthService(userRepo repository.UserRepository, tokens *security.TokenService) *AuthService {
	return &AuthService{userRepo: userRepo, tokens: tokens}
}

type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type AuthResponse struct {
	Token string `json:"token"`
}

func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	if req.Username == "" || req.Password == "" {
		return nil, fmt.Errorf("username and password are required: %w", common.ErrValidation)
	}
	if !model.ValidRole(req.Role) {
		return nil, fmt.Errorf("role must be %q or %q: %w", model.RoleTeacher, model.RoleStudent, common.ErrValidation)
	}

	// Uniqueness is checked up front; the unique index backstops the
	// race between the lookup and the insert.
	if _, err := s.userRepo.FindByUsername(ctx, req.Username); err == nil {
		return nil, fmt.Errorf("username already exists: %w", common.ErrConflict)
	} else if !errors.Is(err, common.ErrNotFound) {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}

	hashedPassword, err := security.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		ID:             uuid.NewString(),
		Username:       req.Username,
		HashedPassword: hashedPassword,
		Role:           req.Role,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	token, err := s.tokens.GenerateToken(user.ID, user.Username, user.Role)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}
	return &AuthResponse{Token: token}, nil
}

func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	if req.Username == "" || req.Password == "" {
		return nil, fmt.Errorf("invalid username or password: %w", common.ErrUnauthorized)
	}

	// Unknown username and wrong password must be indistinguishable.
	user, err := s.userRepo.FindByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, fmt.Errorf("invalid username or password: %w", common.ErrUnauthorized)
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if !security.CheckPasswordHash(req.Password, user.HashedPassword) {
		return nil, fmt.Errorf("invalid username or password: %w", common.ErrUnauthorized)
	}

	token, err := s.tokens.GenerateToken(user.ID, user.Username, user.Role)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}
	return &AuthResponse{Token: token}, nil
}
