package service

import (
	"context"
	"errors"
	"fmt"

	"school_admin/internal/common"
	"school_admin/internal/common/security"
	"school_admin/internal/domain/model"
	"school_admin/internal/domain/repository"

	"github.com/google/uuid"
)

// DefaultUserPassword is assigned to teacher/student accounts created by an
// administrator; holders are expected to change it on first login.
const DefaultUserPassword = "password"

type AuthService struct {
	userRepo repository.UserRepository
}

func NewAuthService(userRepo repository.UserRepository) *AuthService {
	return &AuthService{userRepo: userRepo}
}

type SignupRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=6"`
}

type AuthResponse struct {
	User  *model.User `json:"user"`
	Token string      `json:"token"`
}

// Signup registers a principal account. Teachers and students are only
// created through the assignment operations.
func (s *AuthService) Signup(ctx context.Context, req SignupRequest) (*AuthResponse, error) {
	if err := common.ValidateStruct(req); err != nil {
		return nil, err
	}

	hashedPassword, err := security.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		ID:             uuid.NewString(),
		Name:           req.Name,
		Email:          req.Email,
		HashedPassword: hashedPassword,
		Role:           model.RolePrincipal,
	}

	if err := s.userRepo.Create(ctx, nil, user); err != nil {
		// Repo returns common.ErrConflict on duplicate email
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	token, err := security.GenerateToken(user.ID, string(user.Role))
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}
	user.HashedPassword = ""
	return &AuthResponse{User: user, Token: token}, nil
}

func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	if err := common.ValidateStruct(req); err != nil {
		return nil, err
	}

	user, err := s.userRepo.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrUnauthorized // Generic message for security
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if !security.CheckPasswordHash(req.Password, user.HashedPassword) {
		return nil, common.ErrUnauthorized
	}

	token, err := security.GenerateToken(user.ID, string(user.Role))
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}
	user.HashedPassword = ""
	return &AuthResponse{User: user, Token: token}, nil
}

func (s *AuthService) ChangePassword(ctx context.Context, userID string, role model.Role, req ChangePasswordRequest) error {
	if err := common.ValidateStruct(req); err != nil {
		return err
	}

	user, err := s.userRepo.FindByIDAndRole(ctx, userID, role)
	if err != nil {
		return err // common.ErrNotFound when no such user with this role
	}
	if !security.CheckPasswordHash(req.OldPassword, user.HashedPassword) {
		return fmt.Errorf("password incorrect: %w", common.ErrBadRequest)
	}

	hashed, err := security.HashPassword(req.NewPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	return s.userRepo.UpdatePassword(ctx, user.ID, hashed)
}

type UserListing struct {
	Users []model.User `json:"users"`
	Count int          `json:"count"`
}

// ListUsers pages through users of one role with an optional typed filter.
func (s *AuthService) ListUsers(ctx context.Context, role model.Role, filter repository.UserFilter, page, limit int) (*UserListing, error) {
	if !role.Valid() {
		return nil, fmt.Errorf("unknown role %q: %w", role, common.ErrBadRequest)
	}
	if page < 0 {
		page = 0
	}
	if limit <= 0 || limit > 100 {
		limit = 10
	}

	users, count, err := s.userRepo.List(ctx, role, filter, page, limit)
	if err != nil {
		return nil, err
	}
	for i := range users {
		users[i].HashedPassword = ""
	}
	return &UserListing{Users: users, Count: count}, nil
}
