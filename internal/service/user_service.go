package service

import (
	"context"
	"strings"

	"critique/internal/models"
	"critique/internal/policy"
	"critique/internal/repository"
	"critique/internal/validation"

	"github.com/google/uuid"
)

// UserService is the admin user-management surface plus the self endpoint.
type UserService struct {
	users repository.UserRepository
}

type CreateUserInput struct {
	Username  string      `json:"username" validate:"required,max=150,notme,username"`
	Email     string      `json:"email" validate:"required,max=254,email"`
	FirstName string      `json:"first_name" validate:"max=150"`
	LastName  string      `json:"last_name" validate:"max=150"`
	Bio       string      `json:"bio"`
	Role      models.Role `json:"role" validate:"omitempty,role"`
}

// UpdateUserInput is a partial update; nil fields are left alone.
type UpdateUserInput struct {
	Username  *string      `json:"username" validate:"omitempty,max=150,notme,username"`
	Email     *string      `json:"email" validate:"omitempty,max=254,email"`
	FirstName *string      `json:"first_name" validate:"omitempty,max=150"`
	LastName  *string      `json:"last_name" validate:"omitempty,max=150"`
	Bio       *string      `json:"bio"`
	Role      *models.Role `json:"role" validate:"omitempty,role"`
}

func NewUserService(users repository.UserRepository) *UserService {
	return &UserService{users: users}
}

// newSecurityStamp returns a fresh salt for confirmation codes.
func newSecurityStamp() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// AuthorizeAdmin is the class-level check of the user administration surface.
func (s *UserService) AuthorizeAdmin(actor policy.Principal, action policy.Action) error {
	return requireRole(actor, policy.Users, action)
}

// AuthorizeUpdate runs the access checks of UpdateUser: admin role, then
// existence of the target.
func (s *UserService) AuthorizeUpdate(ctx context.Context, actor policy.Principal, username string) (*models.User, error) {
	if err := s.AuthorizeAdmin(actor, policy.Modify); err != nil {
		return nil, err
	}
	return s.users.GetByUsername(ctx, username)
}

// AuthorizeSelf checks that actor may edit their own profile.
func (s *UserService) AuthorizeSelf(actor policy.Principal) error {
	return requireRole(actor, policy.Self, policy.Modify)
}

func (s *UserService) ListUsers(ctx context.Context, actor policy.Principal, search string, limit, offset int) ([]models.User, int64, error) {
	if err := requireRole(actor, policy.Users, policy.Read); err != nil {
		return nil, 0, err
	}
	return s.users.List(ctx, search, limit, offset)
}

func (s *UserService) GetUser(ctx context.Context, actor policy.Principal, username string) (*models.User, error) {
	if err := requireRole(actor, policy.Users, policy.Read); err != nil {
		return nil, err
	}
	return s.users.GetByUsername(ctx, username)
}

func (s *UserService) CreateUser(ctx context.Context, actor policy.Principal, in CreateUserInput) (*models.User, error) {
	if err := s.AuthorizeAdmin(actor, policy.Create); err != nil {
		return nil, err
	}
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	role := in.Role
	if role == "" {
		role = models.RoleUser
	}
	user := &models.User{
		Username:      in.Username,
		Email:         normalizeEmail(in.Email),
		FirstName:     in.FirstName,
		LastName:      in.LastName,
		Bio:           in.Bio,
		Role:          role,
		SecurityStamp: newSecurityStamp(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) UpdateUser(ctx context.Context, actor policy.Principal, username string, in UpdateUserInput) (*models.User, error) {
	user, err := s.AuthorizeUpdate(ctx, actor, username)
	if err != nil {
		return nil, err
	}
	return s.apply(ctx, user, in)
}

func (s *UserService) DeleteUser(ctx context.Context, actor policy.Principal, username string) error {
	if err := requireRole(actor, policy.Users, policy.Modify); err != nil {
		return err
	}
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return err
	}
	return s.users.Delete(ctx, user.ID)
}

func (s *UserService) GetMe(ctx context.Context, actor policy.Principal) (*models.User, error) {
	if err := requireRole(actor, policy.Self, policy.Read); err != nil {
		return nil, err
	}
	return s.users.GetByID(ctx, actor.UserID)
}

// UpdateMe applies a self-service update. Role is ignored so nobody can
// promote themselves.
func (s *UserService) UpdateMe(ctx context.Context, actor policy.Principal, in UpdateUserInput) (*models.User, error) {
	if err := s.AuthorizeSelf(actor); err != nil {
		return nil, err
	}
	user, err := s.users.GetByID(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	in.Role = nil
	return s.apply(ctx, user, in)
}

func (s *UserService) apply(ctx context.Context, user *models.User, in UpdateUserInput) (*models.User, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	if in.Username != nil {
		user.Username = *in.Username
	}
	if in.Email != nil {
		if email := normalizeEmail(*in.Email); email != user.Email {
			user.Email = email
			// codes sent to the old address stop working
			user.SecurityStamp = newSecurityStamp()
		}
	}
	if in.FirstName != nil {
		user.FirstName = *in.FirstName
	}
	if in.LastName != nil {
		user.LastName = *in.LastName
	}
	if in.Bio != nil {
		user.Bio = *in.Bio
	}
	if in.Role != nil {
		user.Role = *in.Role
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}
