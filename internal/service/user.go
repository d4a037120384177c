package service

import (
	"context"
	"strings"

	"go-signage-cms/internal/domain"
	"go-signage-cms/internal/repo"
	"go-signage-cms/pkg/utils"
)

type UserService struct {
	users *repo.UserRepo
}

func NewUserService(users *repo.UserRepo) *UserService { return &UserService{users: users} }

// Login 不区分“没这人”和“密码错”，一律 invalid credentials
func (s *UserService) Login(ctx context.Context, email, password string) (*domain.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, domain.Validation("email and password are required")
	}
	u, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, domain.Storage("load user failed", err)
	}
	if u == nil || !utils.CheckPassword(password, u.PasswordHash) {
		return nil, domain.Unauthorized("invalid credentials")
	}
	if !u.IsActive {
		return nil, domain.Unauthorized("account disabled")
	}
	_ = s.users.TouchLogin(ctx, u.ID)
	return u, nil
}

func (s *UserService) Me(ctx context.Context, p domain.Principal) (*domain.User, error) {
	u, err := s.users.FindByID(ctx, p.ID)
	if err != nil {
		return nil, domain.Storage("load user failed", err)
	}
	if u == nil {
		return nil, domain.NotFound("user not found")
	}
	return u, nil
}

func (s *UserService) List(ctx context.Context) ([]domain.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, domain.Storage("list users failed", err)
	}
	return users, nil
}

type CreateUserInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
	Name     string `json:"name"`
	Role     string `json:"role"`
}

func (s *UserService) Create(ctx context.Context, in CreateUserInput) (*domain.User, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email == "" || in.Password == "" {
		return nil, domain.Validation("email and password are required")
	}
	if len(in.Password) < 8 {
		return nil, domain.Validation("password must be at least 8 characters")
	}
	role := in.Role
	if role == "" {
		role = domain.RoleUser
	}
	if !domain.ValidRole(role) {
		return nil, domain.Validation("invalid role")
	}

	u := &domain.User{
		ID:           utils.NewID(),
		Email:        email,
		Name:         strings.TrimSpace(in.Name),
		PasswordHash: utils.HashPassword(in.Password),
		Role:         role,
		IsActive:     true,
	}
	if err := s.users.Create(ctx, u); err != nil {
		if isDupKey(err) {
			return nil, domain.Conflict("user with this email already exists")
		}
		return nil, domain.Storage("create user failed", err)
	}
	return u, nil
}

// UpdateRole 管理员也改不了自己的角色，防止把最后一个 admin 降没
func (s *UserService) UpdateRole(ctx context.Context, p domain.Principal, id, role string) (*domain.User, error) {
	if !domain.ValidRole(role) {
		return nil, domain.Validation("invalid role")
	}
	if id == p.ID {
		return nil, domain.Forbidden("cannot change your own role")
	}
	return s.patch(ctx, id, map[string]any{"role": role})
}

func (s *UserService) UpdateStatus(ctx context.Context, p domain.Principal, id string, active bool) (*domain.User, error) {
	if id == p.ID {
		return nil, domain.Forbidden("cannot change your own status")
	}
	return s.patch(ctx, id, map[string]any{"is_active": active})
}

func (s *UserService) Delete(ctx context.Context, p domain.Principal, id string) error {
	if id == p.ID {
		return domain.Forbidden("cannot delete your own account")
	}
	affected, err := s.users.Delete(ctx, id)
	if err != nil {
		return domain.Storage("delete user failed", err)
	}
	if affected == 0 {
		return domain.NotFound("user not found")
	}
	return nil
}

// ChangePassword 普通用户只能改自己的且要验旧密码；管理员可以直接重置别人的
func (s *UserService) ChangePassword(ctx context.Context, p domain.Principal, id, current, next string) error {
	if next == "" {
		return domain.Validation("new password is required")
	}
	if len(next) < 8 {
		return domain.Validation("password must be at least 8 characters")
	}
	if id != p.ID && !p.IsAdmin() {
		return domain.Forbidden("cannot change another user's password")
	}
	if !p.IsAdmin() {
		u, err := s.users.FindByID(ctx, id)
		if err != nil {
			return domain.Storage("load user failed", err)
		}
		if u == nil {
			return domain.NotFound("user not found")
		}
		if !utils.CheckPassword(current, u.PasswordHash) {
			return domain.Unauthorized("current password is incorrect")
		}
	}
	affected, err := s.users.UpdateFields(ctx, id, map[string]any{"password_hash": utils.HashPassword(next)})
	if err != nil {
		return domain.Storage("update password failed", err)
	}
	if affected == 0 {
		return domain.NotFound("user not found")
	}
	return nil
}

func (s *UserService) patch(ctx context.Context, id string, fields map[string]any) (*domain.User, error) {
	affected, err := s.users.UpdateFields(ctx, id, fields)
	if err != nil {
		return nil, domain.Storage("update user failed", err)
	}
	if affected == 0 {
		return nil, domain.NotFound("user not found")
	}
	u, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, domain.Storage("load user failed", err)
	}
	return u, nil
}
