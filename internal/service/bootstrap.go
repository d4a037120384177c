package service

import (
	"context"

	"go.uber.org/zap"

	"go-signage-cms/internal/domain"
	"go-signage-cms/internal/repo"
	"go-signage-cms/pkg/utils"
)

// Bootstrap 首次启动播种：默认设置 + 默认管理员。幂等，重启不覆盖
type Bootstrap struct {
	users    *repo.UserRepo
	settings *repo.SettingRepo
	log      *zap.Logger
}

func NewBootstrap(users *repo.UserRepo, settings *repo.SettingRepo, log *zap.Logger) *Bootstrap {
	return &Bootstrap{users: users, settings: settings, log: log}
}

func (b *Bootstrap) Run(ctx context.Context, adminEmail, adminPassword, adminName string) error {
	if err := b.settings.SeedDefaults(ctx, domain.DefaultSettings); err != nil {
		return err
	}

	n, err := b.users.Count(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	admin := &domain.User{
		ID:           utils.NewID(),
		Email:        adminEmail,
		Name:         adminName,
		PasswordHash: utils.HashPassword(adminPassword),
		Role:         domain.RoleAdmin,
		IsActive:     true,
	}
	if err := b.users.Create(ctx, admin); err != nil {
		return err
	}
	b.log.Info("default admin created, change the password",
		zap.String("email", adminEmail))
	return nil
}
