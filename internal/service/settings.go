package service

import (
	"context"

	"go.uber.org/zap"

	"go-signage-cms/internal/domain"
	"go-signage-cms/internal/repo"
)

type SettingsService struct {
	settings *repo.SettingRepo
	log      *zap.Logger
}

func NewSettingsService(settings *repo.SettingRepo, log *zap.Logger) *SettingsService {
	return &SettingsService{settings: settings, log: log}
}

// All 库里的值盖在文档默认值上；缺 key 永远不是错误
func (s *SettingsService) All(ctx context.Context) (map[string]string, error) {
	out := make(map[string]string, len(domain.DefaultSettings))
	for k, v := range domain.DefaultSettings {
		out[k] = v
	}
	stored, err := s.settings.All(ctx)
	if err != nil {
		return nil, domain.Storage("load settings failed", err)
	}
	for k, v := range stored {
		out[k] = v
	}
	return out, nil
}

// SetMany 每个 key 一次独立的原子 upsert。
// 某个 key 失败不回滚已写入的 key（语义见文档），失败的继续往后写
func (s *SettingsService) SetMany(ctx context.Context, values map[string]string) error {
	var firstErr error
	for k, v := range values {
		if k == "" {
			if firstErr == nil {
				firstErr = domain.Validation("setting key must not be empty")
			}
			continue
		}
		if err := s.settings.Upsert(ctx, k, v); err != nil {
			s.log.Error("upsert setting", zap.String("key", k), zap.Error(err))
			if firstErr == nil {
				firstErr = domain.Storage("update setting "+k+" failed", err)
			}
		}
	}
	return firstErr
}

func (s *SettingsService) SetLogo(ctx context.Context, path string) error {
	if err := s.settings.Upsert(ctx, "company_logo", path); err != nil {
		return domain.Storage("update logo failed", err)
	}
	return nil
}
