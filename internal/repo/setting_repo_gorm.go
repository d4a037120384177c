package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"go-signage-cms/internal/domain"
)

type SettingRepo struct{ db *gorm.DB }

func NewSettingRepo(db *gorm.DB) *SettingRepo { return &SettingRepo{db: db} }

func (r *SettingRepo) All(ctx context.Context) (map[string]string, error) {
	var rows []domain.Setting
	if err := r.db.WithContext(ctx).Order("key").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[string]string, len(rows))
	for _, s := range rows {
		out[s.Key] = s.Value
	}
	return out, nil
}

func (r *SettingRepo) Get(ctx context.Context, key string) (*domain.Setting, error) {
	var s domain.Setting
	err := r.db.WithContext(ctx).First(&s, "key = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &s, err
}

// Upsert 单 key 原子 upsert（ON CONFLICT DO UPDATE）
func (r *SettingRepo) Upsert(ctx context.Context, key, value string) error {
	s := domain.Setting{Key: key, Value: value}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&s).Error
}

// SeedDefaults 只补缺失的 key，已有值永不覆盖
func (r *SettingRepo) SeedDefaults(ctx context.Context, defaults map[string]string) error {
	for k, v := range defaults {
		s := domain.Setting{Key: k, Value: v}
		if err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoNothing: true,
		}).Create(&s).Error; err != nil {
			return err
		}
	}
	return nil
}
