package repository

import (
	"code_practice_backend/internal/model"
	"context"

	"gorm.io/gorm"
)

type AchievementRepository struct {
	DB *gorm.DB
}

func NewAchievementRepository(db *gorm.DB) *AchievementRepository {
	return &AchievementRepository{DB: db}
}

func (r *AchievementRepository) FindByUserID(ctx context.Context, userID uint) ([]model.Achievement, error) {
	var achievements []model.Achievement
	err := r.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("achieved_on").
		Find(&achievements).Error
	if err != nil {
		return nil, err
	}
	return achievements, nil
}

func (r *AchievementRepository) FindTypesByUserID(ctx context.Context, userID uint) ([]string, error) {
	var types []string
	err := r.DB.WithContext(ctx).Model(&model.Achievement{}).
		Where("user_id = ?", userID).
		Pluck("type", &types).Error
	if err != nil {
		return nil, err
	}
	return types, nil
}

// Create 插入一条解锁记录。(user_id, type) 唯一索引兜底，
// 重复插入返回唯一约束冲突。
func (r *AchievementRepository) Create(ctx context.Context, achievement *model.Achievement) error {
	return r.DB.WithContext(ctx).Create(achievement).Error
}
