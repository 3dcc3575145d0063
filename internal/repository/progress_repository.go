package repository

import (
	"code_practice_backend/internal/model"
	"code_practice_backend/internal/util"
	"context"
	"time"

	"gorm.io/gorm"
)

type ProgressRepository struct {
	DB *gorm.DB
}

func NewProgressRepository(db *gorm.DB) *ProgressRepository {
	return &ProgressRepository{DB: db}
}

func (r *ProgressRepository) FindByID(ctx context.Context, id uint) (*model.UserProgress, error) {
	var progress model.UserProgress
	if err := r.DB.WithContext(ctx).First(&progress, id).Error; err != nil {
		return nil, err
	}
	return &progress, nil
}

func (r *ProgressRepository) FindByUserAndQuestion(ctx context.Context, userID, questionID uint, questionType model.QuestionType) (*model.UserProgress, error) {
	var progress model.UserProgress
	err := r.DB.WithContext(ctx).
		Where("user_id = ? AND question_id = ? AND question_type = ?", userID, questionID, questionType).
		First(&progress).Error
	if err != nil {
		return nil, err
	}
	return &progress, nil
}

func (r *ProgressRepository) FindAllByUser(ctx context.Context, userID uint) ([]model.UserProgress, error) {
	var rows []model.UserProgress
	err := r.DB.WithContext(ctx).Where("user_id = ?", userID).Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *ProgressRepository) Create(ctx context.Context, progress *model.UserProgress) error {
	return r.DB.WithContext(ctx).Create(progress).Error
}

// RunUpdate 一次判题后对进度行的权威写入
type RunUpdate struct {
	Completed       bool
	Score           int
	Solution        string
	Language        string
	LastAttemptedAt time.Time
}

// ApplyRunResult 以乐观锁写入判题结果：只有版本号未变时才生效，
// attempts 在数据库侧自增，保证单调不减。并发评测同一行时输家
// 拿到 ErrProgressConflict，由调用方决定重读重放。
func (r *ProgressRepository) ApplyRunResult(ctx context.Context, id uint, version uint64, upd RunUpdate) error {
	res := r.DB.WithContext(ctx).Model(&model.UserProgress{}).
		Where("id = ? AND version = ?", id, version).
		Updates(map[string]interface{}{
			"completed":         upd.Completed,
			"score":             upd.Score,
			"attempts":          gorm.Expr("attempts + 1"),
			"solution":          upd.Solution,
			"language":          upd.Language,
			"last_attempted_at": upd.LastAttemptedAt,
			"version":           version + 1,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return util.ErrProgressConflict
	}
	return nil
}

// SaveSolution "保存"与"判题"是两个写路径：保存只动
// solution/language/时间戳，不碰 completed/score/attempts。
func (r *ProgressRepository) SaveSolution(ctx context.Context, id uint, solution, language string, at time.Time) error {
	return r.DB.WithContext(ctx).Model(&model.UserProgress{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"solution":          solution,
			"language":          language,
			"last_attempted_at": at,
		}).Error
}
