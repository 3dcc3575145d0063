package repository

import (
	"code_practice_backend/internal/model"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
)

const problemCacheTTL = 10 * time.Minute

// CodingProblemRepository 题目只读仓库。单题读取走 Redis 读穿缓存，
// 题目对评测而言不可变，缓存不需要失效逻辑。
type CodingProblemRepository struct {
	DB    *gorm.DB
	Redis *redis.Client
}

func NewCodingProblemRepository(db *gorm.DB, rdb *redis.Client) *CodingProblemRepository {
	return &CodingProblemRepository{DB: db, Redis: rdb}
}

func problemCacheKey(id uint) string {
	return fmt.Sprintf("coding_problem:%d", id)
}

func (r *CodingProblemRepository) FindByID(ctx context.Context, id uint) (*model.CodingProblem, error) {
	if r.Redis != nil {
		val, err := r.Redis.Get(ctx, problemCacheKey(id)).Result()
		if err == nil {
			var cached model.CodingProblem
			if err := json.Unmarshal([]byte(val), &cached); err == nil {
				return &cached, nil
			}
			// 缓存内容损坏时回源
		}
	}

	var problem model.CodingProblem
	if err := r.DB.WithContext(ctx).First(&problem, id).Error; err != nil {
		return nil, err
	}

	if r.Redis != nil {
		if data, err := json.Marshal(&problem); err == nil {
			r.Redis.Set(ctx, problemCacheKey(id), data, problemCacheTTL)
		}
	}

	return &problem, nil
}

func (r *CodingProblemRepository) List(ctx context.Context, page, limit int) ([]model.CodingProblem, int64, error) {
	var problems []model.CodingProblem
	var total int64

	if err := r.DB.WithContext(ctx).Model(&model.CodingProblem{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := r.DB.WithContext(ctx).
		Select("id", "created_at", "updated_at", "title", "description", "difficulty", "points").
		Order("id").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&problems).Error
	if err != nil {
		return nil, 0, err
	}

	return problems, total, nil
}

type MCQQuestionRepository struct {
	DB *gorm.DB
}

func NewMCQQuestionRepository(db *gorm.DB) *MCQQuestionRepository {
	return &MCQQuestionRepository{DB: db}
}

func (r *MCQQuestionRepository) FindByID(ctx context.Context, id uint) (*model.MCQQuestion, error) {
	var question model.MCQQuestion
	if err := r.DB.WithContext(ctx).First(&question, id).Error; err != nil {
		return nil, err
	}
	return &question, nil
}

func (r *MCQQuestionRepository) List(ctx context.Context, page, limit int) ([]model.MCQQuestion, int64, error) {
	var questions []model.MCQQuestion
	var total int64

	if err := r.DB.WithContext(ctx).Model(&model.MCQQuestion{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := r.DB.WithContext(ctx).
		Order("id").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&questions).Error
	if err != nil {
		return nil, 0, err
	}

	return questions, total, nil
}
