package repository

import (
	"code_practice_backend/internal/model"
	"context"

	"gorm.io/gorm"
)

type DiscussionRepository struct {
	DB *gorm.DB
}

func NewDiscussionRepository(db *gorm.DB) *DiscussionRepository {
	return &DiscussionRepository{DB: db}
}

func (r *DiscussionRepository) FindByProblem(ctx context.Context, problemID uint, problemType model.QuestionType) (*model.Discussion, error) {
	var discussion model.Discussion
	err := r.DB.WithContext(ctx).
		Where("problem_id = ? AND problem_type = ?", problemID, problemType).
		First(&discussion).Error
	if err != nil {
		return nil, err
	}
	return &discussion, nil
}

func (r *DiscussionRepository) FindByID(ctx context.Context, id uint) (*model.Discussion, error) {
	var discussion model.Discussion
	if err := r.DB.WithContext(ctx).First(&discussion, id).Error; err != nil {
		return nil, err
	}
	return &discussion, nil
}

func (r *DiscussionRepository) Create(ctx context.Context, discussion *model.Discussion) error {
	return r.DB.WithContext(ctx).Create(discussion).Error
}

func (r *DiscussionRepository) ListComments(ctx context.Context, discussionID uint) ([]model.Comment, error) {
	var comments []model.Comment
	err := r.DB.WithContext(ctx).
		Where("discussion_id = ?", discussionID).
		Order("created_at").
		Find(&comments).Error
	if err != nil {
		return nil, err
	}
	return comments, nil
}

func (r *DiscussionRepository) CreateComment(ctx context.Context, comment *model.Comment) error {
	return r.DB.WithContext(ctx).Create(comment).Error
}
