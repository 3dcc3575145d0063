package service

import (
	"code_practice_backend/internal/model"
	"code_practice_backend/internal/util"
	"code_practice_backend/pkg/provisioner"
	"context"
	"errors"

	"gorm.io/gorm"
)

type discussionStore interface {
	FindByProblem(ctx context.Context, problemID uint, problemType model.QuestionType) (*model.Discussion, error)
	FindByID(ctx context.Context, id uint) (*model.Discussion, error)
	Create(ctx context.Context, discussion *model.Discussion) error
	ListComments(ctx context.Context, discussionID uint) ([]model.Comment, error)
	CreateComment(ctx context.Context, comment *model.Comment) error
}

// DiscussionService 每道题一个讨论串，首次访问懒创建。
// 与进度行共用同一个幂等物化原语。
type DiscussionService struct {
	discussions discussionStore
}

func NewDiscussionService(discussions discussionStore) *DiscussionService {
	return &DiscussionService{discussions: discussions}
}

func (s *DiscussionService) GetOrCreateThread(ctx context.Context, problemID uint, problemType model.QuestionType, userID uint) (*model.Discussion, error) {
	id, err := provisioner.GetOrCreate(ctx,
		func(ctx context.Context) (uint, bool, error) {
			discussion, err := s.discussions.FindByProblem(ctx, problemID, problemType)
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return 0, false, nil
			}
			if err != nil {
				return 0, false, err
			}
			return discussion.ID, true, nil
		},
		func(ctx context.Context) (uint, error) {
			discussion := &model.Discussion{
				ProblemID:   problemID,
				ProblemType: problemType,
				Title:       "Discussion",
				CreatedBy:   userID,
			}
			if err := s.discussions.Create(ctx, discussion); err != nil {
				return 0, err
			}
			return discussion.ID, nil
		},
	)
	if err != nil {
		return nil, err
	}

	return s.discussions.FindByID(ctx, id)
}

func (s *DiscussionService) ListComments(ctx context.Context, discussionID uint) ([]model.Comment, error) {
	if _, err := s.discussions.FindByID(ctx, discussionID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrDiscussionNotFound
		}
		return nil, err
	}
	return s.discussions.ListComments(ctx, discussionID)
}

func (s *DiscussionService) AddComment(ctx context.Context, discussionID, userID uint, content string) (*model.Comment, error) {
	if _, err := s.discussions.FindByID(ctx, discussionID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrDiscussionNotFound
		}
		return nil, err
	}

	comment := &model.Comment{
		DiscussionID: discussionID,
		UserID:       userID,
		Content:      content,
	}
	if err := s.discussions.CreateComment(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}
