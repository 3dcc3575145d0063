package service

import (
	"code_practice_backend/internal/model"
	"code_practice_backend/internal/repository"
	"code_practice_backend/internal/util"
	"code_practice_backend/pkg/logger"
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type questionStore interface {
	FindByID(ctx context.Context, id uint) (*model.MCQQuestion, error)
}

// MCQAnswerResult 选择题判定结果
type MCQAnswerResult struct {
	Correct       bool     `json:"correct"`
	Explanation   string   `json:"explanation,omitempty"`
	NewlyUnlocked []string `json:"newlyUnlocked"`
}

// MCQService 选择题作答。与评测路径共用进度行物化和
// attempts+1 的计数语义，答对后同样尽力触发成就检查。
type MCQService struct {
	questions    questionStore
	progress     progressStore
	achievements achievementChecker
}

func NewMCQService(questions questionStore, progress progressStore, achievements achievementChecker) *MCQService {
	return &MCQService{
		questions:    questions,
		progress:     progress,
		achievements: achievements,
	}
}

func (s *MCQService) Answer(ctx context.Context, userID, questionID uint, selected string) (*MCQAnswerResult, error) {
	question, err := s.questions.FindByID(ctx, questionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrQuestionNotFound
		}
		return nil, err
	}

	correct := selected == question.CorrectAnswer
	score := 0
	if correct {
		score = question.Points
	}

	progressID, err := provisionProgressRow(ctx, s.progress, provisionSpec{
		userID:       userID,
		questionID:   questionID,
		questionType: model.QuestionTypeMCQ,
	})
	if err != nil {
		return nil, err
	}

	update := repository.RunUpdate{
		Completed:       correct,
		Score:           score,
		Solution:        selected,
		LastAttemptedAt: time.Now(),
	}
	if err := applyRunWithRetry(ctx, s.progress, progressID, update); err != nil {
		return nil, err
	}

	result := &MCQAnswerResult{Correct: correct}
	if correct {
		result.Explanation = question.Explanation

		newly, err := s.achievements.CheckAndUnlock(ctx, userID)
		if err != nil {
			logger.Log.Error("achievement check failed after correct answer",
				zap.Uint("user_id", userID),
				zap.Uint("question_id", questionID),
				zap.Error(err),
			)
		} else {
			result.NewlyUnlocked = newly
		}
	}

	return result, nil
}

// applyRunWithRetry 乐观锁写入，冲突时重读版本号再放，有界重试。
// 并发写同一进度行时最终是后写者赢，但不会覆盖丢失中间版本。
func applyRunWithRetry(ctx context.Context, store progressStore, progressID uint, update repository.RunUpdate) error {
	var err error
	for attempt := 0; attempt <= casConflictRetries; attempt++ {
		var row *model.UserProgress
		row, err = store.FindByID(ctx, progressID)
		if err != nil {
			return err
		}
		err = store.ApplyRunResult(ctx, progressID, row.Version, update)
		if err == nil {
			return nil
		}
		if !errors.Is(err, util.ErrProgressConflict) {
			return err
		}
	}
	return err
}
