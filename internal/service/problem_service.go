package service

import (
	"code_practice_backend/internal/model"
	"code_practice_backend/internal/repository"
	"code_practice_backend/internal/util"
	"context"
	"errors"

	"gorm.io/gorm"
)

// ProblemService 题库浏览，纯读
type ProblemService struct {
	problems  *repository.CodingProblemRepository
	questions *repository.MCQQuestionRepository
}

func NewProblemService(problems *repository.CodingProblemRepository, questions *repository.MCQQuestionRepository) *ProblemService {
	return &ProblemService{
		problems:  problems,
		questions: questions,
	}
}

func (s *ProblemService) ListCodingProblems(ctx context.Context, page, limit int) ([]model.CodingProblem, int64, error) {
	return s.problems.List(ctx, page, limit)
}

func (s *ProblemService) GetCodingProblem(ctx context.Context, id uint) (*model.CodingProblem, error) {
	problem, err := s.problems.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrProblemNotFound
		}
		return nil, err
	}
	return problem, nil
}

func (s *ProblemService) ListMCQQuestions(ctx context.Context, page, limit int) ([]model.MCQQuestion, int64, error) {
	return s.questions.List(ctx, page, limit)
}

func (s *ProblemService) GetMCQQuestion(ctx context.Context, id uint) (*model.MCQQuestion, error) {
	question, err := s.questions.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrQuestionNotFound
		}
		return nil, err
	}
	return question, nil
}
