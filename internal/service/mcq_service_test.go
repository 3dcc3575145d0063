package service_test

import (
	"context"
	"testing"

	"code_practice_backend/internal/model"
	"code_practice_backend/internal/service"
	"code_practice_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeQuestionStore struct {
	questions map[uint]*model.MCQQuestion
}

func (s *fakeQuestionStore) FindByID(_ context.Context, id uint) (*model.MCQQuestion, error) {
	q, ok := s.questions[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return q, nil
}

func bigOQuestion() *model.MCQQuestion {
	return &model.MCQQuestion{
		BaseModel:     model.BaseModel{ID: 3},
		Title:         "What is the time complexity of binary search?",
		Options:       model.StringList{"O(n)", "O(log n)", "O(n log n)", "O(1)"},
		CorrectAnswer: "O(log n)",
		Explanation:   "Each comparison halves the remaining search space.",
		Points:        5,
	}
}

func newMCQService(progress *fakeProgressStore, checker *fakeChecker) *service.MCQService {
	questions := &fakeQuestionStore{questions: map[uint]*model.MCQQuestion{3: bigOQuestion()}}
	return service.NewMCQService(questions, progress, checker)
}

func TestAnswer_Correct(t *testing.T) {
	progress := newFakeProgressStore()
	checker := &fakeChecker{newly: []string{"first_solve"}}
	svc := newMCQService(progress, checker)

	result, err := svc.Answer(context.Background(), 1, 3, "O(log n)")
	require.NoError(t, err)

	assert.True(t, result.Correct)
	assert.Equal(t, "Each comparison halves the remaining search space.", result.Explanation)
	assert.Equal(t, []string{"first_solve"}, result.NewlyUnlocked)
	assert.Equal(t, 1, checker.calls)

	row, err := progress.FindByUserAndQuestion(context.Background(), 1, 3, model.QuestionTypeMCQ)
	require.NoError(t, err)
	assert.True(t, row.Completed)
	assert.Equal(t, 5, row.Score)
	assert.Equal(t, 1, row.Attempts)
	assert.Equal(t, "O(log n)", row.Solution)
}

func TestAnswer_Incorrect(t *testing.T) {
	progress := newFakeProgressStore()
	checker := &fakeChecker{}
	svc := newMCQService(progress, checker)

	result, err := svc.Answer(context.Background(), 1, 3, "O(n)")
	require.NoError(t, err)

	assert.False(t, result.Correct)
	assert.Empty(t, result.Explanation, "explanation is withheld until the answer is correct")
	assert.Equal(t, 0, checker.calls)

	row, err := progress.FindByUserAndQuestion(context.Background(), 1, 3, model.QuestionTypeMCQ)
	require.NoError(t, err)
	assert.False(t, row.Completed)
	assert.Equal(t, 0, row.Score)
	assert.Equal(t, 1, row.Attempts)
}

func TestAnswer_AttemptsAccumulateAcrossCalls(t *testing.T) {
	progress := newFakeProgressStore()
	svc := newMCQService(progress, &fakeChecker{})

	_, err := svc.Answer(context.Background(), 1, 3, "O(n)")
	require.NoError(t, err)
	_, err = svc.Answer(context.Background(), 1, 3, "O(log n)")
	require.NoError(t, err)
	_, err = svc.Answer(context.Background(), 1, 3, "O(1)")
	require.NoError(t, err)

	require.Len(t, progress.rows, 1)
	row, err := progress.FindByUserAndQuestion(context.Background(), 1, 3, model.QuestionTypeMCQ)
	require.NoError(t, err)
	assert.Equal(t, 3, row.Attempts, "every graded answer counts one attempt")
	assert.False(t, row.Completed, "a later wrong answer flips completion back")
}

func TestAnswer_QuestionMissing(t *testing.T) {
	svc := newMCQService(newFakeProgressStore(), &fakeChecker{})

	_, err := svc.Answer(context.Background(), 1, 99, "O(n)")
	require.ErrorIs(t, err, util.ErrQuestionNotFound)
}

func TestAnswer_AchievementFailureIsSwallowed(t *testing.T) {
	progress := newFakeProgressStore()
	checker := &fakeChecker{err: assert.AnError}
	svc := newMCQService(progress, checker)

	result, err := svc.Answer(context.Background(), 1, 3, "O(log n)")
	require.NoError(t, err)
	assert.True(t, result.Correct)
	assert.Empty(t, result.NewlyUnlocked)
}
