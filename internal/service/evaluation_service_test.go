package service_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"code_practice_backend/internal/model"
	"code_practice_backend/internal/service"
	"code_practice_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fivePointProblem() *model.CodingProblem {
	return &model.CodingProblem{
		BaseModel: model.BaseModel{ID: 10},
		Title:     "Sum of two numbers",
		Points:    5,
		TestCases: model.JSONValues{
			json.RawMessage(`[1,3]`),
			json.RawMessage(`[2,2]`),
		},
		ExpectedOutputs: model.StringList{"4", "4"},
	}
}

func passedResults() []model.CaseResult {
	return []model.CaseResult{
		{Expected: "4", Actual: "4", Passed: true},
		{Expected: "4", Actual: "4", Passed: true},
	}
}

func newEvaluator(problem *model.CodingProblem, progress *fakeProgressStore, runner *fakeRunner, checker *fakeChecker) *service.EvaluationService {
	problems := &fakeProblemStore{problems: map[uint]*model.CodingProblem{}}
	if problem != nil {
		problems.problems[problem.ID] = problem
	}
	return service.NewEvaluationService(problems, progress, runner, checker, time.Minute)
}

func TestEvaluate_AllPassed(t *testing.T) {
	progress := newFakeProgressStore()
	runner := &fakeRunner{results: passedResults()}
	checker := &fakeChecker{newly: []string{"first_solve"}}
	evaluator := newEvaluator(fivePointProblem(), progress, runner, checker)

	outcome, err := evaluator.Evaluate(context.Background(), 1, 10, "function solution(input) {}", "javascript")
	require.NoError(t, err)

	assert.True(t, outcome.AllPassed)
	assert.Equal(t, 5, outcome.Score)
	assert.Len(t, outcome.CaseResults, 2)
	assert.Equal(t, []string{"first_solve"}, outcome.NewlyUnlocked)
	assert.Equal(t, 1, checker.calls)

	row, err := progress.FindByUserAndQuestion(context.Background(), 1, 10, model.QuestionTypeCoding)
	require.NoError(t, err)
	assert.True(t, row.Completed)
	assert.Equal(t, 5, row.Score)
	assert.Equal(t, 1, row.Attempts)
	assert.Equal(t, "function solution(input) {}", row.Solution)
	assert.Equal(t, "javascript", row.Language)
}

func TestEvaluate_AnyFailureScoresZero(t *testing.T) {
	results := passedResults()
	results[1].Passed = false
	results[1].Actual = "5"

	progress := newFakeProgressStore()
	runner := &fakeRunner{results: results}
	checker := &fakeChecker{}
	evaluator := newEvaluator(fivePointProblem(), progress, runner, checker)

	outcome, err := evaluator.Evaluate(context.Background(), 1, 10, "code", "javascript")
	require.NoError(t, err)

	assert.False(t, outcome.AllPassed)
	assert.Equal(t, 0, outcome.Score)
	assert.Equal(t, 0, checker.calls, "achievements only run on a fully passing submission")

	row, err := progress.FindByUserAndQuestion(context.Background(), 1, 10, model.QuestionTypeCoding)
	require.NoError(t, err)
	assert.False(t, row.Completed)
	assert.Equal(t, 0, row.Score)
	assert.Equal(t, 1, row.Attempts)
}

func TestEvaluate_ProblemMissing(t *testing.T) {
	evaluator := newEvaluator(nil, newFakeProgressStore(), &fakeRunner{}, &fakeChecker{})

	_, err := evaluator.Evaluate(context.Background(), 1, 10, "code", "javascript")
	require.ErrorIs(t, err, util.ErrProblemNotFound)
}

func TestEvaluate_NotReadyFailsFastWithoutSideEffects(t *testing.T) {
	problem := fivePointProblem()
	problem.ExpectedOutputs = model.StringList{"4"} // 与用例数不对齐

	progress := newFakeProgressStore()
	runner := &fakeRunner{results: passedResults()}
	evaluator := newEvaluator(problem, progress, runner, &fakeChecker{})

	_, err := evaluator.Evaluate(context.Background(), 1, 10, "code", "javascript")
	require.ErrorIs(t, err, util.ErrNotReady)
	assert.Equal(t, 0, runner.calls)
	assert.Empty(t, progress.rows, "precondition failure must not provision progress")
}

func TestEvaluate_TransportErrorSkipsPersistenceAndAchievements(t *testing.T) {
	progress := newFakeProgressStore()
	runner := &fakeRunner{err: util.ErrSubmissionRejected}
	checker := &fakeChecker{}
	evaluator := newEvaluator(fivePointProblem(), progress, runner, checker)

	_, err := evaluator.Evaluate(context.Background(), 1, 10, "my code", "javascript")
	require.ErrorIs(t, err, util.ErrSubmissionRejected)
	assert.Equal(t, 0, checker.calls)

	// 进度行已懒创建（首次访问语义），但本次评测没有任何权威写入
	row, err := progress.FindByUserAndQuestion(context.Background(), 1, 10, model.QuestionTypeCoding)
	require.NoError(t, err)
	assert.False(t, row.Completed)
	assert.Equal(t, 0, row.Attempts)
	assert.NotEqual(t, "my code", row.Solution)
}

func TestEvaluate_AchievementFailureIsSwallowed(t *testing.T) {
	progress := newFakeProgressStore()
	checker := &fakeChecker{err: assert.AnError}
	evaluator := newEvaluator(fivePointProblem(), progress, &fakeRunner{results: passedResults()}, checker)

	outcome, err := evaluator.Evaluate(context.Background(), 1, 10, "code", "javascript")
	require.NoError(t, err, "achievement failure must not fail the evaluation")
	assert.True(t, outcome.AllPassed)
	assert.Empty(t, outcome.NewlyUnlocked)

	row, err := progress.FindByUserAndQuestion(context.Background(), 1, 10, model.QuestionTypeCoding)
	require.NoError(t, err)
	assert.True(t, row.Completed, "progress write survives the failed achievement step")
}

func TestEvaluate_RetriesOnVersionConflict(t *testing.T) {
	progress := newFakeProgressStore()
	progress.conflictsLeft = 2
	evaluator := newEvaluator(fivePointProblem(), progress, &fakeRunner{results: passedResults()}, &fakeChecker{})

	outcome, err := evaluator.Evaluate(context.Background(), 1, 10, "code", "javascript")
	require.NoError(t, err)
	assert.True(t, outcome.AllPassed)

	row, err := progress.FindByUserAndQuestion(context.Background(), 1, 10, model.QuestionTypeCoding)
	require.NoError(t, err)
	assert.True(t, row.Completed)
}

func TestEvaluate_ReusesProvisionedProgressRow(t *testing.T) {
	progress := newFakeProgressStore()
	evaluator := newEvaluator(fivePointProblem(), progress, &fakeRunner{results: passedResults()}, &fakeChecker{})

	_, err := evaluator.Evaluate(context.Background(), 1, 10, "v1", "javascript")
	require.NoError(t, err)
	_, err = evaluator.Evaluate(context.Background(), 1, 10, "v2", "javascript")
	require.NoError(t, err)

	require.Len(t, progress.rows, 1, "repeat evaluations reuse the single progress row")
	row, err := progress.FindByUserAndQuestion(context.Background(), 1, 10, model.QuestionTypeCoding)
	require.NoError(t, err)
	assert.Equal(t, 2, row.Attempts)
	assert.Equal(t, "v2", row.Solution)
}

func TestSaveSolution_DoesNotTouchRunState(t *testing.T) {
	progress := newFakeProgressStore()
	evaluator := newEvaluator(fivePointProblem(), progress, &fakeRunner{results: passedResults()}, &fakeChecker{})

	_, err := evaluator.Evaluate(context.Background(), 1, 10, "passing code", "javascript")
	require.NoError(t, err)

	require.NoError(t, evaluator.SaveSolution(context.Background(), 1, 10, "draft code", "python"))

	row, err := progress.FindByUserAndQuestion(context.Background(), 1, 10, model.QuestionTypeCoding)
	require.NoError(t, err)
	assert.Equal(t, "draft code", row.Solution)
	assert.Equal(t, "python", row.Language)
	assert.True(t, row.Completed, "save must not reset completion")
	assert.Equal(t, 5, row.Score)
	assert.Equal(t, 1, row.Attempts)
}

func TestGetProgress_ProvisionsWithStarterCode(t *testing.T) {
	problem := fivePointProblem()
	problem.StarterCode = model.StringMap{"javascript": "function solution(input) {\n  // custom starter\n}"}

	progress := newFakeProgressStore()
	evaluator := newEvaluator(problem, progress, &fakeRunner{}, &fakeChecker{})

	row, err := evaluator.GetProgress(context.Background(), 7, 10)
	require.NoError(t, err)
	assert.Equal(t, problem.StarterCode["javascript"], row.Solution)
	assert.Equal(t, 0, row.Attempts)
	assert.False(t, row.Completed)
}
