package service

import (
	"code_practice_backend/internal/model"
	"code_practice_backend/internal/repository"
	"code_practice_backend/internal/util"
	"code_practice_backend/pkg/logger"
	"code_practice_backend/pkg/monitoring"
	"code_practice_backend/pkg/provisioner"
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// 核心服务依赖的窄接口，gorm 仓库是生产实现，测试用内存假件
type problemStore interface {
	FindByID(ctx context.Context, id uint) (*model.CodingProblem, error)
}

type progressStore interface {
	FindByID(ctx context.Context, id uint) (*model.UserProgress, error)
	FindByUserAndQuestion(ctx context.Context, userID, questionID uint, questionType model.QuestionType) (*model.UserProgress, error)
	Create(ctx context.Context, progress *model.UserProgress) error
	ApplyRunResult(ctx context.Context, id uint, version uint64, upd repository.RunUpdate) error
	SaveSolution(ctx context.Context, id uint, solution, language string, at time.Time) error
}

type caseRunner interface {
	Run(ctx context.Context, problem *model.CodingProblem, code, language string) ([]model.CaseResult, error)
}

type achievementChecker interface {
	CheckAndUnlock(ctx context.Context, userID uint) ([]string, error)
}

// EvaluationOutcome 一次评测暴露给上层的全部结果
type EvaluationOutcome struct {
	AllPassed     bool               `json:"allPassed"`
	Score         int                `json:"score"`
	CaseResults   []model.CaseResult `json:"caseResults"`
	NewlyUnlocked []string           `json:"newlyUnlocked"`
}

// EvaluationService 评测编排：校验前置条件、包装代码、驱动
// TestCaseRunner、聚合通过情况、落库进度，最后尽力触发成就检查。
type EvaluationService struct {
	problems     problemStore
	progress     progressStore
	runner       caseRunner
	achievements achievementChecker
	runTimeout   time.Duration
}

func NewEvaluationService(
	problems problemStore,
	progress progressStore,
	runner caseRunner,
	achievements achievementChecker,
	runTimeout time.Duration,
) *EvaluationService {
	return &EvaluationService{
		problems:     problems,
		progress:     progress,
		runner:       runner,
		achievements: achievements,
		runTimeout:   runTimeout,
	}
}

// casConflictRetries 乐观锁冲突时的重读重放次数上限
const casConflictRetries = 3

// Evaluate 评测一次提交。
//
// 传输层错误（提交被拒、网络失败、超时）终止整次评测且不产生
// 任何进度写入；进度写入成功后成就检查失败只记日志不回滚——
// 评测与成就解锁不在一个事务里，后续任何一次通过的提交都会
// 基于当时的快照重新触发检查。
func (s *EvaluationService) Evaluate(ctx context.Context, userID, problemID uint, code, language string) (*EvaluationOutcome, error) {
	problem, err := s.problems.FindByID(ctx, problemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrProblemNotFound
		}
		return nil, err
	}
	if !problem.Ready() {
		return nil, util.ErrNotReady
	}

	// 进度行先于判题物化：评测的权威写入只按 id 寻址
	progressID, err := s.provisionProgress(ctx, userID, problem, language)
	if err != nil {
		return nil, err
	}

	runID := uuid.NewString()
	start := time.Now()
	logger.Log.Info("evaluation started",
		zap.String("run_id", runID),
		zap.Uint("user_id", userID),
		zap.Uint("problem_id", problemID),
		zap.String("language", language),
		zap.Int("cases", len(problem.TestCases)),
	)

	runCtx, cancel := context.WithTimeout(ctx, s.runTimeout)
	defer cancel()

	results, err := s.runner.Run(runCtx, problem, code, language)
	if err != nil {
		monitoring.EvaluationCounter.WithLabelValues("aborted").Inc()
		logger.Log.Warn("evaluation aborted",
			zap.String("run_id", runID),
			zap.Error(err),
		)
		return nil, err
	}

	allPassed := true
	for _, r := range results {
		if !r.Passed {
			allPassed = false
			break
		}
	}

	score := 0
	if allPassed {
		score = problem.Points
	}

	update := repository.RunUpdate{
		Completed:       allPassed,
		Score:           score,
		Solution:        code,
		Language:        language,
		LastAttemptedAt: time.Now(),
	}
	if err := applyRunWithRetry(ctx, s.progress, progressID, update); err != nil {
		return nil, err
	}

	outcome := &EvaluationOutcome{
		AllPassed:   allPassed,
		Score:       score,
		CaseResults: results,
	}

	if allPassed {
		newly, err := s.achievements.CheckAndUnlock(ctx, userID)
		if err != nil {
			// 尽力而为：成就解锁失败不影响已成功的评测
			logger.Log.Error("achievement check failed after passing evaluation",
				zap.String("run_id", runID),
				zap.Uint("user_id", userID),
				zap.Error(err),
			)
		} else {
			outcome.NewlyUnlocked = newly
		}
	}

	result := "failed"
	if allPassed {
		result = "passed"
	}
	monitoring.EvaluationCounter.WithLabelValues(result).Inc()
	monitoring.EvaluationDuration.Observe(time.Since(start).Seconds())

	logger.Log.Info("evaluation finished",
		zap.String("run_id", runID),
		zap.Bool("all_passed", allPassed),
		zap.Int("score", score),
		zap.Duration("took", time.Since(start)),
	)

	return outcome, nil
}

// SaveSolution 只保存代码和语言，不触碰完成状态/分数/尝试次数
func (s *EvaluationService) SaveSolution(ctx context.Context, userID, problemID uint, code, language string) error {
	problem, err := s.problems.FindByID(ctx, problemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return util.ErrProblemNotFound
		}
		return err
	}

	progressID, err := s.provisionProgress(ctx, userID, problem, language)
	if err != nil {
		return err
	}

	return s.progress.SaveSolution(ctx, progressID, code, language, time.Now())
}

// GetProgress 返回用户在某道编程题上的进度行（不存在则懒创建）
func (s *EvaluationService) GetProgress(ctx context.Context, userID, problemID uint) (*model.UserProgress, error) {
	problem, err := s.problems.FindByID(ctx, problemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrProblemNotFound
		}
		return nil, err
	}

	progressID, err := s.provisionProgress(ctx, userID, problem, "javascript")
	if err != nil {
		return nil, err
	}

	return s.progress.FindByID(ctx, progressID)
}

func (s *EvaluationService) provisionProgress(ctx context.Context, userID uint, problem *model.CodingProblem, language string) (uint, error) {
	return provisionProgressRow(ctx, s.progress, provisionSpec{
		userID:       userID,
		questionID:   problem.ID,
		questionType: model.QuestionTypeCoding,
		solution:     starterCodeFor(problem, language),
		language:     language,
	})
}

// 起始代码：题目按语言给了就用题目的，否则退回固定模板
func starterCodeFor(problem *model.CodingProblem, language string) string {
	if code, ok := problem.StarterCode[language]; ok && code != "" {
		return code
	}
	return defaultStarterTemplate(language)
}

func defaultStarterTemplate(language string) string {
	switch language {
	case "python":
		return "def solution(input):\n    # Your code here\n    pass"
	case "java":
		return "public class Solution {\n    public static void main(String[] args) {\n        // Your code here\n    }\n}"
	default:
		return "function solution(input) {\n  // Your code here\n}"
	}
}

type provisionSpec struct {
	userID       uint
	questionID   uint
	questionType model.QuestionType
	solution     string
	language     string
}

// provisionProgressRow (用户, 题目, 题型) 进度行的幂等物化，
// 评测路径和选择题路径共用。
func provisionProgressRow(ctx context.Context, store progressStore, spec provisionSpec) (uint, error) {
	return provisioner.GetOrCreate(ctx,
		func(ctx context.Context) (uint, bool, error) {
			row, err := store.FindByUserAndQuestion(ctx, spec.userID, spec.questionID, spec.questionType)
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return 0, false, nil
			}
			if err != nil {
				return 0, false, err
			}
			return row.ID, true, nil
		},
		func(ctx context.Context) (uint, error) {
			row := &model.UserProgress{
				UserID:          spec.userID,
				QuestionID:      spec.questionID,
				QuestionType:    spec.questionType,
				Solution:        spec.solution,
				Language:        spec.language,
				LastAttemptedAt: time.Now(),
			}
			if err := store.Create(ctx, row); err != nil {
				return 0, err
			}
			return row.ID, nil
		},
	)
}
