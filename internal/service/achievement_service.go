package service

import (
	"code_practice_backend/internal/model"
	"code_practice_backend/pkg/logger"
	"code_practice_backend/pkg/provisioner"
	"context"
	"time"

	"go.uber.org/zap"
)

// ProgressSnapshot 用户全量进度的聚合视图，按需重算，从不落库
type ProgressSnapshot struct {
	Solved       int `json:"solved"`
	MCQSolved    int `json:"mcqSolved"`
	CodingSolved int `json:"codingSolved"`
	TotalPoints  int `json:"totalPoints"`
	ManyAttempts int `json:"manyAttempts"`
}

// SnapshotFromProgress 从进度行聚合快照。
// ManyAttempts 统计尝试次数 >= 3 的题目数。
func SnapshotFromProgress(rows []model.UserProgress) ProgressSnapshot {
	var snap ProgressSnapshot
	for _, row := range rows {
		if row.Completed {
			snap.Solved++
			switch row.QuestionType {
			case model.QuestionTypeMCQ:
				snap.MCQSolved++
			case model.QuestionTypeCoding:
				snap.CodingSolved++
			}
		}
		snap.TotalPoints += row.Score
		if row.Attempts >= 3 {
			snap.ManyAttempts++
		}
	}
	return snap
}

// AchievementRule 对快照的纯谓词，满足且尚未解锁即触发
type AchievementRule struct {
	Type      string
	Qualifies func(ProgressSnapshot) bool
}

// 规则表是固定的。各规则彼此独立、与求值顺序无关；
// "已解锁检查"让整个求值天然幂等。
var achievementRules = []AchievementRule{
	{Type: "first_solve", Qualifies: func(s ProgressSnapshot) bool { return s.Solved >= 1 }},
	{Type: "ten_mcq", Qualifies: func(s ProgressSnapshot) bool { return s.MCQSolved >= 10 }},
	{Type: "ten_coding", Qualifies: func(s ProgressSnapshot) bool { return s.CodingSolved >= 10 }},
	{Type: "point_collector", Qualifies: func(s ProgressSnapshot) bool { return s.TotalPoints >= 1000 }},
	{Type: "persistent", Qualifies: func(s ProgressSnapshot) bool { return s.ManyAttempts >= 3 }},
}

type progressReader interface {
	FindAllByUser(ctx context.Context, userID uint) ([]model.UserProgress, error)
}

type achievementStore interface {
	FindByUserID(ctx context.Context, userID uint) ([]model.Achievement, error)
	FindTypesByUserID(ctx context.Context, userID uint) ([]string, error)
	Create(ctx context.Context, achievement *model.Achievement) error
}

// AchievementService 成就规则引擎
type AchievementService struct {
	progress     progressReader
	achievements achievementStore
}

func NewAchievementService(progress progressReader, achievements achievementStore) *AchievementService {
	return &AchievementService{
		progress:     progress,
		achievements: achievements,
	}
}

// CheckAndUnlock 重算快照、求值规则表、为新达成的规则各写一条
// 解锁记录，返回本次新解锁的成就类型。
// 连续调用两次且进度无变化时第二次不解锁任何东西。
func (s *AchievementService) CheckAndUnlock(ctx context.Context, userID uint) ([]string, error) {
	rows, err := s.progress.FindAllByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	snapshot := SnapshotFromProgress(rows)

	unlockedTypes, err := s.achievements.FindTypesByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	unlocked := make(map[string]bool, len(unlockedTypes))
	for _, t := range unlockedTypes {
		unlocked[t] = true
	}

	newly := []string{}
	for _, rule := range achievementRules {
		if !rule.Qualifies(snapshot) || unlocked[rule.Type] {
			continue
		}

		err := s.achievements.Create(ctx, &model.Achievement{
			UserID:     userID,
			Type:       rule.Type,
			AchievedOn: time.Now(),
		})
		if provisioner.IsUniqueViolation(err) {
			// 并发的另一次评测刚解锁了同一成就，(user, type) 唯一索引兜底
			logger.Log.Debug("achievement already unlocked concurrently",
				zap.Uint("user_id", userID),
				zap.String("type", rule.Type),
			)
			continue
		}
		if err != nil {
			return newly, err
		}
		newly = append(newly, rule.Type)
	}

	return newly, nil
}

// ListUserAchievements 用户已解锁的成就
func (s *AchievementService) ListUserAchievements(ctx context.Context, userID uint) ([]model.Achievement, error) {
	return s.achievements.FindByUserID(ctx, userID)
}
