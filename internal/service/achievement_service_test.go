package service_test

import (
	"context"
	"testing"

	"code_practice_backend/internal/model"
	"code_practice_backend/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProgressReader struct {
	rows []model.UserProgress
}

func (r *fakeProgressReader) FindAllByUser(context.Context, uint) ([]model.UserProgress, error) {
	return r.rows, nil
}

func completedRows(questionType model.QuestionType, n, score int) []model.UserProgress {
	rows := make([]model.UserProgress, n)
	for i := range rows {
		rows[i] = model.UserProgress{
			UserID:       1,
			QuestionID:   uint(i + 1),
			QuestionType: questionType,
			Completed:    true,
			Score:        score,
			Attempts:     1,
		}
	}
	return rows
}

func TestSnapshotFromProgress(t *testing.T) {
	rows := []model.UserProgress{
		{QuestionType: model.QuestionTypeMCQ, Completed: true, Score: 5, Attempts: 1},
		{QuestionType: model.QuestionTypeCoding, Completed: true, Score: 10, Attempts: 4},
		{QuestionType: model.QuestionTypeCoding, Completed: false, Score: 0, Attempts: 3},
		{QuestionType: model.QuestionTypeMCQ, Completed: false, Score: 0, Attempts: 1},
	}

	snap := service.SnapshotFromProgress(rows)

	assert.Equal(t, 2, snap.Solved)
	assert.Equal(t, 1, snap.MCQSolved)
	assert.Equal(t, 1, snap.CodingSolved)
	assert.Equal(t, 15, snap.TotalPoints)
	// 未完成但尝试了 3 次的题同样计入 ManyAttempts
	assert.Equal(t, 2, snap.ManyAttempts)
}

func TestCheckAndUnlock_FirstSolve(t *testing.T) {
	reader := &fakeProgressReader{rows: completedRows(model.QuestionTypeCoding, 1, 5)}
	store := &fakeAchievementStore{}
	svc := service.NewAchievementService(reader, store)

	newly, err := svc.CheckAndUnlock(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"first_solve"}, newly)

	records, err := svc.ListUserAchievements(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "first_solve", records[0].Type)
	assert.False(t, records[0].AchievedOn.IsZero())
}

func TestCheckAndUnlock_SecondCallUnlocksNothing(t *testing.T) {
	reader := &fakeProgressReader{rows: completedRows(model.QuestionTypeCoding, 1, 5)}
	store := &fakeAchievementStore{}
	svc := service.NewAchievementService(reader, store)

	_, err := svc.CheckAndUnlock(context.Background(), 1)
	require.NoError(t, err)

	newly, err := svc.CheckAndUnlock(context.Background(), 1)
	require.NoError(t, err)
	assert.Empty(t, newly)

	records, _ := store.FindByUserID(context.Background(), 1)
	assert.Len(t, records, 1)
}

func TestCheckAndUnlock_TenMCQBoundary(t *testing.T) {
	store := &fakeAchievementStore{}
	reader := &fakeProgressReader{rows: completedRows(model.QuestionTypeMCQ, 9, 5)}
	svc := service.NewAchievementService(reader, store)

	newly, err := svc.CheckAndUnlock(context.Background(), 1)
	require.NoError(t, err)
	assert.NotContains(t, newly, "ten_mcq", "nine solved is below the threshold")

	reader.rows = completedRows(model.QuestionTypeMCQ, 10, 5)
	newly, err = svc.CheckAndUnlock(context.Background(), 1)
	require.NoError(t, err)
	assert.Contains(t, newly, "ten_mcq")
}

func TestCheckAndUnlock_MultipleRulesInOnePass(t *testing.T) {
	// 200 道 5 分编程题：first_solve、ten_coding、point_collector 一次全触发
	reader := &fakeProgressReader{rows: completedRows(model.QuestionTypeCoding, 200, 5)}
	svc := service.NewAchievementService(reader, &fakeAchievementStore{})

	newly, err := svc.CheckAndUnlock(context.Background(), 1)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"first_solve", "ten_coding", "point_collector"}, newly)
}

func TestCheckAndUnlock_ConcurrentDuplicateIsSkipped(t *testing.T) {
	reader := &fakeProgressReader{rows: completedRows(model.QuestionTypeCoding, 1, 5)}
	store := &fakeAchievementStore{}

	// 先插入同类型记录，模拟并发评测抢先解锁
	require.NoError(t, store.Create(context.Background(), &model.Achievement{UserID: 1, Type: "first_solve"}))

	// 绕过"已解锁"预检直接撞唯一索引：让读到的已解锁集合为空
	empty := &fakeAchievementStore{}
	svc := service.NewAchievementService(reader, &racingAchievementStore{reads: empty, writes: store})

	newly, err := svc.CheckAndUnlock(context.Background(), 1)
	require.NoError(t, err, "losing the unique-index race is not an error")
	assert.Empty(t, newly)
}

// racingAchievementStore reads from one store and writes to another,
// so the pre-check misses a record the insert then collides with.
type racingAchievementStore struct {
	reads  *fakeAchievementStore
	writes *fakeAchievementStore
}

func (s *racingAchievementStore) FindByUserID(ctx context.Context, userID uint) ([]model.Achievement, error) {
	return s.reads.FindByUserID(ctx, userID)
}

func (s *racingAchievementStore) FindTypesByUserID(ctx context.Context, userID uint) ([]string, error) {
	return s.reads.FindTypesByUserID(ctx, userID)
}

func (s *racingAchievementStore) Create(ctx context.Context, achievement *model.Achievement) error {
	return s.writes.Create(ctx, achievement)
}
