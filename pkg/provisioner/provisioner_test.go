package provisioner_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"code_practice_backend/pkg/provisioner"

	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// fakeStore simulates a table with a unique key: the first create wins,
// every later create fails with a duplicate-entry error.
type fakeStore struct {
	mu      sync.Mutex
	nextID  uint
	id      uint
	created int
}

func (s *fakeStore) lookup(context.Context) (uint, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.id == 0 {
		return 0, false, nil
	}
	return s.id, true, nil
}

func (s *fakeStore) create(context.Context) (uint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.id != 0 {
		return 0, &mysql.MySQLError{Number: 1062, Message: "Duplicate entry"}
	}
	s.nextID++
	s.id = s.nextID
	s.created++
	return s.id, nil
}

func TestGetOrCreate_ExistingRecord(t *testing.T) {
	store := &fakeStore{id: 42, nextID: 42}

	id, err := provisioner.GetOrCreate(context.Background(), store.lookup, store.create)
	require.NoError(t, err)
	assert.Equal(t, uint(42), id)
	assert.Equal(t, 0, store.created)
}

func TestGetOrCreate_CreatesWhenMissing(t *testing.T) {
	store := &fakeStore{}

	id, err := provisioner.GetOrCreate(context.Background(), store.lookup, store.create)
	require.NoError(t, err)
	assert.Equal(t, uint(1), id)
	assert.Equal(t, 1, store.created)
}

func TestGetOrCreate_Concurrent(t *testing.T) {
	store := &fakeStore{}

	const callers = 50
	ids := make([]uint, callers)
	errs := make([]error, callers)

	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ids[i], errs[i] = provisioner.GetOrCreate(context.Background(), store.lookup, store.create)
		}(i)
	}
	wg.Wait()

	for i := 0; i < callers; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, ids[0], ids[i])
	}
	assert.Equal(t, 1, store.created, "exactly one underlying record must exist")
}

func TestGetOrCreate_DuplicateKeyRecovers(t *testing.T) {
	// lookup misses, create collides, the relookup returns the winner's row
	calls := 0
	lookup := func(context.Context) (uint, bool, error) {
		calls++
		if calls == 1 {
			return 0, false, nil
		}
		return 7, true, nil
	}
	create := func(context.Context) (uint, error) {
		return 0, gorm.ErrDuplicatedKey
	}

	id, err := provisioner.GetOrCreate(context.Background(), lookup, create)
	require.NoError(t, err)
	assert.Equal(t, uint(7), id)
	assert.Equal(t, 2, calls)
}

func TestGetOrCreate_OtherCreateErrorIsFatal(t *testing.T) {
	boom := errors.New("connection reset")
	lookup := func(context.Context) (uint, bool, error) { return 0, false, nil }
	create := func(context.Context) (uint, error) { return 0, boom }

	_, err := provisioner.GetOrCreate(context.Background(), lookup, create)
	require.ErrorIs(t, err, boom)
}

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, provisioner.IsUniqueViolation(gorm.ErrDuplicatedKey))
	assert.True(t, provisioner.IsUniqueViolation(&mysql.MySQLError{Number: 1062}))
	assert.False(t, provisioner.IsUniqueViolation(&mysql.MySQLError{Number: 1045}))
	assert.False(t, provisioner.IsUniqueViolation(errors.New("other")))
	assert.False(t, provisioner.IsUniqueViolation(nil))
}
