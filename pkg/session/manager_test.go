package session_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/reportflow/pkg/adapters/memory"
	"github.com/aretw0/reportflow/pkg/adapters/redis"
	"github.com/aretw0/reportflow/pkg/domain"
	"github.com/aretw0/reportflow/pkg/session"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// slowStore widens the read-modify-write window so lost updates show up
// when locking is missing.
type slowStore struct {
	*memory.Store
}

func (s slowStore) Load(ctx context.Context, id string) (*domain.Session, error) {
	time.Sleep(2 * time.Millisecond)
	return s.Store.Load(ctx, id)
}

func (s slowStore) Save(ctx context.Context, sess *domain.Session) error {
	time.Sleep(2 * time.Millisecond)
	return s.Store.Save(ctx, sess)
}

func TestManager_UpdateSerializes(t *testing.T) {
	mgr := session.NewManager(slowStore{memory.NewStore()})
	ctx := context.Background()
	require.NoError(t, mgr.Create(ctx, domain.NewSession("race", "")))

	// Each writer appends one character to the category value.
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := mgr.Update(ctx, "race", func(s *domain.Session) (*domain.Session, error) {
				s.Flow.CategoryValue += "x"
				return s, nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	s, err := mgr.Load(ctx, "race")
	require.NoError(t, err)
	assert.Len(t, s.Flow.CategoryValue, 20)
}

func TestManager_UpdateErrorSkipsSave(t *testing.T) {
	mgr := session.NewManager(memory.NewStore())
	ctx := context.Background()
	require.NoError(t, mgr.Create(ctx, domain.NewSession("s1", "")))

	boom := errors.New("boom")
	_, err := mgr.Update(ctx, "s1", func(s *domain.Session) (*domain.Session, error) {
		s.Flow.Step = domain.StepConfirmation
		return s, boom
	})
	assert.ErrorIs(t, err, boom)

	s, err := mgr.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, domain.StepCategory, s.Flow.Step)
}

func TestManager_UpdateNilKeepsCurrent(t *testing.T) {
	mgr := session.NewManager(memory.NewStore())
	ctx := context.Background()
	require.NoError(t, mgr.Create(ctx, domain.NewSession("s1", "comment")))

	s, err := mgr.Update(ctx, "s1", func(*domain.Session) (*domain.Session, error) {
		return nil, nil
	})
	require.NoError(t, err)
	assert.Equal(t, "comment", s.Type)
}

func TestManager_UpdateMissing(t *testing.T) {
	mgr := session.NewManager(memory.NewStore())
	_, err := mgr.Update(context.Background(), "nope", func(s *domain.Session) (*domain.Session, error) {
		return s, nil
	})
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestManager_CreateRejectsDuplicate(t *testing.T) {
	mgr := session.NewManager(memory.NewStore())
	ctx := context.Background()

	require.NoError(t, mgr.Create(ctx, domain.NewSession("dup", "")))
	assert.Error(t, mgr.Create(ctx, domain.NewSession("dup", "")))
}

func TestManager_DeleteAndList(t *testing.T) {
	mgr := session.NewManager(memory.NewStore())
	ctx := context.Background()

	require.NoError(t, mgr.Save(ctx, domain.NewSession("a", "")))
	require.NoError(t, mgr.Save(ctx, domain.NewSession("b", "")))
	require.NoError(t, mgr.Delete(ctx, "a"))

	ids, err := mgr.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, ids)
}

func TestManager_DistributedLock(t *testing.T) {
	mr := miniredis.RunT(t)
	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	defer client.Close()

	mgr := session.NewManager(
		redis.NewFromClient(client),
		session.WithLocker(redis.NewLocker(client, "")),
	)
	ctx := context.Background()
	require.NoError(t, mgr.Create(ctx, domain.NewSession("dist", "")))

	err := mgr.WithLock(ctx, "dist", func(context.Context) error {
		assert.True(t, mr.Exists(redis.DefaultLockPrefix+"dist"))
		return nil
	})
	require.NoError(t, err)
	assert.False(t, mr.Exists(redis.DefaultLockPrefix+"dist"))
}
