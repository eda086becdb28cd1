package repository

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"token-session-service/internal/db"
	"token-session-service/internal/session/domain"
)

func newTestRepo(t *testing.T) *SQLRepository {
	t.Helper()
	conn, err := db.OpenSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return NewSQLRepository(conn)
}

func newSession(userID int64, token string) *domain.Session {
	now := time.Now().UTC().Truncate(time.Second)
	return &domain.Session{
		UserID:       userID,
		RefreshToken: token,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func TestCreateAndGetByID(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	id, err := repo.Create(ctx, newSession(1, "tok-a"))
	require.NoError(t, err)
	require.NotZero(t, id)

	got, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, id, got.ID)
	assert.Equal(t, int64(1), got.UserID)
	assert.Equal(t, "tok-a", got.RefreshToken)
	assert.Nil(t, got.RemovedAt)
	assert.True(t, got.Active())
}

func TestGetByIDMissing(t *testing.T) {
	repo := newTestRepo(t)

	got, err := repo.GetByID(context.Background(), 42)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRotateRefreshToken(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	id, err := repo.Create(ctx, newSession(1, "tok-old"))
	require.NoError(t, err)

	now := time.Now().UTC().Truncate(time.Second)
	rotatedID, err := repo.RotateRefreshToken(ctx, "tok-old", "tok-new", now)
	require.NoError(t, err)
	assert.Equal(t, id, rotatedID)

	got, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "tok-new", got.RefreshToken)
	assert.Nil(t, got.RemovedAt)

	// The consumed token no longer matches any active row.
	rotatedID, err = repo.RotateRefreshToken(ctx, "tok-old", "tok-newer", now)
	require.NoError(t, err)
	assert.Zero(t, rotatedID)
}

func TestRotateConcurrentSameToken(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	id, err := repo.Create(ctx, newSession(1, "tok-race"))
	require.NoError(t, err)

	// Two rotations race on the same token; the conditional update lets
	// exactly one of them match the row.
	results := make([]int64, 2)
	errs := make([]error, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = repo.RotateRefreshToken(ctx, "tok-race", fmt.Sprintf("tok-race-%d", i), now)
		}(i)
	}
	wg.Wait()
	for i, err := range errs {
		require.NoError(t, err, "rotation %d", i)
	}

	winners := 0
	for _, r := range results {
		if r != 0 {
			assert.Equal(t, id, r)
			winners++
		}
	}
	assert.Equal(t, 1, winners, "exactly one rotation may win")
}

func TestRotateSkipsRemovedRows(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	id, err := repo.Create(ctx, newSession(1, "tok-a"))
	require.NoError(t, err)
	removed, err := repo.RemoveByID(ctx, id, now)
	require.NoError(t, err)
	require.EqualValues(t, 1, removed)

	rotatedID, err := repo.RotateRefreshToken(ctx, "tok-a", "tok-b", now)
	require.NoError(t, err)
	assert.Zero(t, rotatedID)
}

func TestRemoveByIDIdempotent(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	id, err := repo.Create(ctx, newSession(1, "tok-a"))
	require.NoError(t, err)

	removed, err := repo.RemoveByID(ctx, id, now)
	require.NoError(t, err)
	assert.EqualValues(t, 1, removed)

	got, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, got.RemovedAt)
	assert.False(t, got.Active())

	removed, err = repo.RemoveByID(ctx, id, now)
	require.NoError(t, err)
	assert.Zero(t, removed)
}

func TestRemoveAllByUser(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	for i, token := range []string{"u1-a", "u1-b", "u1-c"} {
		_, err := repo.Create(ctx, newSession(1, token))
		require.NoError(t, err, "session %d", i)
	}
	otherID, err := repo.Create(ctx, newSession(2, "u2-a"))
	require.NoError(t, err)

	removed, err := repo.RemoveAllByUser(ctx, 1, now)
	require.NoError(t, err)
	assert.EqualValues(t, 3, removed)

	// The other user's session is untouched.
	other, err := repo.GetByID(ctx, otherID)
	require.NoError(t, err)
	assert.Nil(t, other.RemovedAt)

	removed, err = repo.RemoveAllByUser(ctx, 1, now)
	require.NoError(t, err)
	assert.Zero(t, removed)
}

func TestActiveRefreshTokenUnique(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	id, err := repo.Create(ctx, newSession(1, "tok-dup"))
	require.NoError(t, err)

	// A second active row with the same token violates the partial index.
	_, err = repo.Create(ctx, newSession(2, "tok-dup"))
	require.Error(t, err)

	// After soft-deleting the first row, the token may be reused.
	removed, err := repo.RemoveByID(ctx, id, now)
	require.NoError(t, err)
	require.EqualValues(t, 1, removed)

	_, err = repo.Create(ctx, newSession(2, "tok-dup"))
	require.NoError(t, err)
}
