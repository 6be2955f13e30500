package idempotence

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	bolt "go.etcd.io/bbolt"
)

func openRepository(t *testing.T) *BoltDBRepository {
	t.Helper()

	db, err := bolt.Open(filepath.Join(t.TempDir(), "test.db"), 0o600, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	repo, err := NewBoltDB(db)
	require.NoError(t, err)
	return repo
}

func TestMakeRecord(t *testing.T) {
	repo := openRepository(t)

	ok, err := repo.MakeRecord("1001")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.MakeRecord("1001")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = repo.MakeRecord("1002")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestPurge(t *testing.T) {
	repo := openRepository(t)

	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	for i, id := range []string{"old-1", "old-2", "fresh"} {
		at := base.Add(time.Duration(i) * time.Hour)
		repo.now = func() time.Time { return at }
		_, err := repo.MakeRecord(id)
		require.NoError(t, err)
	}

	removed, err := repo.Purge(base.Add(90 * time.Minute))
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	ok, err := repo.MakeRecord("fresh")
	require.NoError(t, err)
	assert.False(t, ok, "fresh record must survive")

	ok, err = repo.MakeRecord("old-1")
	require.NoError(t, err)
	assert.True(t, ok, "purged id is accepted again")
}

func TestPurgeLegacyRecords(t *testing.T) {
	repo := openRepository(t)

	require.NoError(t, repo.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(idempotenceBucketName).Put([]byte("legacy"), []byte{})
	}))

	removed, err := repo.Purge(time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, 1, removed)
}
