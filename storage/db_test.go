package storage

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMemDBRoundTrip(t *testing.T) {
	db := NewMemDB()
	defer db.Close()

	require.NoError(t, db.Put([]byte("k1"), []byte("v1")))
	got, err := db.Get([]byte("k1"))
	require.NoError(t, err)
	require.Equal(t, []byte("v1"), got)

	require.NoError(t, db.Delete([]byte("k1")))
	_, err = db.Get([]byte("k1"))
	require.ErrorIs(t, err, ErrNotFound)
}

func TestMemDBIteratePrefix(t *testing.T) {
	db := NewMemDB()
	defer db.Close()

	require.NoError(t, db.Put([]byte("a/1"), []byte("x")))
	require.NoError(t, db.Put([]byte("a/2"), []byte("y")))
	require.NoError(t, db.Put([]byte("b/1"), []byte("z")))

	var keys []string
	require.NoError(t, db.IteratePrefix([]byte("a/"), func(key, _ []byte) bool {
		keys = append(keys, string(key))
		return true
	}))
	require.Equal(t, []string{"a/1", "a/2"}, keys)
}

func TestMemDBIterationStops(t *testing.T) {
	db := NewMemDB()
	defer db.Close()

	require.NoError(t, db.Put([]byte("a/1"), nil))
	require.NoError(t, db.Put([]byte("a/2"), nil))

	count := 0
	require.NoError(t, db.IteratePrefix([]byte("a/"), func(_, _ []byte) bool {
		count++
		return false
	}))
	require.Equal(t, 1, count)
}

func TestLevelDBRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db")
	db, err := NewLevelDB(path)
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, db.Put([]byte("k1"), []byte("v1")))
	got, err := db.Get([]byte("k1"))
	require.NoError(t, err)
	require.Equal(t, []byte("v1"), got)

	_, err = db.Get([]byte("missing"))
	require.ErrorIs(t, err, ErrNotFound)

	var keys []string
	require.NoError(t, db.Put([]byte("p/1"), nil))
	require.NoError(t, db.Put([]byte("p/2"), nil))
	require.NoError(t, db.IteratePrefix([]byte("p/"), func(key, _ []byte) bool {
		keys = append(keys, string(key))
		return true
	}))
	require.Equal(t, []string{"p/1", "p/2"}, keys)
}
