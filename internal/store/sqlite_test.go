package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tipdex/internal/domain"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "tipdex.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func testEntries() []domain.Entry {
	return []domain.Entry{
		{ID: 1, Title: "Auto closures", Body: "Use @autoclosure.", Link: "https://example.com/ac", Tags: []string{"swift", "closures"}},
		{ID: 2, Title: "Guard statement", Body: "Exit early.", Tags: []string{"swift"}},
		{ID: 5, Title: "Sorting arrays", Body: "Prefer sorted(by:)."},
	}
}

func TestSyncRoundTrip(t *testing.T) {
	s := testStore(t)

	require.NoError(t, s.Sync(testEntries(), "fp-1"))

	got, err := s.LoadAll()
	require.NoError(t, err)
	assert.Equal(t, testEntries(), got, "load order, tags, and fields survive the cache")

	n, err := s.Count()
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestSyncReplacesCorpus(t *testing.T) {
	s := testStore(t)

	require.NoError(t, s.Sync(testEntries(), "fp-1"))
	require.NoError(t, s.Sync(testEntries()[:1], "fp-2"))

	got, err := s.LoadAll()
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 1, got[0].ID)

	fp, err := s.Fingerprint()
	require.NoError(t, err)
	assert.Equal(t, "fp-2", fp)
}

func TestFingerprintUnsynced(t *testing.T) {
	s := testStore(t)

	fp, err := s.Fingerprint()
	require.NoError(t, err)
	assert.Empty(t, fp, "a fresh cache has no fingerprint")
}
