package session

import (
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/varun160398/auto-invoice-portal/internal/models"
)

func sampleRoster() []models.ExpertRecord {
	return []models.ExpertRecord{
		{SrNo: "1", ExpertName: "Asha Rao", Commission: "15000", InvoiceNumber: "INV-1"},
		{SrNo: "2", ExpertName: "Vikram Shah", Commission: "9000", InvoiceNumber: "INV-2"},
	}
}

func TestRosterStorePutGet(t *testing.T) {
	rs, err := NewRosterStore(t.TempDir(), zerolog.Nop())
	require.NoError(t, err)

	require.NoError(t, rs.Put("wb-1", sampleRoster()))

	got, ok := rs.Get("wb-1")
	require.True(t, ok)
	assert.Equal(t, sampleRoster(), got)

	// Callers get a copy.
	got[0].ExpertName = "changed"
	again, _ := rs.Get("wb-1")
	assert.Equal(t, "Asha Rao", again[0].ExpertName)

	_, ok = rs.Get("missing")
	assert.False(t, ok)
}

func TestRosterStoreReloadsFromDisk(t *testing.T) {
	dir := t.TempDir()
	first, err := NewRosterStore(dir, zerolog.Nop())
	require.NoError(t, err)
	require.NoError(t, first.Put("wb-1", sampleRoster()))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644))

	second, err := NewRosterStore(dir, zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, []string{"wb-1"}, second.List())

	got, ok := second.Get("wb-1")
	require.True(t, ok)
	assert.Equal(t, sampleRoster(), got)
}

func TestRosterStoreCorruptFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad"+rosterExt), []byte{0xc1}, 0644))

	rs, err := NewRosterStore(dir, zerolog.Nop())
	require.NoError(t, err)

	_, ok := rs.Get("bad")
	assert.False(t, ok)
}

func TestRosterStoreDeleteAndCleanup(t *testing.T) {
	dir := t.TempDir()
	rs, err := NewRosterStore(dir, zerolog.Nop())
	require.NoError(t, err)

	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, rs.Put(id, sampleRoster()))
	}

	require.NoError(t, rs.Delete("a"))
	require.NoError(t, rs.Delete("a"))

	removed := rs.CleanupOrphaned([]string{"b"}, time.Now())
	assert.Equal(t, 1, removed)

	ids := rs.List()
	sort.Strings(ids)
	assert.Equal(t, []string{"b"}, ids)

	_, err = os.Stat(filepath.Join(dir, "c"+rosterExt))
	assert.True(t, os.IsNotExist(err))
}

func TestRosterStoreCleanupKeepsRecentlyUsed(t *testing.T) {
	rs, err := NewRosterStore(t.TempDir(), zerolog.Nop())
	require.NoError(t, err)

	require.NoError(t, rs.Put("fresh", sampleRoster()))
	require.NoError(t, rs.Put("stale", sampleRoster()))
	rs.mu.Lock()
	rs.touched["stale"] = time.Now().Add(-time.Hour)
	rs.mu.Unlock()

	removed := rs.CleanupOrphaned(nil, time.Now().Add(-time.Minute))
	assert.Equal(t, 1, removed)
	assert.Equal(t, []string{"fresh"}, rs.List())
}

func TestRosterStoreReloadedRostersKeepFileAge(t *testing.T) {
	dir := t.TempDir()
	first, err := NewRosterStore(dir, zerolog.Nop())
	require.NoError(t, err)
	require.NoError(t, first.Put("wb-1", sampleRoster()))

	old := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(filepath.Join(dir, "wb-1"+rosterExt), old, old))

	second, err := NewRosterStore(dir, zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, 0, second.CleanupOrphaned(nil, old.Add(-time.Minute)))
	assert.Equal(t, 1, second.CleanupOrphaned(nil, time.Now().Add(-time.Minute)))
	assert.Empty(t, second.List())
}
