package session

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/varun160398/auto-invoice-portal/internal/models"
)

const rosterExt = ".roster"

// shortID safely truncates an ID for logging.
func shortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}

// RosterStore keeps mapped rosters keyed by workbook id, so a workbook is
// parsed once no matter how many requests read it. Rosters are written to
// disk as msgpack and cached in memory. They are a cache of the stored
// workbook: a missing roster can always be rebuilt by parsing it again.
type RosterStore struct {
	dir     string
	mu      sync.RWMutex
	cache   map[string][]models.ExpertRecord
	touched map[string]time.Time
	logger  zerolog.Logger
}

// NewRosterStore creates dir if needed and indexes rosters already in it.
func NewRosterStore(dir string, logger zerolog.Logger) (*RosterStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating roster directory: %w", err)
	}
	rs := &RosterStore{
		dir:    dir,
		cache:   make(map[string][]models.ExpertRecord),
		touched: make(map[string]time.Time),
		logger:  logger.With().Str("component", "rosters").Logger(),
	}
	rs.scanExisting()
	return rs, nil
}

// scanExisting registers rosters left by a previous run, dated by their
// modification time. Records are loaded lazily.
func (rs *RosterStore) scanExisting() {
	entries, err := os.ReadDir(rs.dir)
	if err != nil {
		rs.logger.Warn().Err(err).Msg("failed to scan roster directory")
		return
	}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || filepath.Ext(name) != rosterExt {
			continue
		}
		id := strings.TrimSuffix(name, rosterExt)
		rs.cache[id] = nil
		rs.touched[id] = time.Now()
		if info, err := entry.Info(); err == nil {
			rs.touched[id] = info.ModTime()
		}
	}
	rs.logger.Debug().Int("rosters", len(rs.cache)).Msg("scanned existing rosters")
}

func (rs *RosterStore) path(workbookID string) string {
	return filepath.Join(rs.dir, workbookID+rosterExt)
}

// Put stores the roster for a workbook, replacing any earlier one.
func (rs *RosterStore) Put(workbookID string, records []models.ExpertRecord) error {
	data, err := msgpack.Marshal(records)
	if err != nil {
		return fmt.Errorf("encoding roster: %w", err)
	}
	if err := os.WriteFile(rs.path(workbookID), data, 0644); err != nil {
		return fmt.Errorf("writing roster: %w", err)
	}

	rs.mu.Lock()
	rs.cache[workbookID] = records
	rs.touched[workbookID] = time.Now()
	rs.mu.Unlock()

	rs.logger.Debug().Str("workbook", shortID(workbookID)).Int("records", len(records)).Msg("stored roster")
	return nil
}

// Get returns a copy of the roster for a workbook and marks it as used.
func (rs *RosterStore) Get(workbookID string) ([]models.ExpertRecord, bool) {
	rs.mu.RLock()
	records, known := rs.cache[workbookID]
	rs.mu.RUnlock()

	if !known {
		return nil, false
	}
	if records == nil {
		loaded, err := rs.load(workbookID)
		if err != nil {
			rs.logger.Warn().Err(err).Str("workbook", shortID(workbookID)).Msg("failed to load roster")
			return nil, false
		}
		records = loaded
	}

	rs.mu.Lock()
	if _, still := rs.cache[workbookID]; still {
		rs.cache[workbookID] = records
		rs.touched[workbookID] = time.Now()
	}
	rs.mu.Unlock()

	out := make([]models.ExpertRecord, len(records))
	copy(out, records)
	return out, true
}

func (rs *RosterStore) load(workbookID string) ([]models.ExpertRecord, error) {
	data, err := os.ReadFile(rs.path(workbookID))
	if err != nil {
		return nil, err
	}
	records := []models.ExpertRecord{}
	if err := msgpack.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decoding roster: %w", err)
	}
	return records, nil
}

// Delete removes the roster for a workbook.
func (rs *RosterStore) Delete(workbookID string) error {
	rs.mu.Lock()
	delete(rs.cache, workbookID)
	delete(rs.touched, workbookID)
	rs.mu.Unlock()

	if err := os.Remove(rs.path(workbookID)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("deleting roster: %w", err)
	}
	return nil
}

// List returns the ids of every stored roster.
func (rs *RosterStore) List() []string {
	rs.mu.RLock()
	defer rs.mu.RUnlock()

	ids := make([]string, 0, len(rs.cache))
	for id := range rs.cache {
		ids = append(ids, id)
	}
	return ids
}

// CleanupOrphaned removes rosters that no live session references and that
// have not been written or read since idleSince.
func (rs *RosterStore) CleanupOrphaned(liveIDs []string, idleSince time.Time) int {
	live := make(map[string]bool, len(liveIDs))
	for _, id := range liveIDs {
		live[id] = true
	}

	rs.mu.Lock()
	defer rs.mu.Unlock()

	removed := 0
	for id := range rs.cache {
		if live[id] || rs.touched[id].After(idleSince) {
			continue
		}
		os.Remove(rs.path(id))
		delete(rs.cache, id)
		delete(rs.touched, id)
		removed++
		rs.logger.Debug().Str("workbook", shortID(id)).Msg("removed orphaned roster")
	}
	return removed
}
