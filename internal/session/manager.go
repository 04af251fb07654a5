package session

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/varun160398/auto-invoice-portal/internal/models"
)

var (
	// ErrNotFound is returned for unknown or expired session ids.
	ErrNotFound = errors.New("session not found")
	// ErrNoWorkbook is returned when the session has no mapped roster yet.
	ErrNoWorkbook = errors.New("no workbook uploaded")
	// ErrExpertNotFound is returned when no record carries the given name.
	ErrExpertNotFound = errors.New("expert not found")
	// ErrRosterNotCached is returned by SelectWorkbook when the workbook has
	// to be parsed again.
	ErrRosterNotCached = errors.New("roster not cached")
)

// MaxSessions limits concurrent logins to prevent memory exhaustion.
const MaxSessions = 100

// SessionKeepAliveWindow protects recently used sessions from cleanup.
const SessionKeepAliveWindow = 5 * time.Minute

// Manager tracks logged-in sessions: the selected period and the active
// workbook. Rosters live in the shared RosterStore.
type Manager struct {
	sessions      map[string]*state
	mu            sync.RWMutex
	rosters       *RosterStore
	defaultPeriod models.Period
	logger        zerolog.Logger
}

type state struct {
	session      models.Session
	lastAccessed time.Time
}

// NewManager creates a session manager whose sessions start at
// defaultPeriod.
func NewManager(rosters *RosterStore, defaultPeriod models.Period, logger zerolog.Logger) *Manager {
	return &Manager{
		sessions:      make(map[string]*state),
		rosters:       rosters,
		defaultPeriod: defaultPeriod,
		logger:        logger.With().Str("component", "sessions").Logger(),
	}
}

// Create starts a session for user with the default period.
func (m *Manager) Create(user string) models.Session {
	m.evictIfFull()

	id := uuid.New().String()
	s := models.NewSession(id, user)
	s.Period = m.defaultPeriod

	m.mu.Lock()
	m.sessions[id] = &state{session: *s, lastAccessed: time.Now()}
	m.mu.Unlock()

	m.logger.Info().Str("session", shortID(id)).Str("user", user).Msg("session started")
	return *s
}

// evictIfFull drops the least recently used session when at capacity.
func (m *Manager) evictIfFull() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.sessions) < MaxSessions {
		return
	}

	var oldestID string
	var oldest time.Time
	for id, st := range m.sessions {
		if oldestID == "" || st.lastAccessed.Before(oldest) {
			oldestID, oldest = id, st.lastAccessed
		}
	}
	delete(m.sessions, oldestID)
	m.logger.Info().Str("session", shortID(oldestID)).Msg("evicted session to free capacity")
}

// Get returns a snapshot of a session and marks it as used.
func (m *Manager) Get(id string) (models.Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	st, ok := m.sessions[id]
	if !ok {
		return models.Session{}, false
	}
	st.lastAccessed = time.Now()
	return st.session, true
}

// Delete ends a session.
func (m *Manager) Delete(id string) {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
}

// Count returns the number of live sessions.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// SetPeriod stores an already validated period.
func (m *Manager) SetPeriod(id string, p models.Period) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	st, ok := m.sessions[id]
	if !ok {
		return ErrNotFound
	}
	st.session.Period = p
	st.lastAccessed = time.Now()
	return nil
}

// SetWorkbook stores records as the roster of info and makes it the
// session's active workbook. Both happen under the session lock so cleanup
// never sees the roster without its session.
func (m *Manager) SetWorkbook(id string, info *models.FileInfo, records []models.ExpertRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	st, ok := m.sessions[id]
	if !ok {
		return ErrNotFound
	}
	if err := m.rosters.Put(info.ID, records); err != nil {
		return err
	}
	st.session.WorkbookID = info.ID
	st.session.WorkbookName = info.Name
	st.lastAccessed = time.Now()
	return nil
}

// SelectWorkbook switches the session to a previously mapped workbook whose
// roster is still cached. It returns ErrRosterNotCached when it is not.
func (m *Manager) SelectWorkbook(id string, info *models.FileInfo) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	st, ok := m.sessions[id]
	if !ok {
		return ErrNotFound
	}
	if _, ok := m.rosters.Get(info.ID); !ok {
		return ErrRosterNotCached
	}
	st.session.WorkbookID = info.ID
	st.session.WorkbookName = info.Name
	st.lastAccessed = time.Now()
	return nil
}

// Roster returns the active roster and period of a session.
func (m *Manager) Roster(id string) ([]models.ExpertRecord, models.Period, error) {
	s, ok := m.Get(id)
	if !ok {
		return nil, models.Period{}, ErrNotFound
	}
	if s.WorkbookID == "" {
		return nil, s.Period, ErrNoWorkbook
	}
	records, ok := m.rosters.Get(s.WorkbookID)
	if !ok {
		return nil, s.Period, ErrNoWorkbook
	}
	return records, s.Period, nil
}

// FindExpert returns the first record whose name equals name after
// trimming.
func (m *Manager) FindExpert(id, name string) (models.ExpertRecord, models.Period, error) {
	records, period, err := m.Roster(id)
	if err != nil {
		return models.ExpertRecord{}, period, err
	}
	name = strings.TrimSpace(name)
	for _, rec := range records {
		if rec.ExpertName == name {
			return rec, period, nil
		}
	}
	return models.ExpertRecord{}, period, fmt.Errorf("%w: %q", ErrExpertNotFound, name)
}

// CleanupOldSessions removes sessions idle for longer than maxAge, keeping
// any used within SessionKeepAliveWindow. Rosters that no live session
// references and that were not used within SessionKeepAliveWindow are
// removed as well. It returns the number of sessions removed.
func (m *Manager) CleanupOldSessions(maxAge time.Duration) int {
	if maxAge < SessionKeepAliveWindow {
		maxAge = SessionKeepAliveWindow
	}
	now := time.Now()
	cutoff := now.Add(-maxAge)

	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	var live []string
	for id, st := range m.sessions {
		if st.lastAccessed.Before(cutoff) {
			delete(m.sessions, id)
			removed++
			m.logger.Info().
				Str("session", shortID(id)).
				Dur("idle", time.Since(st.lastAccessed).Round(time.Second)).
				Msg("cleaned up idle session")
			continue
		}
		if st.session.WorkbookID != "" {
			live = append(live, st.session.WorkbookID)
		}
	}
	if n := m.rosters.CleanupOrphaned(live, now.Add(-SessionKeepAliveWindow)); n > 0 {
		m.logger.Info().Int("rosters", n).Msg("removed rosters of expired sessions")
	}
	return removed
}
