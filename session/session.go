package session

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/skillsenselab/callscribe/errors"
	"github.com/skillsenselab/callscribe/logger"
)

// Config holds session lifecycle configuration.
type Config struct {
	// TTL is how long an idle session survives before the janitor removes it.
	TTL time.Duration `yaml:"ttl" mapstructure:"ttl"`
	// JanitorInterval is how often expired sessions are swept.
	JanitorInterval time.Duration `yaml:"janitor_interval" mapstructure:"janitor_interval"`
}

// ApplyDefaults sets default values for unset fields.
func (c *Config) ApplyDefaults() {
	if c.TTL == 0 {
		c.TTL = 30 * time.Minute
	}
	if c.JanitorInterval == 0 {
		c.JanitorInterval = time.Minute
	}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if c.TTL < 0 {
		return fmt.Errorf("session.ttl must be non-negative (got: %s)", c.TTL)
	}
	if c.JanitorInterval < 0 {
		return fmt.Errorf("session.janitor_interval must be non-negative (got: %s)", c.JanitorInterval)
	}
	return nil
}

// Session is the explicit per-user context: an entry store plus the current
// (unsaved) transcript slot. It is created at session start and destroyed at
// session end or expiry.
type Session struct {
	// ID is the opaque session identifier.
	ID string
	// CreatedAt is the session creation time.
	CreatedAt time.Time

	store *Store

	mu              sync.RWMutex
	lastSeen        time.Time
	currentText     string
	currentFilename string
	hasCurrent      bool
}

// Store returns the session's entry store.
func (s *Session) Store() *Store {
	return s.store
}

// SetCurrent records the latest successful transcript so an entry can be
// saved or exported against it without re-uploading.
func (s *Session) SetCurrent(filename, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.currentFilename = filename
	s.currentText = text
	s.hasCurrent = true
}

// Current returns the unsaved transcript slot, if set.
func (s *Session) Current() (filename, text string, ok bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.currentFilename, s.currentText, s.hasCurrent
}

// ClearCurrent empties the unsaved transcript slot.
func (s *Session) ClearCurrent() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.currentFilename = ""
	s.currentText = ""
	s.hasCurrent = false
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastSeen = now
}

func (s *Session) idleSince() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastSeen
}

// Manager creates, resolves, and expires sessions. Each session's state is
// isolated; nothing is shared across sessions.
type Manager struct {
	cfg Config
	log *logger.Logger

	mu       sync.RWMutex
	sessions map[string]*Session

	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
}

// NewManager creates a Manager and starts its expiry janitor.
func NewManager(cfg Config, log *logger.Logger) *Manager {
	cfg.ApplyDefaults()
	m := &Manager{
		cfg:      cfg,
		log:      log.WithComponent("sessions"),
		sessions: make(map[string]*Session),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	go m.janitor()
	return m
}

// Create allocates a new session.
func (m *Manager) Create() *Session {
	now := time.Now()
	s := &Session{
		ID:        uuid.New().String(),
		CreatedAt: now,
		store:     NewStore(),
		lastSeen:  now,
	}

	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()

	m.log.Info("Session created", logger.Fields(logger.FieldSessionID, s.ID))
	return s
}

// Get resolves a session by ID and marks it as recently used.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return nil, apperrors.NotFound("session", id)
	}
	s.touch(time.Now())
	return s, nil
}

// Destroy removes a session and all its state.
func (m *Manager) Destroy(id string) error {
	m.mu.Lock()
	_, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()
	if !ok {
		return apperrors.NotFound("session", id)
	}
	m.log.Info("Session destroyed", logger.Fields(logger.FieldSessionID, id))
	return nil
}

// Len returns the number of live sessions.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Stop halts the expiry janitor. Safe to call more than once.
func (m *Manager) Stop() {
	m.stopOnce.Do(func() {
		close(m.stop)
		<-m.done
	})
}

func (m *Manager) janitor() {
	defer close(m.done)
	ticker := time.NewTicker(m.cfg.JanitorInterval)
	defer ticker.Stop()
	for {
		select {
		case <-m.stop:
			return
		case now := <-ticker.C:
			m.sweep(now)
		}
	}
}

func (m *Manager) sweep(now time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, s := range m.sessions {
		if now.Sub(s.idleSince()) > m.cfg.TTL {
			delete(m.sessions, id)
			m.log.Info("Session expired", logger.Fields(logger.FieldSessionID, id))
		}
	}
}
