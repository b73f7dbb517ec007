// internal/session/manager.go
package session

import (
	"sync"
	"time"

	"idea-lab/internal/common/logger"
	"idea-lab/internal/roadmap"
)

// Manager hands out one Controller per user, evicting the least recently
// used one when maxSessions is reached.
type Manager struct {
	source      ContentSource
	tracker     *roadmap.Tracker
	logger      logger.Logger
	lang        string
	maxSessions int
	now         func() time.Time

	mu       sync.Mutex
	sessions map[string]*managed
}

type managed struct {
	ctrl     *Controller
	lastUsed time.Time
}

func NewManager(source ContentSource, tracker *roadmap.Tracker, log logger.Logger, lang string, maxSessions int) *Manager {
	return &Manager{
		source:      source,
		tracker:     tracker,
		logger:      log,
		lang:        lang,
		maxSessions: maxSessions,
		now:         time.Now,
		sessions:    make(map[string]*managed),
	}
}

// For returns the user's controller, creating it on first use.
func (m *Manager) For(userID string) *Controller {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.sessions[userID]; ok {
		s.lastUsed = m.now()
		return s.ctrl
	}
	if m.maxSessions > 0 && len(m.sessions) >= m.maxSessions {
		m.evictLocked()
	}
	ctrl := NewController(m.source, m.tracker, m.logger.With(map[string]interface{}{"userId": userID}), m.lang)
	m.sessions[userID] = &managed{ctrl: ctrl, lastUsed: m.now()}
	return ctrl
}

// Len is the number of tracked sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

func (m *Manager) evictLocked() {
	var oldestID string
	var oldest time.Time
	for id, s := range m.sessions {
		if oldestID == "" || s.lastUsed.Before(oldest) {
			oldestID, oldest = id, s.lastUsed
		}
	}
	if oldestID != "" {
		m.sessions[oldestID].ctrl.Close()
		delete(m.sessions, oldestID)
	}
}
