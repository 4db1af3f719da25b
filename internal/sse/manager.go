package sse

import (
	"log/slog"
	"sync"

	"github.com/rpsarena/rps-arena-go/internal/model"
)

// HubManager manages the per-match hubs
type HubManager struct {
	hubs   map[model.MatchID]*Hub
	mu     sync.RWMutex
	logger *slog.Logger
}

// NewHubManager creates a new HubManager
func NewHubManager(logger *slog.Logger) *HubManager {
	return &HubManager{
		hubs:   make(map[model.MatchID]*Hub),
		logger: logger.With(slog.String("component", "sse")),
	}
}

// GetOrCreateHub returns the hub for a match, creating one if it doesn't exist
func (m *HubManager) GetOrCreateHub(matchID model.MatchID) *Hub {
	m.mu.Lock()
	defer m.mu.Unlock()

	if hub, ok := m.hubs[matchID]; ok {
		return hub
	}

	hub := NewHub("match:"+string(matchID), m.logger)
	m.hubs[matchID] = hub
	go hub.Run()
	return hub
}

// GetHub returns the hub for a match, or nil if it doesn't exist
func (m *HubManager) GetHub(matchID model.MatchID) *Hub {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.hubs[matchID]
}

// RemoveHub removes and closes a hub
func (m *HubManager) RemoveHub(matchID model.MatchID) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if hub, ok := m.hubs[matchID]; ok {
		hub.Close()
		delete(m.hubs, matchID)
		m.logger.Info("sse hub removed", slog.String("match_id", string(matchID)))
	}
}

// CleanupEmptyHubs removes hubs with no clients
func (m *HubManager) CleanupEmptyHubs() {
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for id, hub := range m.hubs {
		if hub.ClientCount() == 0 {
			hub.Close()
			delete(m.hubs, id)
			removed++
		}
	}
	if removed > 0 {
		m.logger.Info("sse empty hubs cleaned up", slog.Int("removed", removed))
	}
}
