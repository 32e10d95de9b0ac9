package state

import (
	"sync"

	"github.com/sandevgo/ragway/internal/core"
)

// ProviderSelection tracks which provider config each chat session uses.
// Sessions without an override get the defaults.
type ProviderSelection struct {
	mu       sync.RWMutex
	defaults core.ProviderConfig
	sessions map[string]core.ProviderConfig
}

func NewProviderSelection(defaults core.ProviderConfig) *ProviderSelection {
	return &ProviderSelection{
		defaults: defaults,
		sessions: make(map[string]core.ProviderConfig),
	}
}

// Get returns a copy, so callers may pass it into a request unchanged.
func (s *ProviderSelection) Get(sessionID string) core.ProviderConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if cfg, ok := s.sessions[sessionID]; ok {
		return cfg
	}
	return s.defaults
}

func (s *ProviderSelection) Set(sessionID string, cfg core.ProviderConfig) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sessionID] = cfg
}

func (s *ProviderSelection) Reset(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
}

func (s *ProviderSelection) Defaults() core.ProviderConfig {
	return s.defaults
}
