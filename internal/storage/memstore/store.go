// Package memstore is a mutex-guarded message repository for development
// runs (RAGWAY_STORE=memory) and tests. Nothing survives a restart.
package memstore

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/sandevgo/ragway/internal/core"
	"github.com/sandevgo/ragway/pkg/ids"
	"github.com/sandevgo/ragway/pkg/lexical"
)

const maxMessagesPerSession = 10_000

var ErrSessionFull = errors.New("memstore: session message limit reached")

type Store struct {
	mu       sync.RWMutex
	sessions map[string][]core.StoredMessage // insertion order
}

func New() *Store {
	return &Store{
		sessions: make(map[string][]core.StoredMessage),
	}
}

func (s *Store) AddMessage(ctx context.Context, msg core.StoredMessage) (core.StoredMessage, error) {
	if err := ctx.Err(); err != nil {
		return core.StoredMessage{}, err
	}
	if !msg.Role.Valid() {
		return core.StoredMessage{}, fmt.Errorf("invalid role %q", msg.Role)
	}
	if msg.SessionID == "" {
		msg.SessionID = core.DefaultSessionID
	}
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now().UTC()
	}
	if msg.ID == "" {
		id, err := ids.NewULID(msg.Timestamp)
		if err != nil {
			return core.StoredMessage{}, err
		}
		msg.ID = id
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.sessions[msg.SessionID]) >= maxMessagesPerSession {
		return core.StoredMessage{}, ErrSessionFull
	}
	s.sessions[msg.SessionID] = append(s.sessions[msg.SessionID], msg)
	return msg, nil
}

func (s *Store) Find(ctx context.Context, q core.FindQuery) ([]core.StoredMessage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	out := make([]core.StoredMessage, 0, len(s.sessions[q.SessionID]))
	for _, m := range s.sessions[q.SessionID] {
		if q.Role == "" || m.Role == q.Role {
			out = append(out, m)
		}
	}
	s.mu.RUnlock()

	// stable sort keeps insertion order among equal timestamps
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.Before(out[j].Timestamp)
	})
	if q.Order == core.Descending {
		for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
			out[i], out[j] = out[j], out[i]
		}
	}

	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

func (s *Store) SearchByRelevance(ctx context.Context, sessionID string, role core.Role, query string, limit int) ([]core.StoredMessage, error) {
	terms := lexical.Terms(query)
	if len(terms) == 0 || limit <= 0 {
		return nil, nil
	}

	candidates, err := s.Find(ctx, core.FindQuery{SessionID: sessionID, Role: role, Order: core.Descending})
	if err != nil {
		return nil, err
	}

	texts := make([]string, len(candidates))
	for i, m := range candidates {
		texts[i] = m.Content
	}

	ranked := lexical.Rank(terms, texts)
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}

	out := make([]core.StoredMessage, len(ranked))
	for i, idx := range ranked {
		out[i] = candidates[idx]
	}
	return out, nil
}

func (s *Store) History(ctx context.Context, sessionID string, limit int) ([]core.StoredMessage, error) {
	all, err := s.Find(ctx, core.FindQuery{SessionID: sessionID})
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(all) > limit {
		all = all[len(all)-limit:]
	}
	return all, nil
}

func (s *Store) ClearSession(ctx context.Context, sessionID string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	n := int64(len(s.sessions[sessionID]))
	delete(s.sessions, sessionID)
	return n, nil
}

func (s *Store) Close() error { return nil }
