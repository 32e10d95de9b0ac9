package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sandevgo/ragway/internal/core"
	"github.com/sandevgo/ragway/internal/storage/memstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var base = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

type seed struct {
	role    core.Role
	content string
	at      time.Duration
}

func newStore(t *testing.T, session string, seeds ...seed) *memstore.Store {
	t.Helper()
	s := memstore.New()
	for _, sd := range seeds {
		_, err := s.AddMessage(context.Background(), core.StoredMessage{
			SessionID: session,
			Role:      sd.role,
			Content:   sd.content,
			Timestamp: base.Add(sd.at),
		})
		require.NoError(t, err)
	}
	return s
}

func userTexts(b core.ContextBundle) []string {
	out := make([]string, len(b))
	for i, p := range b {
		out[i] = p.UserText
	}
	return out
}

func TestRetriever_SingleExchangeByRecency(t *testing.T) {
	store := newStore(t, "s1",
		seed{core.RoleUser, "What's the capital of France?", 0},
		seed{core.RoleAssistant, "Paris.", time.Second},
	)

	bundle := NewRetriever(store).Retrieve(context.Background(), "And its population?", "s1", 5)

	require.Len(t, bundle, 1)
	assert.Equal(t, "What's the capital of France?", bundle[0].UserText)
	assert.Equal(t, "Paris.", bundle[0].AssistantText)
	assert.Equal(t, core.OriginRecency, bundle[0].Origin)
}

func TestRetriever_EmptySession(t *testing.T) {
	bundle := NewRetriever(memstore.New()).Retrieve(context.Background(), "hello", "s1", 5)
	assert.Empty(t, bundle)
}

func TestRetriever_RelevanceFirstThenRecencyWithoutDuplicates(t *testing.T) {
	store := newStore(t, "s1",
		seed{core.RoleUser, "Tell me about Rust lifetimes", 0},
		seed{core.RoleAssistant, "Lifetimes are...", time.Second},
		seed{core.RoleUser, "How do goroutines work?", 10 * time.Second},
		seed{core.RoleAssistant, "Goroutines are...", 11 * time.Second},
		seed{core.RoleUser, "Best pizza in Naples", 20 * time.Second},
		seed{core.RoleAssistant, "Try...", 21 * time.Second},
		seed{core.RoleUser, "Explain goroutines and channels", 30 * time.Second},
		seed{core.RoleAssistant, "Channels are...", 31 * time.Second},
	)

	bundle := NewRetriever(store).Retrieve(context.Background(), "goroutines channels", "s1", 3)

	assert.Equal(t, []string{
		"Explain goroutines and channels",
		"How do goroutines work?",
		"Best pizza in Naples",
	}, userTexts(bundle))
	assert.Equal(t, core.OriginRelevance, bundle[0].Origin)
	assert.Equal(t, core.OriginRelevance, bundle[1].Origin)
	assert.Equal(t, core.OriginRecency, bundle[2].Origin)

	ids := map[string]bool{}
	for _, p := range bundle {
		assert.False(t, ids[p.UserMessageID], "duplicate user message %s", p.UserMessageID)
		ids[p.UserMessageID] = true
	}
}

func TestRetriever_PairingInvariant(t *testing.T) {
	store := newStore(t, "s1",
		seed{core.RoleAssistant, "stale reply", -time.Second},
		seed{core.RoleUser, "first question", 0},
		seed{core.RoleUser, "second question", 2 * time.Second},
		seed{core.RoleAssistant, "reply A", 3 * time.Second},
		seed{core.RoleAssistant, "reply B", 4 * time.Second},
		seed{core.RoleUser, "unanswered question", 10 * time.Second},
	)

	bundle := NewRetriever(store).Retrieve(context.Background(), "", "s1", 5)

	// the unanswered message is dropped and both earlier questions share the
	// first reply that follows them
	require.Len(t, bundle, 2)
	assert.Equal(t, []string{"second question", "first question"}, userTexts(bundle))

	replies, err := store.Find(context.Background(), core.FindQuery{SessionID: "s1", Role: core.RoleAssistant})
	require.NoError(t, err)

	for _, p := range bundle {
		assert.False(t, p.AssistantAt.Before(p.UserAt))
		for _, r := range replies {
			between := !r.Timestamp.Before(p.UserAt) && r.Timestamp.Before(p.AssistantAt)
			assert.False(t, between, "reply %q sits between %q and its pair", r.Content, p.UserText)
		}
		assert.Equal(t, "reply A", p.AssistantText)
	}
}

func TestRetriever_SameTimestampReply(t *testing.T) {
	store := newStore(t, "s1",
		seed{core.RoleUser, "ping", 0},
		seed{core.RoleAssistant, "pong", 0},
	)

	bundle := NewRetriever(store).Retrieve(context.Background(), "ping", "s1", 5)

	require.Len(t, bundle, 1)
	assert.Equal(t, "pong", bundle[0].AssistantText)
	assert.Equal(t, core.OriginRelevance, bundle[0].Origin)
}

func TestRetriever_BoundedBySessionAndLimit(t *testing.T) {
	store := newStore(t, "s1")
	for i := range 10 {
		offset := time.Duration(i) * 10 * time.Second
		_, err := store.AddMessage(context.Background(), core.StoredMessage{SessionID: "s1", Role: core.RoleUser, Content: "question", Timestamp: base.Add(offset)})
		require.NoError(t, err)
		_, err = store.AddMessage(context.Background(), core.StoredMessage{SessionID: "s1", Role: core.RoleAssistant, Content: "answer", Timestamp: base.Add(offset + time.Second)})
		require.NoError(t, err)
	}
	_, err := store.AddMessage(context.Background(), core.StoredMessage{SessionID: "other", Role: core.RoleUser, Content: "question"})
	require.NoError(t, err)

	bundle := NewRetriever(store).Retrieve(context.Background(), "question", "s1", 4)
	assert.Len(t, bundle, 4)

	assert.Empty(t, NewRetriever(store).Retrieve(context.Background(), "question", "s1", 0))
}

type failingStore struct {
	core.MessageStore
}

func (failingStore) Find(context.Context, core.FindQuery) ([]core.StoredMessage, error) {
	return nil, errors.New("database is locked")
}

func (failingStore) SearchByRelevance(context.Context, string, core.Role, string, int) ([]core.StoredMessage, error) {
	return nil, errors.New("database is locked")
}

func TestRetriever_StoreFailureYieldsEmptyBundle(t *testing.T) {
	bundle := NewRetriever(failingStore{}).Retrieve(context.Background(), "anything", "s1", 5)
	assert.Empty(t, bundle)
}
