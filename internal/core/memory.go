package core

import "time"

// PairOrigin tells which selection phase picked the user side of a pair.
type PairOrigin string

const (
	OriginRelevance PairOrigin = "relevance"
	OriginRecency   PairOrigin = "recency"
)

// ContextPair is a prior (user, assistant) exchange used as grounding.
type ContextPair struct {
	UserText      string
	AssistantText string

	UserMessageID      string
	AssistantMessageID string
	UserAt             time.Time
	AssistantAt        time.Time
	Origin             PairOrigin
}

// ContextBundle is ordered: relevance-ranked pairs first, then recency
// backfill. It never holds two pairs for the same user message.
type ContextBundle []ContextPair

const DefaultContextLimit = 5
