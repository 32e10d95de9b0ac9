package core

import "context"

type SortOrder int

const (
	Ascending SortOrder = iota
	Descending
)

type FindQuery struct {
	SessionID string
	Role      Role
	Order     SortOrder
	// Limit 0 returns every matching message.
	Limit int
}

// MessageStore is the read side the generation core depends on.
// Messages with equal timestamps keep insertion order.
type MessageStore interface {
	Find(ctx context.Context, q FindQuery) ([]StoredMessage, error)
	// SearchByRelevance ranks by lexical term overlap, best first. Messages
	// sharing no term with the query are not returned.
	SearchByRelevance(ctx context.Context, sessionID string, role Role, query string, limit int) ([]StoredMessage, error)
}

// MessageWriter is the write side owned by calling layers.
type MessageWriter interface {
	AddMessage(ctx context.Context, msg StoredMessage) (StoredMessage, error)
	History(ctx context.Context, sessionID string, limit int) ([]StoredMessage, error)
	ClearSession(ctx context.Context, sessionID string) (int64, error)
}

type MessageRepository interface {
	MessageStore
	MessageWriter
}
