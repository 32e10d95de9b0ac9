package core

import "time"

const (
	RagwayName          = "Ragway"
	RagwayVersion       = "0.1.0"
	RagwayUserAgent     = "Ragway/" + RagwayVersion
	RagwayRepositoryURL = "https://github.com/sandevgo/ragway"

	DefaultSessionID = "default"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAssistant
}

// StoredMessage is a single persisted chat turn. The store owns it; the
// generation core only reads it.
type StoredMessage struct {
	ID        string    `json:"id"`
	SessionID string    `json:"sessionId"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

type GenerationRequest struct {
	RawMessage     string
	SessionID      string
	ProviderConfig ProviderConfig
}

type GenerationResult struct {
	Text      string     `json:"text"`
	Provider  ProviderID `json:"provider"`
	Model     string     `json:"model"`
	Timestamp time.Time  `json:"timestamp"`
}
