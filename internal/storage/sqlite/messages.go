package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/sandevgo/ragway/internal/core"
	"github.com/sandevgo/ragway/pkg/ids"
	"github.com/sandevgo/ragway/pkg/lexical"
	"github.com/sandevgo/ragway/pkg/log"
)

type MessagesRepo struct {
	db  *sql.DB
	now func() time.Time
}

func NewMessagesRepo(db *sql.DB) *MessagesRepo {
	return &MessagesRepo{
		db:  db,
		now: func() time.Time { return time.Now().UTC() },
	}
}

func (r *MessagesRepo) AddMessage(ctx context.Context, msg core.StoredMessage) (core.StoredMessage, error) {
	if !msg.Role.Valid() {
		return core.StoredMessage{}, fmt.Errorf("invalid role %q", msg.Role)
	}
	if msg.SessionID == "" {
		msg.SessionID = core.DefaultSessionID
	}
	if msg.Timestamp.IsZero() {
		msg.Timestamp = r.now()
	}
	if msg.ID == "" {
		id, err := ids.NewULID(msg.Timestamp)
		if err != nil {
			return core.StoredMessage{}, fmt.Errorf("failed to generate message id: %w", err)
		}
		msg.ID = id
	}

	query := `INSERT INTO messages (id, session_id, role, content, created_at) VALUES (?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query, msg.ID, msg.SessionID, string(msg.Role), msg.Content, msg.Timestamp.UnixNano())
	if err != nil {
		return core.StoredMessage{}, fmt.Errorf("failed to insert message: %w", err)
	}
	return msg, nil
}

func (r *MessagesRepo) Find(ctx context.Context, q core.FindQuery) ([]core.StoredMessage, error) {
	direction := "ASC"
	if q.Order == core.Descending {
		direction = "DESC"
	}

	var sb strings.Builder
	sb.WriteString(`SELECT id, session_id, role, content, created_at FROM messages WHERE session_id = ?`)
	args := []any{q.SessionID}
	if q.Role != "" {
		sb.WriteString(` AND role = ?`)
		args = append(args, string(q.Role))
	}
	fmt.Fprintf(&sb, ` ORDER BY created_at %s, seq %s`, direction, direction)
	if q.Limit > 0 {
		sb.WriteString(` LIMIT ?`)
		args = append(args, q.Limit)
	}

	return r.query(ctx, sb.String(), args...)
}

// SearchByRelevance scores every message of the session and role by term
// overlap with query. Ties go to the more recent message.
func (r *MessagesRepo) SearchByRelevance(ctx context.Context, sessionID string, role core.Role, query string, limit int) ([]core.StoredMessage, error) {
	terms := lexical.Terms(query)
	if len(terms) == 0 || limit <= 0 {
		return nil, nil
	}

	candidates, err := r.Find(ctx, core.FindQuery{SessionID: sessionID, Role: role, Order: core.Descending})
	if err != nil {
		return nil, fmt.Errorf("relevance search: %w", err)
	}

	texts := make([]string, len(candidates))
	for i, m := range candidates {
		texts[i] = m.Content
	}

	// candidates are newest first, so equal scores favour recent messages
	ranked := lexical.Rank(terms, texts)
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}

	out := make([]core.StoredMessage, len(ranked))
	for i, idx := range ranked {
		out[i] = candidates[idx]
	}

	log.FromCtx(ctx).Debug().
		Str("session", sessionID).
		Int("candidates", len(candidates)).
		Int("hits", len(out)).
		Msg("relevance search")
	return out, nil
}

// History returns the last limit messages of a session, oldest first.
func (r *MessagesRepo) History(ctx context.Context, sessionID string, limit int) ([]core.StoredMessage, error) {
	messages, err := r.Find(ctx, core.FindQuery{SessionID: sessionID, Order: core.Descending, Limit: limit})
	if err != nil {
		return nil, err
	}

	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}

func (r *MessagesRepo) ClearSession(ctx context.Context, sessionID string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM messages WHERE session_id = ?`, sessionID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete messages: %w", err)
	}
	return res.RowsAffected()
}

func (r *MessagesRepo) query(ctx context.Context, query string, args ...any) ([]core.StoredMessage, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query messages: %w", err)
	}
	defer rows.Close()

	var messages []core.StoredMessage
	for rows.Next() {
		var (
			m       core.StoredMessage
			role    string
			created int64
		)
		if err := rows.Scan(&m.ID, &m.SessionID, &role, &m.Content, &created); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		m.Role = core.Role(role)
		m.Timestamp = time.Unix(0, created).UTC()
		messages = append(messages, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate messages: %w", err)
	}
	return messages, nil
}
