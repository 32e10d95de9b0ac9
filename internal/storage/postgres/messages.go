package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sandevgo/ragway/internal/core"
	"github.com/sandevgo/ragway/pkg/ids"
	"github.com/sandevgo/ragway/pkg/lexical"
	"github.com/sandevgo/ragway/pkg/log"
)

// MessagesRepo does not close the pool it is given.
type MessagesRepo struct {
	pool *pgxpool.Pool
	now  func() time.Time
}

func NewMessagesRepo(pool *pgxpool.Pool) *MessagesRepo {
	return &MessagesRepo{
		pool: pool,
		// postgres keeps microseconds
		now: func() time.Time { return time.Now().UTC().Truncate(time.Microsecond) },
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

	_, err := r.pool.Exec(ctx,
		`INSERT INTO messages (id, session_id, role, content, created_at) VALUES ($1, $2, $3, $4, $5)`,
		msg.ID, msg.SessionID, string(msg.Role), msg.Content, msg.Timestamp)
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
	sb.WriteString(`SELECT id, session_id, role, content, created_at FROM messages WHERE session_id = $1`)
	args := []any{q.SessionID}
	if q.Role != "" {
		args = append(args, string(q.Role))
		fmt.Fprintf(&sb, ` AND role = $%d`, len(args))
	}
	fmt.Fprintf(&sb, ` ORDER BY created_at %s, seq %s`, direction, direction)
	if q.Limit > 0 {
		args = append(args, q.Limit)
		fmt.Fprintf(&sb, ` LIMIT $%d`, len(args))
	}

	return r.query(ctx, sb.String(), args...)
}

// SearchByRelevance narrows candidates with the full-text index, then ranks
// them by term overlap like the other stores.
func (r *MessagesRepo) SearchByRelevance(ctx context.Context, sessionID string, role core.Role, query string, limit int) ([]core.StoredMessage, error) {
	terms := lexical.Terms(query)
	if len(terms) == 0 || limit <= 0 {
		return nil, nil
	}

	// terms hold only letters and digits, so they are safe tsquery operands
	tsquery := strings.Join(terms, " | ")
	candidates, err := r.query(ctx, `
		SELECT id, session_id, role, content, created_at
		FROM messages
		WHERE session_id = $1 AND role = $2
		  AND to_tsvector('simple', content) @@ to_tsquery('simple', $3)
		ORDER BY created_at DESC, seq DESC`,
		sessionID, string(role), tsquery)
	if err != nil {
		return nil, fmt.Errorf("relevance search: %w", err)
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

	log.FromCtx(ctx).Debug().
		Str("session", sessionID).
		Int("candidates", len(candidates)).
		Int("hits", len(out)).
		Msg("relevance search")
	return out, nil
}

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
	tag, err := r.pool.Exec(ctx, `DELETE FROM messages WHERE session_id = $1`, sessionID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete messages: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (r *MessagesRepo) query(ctx context.Context, sql string, args ...any) ([]core.StoredMessage, error) {
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query messages: %w", err)
	}

	messages, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (core.StoredMessage, error) {
		var (
			m    core.StoredMessage
			role string
		)
		if err := row.Scan(&m.ID, &m.SessionID, &role, &m.Content, &m.Timestamp); err != nil {
			return core.StoredMessage{}, err
		}
		m.Role = core.Role(role)
		m.Timestamp = m.Timestamp.UTC()
		return m, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan messages: %w", err)
	}
	return messages, nil
}
