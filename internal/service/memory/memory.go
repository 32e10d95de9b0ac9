package memory

import (
	"context"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/sandevgo/ragway/internal/core"
	"github.com/sandevgo/ragway/pkg/log"
)

// Retriever assembles prior same-session exchanges relevant to a query.
type Retriever struct {
	store core.MessageStore
}

func NewRetriever(store core.MessageStore) *Retriever {
	return &Retriever{store: store}
}

// Retrieve returns at most limit pairs: relevance hits first, then the most
// recent user messages not already chosen. Store failures are logged and
// yield an empty bundle.
func (r *Retriever) Retrieve(ctx context.Context, query, sessionID string, limit int) core.ContextBundle {
	if limit <= 0 {
		return nil
	}
	logger := log.FromCtx(ctx)

	var relevant, recent, replies []core.StoredMessage

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		if strings.TrimSpace(query) != "" {
			relevant, err = r.store.SearchByRelevance(gctx, sessionID, core.RoleUser, query, limit)
		}
		return err
	})
	g.Go(func() error {
		var err error
		recent, err = r.store.Find(gctx, core.FindQuery{
			SessionID: sessionID,
			Role:      core.RoleUser,
			Order:     core.Descending,
			Limit:     limit,
		})
		return err
	})
	g.Go(func() error {
		var err error
		replies, err = r.store.Find(gctx, core.FindQuery{
			SessionID: sessionID,
			Role:      core.RoleAssistant,
			Order:     core.Ascending,
		})
		return err
	})

	if err := g.Wait(); err != nil {
		logger.Warn().
			Err(err).
			Str("kind", string(core.KindStoreUnavailable)).
			Str("session", sessionID).
			Msg("context retrieval failed, continuing without context")
		return nil
	}

	selected := selectUserMessages(relevant, recent, limit)
	bundle := pairReplies(selected, replies)

	logger.Debug().
		Str("session", sessionID).
		Int("relevant", len(relevant)).
		Int("selected", len(selected)).
		Int("pairs", len(bundle)).
		Msg("context retrieved")

	return bundle
}

type selection struct {
	msg    core.StoredMessage
	origin core.PairOrigin
}

func selectUserMessages(relevant, recent []core.StoredMessage, limit int) []selection {
	seen := make(map[string]struct{}, limit)
	out := make([]selection, 0, limit)

	add := func(msgs []core.StoredMessage, origin core.PairOrigin) {
		for _, m := range msgs {
			if len(out) >= limit {
				return
			}
			if _, dup := seen[m.ID]; dup {
				continue
			}
			seen[m.ID] = struct{}{}
			out = append(out, selection{msg: m, origin: origin})
		}
	}

	add(relevant, core.OriginRelevance)
	add(recent, core.OriginRecency)
	return out
}

// pairReplies matches each user message with the earliest reply at or after
// it. replies must be in ascending timestamp order.
func pairReplies(selected []selection, replies []core.StoredMessage) core.ContextBundle {
	bundle := make(core.ContextBundle, 0, len(selected))
	for _, s := range selected {
		i := sort.Search(len(replies), func(i int) bool {
			return !replies[i].Timestamp.Before(s.msg.Timestamp)
		})
		if i == len(replies) {
			continue
		}
		reply := replies[i]
		bundle = append(bundle, core.ContextPair{
			UserText:           s.msg.Content,
			AssistantText:      reply.Content,
			UserMessageID:      s.msg.ID,
			AssistantMessageID: reply.ID,
			UserAt:             s.msg.Timestamp,
			AssistantAt:        reply.Timestamp,
			Origin:             s.origin,
		})
	}
	return bundle
}
