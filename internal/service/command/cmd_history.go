package command

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/sandevgo/ragway/internal/core"
)

const (
	defaultHistoryShown = 10
	historyPreviewRunes = 160
)

type HistoryService interface {
	History(ctx context.Context, sessionID string, limit int) ([]core.StoredMessage, error)
	Clear(ctx context.Context, sessionID string) (int64, error)
}

type HistoryCommand struct {
	chat      HistoryService
	formatter *ResponseFormatter
}

func NewHistoryCommand(chat HistoryService) *HistoryCommand {
	return &HistoryCommand{chat: chat, formatter: NewResponseFormatter()}
}

func (c *HistoryCommand) Name() string { return "history" }

func (c *HistoryCommand) Description() string { return "Show recent messages of this chat" }

func (c *HistoryCommand) Execute(ctx context.Context, sessionID string, args []string) (string, error) {
	limit := defaultHistoryShown
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil || n <= 0 {
			return c.formatter.Usage("/history [count]"), nil
		}
		limit = n
	}

	msgs, err := c.chat.History(ctx, sessionID, limit)
	if err != nil {
		return "", err
	}
	if len(msgs) == 0 {
		return c.formatter.Combine(
			c.formatter.Info("History"),
			"No messages yet.",
		), nil
	}

	items := make([]string, len(msgs))
	for i, m := range msgs {
		items[i] = fmt.Sprintf("%s **%s**: %s", m.Timestamp.Format("15:04"), m.Role, preview(m.Content))
	}
	return c.formatter.Combine(
		c.formatter.Info(fmt.Sprintf("History (last %d)", len(msgs))),
		c.formatter.List(items),
	), nil
}

func preview(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= historyPreviewRunes {
		return s
	}
	return string(r[:historyPreviewRunes-3]) + "..."
}

type ClearCommand struct {
	chat      HistoryService
	formatter *ResponseFormatter
}

func NewClearCommand(chat HistoryService) *ClearCommand {
	return &ClearCommand{chat: chat, formatter: NewResponseFormatter()}
}

func (c *ClearCommand) Name() string { return "clear" }

func (c *ClearCommand) Description() string { return "Forget this chat's history" }

func (c *ClearCommand) Execute(ctx context.Context, sessionID string, _ []string) (string, error) {
	n, err := c.chat.Clear(ctx, sessionID)
	if err != nil {
		return "", err
	}
	return c.formatter.Success(fmt.Sprintf("Cleared %d messages", n)), nil
}
