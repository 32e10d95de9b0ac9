package telegram

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/sandevgo/ragway/internal/config"
	"github.com/sandevgo/ragway/internal/core"
	"github.com/sandevgo/ragway/internal/service/chat"
	"github.com/sandevgo/ragway/pkg/log"
	tele "gopkg.in/telebot.v3"
)

const baseContextKey = "base_context"

type ChatService interface {
	Send(ctx context.Context, req core.GenerationRequest) (chat.Reply, error)
}

type ProviderSelector interface {
	Get(sessionID string) core.ProviderConfig
}

type Bot struct {
	bot       *tele.Bot
	cfg       *config.TelegramConfig
	chat      ChatService
	selection ProviderSelector
	router    core.CmdRouter
	sender    *sender
}

func NewBot(
	ctx context.Context,
	cfg *config.TelegramConfig,
	chat ChatService,
	selection ProviderSelector,
	router core.CmdRouter,
) (*Bot, error) {
	pref := tele.Settings{
		Token:  cfg.Token,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
	}

	b, err := tele.NewBot(pref)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}

	bot := &Bot{
		bot:       b,
		cfg:       cfg,
		chat:      chat,
		selection: selection,
		router:    router,
		sender:    newSender(b),
	}

	b.Use(func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			c.Set(baseContextKey, ctx)
			return next(c)
		}
	})

	// owner only, everyone else is ignored
	b.Use(func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			if c.Sender() == nil || c.Sender().ID != cfg.OwnerID {
				return nil
			}
			return next(c)
		}
	})

	b.Handle(tele.OnText, bot.handleMessage)

	return bot, nil
}

func (b *Bot) Start(ctx context.Context) error {
	log.FromCtx(ctx).Info().Msg("starting telegram bot")
	b.bot.Start()
	return nil
}

func (b *Bot) Shutdown(ctx context.Context) error {
	b.bot.Stop()
	return nil
}

func (b *Bot) handleMessage(c tele.Context) error {
	ctx := c.Get(baseContextKey).(context.Context)
	sessionID := sessionFor(b.cfg.SessionPrefix, c.Chat().ID)
	logger := log.FromCtx(ctx).With().Str("session", sessionID).Logger()
	ctx = logger.WithContext(ctx)

	if reply, handled := b.router.Execute(ctx, sessionID, c.Text()); handled {
		return b.sender.sendMarkdown(ctx, c.Chat(), reply, false)
	}

	_ = c.Notify(tele.Typing)

	reply, err := b.chat.Send(ctx, core.GenerationRequest{
		RawMessage:     c.Text(),
		SessionID:      sessionID,
		ProviderConfig: b.selection.Get(sessionID),
	})
	if err != nil {
		logger.Error().Err(err).Msg("chat send failed")
		return c.Send(errorText(err))
	}

	return b.sender.sendMarkdown(ctx, c.Chat(), reply.Text, false)
}

func sessionFor(prefix string, chatID int64) string {
	return prefix + strconv.FormatInt(chatID, 10)
}

// errorText renders provider failures as "kind: message". Anything else is
// an internal failure whose details stay in the log.
func errorText(err error) string {
	var pe *core.ProviderError
	if errors.As(err, &pe) {
		return fmt.Sprintf("%s: %s", pe.Kind, pe.Message)
	}
	return "InternalError: the request could not be completed"
}
