// Package ops implements a one-way operator notification sink: the
// Scheduler pushes lifecycle events here for visibility, with no
// inbound command dispatch (spec's Non-goals exclude the control UI,
// but ambient operational logging is carried regardless). Adapted from
// internal/bot/telegram.go's Bot.sendMarkdown, trimmed to push-only.
package ops

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog/log"

	"github.com/oneedge/orderengine/internal/domain"
)

// Notifier pushes formatted order-lifecycle messages to a single
// operator chat. A nil *Notifier (no token configured) is valid and
// every method becomes a no-op, so wiring it is optional.
type Notifier struct {
	api    *tgbotapi.BotAPI
	chatID int64
}

// New connects a bot client. Returns (nil, nil) if token is empty so
// callers can treat a disabled notifier the same as a real one.
func New(token string, chatID int64) (*Notifier, error) {
	if token == "" {
		return nil, nil
	}
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("connect telegram bot: %w", err)
	}
	log.Info().Str("username", api.Self.UserName).Msg("operator notifier connected")
	return &Notifier{api: api, chatID: chatID}, nil
}

func (n *Notifier) OrderSubmitted(o *domain.Order, hash string) {
	n.send(fmt.Sprintf("🟢 *%s* submitted child order\nmaker: `%s`\nhash: `%s`\ntrigger #%d",
		o.Type, o.Maker, hash, o.TriggerCount))
}

func (n *Notifier) OrderCompleted(o *domain.Order) {
	n.send(fmt.Sprintf("✅ *%s* completed\nmaker: `%s`\nid: `%s`", o.Type, o.Maker, o.ID))
}

func (n *Notifier) OrderFailed(o *domain.Order, reason string) {
	n.send(fmt.Sprintf("🔴 *%s* FAILED\nmaker: `%s`\nid: `%s`\nreason: %s", o.Type, o.Maker, o.ID, reason))
}

func (n *Notifier) send(text string) {
	if n == nil || n.api == nil {
		return
	}
	msg := tgbotapi.NewMessage(n.chatID, text)
	msg.ParseMode = "Markdown"
	msg.DisableWebPagePreview = true
	if _, err := n.api.Send(msg); err != nil {
		log.Error().Err(err).Msg("failed to send operator notification")
	}
}
