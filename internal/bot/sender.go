package bot

import (
	"context"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/ndrozd/homebot/internal/markup"
)

// sendInterval paces outbound messages so multi-part replies do not trip
// Telegram's flood control. Fixed and conservative rather than tuned.
const sendInterval = 100 * time.Millisecond

// sender wraps the transport with token-bucket pacing and uniform error
// logging. Send failures are logged and swallowed: a lost reply is not
// worth crashing a handler over, and the user can re-issue the command.
type sender struct {
	api     API
	limiter *rate.Limiter
	log     zerolog.Logger
}

func newSender(api API, log zerolog.Logger) *sender {
	return &sender{
		api:     api,
		limiter: rate.NewLimiter(rate.Every(sendInterval), 1),
		log:     log.With().Str("component", "sender").Logger(),
	}
}

// send delivers a plain-text message.
func (s *sender) send(ctx context.Context, chatID int64, text string) (tgbotapi.Message, error) {
	return s.deliver(ctx, tgbotapi.NewMessage(chatID, text))
}

// sendMarkdown delivers a Markdown-formatted message.
func (s *sender) sendMarkdown(ctx context.Context, chatID int64, text string) (tgbotapi.Message, error) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	return s.deliver(ctx, msg)
}

// sendKeyboard delivers a message with an attached inline keyboard.
func (s *sender) sendKeyboard(ctx context.Context, chatID int64, text string, kb tgbotapi.InlineKeyboardMarkup) (tgbotapi.Message, error) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = kb
	return s.deliver(ctx, msg)
}

// sendSplit splits a composed reply at the transport limit and delivers
// the parts in order, paced by the limiter.
func (s *sender) sendSplit(ctx context.Context, chatID int64, text string, markdownMode bool) error {
	for _, part := range markup.SplitMessage(text, markup.MaxMessageLen) {
		msg := tgbotapi.NewMessage(chatID, part)
		if markdownMode {
			msg.ParseMode = tgbotapi.ModeMarkdown
		}
		if _, err := s.deliver(ctx, msg); err != nil {
			return err
		}
	}
	return nil
}

// editKeyboard swaps the inline keyboard on an existing message in
// place, leaving the text untouched.
func (s *sender) editKeyboard(ctx context.Context, chatID int64, messageID int, kb tgbotapi.InlineKeyboardMarkup) error {
	edit := tgbotapi.NewEditMessageReplyMarkup(chatID, messageID, kb)
	_, err := s.deliver(ctx, edit)
	return err
}

// editText replaces both the text and the keyboard of an existing
// message in place.
func (s *sender) editText(ctx context.Context, chatID int64, messageID int, text string, kb tgbotapi.InlineKeyboardMarkup) error {
	edit := tgbotapi.NewEditMessageTextAndMarkup(chatID, messageID, text, kb)
	_, err := s.deliver(ctx, edit)
	// Re-rendering identical content is a no-op race, not a failure.
	if err != nil && strings.Contains(err.Error(), "message is not modified") {
		return nil
	}
	return err
}

// ack answers a callback query, clearing the tapping client's pending
// indicator. An empty text is a silent acknowledgment.
func (s *sender) ack(queryID, text string) {
	if _, err := s.api.Request(tgbotapi.NewCallback(queryID, text)); err != nil {
		s.log.Warn().Err(err).Msg("callback ack failed")
	}
}

func (s *sender) deliver(ctx context.Context, c tgbotapi.Chattable) (tgbotapi.Message, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return tgbotapi.Message{}, err
	}
	msg, err := s.api.Send(c)
	if err != nil {
		s.log.Warn().Err(err).Msg("send failed")
	}
	return msg, err
}
