// Package bot implements the Telegram-facing core: the update loop, the
// per-command handlers, the callback router for inline keyboards, and
// the delete-confirmation state machine. Collaborator services are
// consumed through narrow interfaces so handlers can be exercised with
// fakes; the only shared mutable state is the action registry.
package bot

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"github.com/ndrozd/homebot/internal/config"
	"github.com/ndrozd/homebot/internal/domain"
	"github.com/ndrozd/homebot/internal/observability"
	"github.com/ndrozd/homebot/internal/registry"
)

// Result caps per rendering style. Results past the cap are summarized
// in a one-line notice instead of being rendered.
const (
	searchCap   = 8
	torrentsCap = 5
	filmCap     = 3
)

// handlerTimeout bounds one update end to end; individual collaborator
// clients carry their own tighter HTTP timeouts.
const handlerTimeout = 45 * time.Second

// API is the slice of the Telegram transport the bot depends on: send a
// message, issue a raw request (edits, callback acks). *tgbotapi.BotAPI
// satisfies it; tests install a fake.
type API interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// TorrentClient is the torrent-client collaborator contract.
type TorrentClient interface {
	Torrents(ctx context.Context) ([]domain.Torrent, error)
	Add(ctx context.Context, link string) error
	Pause(ctx context.Context, hash string) error
	Resume(ctx context.Context, hash string) error
	PauseAll(ctx context.Context) error
	ResumeAll(ctx context.Context) error
	Delete(ctx context.Context, hash string, deleteFiles bool) error
	SetPriority(ctx context.Context, hash string, top bool) error
	TransferInfo(ctx context.Context) (domain.SpeedLimits, error)
	SetDownloadLimit(ctx context.Context, bytesPerSec int64) error
	SetUploadLimit(ctx context.Context, bytesPerSec int64) error
	Health(ctx context.Context) domain.ServiceStatus
}

// Indexer is the search-aggregator collaborator contract.
type Indexer interface {
	Search(ctx context.Context, query string, limit int) ([]domain.SearchResult, error)
	SearchIndexer(ctx context.Context, indexerID, query string, limit int) ([]domain.SearchResult, error)
	Indexers(ctx context.Context) ([]domain.Indexer, error)
	Health(ctx context.Context) domain.ServiceStatus
}

// MediaServer is the media-server collaborator contract.
type MediaServer interface {
	Health(ctx context.Context) domain.ServiceStatus
}

// SystemCollector provides host snapshots for /system.
type SystemCollector interface {
	Snapshot(ctx context.Context) (domain.SystemInfo, error)
}

// Bot wires the transport, the collaborators, and the action registry
// together.
type Bot struct {
	cfg    config.Config
	store  *registry.Store
	out    *sender
	qb     TorrentClient
	idx    Indexer
	media  MediaServer
	system SystemCollector
	log    zerolog.Logger
}

// New constructs a Bot. The registry store is injected so its lifetime
// and contents are visible to the caller (and to tests).
func New(api API, cfg config.Config, store *registry.Store, qb TorrentClient, idx Indexer, media MediaServer, system SystemCollector, log zerolog.Logger) *Bot {
	return &Bot{
		cfg:    cfg,
		store:  store,
		out:    newSender(api, log),
		qb:     qb,
		idx:    idx,
		media:  media,
		system: system,
		log:    log.With().Str("component", "bot").Logger(),
	}
}

// Run consumes updates until the channel closes or ctx is canceled.
// Each update is handled on its own goroutine; ordering across chats is
// not guaranteed and not needed.
func (b *Bot) Run(ctx context.Context, updates <-chan tgbotapi.Update) error {
	b.log.Info().Str("server", b.cfg.ServerName).Msg("bot is running")
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			go b.handleUpdate(ctx, update)
		}
	}
}

// handleUpdate routes one update. Panics are recovered here so a
// programming error in one handler cannot take the process down; the
// user gets a generic failure message.
func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	ctx, cancel := context.WithTimeout(ctx, handlerTimeout)
	defer cancel()

	defer func() {
		if rec := recover(); rec != nil {
			b.log.Error().
				Interface("panic", rec).
				Bytes("stack", debug.Stack()).
				Msg("panic recovered in update handler")
			if chatID := updateChatID(update); chatID != 0 {
				b.out.send(ctx, chatID, "❌ An error occurred while processing your request.")
			}
		}
	}()

	switch {
	case update.CallbackQuery != nil:
		observability.ObserveUpdate("callback")
		b.handleCallback(ctx, update.CallbackQuery)
	case update.Message != nil:
		observability.ObserveUpdate("message")
		b.handleMessage(ctx, update.Message)
	default:
		observability.ObserveUpdate("other")
	}
}

// handleMessage applies the allow-list and dispatches commands. /chatid
// bypasses the allow-list so users can discover the ID to configure.
func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	if !msg.IsCommand() {
		return
	}
	command := msg.Command()

	if command != "chatid" && !b.cfg.Allowed(msg.Chat.ID) {
		b.log.Warn().Int64("chat_id", msg.Chat.ID).Str("command", command).Msg("access denied")
		b.out.send(ctx, msg.Chat.ID, "❌ Access denied. You are not authorized to use this bot.")
		return
	}

	b.log.Info().
		Int64("chat_id", msg.Chat.ID).
		Str("user", userLabel(msg.From)).
		Str("command", command).
		Msg("command received")

	switch command {
	case "start":
		b.handleStart(ctx, msg)
	case "help":
		b.handleHelp(ctx, msg)
	case "chatid":
		b.handleChatID(ctx, msg)
	case "status":
		b.handleStatus(ctx, msg)
	case "torrents":
		b.handleTorrents(ctx, msg)
	case "search":
		b.handleSearch(ctx, msg)
	case "film":
		b.handleFilm(ctx, msg)
	case "trackers":
		b.handleTrackers(ctx, msg)
	case "speed":
		b.handleSpeed(ctx, msg)
	case "system":
		b.handleSystem(ctx, msg)
	default:
		// Unknown commands are ignored; Telegram shows the command list.
	}
}

// replyFailure logs the collaborator error and sends a short user-facing
// failure message. Errors never propagate past the handler that issued
// the call.
func (b *Bot) replyFailure(ctx context.Context, chatID int64, text string, err error) {
	b.log.Error().Err(err).Int64("chat_id", chatID).Msg("collaborator call failed")
	b.out.send(ctx, chatID, text)
}

func updateChatID(update tgbotapi.Update) int64 {
	switch {
	case update.Message != nil:
		return update.Message.Chat.ID
	case update.CallbackQuery != nil && update.CallbackQuery.Message != nil:
		return update.CallbackQuery.Message.Chat.ID
	}
	return 0
}

func userLabel(u *tgbotapi.User) string {
	if u == nil {
		return "unknown"
	}
	if u.UserName != "" {
		return u.UserName
	}
	return fmt.Sprintf("%d", u.ID)
}
