package bot

import (
	"context"
	"fmt"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/ndrozd/homebot/internal/markup"
	"github.com/ndrozd/homebot/internal/observability"
	"github.com/ndrozd/homebot/internal/registry"
)

var stateEmoji = map[string]string{
	"downloading": "📥",
	"uploading":   "📤",
	"completed":   "✅",
	"pausedDL":    "⏸️",
	"pausedUP":    "⏸️",
	"stoppedDL":   "⏸️",
	"stoppedUP":   "⏸️",
	"queuedDL":    "⏳",
	"queuedUP":    "⏳",
	"stalledDL":   "🔄",
	"stalledUP":   "🔄",
	"error":       "❌",
}

func emojiForState(state string) string {
	if e, ok := stateEmoji[state]; ok {
		return e
	}
	return "❓"
}

// handleTorrents lists active torrents, one message per torrent with a
// control keyboard, followed by the totals and the bulk-operations
// panel. Each control keyboard references a freshly issued token whose
// offer caches the torrent's state.
func (b *Bot) handleTorrents(ctx context.Context, msg *tgbotapi.Message) {
	b.out.send(ctx, msg.Chat.ID, "🔍 Fetching torrent information...")

	start := time.Now()
	torrents, err := b.qb.Torrents(ctx)
	observability.ObserveCollaborator("qbittorrent", "list", time.Since(start), err)
	if err != nil {
		b.replyFailure(ctx, msg.Chat.ID, "❌ Failed to fetch torrents information.", err)
		return
	}
	if len(torrents) == 0 {
		b.out.send(ctx, msg.Chat.ID, "📭 No active torrents found.")
		return
	}

	shown := torrents
	if len(shown) > torrentsCap {
		shown = shown[:torrentsCap]
	}

	for _, t := range shown {
		text := fmt.Sprintf("%s %s\n%s %d%%\n📁 %s",
			emojiForState(t.State),
			markup.TruncateTitle(t.Name, 50),
			markup.ProgressBar(t.Progress),
			t.Progress,
			markup.FormatSize(t.Size),
		)
		if t.DLSpeed > 0 {
			text += " | ⬇️ " + markup.FormatSpeed(t.DLSpeed)
		}
		if t.UPSpeed > 0 {
			text += " | ⬆️ " + markup.FormatSpeed(t.UPSpeed)
		}

		offer := registry.TorrentOffer{
			Hash:  t.Hash,
			Name:  t.Name,
			State: t.State,
			Phase: registry.PhaseForState(t.State),
		}
		token := b.store.IssueTorrent(offer)
		b.out.sendKeyboard(ctx, msg.Chat.ID, text, markup.TorrentControls(offer, token))
	}

	if len(torrents) > torrentsCap {
		b.out.send(ctx, msg.Chat.ID, fmt.Sprintf(
			"... and %d more torrents (showing first %d)", len(torrents)-torrentsCap, torrentsCap))
	}

	var totalDL, totalUP int64
	for _, t := range torrents {
		totalDL += t.DLSpeed
		totalUP += t.UPSpeed
	}
	if totalDL > 0 || totalUP > 0 {
		totals := "📊 Total Speed:\n"
		if totalDL > 0 {
			totals += "⬇️ " + markup.FormatSpeed(totalDL) + "\n"
		}
		if totalUP > 0 {
			totals += "⬆️ " + markup.FormatSpeed(totalUP)
		}
		b.out.send(ctx, msg.Chat.ID, totals)
	}

	if bulk := markup.BulkControls(torrents); len(bulk.InlineKeyboard) > 0 {
		b.out.sendKeyboard(ctx, msg.Chat.ID, "🎛️ Bulk Operations:", bulk)
	}
}
