package bot

import (
	"context"
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/ndrozd/homebot/internal/observability"
)

// handleTrackers lists the indexers configured in the aggregator. The
// composed reply can exceed one message on busy installs, so it goes
// through the splitter.
func (b *Bot) handleTrackers(ctx context.Context, msg *tgbotapi.Message) {
	b.out.send(ctx, msg.Chat.ID, "🔍 Fetching trackers list...")

	start := time.Now()
	indexers, err := b.idx.Indexers(ctx)
	observability.ObserveCollaborator("jackett", "indexers", time.Since(start), err)
	if err != nil {
		b.replyFailure(ctx, msg.Chat.ID, "❌ Failed to fetch trackers. Make sure Jackett is configured properly.", err)
		return
	}
	if len(indexers) == 0 {
		b.out.send(ctx, msg.Chat.ID, "📭 No trackers configured in Jackett.")
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("📡 **Configured Trackers (%d):**\n\n", len(indexers)))
	for i, idx := range indexers {
		mark := "🔴"
		if idx.Configured {
			mark = "🟢"
		}
		sb.WriteString(fmt.Sprintf("%d. %s %s (`%s`)\n", i+1, mark, idx.Name, idx.ID))
	}
	sb.WriteString("\n💡 Use `/search <query>` to search across all trackers.")

	if err := b.out.sendSplit(ctx, msg.Chat.ID, sb.String(), true); err != nil {
		b.log.Error().Err(err).Msg("failed to deliver trackers list")
	}
}
