package bot

import (
	"context"
	"fmt"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/ndrozd/homebot/internal/domain"
	"github.com/ndrozd/homebot/internal/markup"
	"github.com/ndrozd/homebot/internal/observability"
)

// speedStep is the increment applied by the +/- speed-panel buttons.
const speedStep = 1024 * 1024 // 1 MB/s

// handleSpeed fetches the current global limits and renders the speed
// control panel. The panel's buttons carry no tokens; the limits are
// re-read from the client on every tap.
func (b *Bot) handleSpeed(ctx context.Context, msg *tgbotapi.Message) {
	start := time.Now()
	limits, err := b.qb.TransferInfo(ctx)
	observability.ObserveCollaborator("qbittorrent", "transfer_info", time.Since(start), err)
	if err != nil {
		b.replyFailure(ctx, msg.Chat.ID, "❌ Failed to fetch speed limits.", err)
		return
	}

	b.out.sendKeyboard(ctx, msg.Chat.ID, speedPanelText(limits), markup.SpeedPanel(limits))
}

// updateSpeedPanel re-reads the limits and re-renders the panel message
// in place. Used after every speed mutation and on refresh.
func (b *Bot) updateSpeedPanel(ctx context.Context, chatID int64, messageID int) error {
	limits, err := b.qb.TransferInfo(ctx)
	if err != nil {
		return err
	}
	return b.out.editText(ctx, chatID, messageID, speedPanelText(limits), markup.SpeedPanel(limits))
}

func speedPanelText(limits domain.SpeedLimits) string {
	return fmt.Sprintf(
		"🚦 Global Speed Limits:\n\n⬇️ Download: %s\n⬆️ Upload: %s",
		limitText(limits.Download),
		limitText(limits.Upload),
	)
}

func limitText(bytesPerSec int64) string {
	if bytesPerSec <= 0 {
		return "∞ unlimited"
	}
	return markup.FormatSpeed(bytesPerSec)
}
