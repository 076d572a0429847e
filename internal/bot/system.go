package bot

import (
	"context"
	"fmt"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/ndrozd/homebot/internal/markup"
	"github.com/ndrozd/homebot/internal/observability"
)

// handleSystem renders a host snapshot: uptime, memory, CPU load, and
// root-filesystem usage. The collector degrades per probe, so a partial
// report is normal on constrained hosts.
func (b *Bot) handleSystem(ctx context.Context, msg *tgbotapi.Message) {
	b.out.send(ctx, msg.Chat.ID, "🔍 Collecting system information...")

	start := time.Now()
	info, err := b.system.Snapshot(ctx)
	observability.ObserveCollaborator("system", "snapshot", time.Since(start), err)
	if err != nil {
		b.replyFailure(ctx, msg.Chat.ID, "❌ Failed to collect system information.", err)
		return
	}

	memPct := 0.0
	if info.Memory.Total > 0 {
		memPct = float64(info.Memory.Used) / float64(info.Memory.Total) * 100
	}
	diskPct := 0.0
	if info.Disk.Total > 0 {
		diskPct = float64(info.Disk.Used) / float64(info.Disk.Total) * 100
	}

	text := fmt.Sprintf(
		"🖥️ **%s System Info:**\n\n"+
			"⏱️ Uptime: %s\n\n"+
			"🧠 Memory: %s / %s (%.0f%%)\n"+
			"%s\n\n"+
			"⚙️ CPU: %.1f%%\n"+
			"%s\n\n"+
			"💾 Disk: %s / %s (%.0f%%)\n"+
			"%s",
		b.cfg.ServerName,
		markup.FormatUptime(info.Uptime),
		markup.FormatSize(info.Memory.Used), markup.FormatSize(info.Memory.Total), memPct,
		markup.ProgressBar(int(memPct)),
		info.CPUUsage,
		markup.ProgressBar(int(info.CPUUsage)),
		markup.FormatSize(info.Disk.Used), markup.FormatSize(info.Disk.Total), diskPct,
		markup.ProgressBar(int(diskPct)),
	)

	b.out.sendMarkdown(ctx, msg.Chat.ID, text)
}
