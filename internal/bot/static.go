package bot

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func (b *Bot) handleStart(ctx context.Context, msg *tgbotapi.Message) {
	b.out.send(ctx, msg.Chat.ID, fmt.Sprintf(
		"🏠 Welcome to %s Management Bot!\n\n"+
			"Available commands:\n"+
			"/status - Show services status\n"+
			"/torrents - Show active torrents\n"+
			"/search <query> - Search torrents via Jackett\n"+
			"/film <query> - Search films on the configured tracker\n"+
			"/trackers - Show available trackers\n"+
			"/speed - Control global speed limits\n"+
			"/system - Show system information\n"+
			"/chatid - Show your Chat ID for configuration",
		b.cfg.ServerName))
}

func (b *Bot) handleHelp(ctx context.Context, msg *tgbotapi.Message) {
	b.out.send(ctx, msg.Chat.ID,
		"🆘 Available commands:\n\n"+
			"/status - Show all services status\n"+
			"/torrents - Show active torrents in qBittorrent\n"+
			"/search <query> - Search for torrents via Jackett\n"+
			"/film <query> - Search films on the configured tracker\n"+
			"/trackers - Show available trackers list\n"+
			"/speed - Control global speed limits\n"+
			"/system - Show system information (CPU, RAM, disk)\n"+
			"/chatid - Show your Chat ID for configuration\n\n"+
			"💡 Use /start to see the welcome message again.")
}

func (b *Bot) handleChatID(ctx context.Context, msg *tgbotapi.Message) {
	username := "N/A"
	var userID int64
	if msg.From != nil {
		userID = msg.From.ID
		if msg.From.UserName != "" {
			username = msg.From.UserName
		}
	}
	b.out.send(ctx, msg.Chat.ID, fmt.Sprintf(
		"📋 Chat ID: %d\nUser ID: %d\nUsername: %s", msg.Chat.ID, userID, username))
}
