package bot

import (
	"context"
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/ndrozd/homebot/internal/domain"
	"github.com/ndrozd/homebot/internal/markup"
	"github.com/ndrozd/homebot/internal/observability"
	"github.com/ndrozd/homebot/internal/registry"
)

// handleSearch runs an aggregate search across every configured indexer
// and renders up to searchCap results, each as its own message with a
// download button. The token is issued before the keyboard references
// it, so a tap can never outrun registration.
func (b *Bot) handleSearch(ctx context.Context, msg *tgbotapi.Message) {
	query := strings.TrimSpace(msg.CommandArguments())
	if query == "" {
		b.out.sendMarkdown(ctx, msg.Chat.ID,
			"🔍 **Search Usage:**\n"+
				"`/search <query>`\n\n"+
				"**Examples:**\n"+
				"`/search Ubuntu 22.04`\n"+
				"`/search The Matrix 1999`\n"+
				"`/search Breaking Bad S01`")
		return
	}

	b.out.send(ctx, msg.Chat.ID, fmt.Sprintf("🔍 Searching for: %q...", query))

	start := time.Now()
	results, err := b.idx.Search(ctx, query, 0)
	observability.ObserveCollaborator("jackett", "search", time.Since(start), err)
	if err != nil {
		b.replyFailure(ctx, msg.Chat.ID, "❌ Failed to search torrents. Make sure Jackett is configured properly.", err)
		return
	}
	if len(results) == 0 {
		b.out.send(ctx, msg.Chat.ID, "📭 No results found for your search query.")
		return
	}

	b.renderSearchResults(ctx, msg.Chat.ID, query, results, searchCap)
}

// handleFilm searches only the configured film indexer and renders a
// shorter result list, followed by query tips.
func (b *Bot) handleFilm(ctx context.Context, msg *tgbotapi.Message) {
	query := strings.TrimSpace(msg.CommandArguments())
	if query == "" {
		b.out.sendMarkdown(ctx, msg.Chat.ID,
			"🎬 **Поиск фильмов:**\n"+
				"`/film <название фильма>`\n\n"+
				"**Примеры:**\n"+
				"`/film Брат`\n"+
				"`/film Матрица`\n"+
				"`/film Интерстеллар 2014`")
		return
	}

	b.out.send(ctx, msg.Chat.ID, fmt.Sprintf("🎬 Ищу %q на %s...", query, b.cfg.FilmIndexer))

	start := time.Now()
	results, err := b.idx.SearchIndexer(ctx, b.cfg.FilmIndexer, query, 0)
	observability.ObserveCollaborator("jackett", "search_indexer", time.Since(start), err)
	if err != nil {
		b.replyFailure(ctx, msg.Chat.ID, "❌ Произошла ошибка при поиске. Проверьте настройки Jackett.", err)
		return
	}
	if len(results) == 0 {
		b.out.send(ctx, msg.Chat.ID, "📭 Ничего не найдено. Попробуйте другой запрос или проверьте настройки Jackett.")
		return
	}

	b.renderSearchResults(ctx, msg.Chat.ID, query, results, filmCap)

	b.out.send(ctx, msg.Chat.ID,
		"💡 Советы для лучших результатов:\n"+
			"• Добавьте год: \"Брат 1997\"\n"+
			"• Укажите качество: \"BluRay\", \"WEB-DL\"\n"+
			"• Попробуйте английское название: \"Matrix\"")
}

// renderSearchResults sends up to cap results, one message per result
// with its own download button, then a summary line.
func (b *Bot) renderSearchResults(ctx context.Context, chatID int64, query string, results []domain.SearchResult, limit int) {
	shown := results
	if len(shown) > limit {
		shown = shown[:limit]
	}

	for i, r := range shown {
		token := b.store.IssueSearch(registry.SearchOffer{
			Title: r.Title,
			Link:  r.Link,
			Query: query,
		})

		text := fmt.Sprintf("%d. %s\n📁 %s | 🌱 %d | 👥 %d\n🔍 %s | 📂 %s",
			i+1,
			markup.TruncateTitle(r.Title, 50),
			markup.FormatSize(r.Size),
			r.Seeders,
			r.Peers,
			r.Tracker,
			r.Category,
		)
		b.out.sendKeyboard(ctx, chatID, text, markup.DownloadButton(token))
	}

	summary := fmt.Sprintf("📊 Found %d results", len(results))
	if len(results) > limit {
		summary += fmt.Sprintf(" (%d more, showing first %d)", len(results)-limit, limit)
	}
	b.out.send(ctx, chatID, summary)
}
