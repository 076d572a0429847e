package bot

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/ndrozd/homebot/internal/markup"
	"github.com/ndrozd/homebot/internal/observability"
	"github.com/ndrozd/homebot/internal/registry"
)

// handleCallback routes one inline-keyboard tap. Every branch answers
// the query exactly once; a missing ack leaves the tapping client's
// spinner running. Stale tokens (expired, consumed, or from a previous
// process) get a transient notice and are otherwise ignored.
func (b *Bot) handleCallback(ctx context.Context, query *tgbotapi.CallbackQuery) {
	if query.Message == nil {
		b.out.ack(query.ID, "")
		observability.ObserveCallback("unknown", "ignored")
		return
	}
	chatID := query.Message.Chat.ID
	messageID := query.Message.MessageID

	if !b.cfg.Allowed(chatID) {
		b.log.Warn().Int64("chat_id", chatID).Msg("callback from unauthorized chat")
		b.out.ack(query.ID, "❌ Access denied")
		observability.ObserveCallback("unknown", "denied")
		return
	}

	action := ParseAction(query.Data)
	b.log.Info().
		Int64("chat_id", chatID).
		Str("action", action.Kind.String()).
		Str("user", userLabel(query.From)).
		Msg("callback received")

	outcome := b.dispatchCallback(ctx, query, action, chatID, messageID)
	observability.ObserveCallback(action.Kind.String(), outcome)
}

// dispatchCallback executes the action and returns the metrics outcome.
func (b *Bot) dispatchCallback(ctx context.Context, query *tgbotapi.CallbackQuery, action Action, chatID int64, messageID int) string {
	switch action.Kind {
	case KindNoop:
		b.out.ack(query.ID, "")
		return "ok"

	case KindDownload:
		return b.cbDownload(ctx, query, action.Token, chatID, messageID)

	case KindPause:
		return b.cbPause(ctx, query, action.Token, chatID, messageID)
	case KindResume:
		return b.cbResume(ctx, query, action.Token, chatID, messageID)
	case KindDeleteMenu:
		return b.cbDeleteMenu(ctx, query, action.Token, chatID, messageID)
	case KindCancel:
		return b.cbCancel(ctx, query, action.Token, chatID, messageID)
	case KindDelete:
		return b.cbDelete(ctx, query, action.Token, chatID, messageID, false)
	case KindDeleteFiles:
		return b.cbDelete(ctx, query, action.Token, chatID, messageID, true)
	case KindPriorityMax:
		return b.cbPriority(ctx, query, action.Token, true)
	case KindPriorityMin:
		return b.cbPriority(ctx, query, action.Token, false)

	case KindBulkPauseAll:
		return b.cbBulk(ctx, query, chatID, true)
	case KindBulkResumeAll:
		return b.cbBulk(ctx, query, chatID, false)

	case KindSpeedDLMinus:
		return b.cbSpeedAdjust(ctx, query, chatID, messageID, true, -speedStep)
	case KindSpeedDLPlus:
		return b.cbSpeedAdjust(ctx, query, chatID, messageID, true, speedStep)
	case KindSpeedUPMinus:
		return b.cbSpeedAdjust(ctx, query, chatID, messageID, false, -speedStep)
	case KindSpeedUPPlus:
		return b.cbSpeedAdjust(ctx, query, chatID, messageID, false, speedStep)
	case KindSpeedRefresh:
		b.out.ack(query.ID, "🔄 Обновляем...")
		if err := b.updateSpeedPanel(ctx, chatID, messageID); err != nil {
			b.log.Error().Err(err).Msg("speed panel refresh failed")
			return "error"
		}
		return "ok"
	case KindSpeedUnlimited:
		return b.cbSpeedUnlimited(ctx, query, chatID, messageID)

	default:
		// Unrecognized payloads come from old keyboards of an earlier
		// build; acknowledge silently and move on.
		b.out.ack(query.ID, "")
		return "ignored"
	}
}

// cbDownload enqueues the search result behind token into the torrent
// client. The offer is consumed only on success, so a failed add can be
// retried from the same button.
func (b *Bot) cbDownload(ctx context.Context, query *tgbotapi.CallbackQuery, token string, chatID int64, messageID int) string {
	offer, ok := b.store.ResolveSearch(token)
	if !ok {
		b.out.ack(query.ID, "❌ Результат устарел. Повторите поиск.")
		return "stale"
	}
	b.out.ack(query.ID, "🔄 Добавляем торрент в qBittorrent...")

	if err := b.qb.Add(ctx, offer.Link); err != nil {
		b.replyFailure(ctx, chatID, "❌ Ошибка добавления торрента. Проверьте настройки qBittorrent.", err)
		return "error"
	}

	if err := b.out.editKeyboard(ctx, chatID, messageID, markup.DoneButton("✅ Добавлено в очередь")); err != nil {
		b.log.Warn().Err(err).Msg("download button re-render failed")
	}
	b.out.send(ctx, chatID, "✅ Торрент добавлен в очередь:\n"+markup.TruncateTitle(offer.Title, 100))
	b.store.Consume(token)
	return "ok"
}

func (b *Bot) cbPause(ctx context.Context, query *tgbotapi.CallbackQuery, token string, chatID int64, messageID int) string {
	offer, ok := b.store.ResolveTorrent(token)
	if !ok {
		b.out.ack(query.ID, "❌ Торрент не найден")
		return "stale"
	}
	b.out.ack(query.ID, "⏸️ Ставим на паузу...")

	if err := b.qb.Pause(ctx, offer.Hash); err != nil {
		b.replyFailure(ctx, chatID, "❌ Не удалось поставить на паузу.", err)
		return "error"
	}

	b.transitionAndRender(ctx, token, chatID, messageID, func(o *registry.TorrentOffer) {
		o.State = "pausedDL"
		o.Phase = registry.PhasePaused
	})
	return "ok"
}

func (b *Bot) cbResume(ctx context.Context, query *tgbotapi.CallbackQuery, token string, chatID int64, messageID int) string {
	offer, ok := b.store.ResolveTorrent(token)
	if !ok {
		b.out.ack(query.ID, "❌ Торрент не найден")
		return "stale"
	}
	b.out.ack(query.ID, "▶️ Запускаем...")

	if err := b.qb.Resume(ctx, offer.Hash); err != nil {
		b.replyFailure(ctx, chatID, "❌ Не удалось запустить торрент.", err)
		return "error"
	}

	b.transitionAndRender(ctx, token, chatID, messageID, func(o *registry.TorrentOffer) {
		o.State = "downloading"
		o.Phase = registry.PhaseActive
	})
	return "ok"
}

// cbDeleteMenu enters the confirmation phase. Re-tapping the delete
// button while already confirming is a no-op transition, so double taps
// cannot corrupt the flow.
func (b *Bot) cbDeleteMenu(ctx context.Context, query *tgbotapi.CallbackQuery, token string, chatID int64, messageID int) string {
	if _, ok := b.store.ResolveTorrent(token); !ok {
		b.out.ack(query.ID, "❌ Торрент не найден")
		return "stale"
	}
	b.out.ack(query.ID, "")

	b.transitionAndRender(ctx, token, chatID, messageID, func(o *registry.TorrentOffer) {
		o.Phase = registry.PhaseDeleteConfirm
	})
	return "ok"
}

// cbCancel leaves the confirmation phase, restoring the control keyboard
// that matches the cached torrent state.
func (b *Bot) cbCancel(ctx context.Context, query *tgbotapi.CallbackQuery, token string, chatID int64, messageID int) string {
	if _, ok := b.store.ResolveTorrent(token); !ok {
		b.out.ack(query.ID, "❌ Торрент не найден")
		return "stale"
	}
	b.out.ack(query.ID, "❌ Отменено")

	b.transitionAndRender(ctx, token, chatID, messageID, func(o *registry.TorrentOffer) {
		o.Phase = registry.PhaseForState(o.State)
	})
	return "ok"
}

// cbDelete performs the irreversible removal. On success the offer moves
// to the terminal phase and is consumed; on failure it stays in the
// confirmation phase so the user can retry or cancel.
func (b *Bot) cbDelete(ctx context.Context, query *tgbotapi.CallbackQuery, token string, chatID int64, messageID int, deleteFiles bool) string {
	offer, ok := b.store.ResolveTorrent(token)
	if !ok {
		b.out.ack(query.ID, "❌ Торрент не найден")
		return "stale"
	}
	b.out.ack(query.ID, "🗑️ Удаляем торрент...")

	if err := b.qb.Delete(ctx, offer.Hash, deleteFiles); err != nil {
		if rerr := b.out.editKeyboard(ctx, chatID, messageID, markup.DeleteConfirm(token)); rerr != nil {
			b.log.Warn().Err(rerr).Msg("delete confirm re-render failed")
		}
		b.replyFailure(ctx, chatID, "❌ Не удалось удалить торрент. Попробуйте еще раз.", err)
		return "error"
	}

	label := "✅ Торрент удален"
	if deleteFiles {
		label = "✅ Торрент и файлы удалены"
	}
	if err := b.out.editKeyboard(ctx, chatID, messageID, markup.DoneButton(label)); err != nil {
		b.log.Warn().Err(err).Msg("terminal keyboard render failed")
	}
	b.store.Consume(token)
	return "ok"
}

func (b *Bot) cbPriority(ctx context.Context, query *tgbotapi.CallbackQuery, token string, top bool) string {
	offer, ok := b.store.ResolveTorrent(token)
	if !ok {
		b.out.ack(query.ID, "❌ Торрент не найден")
		return "stale"
	}

	if err := b.qb.SetPriority(ctx, offer.Hash, top); err != nil {
		b.out.ack(query.ID, "❌ Не удалось изменить приоритет")
		b.log.Error().Err(err).Str("hash", offer.Hash).Msg("priority change failed")
		return "error"
	}
	if top {
		b.out.ack(query.ID, "🔼 Приоритет: максимальный")
	} else {
		b.out.ack(query.ID, "🔽 Приоритет: минимальный")
	}
	return "ok"
}

// cbBulk pauses or resumes the whole collection. Bulk buttons carry no
// token; any per-torrent keyboards on screen go stale and self-correct
// on the next tap.
func (b *Bot) cbBulk(ctx context.Context, query *tgbotapi.CallbackQuery, chatID int64, pause bool) string {
	var err error
	if pause {
		b.out.ack(query.ID, "⏸️ Ставим все на паузу...")
		err = b.qb.PauseAll(ctx)
	} else {
		b.out.ack(query.ID, "▶️ Запускаем все...")
		err = b.qb.ResumeAll(ctx)
	}
	if err != nil {
		b.replyFailure(ctx, chatID, "❌ Массовая операция не удалась.", err)
		return "error"
	}
	if pause {
		b.out.send(ctx, chatID, "⏸️ Все торренты поставлены на паузу.")
	} else {
		b.out.send(ctx, chatID, "▶️ Все торренты запущены.")
	}
	return "ok"
}

// cbSpeedAdjust shifts one global limit by delta and re-renders the
// panel in place. Limits clamp at zero, which the client treats as
// unlimited.
func (b *Bot) cbSpeedAdjust(ctx context.Context, query *tgbotapi.CallbackQuery, chatID int64, messageID int, download bool, delta int64) string {
	limits, err := b.qb.TransferInfo(ctx)
	if err != nil {
		b.out.ack(query.ID, "❌ Ошибка")
		b.log.Error().Err(err).Msg("transfer info fetch failed")
		return "error"
	}

	if download {
		err = b.qb.SetDownloadLimit(ctx, clampLimit(limits.Download+delta))
	} else {
		err = b.qb.SetUploadLimit(ctx, clampLimit(limits.Upload+delta))
	}
	if err != nil {
		b.out.ack(query.ID, "❌ Не удалось изменить лимит")
		b.log.Error().Err(err).Msg("speed limit change failed")
		return "error"
	}
	b.out.ack(query.ID, "✅")

	if err := b.updateSpeedPanel(ctx, chatID, messageID); err != nil {
		b.log.Warn().Err(err).Msg("speed panel re-render failed")
	}
	return "ok"
}

func (b *Bot) cbSpeedUnlimited(ctx context.Context, query *tgbotapi.CallbackQuery, chatID int64, messageID int) string {
	if err := b.qb.SetDownloadLimit(ctx, 0); err != nil {
		b.out.ack(query.ID, "❌ Не удалось снять лимит")
		b.log.Error().Err(err).Msg("download limit reset failed")
		return "error"
	}
	if err := b.qb.SetUploadLimit(ctx, 0); err != nil {
		b.out.ack(query.ID, "❌ Не удалось снять лимит")
		b.log.Error().Err(err).Msg("upload limit reset failed")
		return "error"
	}
	b.out.ack(query.ID, "♾️ Лимиты сняты")

	if err := b.updateSpeedPanel(ctx, chatID, messageID); err != nil {
		b.log.Warn().Err(err).Msg("speed panel re-render failed")
	}
	return "ok"
}

// transitionAndRender applies a phase transition to the stored offer and
// re-renders the originating message's keyboard from the result. The
// update and the read happen through the store so concurrent taps see a
// consistent offer.
func (b *Bot) transitionAndRender(ctx context.Context, token string, chatID int64, messageID int, fn func(*registry.TorrentOffer)) {
	if !b.store.UpdateTorrent(token, fn) {
		return
	}
	offer, ok := b.store.ResolveTorrent(token)
	if !ok {
		return
	}
	if err := b.out.editKeyboard(ctx, chatID, messageID, markup.TorrentControls(offer, token)); err != nil {
		b.log.Warn().Err(err).Str("token", token).Msg("keyboard re-render failed")
	}
}

func clampLimit(v int64) int64 {
	if v < 0 {
		return 0
	}
	return v
}
