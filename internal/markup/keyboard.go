// Package markup builds the bot's presentation layer: inline keyboards,
// long-message splitting, and human-readable formatting of sizes, speeds,
// and uptimes. Everything here is a pure function of its inputs; callback
// payloads embed registry tokens but the package never touches the
// registry itself.
package markup

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/ndrozd/homebot/internal/domain"
	"github.com/ndrozd/homebot/internal/registry"
)

// Callback action prefixes. The router splits payloads on the first ':'
// only, so tokens may contain colons.
const (
	ActionDownload       = "download"
	ActionPause          = "torrent_pause"
	ActionResume         = "torrent_resume"
	ActionDeleteMenu     = "torrent_delete_menu"
	ActionCancel         = "torrent_cancel"
	ActionDelete         = "torrent_delete"
	ActionDeleteFiles    = "torrent_delete_files"
	ActionPriorityMax    = "torrent_priority_max"
	ActionPriorityMin    = "torrent_priority_min"
	ActionBulkPauseAll   = "bulk_pause_all"
	ActionBulkResumeAll  = "bulk_resume_all"
	ActionSpeedDLMinus   = "speed_dl_minus"
	ActionSpeedDLPlus    = "speed_dl_plus"
	ActionSpeedUPMinus   = "speed_up_minus"
	ActionSpeedUPPlus    = "speed_up_plus"
	ActionSpeedRefresh   = "speed_refresh"
	ActionSpeedUnlimited = "speed_unlimited"
	ActionNoop           = "noop"
)

func payload(action, token string) string {
	return action + ":" + token
}

// TorrentControls derives the per-torrent control keyboard from the
// offer's phase and cached state.
//
//	Active  -> [Pause,  Delete] / [Max, Min]
//	Paused  -> [Resume, Delete] / [Max, Min]
//	DeleteConfirm -> the confirmation submenu
//	Terminal      -> a single disabled acknowledgment button
func TorrentControls(offer registry.TorrentOffer, token string) tgbotapi.InlineKeyboardMarkup {
	switch offer.Phase {
	case registry.PhaseDeleteConfirm:
		return DeleteConfirm(token)
	case registry.PhaseTerminal:
		return DoneButton("✅ Торрент удален")
	}

	var row1 []tgbotapi.InlineKeyboardButton
	known := true
	switch {
	case domain.ActiveStates[offer.State]:
		row1 = append(row1, tgbotapi.NewInlineKeyboardButtonData("⏸️ Пауза", payload(ActionPause, token)))
	case domain.PausedStates[offer.State]:
		row1 = append(row1, tgbotapi.NewInlineKeyboardButtonData("▶️ Старт", payload(ActionResume, token)))
	default:
		known = false
	}
	row1 = append(row1, tgbotapi.NewInlineKeyboardButtonData("🗑️ Удалить", payload(ActionDeleteMenu, token)))

	// Unrecognized client states (error, checking, moving) get the
	// reduced keyboard: deletion is always safe to offer, priority
	// juggling is not.
	if !known {
		return tgbotapi.NewInlineKeyboardMarkup(row1)
	}

	row2 := tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("🔼 Max", payload(ActionPriorityMax, token)),
		tgbotapi.NewInlineKeyboardButtonData("🔽 Min", payload(ActionPriorityMin, token)),
	)

	return tgbotapi.NewInlineKeyboardMarkup(row1, row2)
}

// DeleteConfirm is the fixed two-row irreversible-choice submenu:
// torrent-only and with-files on the first row, cancel on the second.
func DeleteConfirm(token string) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🗑️ Только торрент", payload(ActionDelete, token)),
			tgbotapi.NewInlineKeyboardButtonData("🗑️💾 С файлами", payload(ActionDeleteFiles, token)),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("❌ Отмена", payload(ActionCancel, token)),
		),
	)
}

// DownloadButton is the single enqueue button attached to a search result.
func DownloadButton(token string) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📥 Добавить в qBittorrent", payload(ActionDownload, token)),
		),
	)
}

// DoneButton is the terminal acknowledgment keyboard: one disabled-ish
// button whose payload routes to noop.
func DoneButton(label string) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(label, ActionNoop),
		),
	)
}

// BulkControls classifies the collection into active and paused
// partitions and offers the applicable bulk operations: Pause All when
// anything runs, Resume All when anything is stopped, both when mixed,
// and no rows for an empty collection.
func BulkControls(torrents []domain.Torrent) tgbotapi.InlineKeyboardMarkup {
	var active, paused int
	for _, t := range torrents {
		switch {
		case domain.ActiveStates[t.State]:
			active++
		case domain.PausedStates[t.State]:
			paused++
		}
	}

	var row []tgbotapi.InlineKeyboardButton
	if active > 0 {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData("⏸️ Pause All", ActionBulkPauseAll))
	}
	if paused > 0 {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData("▶️ Resume All", ActionBulkResumeAll))
	}

	if len(row) == 0 {
		return tgbotapi.InlineKeyboardMarkup{InlineKeyboard: [][]tgbotapi.InlineKeyboardButton{}}
	}
	return tgbotapi.NewInlineKeyboardMarkup(row)
}

// SpeedPanel renders the global speed-limit control grid. Limits are
// shown in whole MB/s; zero renders as unlimited.
func SpeedPanel(limits domain.SpeedLimits) tgbotapi.InlineKeyboardMarkup {
	dl := limitLabel("⬇️", limits.Download)
	up := limitLabel("⬆️", limits.Upload)

	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("−", ActionSpeedDLMinus),
			tgbotapi.NewInlineKeyboardButtonData(dl, ActionNoop),
			tgbotapi.NewInlineKeyboardButtonData("+", ActionSpeedDLPlus),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("−", ActionSpeedUPMinus),
			tgbotapi.NewInlineKeyboardButtonData(up, ActionNoop),
			tgbotapi.NewInlineKeyboardButtonData("+", ActionSpeedUPPlus),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🔄 Refresh", ActionSpeedRefresh),
			tgbotapi.NewInlineKeyboardButtonData("♾️ Unlimited", ActionSpeedUnlimited),
		),
	)
}

func limitLabel(arrow string, bytesPerSec int64) string {
	mbps := MBps(bytesPerSec)
	if mbps == 0 {
		return arrow + " ∞ MB/s"
	}
	return arrow + " " + itoa(mbps) + " MB/s"
}
