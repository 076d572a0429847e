package markup

import (
	"strings"
	"testing"

	"github.com/ndrozd/homebot/internal/domain"
	"github.com/ndrozd/homebot/internal/registry"
)

func TestTorrentControlsActive(t *testing.T) {
	kb := TorrentControls(registry.TorrentOffer{State: "downloading", Phase: registry.PhaseActive}, "tok")

	if len(kb.InlineKeyboard) != 2 {
		t.Fatalf("rows = %d; want 2", len(kb.InlineKeyboard))
	}
	first := kb.InlineKeyboard[0][0]
	if !strings.HasPrefix(*first.CallbackData, ActionPause+":") {
		t.Fatalf("first button payload = %q; want %q prefix", *first.CallbackData, ActionPause+":")
	}
	if got := *kb.InlineKeyboard[0][1].CallbackData; got != ActionDeleteMenu+":tok" {
		t.Fatalf("second button payload = %q", got)
	}
	if got := *kb.InlineKeyboard[1][0].CallbackData; got != ActionPriorityMax+":tok" {
		t.Fatalf("priority row payload = %q", got)
	}
}

func TestTorrentControlsPaused(t *testing.T) {
	for _, state := range []string{"pausedDL", "pausedUP", "stoppedDL", "stoppedUP"} {
		kb := TorrentControls(registry.TorrentOffer{State: state, Phase: registry.PhasePaused}, "tok")
		first := kb.InlineKeyboard[0][0]
		if !strings.HasPrefix(*first.CallbackData, ActionResume+":") {
			t.Fatalf("state %q: first payload = %q; want %q prefix", state, *first.CallbackData, ActionResume+":")
		}
	}
}

func TestTorrentControlsUnknownState(t *testing.T) {
	kb := TorrentControls(registry.TorrentOffer{State: "error", Phase: registry.PhaseActive}, "tok")
	if len(kb.InlineKeyboard) != 1 {
		t.Fatalf("unknown state rows = %d; want 1 (no priority row)", len(kb.InlineKeyboard))
	}
	row1 := kb.InlineKeyboard[0]
	if len(row1) != 1 || *row1[0].CallbackData != ActionDeleteMenu+":tok" {
		t.Fatalf("unknown state row1 = %+v; want delete-menu only", row1)
	}
}

func TestTorrentControlsConfirmAndTerminal(t *testing.T) {
	confirm := TorrentControls(registry.TorrentOffer{State: "downloading", Phase: registry.PhaseDeleteConfirm}, "tok")
	want := DeleteConfirm("tok")
	if len(confirm.InlineKeyboard) != len(want.InlineKeyboard) {
		t.Fatalf("confirm keyboard rows = %d; want %d", len(confirm.InlineKeyboard), len(want.InlineKeyboard))
	}
	if *confirm.InlineKeyboard[0][0].CallbackData != ActionDelete+":tok" {
		t.Fatalf("confirm first payload = %q", *confirm.InlineKeyboard[0][0].CallbackData)
	}

	term := TorrentControls(registry.TorrentOffer{Phase: registry.PhaseTerminal}, "tok")
	if len(term.InlineKeyboard) != 1 || len(term.InlineKeyboard[0]) != 1 {
		t.Fatalf("terminal keyboard = %+v; want single button", term.InlineKeyboard)
	}
	if *term.InlineKeyboard[0][0].CallbackData != ActionNoop {
		t.Fatalf("terminal payload = %q; want noop", *term.InlineKeyboard[0][0].CallbackData)
	}
}

func TestDeleteConfirmLayout(t *testing.T) {
	kb := DeleteConfirm("tok")
	if len(kb.InlineKeyboard) != 2 {
		t.Fatalf("rows = %d; want 2", len(kb.InlineKeyboard))
	}
	if len(kb.InlineKeyboard[0]) != 2 || len(kb.InlineKeyboard[1]) != 1 {
		t.Fatalf("row sizes = %d,%d; want 2,1", len(kb.InlineKeyboard[0]), len(kb.InlineKeyboard[1]))
	}
	if *kb.InlineKeyboard[0][1].CallbackData != ActionDeleteFiles+":tok" {
		t.Fatalf("with-files payload = %q", *kb.InlineKeyboard[0][1].CallbackData)
	}
	if *kb.InlineKeyboard[1][0].CallbackData != ActionCancel+":tok" {
		t.Fatalf("cancel payload = %q", *kb.InlineKeyboard[1][0].CallbackData)
	}
}

func TestBulkControls(t *testing.T) {
	mixed := BulkControls([]domain.Torrent{{State: "downloading"}, {State: "pausedDL"}})
	if len(mixed.InlineKeyboard) != 1 || len(mixed.InlineKeyboard[0]) != 2 {
		t.Fatalf("mixed collection keyboard = %+v; want one row, two buttons", mixed.InlineKeyboard)
	}

	activeOnly := BulkControls([]domain.Torrent{{State: "downloading"}})
	if len(activeOnly.InlineKeyboard[0]) != 1 || *activeOnly.InlineKeyboard[0][0].CallbackData != ActionBulkPauseAll {
		t.Fatalf("active-only keyboard = %+v; want pause-all only", activeOnly.InlineKeyboard)
	}

	pausedOnly := BulkControls([]domain.Torrent{{State: "stoppedUP"}, {State: "pausedDL"}})
	if len(pausedOnly.InlineKeyboard[0]) != 1 || *pausedOnly.InlineKeyboard[0][0].CallbackData != ActionBulkResumeAll {
		t.Fatalf("paused-only keyboard = %+v; want resume-all only", pausedOnly.InlineKeyboard)
	}

	empty := BulkControls(nil)
	if len(empty.InlineKeyboard) != 0 {
		t.Fatalf("empty collection keyboard = %+v; want no rows", empty.InlineKeyboard)
	}
}

func TestDownloadButton(t *testing.T) {
	kb := DownloadButton("a:b:c")
	if got := *kb.InlineKeyboard[0][0].CallbackData; got != ActionDownload+":a:b:c" {
		t.Fatalf("download payload = %q", got)
	}
}

func TestSpeedPanel(t *testing.T) {
	kb := SpeedPanel(domain.SpeedLimits{Download: 5 * 1024 * 1024, Upload: 0})
	if len(kb.InlineKeyboard) != 3 {
		t.Fatalf("rows = %d; want 3", len(kb.InlineKeyboard))
	}
	if got := kb.InlineKeyboard[0][1].Text; got != "⬇️ 5 MB/s" {
		t.Fatalf("download label = %q", got)
	}
	if got := kb.InlineKeyboard[1][1].Text; got != "⬆️ ∞ MB/s" {
		t.Fatalf("upload label = %q", got)
	}
	if got := *kb.InlineKeyboard[2][1].CallbackData; got != ActionSpeedUnlimited {
		t.Fatalf("unlimited payload = %q", got)
	}
}
