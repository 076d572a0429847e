package bot

import (
	"strings"

	"github.com/ndrozd/homebot/internal/markup"
)

// ActionKind is the closed set of callback actions. Payloads are parsed
// into this enum once, at the router boundary; nothing downstream
// re-inspects the raw string.
type ActionKind int

const (
	KindUnknown ActionKind = iota
	KindDownload
	KindPause
	KindResume
	KindDeleteMenu
	KindCancel
	KindDelete
	KindDeleteFiles
	KindPriorityMax
	KindPriorityMin
	KindBulkPauseAll
	KindBulkResumeAll
	KindSpeedDLMinus
	KindSpeedDLPlus
	KindSpeedUPMinus
	KindSpeedUPPlus
	KindSpeedRefresh
	KindSpeedUnlimited
	KindNoop
)

var kindNames = map[ActionKind]string{
	KindUnknown:        "unknown",
	KindDownload:       markup.ActionDownload,
	KindPause:          markup.ActionPause,
	KindResume:         markup.ActionResume,
	KindDeleteMenu:     markup.ActionDeleteMenu,
	KindCancel:         markup.ActionCancel,
	KindDelete:         markup.ActionDelete,
	KindDeleteFiles:    markup.ActionDeleteFiles,
	KindPriorityMax:    markup.ActionPriorityMax,
	KindPriorityMin:    markup.ActionPriorityMin,
	KindBulkPauseAll:   markup.ActionBulkPauseAll,
	KindBulkResumeAll:  markup.ActionBulkResumeAll,
	KindSpeedDLMinus:   markup.ActionSpeedDLMinus,
	KindSpeedDLPlus:    markup.ActionSpeedDLPlus,
	KindSpeedUPMinus:   markup.ActionSpeedUPMinus,
	KindSpeedUPPlus:    markup.ActionSpeedUPPlus,
	KindSpeedRefresh:   markup.ActionSpeedRefresh,
	KindSpeedUnlimited: markup.ActionSpeedUnlimited,
	KindNoop:           markup.ActionNoop,
}

var kindsByPrefix = func() map[string]ActionKind {
	m := make(map[string]ActionKind, len(kindNames))
	for k, name := range kindNames {
		if k != KindUnknown {
			m[name] = k
		}
	}
	return m
}()

func (k ActionKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// Action is one parsed callback payload. Token is empty for payloads
// that do not reference a registry entry (bulk and speed controls).
type Action struct {
	Kind  ActionKind
	Token string
}

// ParseAction splits a callback payload as "prefix:token". Only the
// first colon delimits, so tokens containing colons survive intact.
// Unrecognized prefixes parse to KindUnknown.
func ParseAction(data string) Action {
	prefix, token, _ := strings.Cut(data, ":")
	kind, ok := kindsByPrefix[prefix]
	if !ok {
		return Action{Kind: KindUnknown}
	}
	return Action{Kind: kind, Token: token}
}
