package markup

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

// MaxMessageLen is the transport's hard limit on one message; composed
// replies longer than this are split paragraph-wise before sending.
const MaxMessageLen = 4000

// FormatSize renders a byte count as a short human-readable string,
// e.g. 1536 -> "1.5 KB".
func FormatSize(bytes int64) string {
	if bytes <= 0 {
		return "0 B"
	}
	const k = 1024
	units := []string{"B", "KB", "MB", "GB", "TB"}
	i := int(math.Floor(math.Log(float64(bytes)) / math.Log(k)))
	if i >= len(units) {
		i = len(units) - 1
	}
	v := float64(bytes) / math.Pow(k, float64(i))
	return strings.TrimSuffix(fmt.Sprintf("%.1f", v), ".0") + " " + units[i]
}

// FormatSpeed renders a transfer rate, e.g. "3.2 MB/s".
func FormatSpeed(bytesPerSec int64) string {
	if bytesPerSec <= 0 {
		return "0 B/s"
	}
	return FormatSize(bytesPerSec) + "/s"
}

// FormatUptime renders a duration as "2d 3h 14m", dropping leading zero
// components.
func FormatUptime(d time.Duration) string {
	secs := int64(d.Seconds())
	days := secs / 86400
	hours := (secs % 86400) / 3600
	mins := (secs % 3600) / 60

	switch {
	case days > 0:
		return fmt.Sprintf("%dd %dh %dm", days, hours, mins)
	case hours > 0:
		return fmt.Sprintf("%dh %dm", hours, mins)
	default:
		return fmt.Sprintf("%dm", mins)
	}
}

// ProgressBar renders a ten-cell bar for a 0..100 percentage.
func ProgressBar(percent int) string {
	const width = 10
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	filled := int(math.Round(float64(percent) / 100 * width))
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

// TruncateTitle clips a title to max runes, appending an ellipsis when
// anything was cut.
func TruncateTitle(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	if max <= 3 {
		return string(r[:max])
	}
	return string(r[:max-3]) + "..."
}

// MBps converts a bytes-per-second limit into whole MB/s, rounding to
// nearest. Zero stays zero (unlimited).
func MBps(bytesPerSec int64) int {
	if bytesPerSec <= 0 {
		return 0
	}
	return int(math.Round(float64(bytesPerSec) / (1024 * 1024)))
}

// SplitMessage splits a composed reply into transport-sized chunks on
// paragraph boundaries ("\n\n"). A single paragraph longer than the
// limit is truncated with an ellipsis rather than split mid-line.
func SplitMessage(text string, limit int) []string {
	if limit <= 0 {
		limit = MaxMessageLen
	}
	if len(text) <= limit {
		return []string{text}
	}

	var parts []string
	var current strings.Builder
	for _, para := range strings.Split(text, "\n\n") {
		if current.Len()+len(para)+2 > limit {
			if current.Len() > 0 {
				parts = append(parts, strings.TrimSpace(current.String()))
				current.Reset()
			}
			if len(para) > limit {
				parts = append(parts, truncateBytes(para, limit-10)+"...")
				continue
			}
		}
		current.WriteString(para)
		current.WriteString("\n\n")
	}
	if s := strings.TrimSpace(current.String()); s != "" {
		parts = append(parts, s)
	}
	return parts
}

// truncateBytes cuts s to at most n bytes, backing the cut up to a rune
// boundary so the result stays valid UTF-8.
func truncateBytes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

func itoa(n int) string { return strconv.Itoa(n) }
