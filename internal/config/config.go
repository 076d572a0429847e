// Package config provides application configuration loaded from environment
// variables with defaults and validation. It centralizes the bot credential,
// the chat allow-list, logging options, and per-service connection settings
// for qBittorrent, Jackett, and TorrServer.
package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

// QBittorrentConfig holds connection settings for the qBittorrent Web API.
type QBittorrentConfig struct {
	URL      string
	Username string
	Password string
	Timeout  time.Duration
}

// JackettConfig holds connection settings for the Jackett aggregate API.
type JackettConfig struct {
	URL     string
	APIKey  string
	Timeout time.Duration
}

// TorrServerConfig holds connection settings for the TorrServer instance.
type TorrServerConfig struct {
	URL     string
	Timeout time.Duration
}

// Config holds all configuration values for the bot process.
type Config struct {
	// Telegram
	BotToken       string  // BOT_TOKEN (required)
	AllowedChatIDs []int64 // ALLOWED_CHAT_IDS, CSV; empty means open access

	// Presentation
	ServerName string // SERVER_NAME, used in /start and /status texts

	// Logging
	LogLevel  string // debug|info|warn|error|fatal|panic
	LogPretty bool   // pretty console logs in dev

	// Ops endpoint (/healthz, /metrics); empty disables the listener.
	OpsAddr string

	// Film search: the Jackett indexer id queried by /film.
	FilmIndexer string

	// Services
	QBittorrent QBittorrentConfig
	Jackett     JackettConfig
	TorrServer  TorrServerConfig
}

// MustLoad loads the configuration and panics if validation fails.
func MustLoad() Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// Load reads configuration from environment variables, applies defaults,
// normalizes values, and validates the result.
func Load() (Config, error) {
	cfg := Config{
		BotToken:       getenv("BOT_TOKEN", ""),
		AllowedChatIDs: splitChatIDs(getenv("ALLOWED_CHAT_IDS", "")),

		ServerName: getenv("SERVER_NAME", "HomeServer"),

		LogLevel:  strings.ToLower(getenv("LOG_LEVEL", "info")),
		LogPretty: getbool("LOG_PRETTY", false),

		OpsAddr: getenv("OPS_ADDR", ""),

		FilmIndexer: getenv("FILM_INDEXER", "rutracker"),

		QBittorrent: QBittorrentConfig{
			URL:      getenv("QBITTORRENT_URL", "http://localhost:8081"),
			Username: getenv("QBITTORRENT_USERNAME", ""),
			Password: getenv("QBITTORRENT_PASSWORD", ""),
			Timeout:  getdur("QBITTORRENT_TIMEOUT", 10*time.Second),
		},
		Jackett: JackettConfig{
			URL:     getenv("JACKETT_URL", "http://localhost:9117"),
			APIKey:  getenv("JACKETT_API_KEY", ""),
			Timeout: getdur("JACKETT_TIMEOUT", 30*time.Second),
		},
		TorrServer: TorrServerConfig{
			URL:     getenv("TORRSERVER_URL", "http://localhost:8090"),
			Timeout: getdur("TORRSERVER_TIMEOUT", 10*time.Second),
		},
	}

	// --- normalization ---
	if cfg.LogLevel == "warning" {
		cfg.LogLevel = "warn"
	}

	// --- validation ---
	if strings.TrimSpace(cfg.BotToken) == "" {
		return cfg, errors.New("BOT_TOKEN is required")
	}
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error", "fatal", "panic":
	default:
		return cfg, errors.New("LOG_LEVEL must be one of: debug, info, warn, error, fatal, panic")
	}
	if cfg.QBittorrent.Timeout <= 0 || cfg.Jackett.Timeout <= 0 || cfg.TorrServer.Timeout <= 0 {
		return cfg, errors.New("service timeouts must be positive durations")
	}
	for _, u := range []string{cfg.QBittorrent.URL, cfg.Jackett.URL, cfg.TorrServer.URL} {
		if strings.TrimSpace(u) == "" {
			return cfg, errors.New("service URLs must not be empty")
		}
	}

	return cfg, nil
}

// Allowed reports whether chatID may use the bot. An empty allow-list
// means the bot is open to everyone.
func (c Config) Allowed(chatID int64) bool {
	if len(c.AllowedChatIDs) == 0 {
		return true
	}
	for _, id := range c.AllowedChatIDs {
		if id == chatID {
			return true
		}
	}
	return false
}

// ---- helpers (no external deps) ----

func getenv(k, def string) string {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		return v
	}
	return def
}

func getbool(k string, def bool) bool {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "true", "yes", "y", "on":
			return true
		case "0", "false", "no", "n", "off":
			return false
		}
	}
	return def
}

func getdur(k string, def time.Duration) time.Duration {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

// splitChatIDs parses a comma-separated list of chat IDs, skipping
// entries that do not parse as integers.
func splitChatIDs(s string) []int64 {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]int64, 0, len(parts))
	for _, p := range parts {
		t := strings.TrimSpace(p)
		if t == "" {
			continue
		}
		if id, err := strconv.ParseInt(t, 10, 64); err == nil {
			out = append(out, id)
		}
	}
	return out
}
