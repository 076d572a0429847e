package config

import (
	"testing"
	"time"
)

func withEnv(t *testing.T, kv map[string]string) {
	t.Helper()
	for k, v := range kv {
		t.Setenv(k, v)
	}
}

func TestLoadDefaults(t *testing.T) {
	withEnv(t, map[string]string{"BOT_TOKEN": "tok"})

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ServerName != "HomeServer" {
		t.Fatalf("ServerName = %q, want HomeServer", cfg.ServerName)
	}
	if cfg.LogLevel != "info" {
		t.Fatalf("LogLevel = %q, want info", cfg.LogLevel)
	}
	if cfg.FilmIndexer != "rutracker" {
		t.Fatalf("FilmIndexer = %q, want rutracker", cfg.FilmIndexer)
	}
	if cfg.QBittorrent.Timeout != 10*time.Second {
		t.Fatalf("QBittorrent.Timeout = %v, want 10s", cfg.QBittorrent.Timeout)
	}
	if cfg.Jackett.Timeout != 30*time.Second {
		t.Fatalf("Jackett.Timeout = %v, want 30s", cfg.Jackett.Timeout)
	}
	if len(cfg.AllowedChatIDs) != 0 {
		t.Fatalf("AllowedChatIDs = %v, want empty", cfg.AllowedChatIDs)
	}
}

func TestLoadRequiresBotToken(t *testing.T) {
	withEnv(t, map[string]string{"BOT_TOKEN": ""})

	if _, err := Load(); err == nil {
		t.Fatal("Load succeeded without BOT_TOKEN")
	}
}

func TestLoadRejectsBadLogLevel(t *testing.T) {
	withEnv(t, map[string]string{
		"BOT_TOKEN": "tok",
		"LOG_LEVEL": "verbose",
	})

	if _, err := Load(); err == nil {
		t.Fatal("Load accepted an invalid LOG_LEVEL")
	}
}

func TestLoadNormalizesWarning(t *testing.T) {
	withEnv(t, map[string]string{
		"BOT_TOKEN": "tok",
		"LOG_LEVEL": "WARNING",
	})

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.LogLevel != "warn" {
		t.Fatalf("LogLevel = %q, want warn", cfg.LogLevel)
	}
}

func TestSplitChatIDs(t *testing.T) {
	withEnv(t, map[string]string{
		"BOT_TOKEN":        "tok",
		"ALLOWED_CHAT_IDS": "100, 200,not-a-number, ,300",
	})

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := []int64{100, 200, 300}
	if len(cfg.AllowedChatIDs) != len(want) {
		t.Fatalf("AllowedChatIDs = %v, want %v", cfg.AllowedChatIDs, want)
	}
	for i, id := range want {
		if cfg.AllowedChatIDs[i] != id {
			t.Fatalf("AllowedChatIDs = %v, want %v", cfg.AllowedChatIDs, want)
		}
	}
}

func TestAllowed(t *testing.T) {
	open := Config{}
	if !open.Allowed(12345) {
		t.Fatal("empty allow-list must be open")
	}

	restricted := Config{AllowedChatIDs: []int64{100, 200}}
	if !restricted.Allowed(200) {
		t.Fatal("listed chat denied")
	}
	if restricted.Allowed(300) {
		t.Fatal("unlisted chat allowed")
	}
}

func TestGetDur(t *testing.T) {
	withEnv(t, map[string]string{
		"BOT_TOKEN":           "tok",
		"QBITTORRENT_TIMEOUT": "2s",
		"JACKETT_TIMEOUT":     "garbage",
	})

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.QBittorrent.Timeout != 2*time.Second {
		t.Fatalf("QBittorrent.Timeout = %v, want 2s", cfg.QBittorrent.Timeout)
	}
	if cfg.Jackett.Timeout != 30*time.Second {
		t.Fatalf("Jackett.Timeout = %v, want default 30s", cfg.Jackett.Timeout)
	}
}
