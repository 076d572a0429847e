// Package domain defines the value types shared across the bot: torrent
// descriptors, search results, service health reports, transfer limits,
// and system snapshots. These are plain data carriers; behavior lives in
// the client and bot packages.
package domain

import "time"

// Torrent describes one torrent as reported by the torrent client.
type Torrent struct {
	Hash      string
	Name      string
	State     string // qBittorrent state string, e.g. "downloading", "pausedDL"
	Progress  int    // percentage, 0..100
	Size      int64  // bytes
	Completed int64  // bytes
	DLSpeed   int64  // bytes/sec
	UPSpeed   int64  // bytes/sec
	Priority  int
}

// ActiveStates are the torrent states considered "running" for keyboard
// and bulk-operation classification.
var ActiveStates = map[string]bool{
	"downloading": true,
	"uploading":   true,
	"stalledDL":   true,
	"stalledUP":   true,
	"queuedDL":    true,
	"queuedUP":    true,
}

// PausedStates are the torrent states considered "stopped" for keyboard
// and bulk-operation classification.
var PausedStates = map[string]bool{
	"pausedDL":  true,
	"pausedUP":  true,
	"stoppedDL": true,
	"stoppedUP": true,
}

// SearchResult is one row returned by the indexer aggregator.
type SearchResult struct {
	Title    string
	Link     string // download URL or magnet
	Size     int64  // bytes
	Seeders  int
	Peers    int
	Tracker  string
	Category string
}

// Indexer describes one configured tracker in the aggregator.
type Indexer struct {
	ID         string
	Name       string
	Configured bool
}

// ServiceStatus is the outcome of a collaborator health probe.
type ServiceStatus struct {
	Name    string
	Online  bool
	Message string
	Latency time.Duration
}

// SpeedLimits holds the client's global transfer limits in bytes/sec.
// Zero means unlimited.
type SpeedLimits struct {
	Download int64
	Upload   int64
}

// MemoryInfo reports host memory usage in bytes.
type MemoryInfo struct {
	Total int64
	Free  int64
	Used  int64
}

// DiskInfo reports root-filesystem usage in bytes.
type DiskInfo struct {
	Total int64
	Free  int64
	Used  int64
}

// SystemInfo is a point-in-time host snapshot.
type SystemInfo struct {
	Uptime   time.Duration
	Memory   MemoryInfo
	CPUUsage float64 // percentage, 0..100
	Disk     DiskInfo
}
