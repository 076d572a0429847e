// Package qbittorrent implements a minimal client for the qBittorrent
// Web API v2: cookie-session authentication, torrent listing and control,
// and global transfer limits. Only the endpoints the bot needs are
// covered; every call takes a context and the underlying HTTP client
// carries a bounded timeout.
package qbittorrent

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/ndrozd/homebot/internal/domain"
)

// Client talks to one qBittorrent instance. Safe for concurrent use;
// the session cookie lives in the client's cookie jar.
type Client struct {
	baseURL  string
	username string
	password string
	http     *http.Client
}

// New returns a client for the qBittorrent Web API at baseURL.
// Credentials may be empty when the instance does not require auth.
func New(baseURL, username, password string, timeout time.Duration) *Client {
	jar, _ := cookiejar.New(nil)
	return &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		username: username,
		password: password,
		http: &http.Client{
			Timeout: timeout,
			Jar:     jar,
		},
	}
}

// login establishes a session cookie. It is a no-op when no credentials
// are configured. qBittorrent accepts repeated logins, so the client
// re-authenticates before each mutating call like the Web UI does.
func (c *Client) login(ctx context.Context) error {
	if c.username == "" || c.password == "" {
		return nil
	}
	form := url.Values{
		"username": {c.username},
		"password": {c.password},
	}
	body, err := c.postForm(ctx, "/api/v2/auth/login", form)
	if err != nil {
		return fmt.Errorf("login: %w", err)
	}
	// The API answers 200 with "Fails." on bad credentials.
	if strings.Contains(body, "Fails") {
		return fmt.Errorf("login: rejected credentials")
	}
	return nil
}

// Version returns the application version string.
func (c *Client) Version(ctx context.Context) (string, error) {
	return c.get(ctx, "/api/v2/app/version", nil)
}

// Health probes the instance and reports availability plus latency.
func (c *Client) Health(ctx context.Context) domain.ServiceStatus {
	start := time.Now()
	version, err := c.Version(ctx)
	if err != nil {
		return domain.ServiceStatus{Name: "qBittorrent", Online: false, Message: err.Error()}
	}
	return domain.ServiceStatus{
		Name:    "qBittorrent",
		Online:  true,
		Message: "Version: " + version,
		Latency: time.Since(start),
	}
}

// torrentRow is the wire shape of one /torrents/info entry.
type torrentRow struct {
	Hash      string  `json:"hash"`
	Name      string  `json:"name"`
	Progress  float64 `json:"progress"` // fraction 0..1
	DLSpeed   int64   `json:"dlspeed"`
	UPSpeed   int64   `json:"upspeed"`
	Priority  int     `json:"priority"`
	State     string  `json:"state"`
	Size      int64   `json:"size"`
	Completed int64   `json:"completed"`
}

// Torrents lists all torrents known to the client.
func (c *Client) Torrents(ctx context.Context) ([]domain.Torrent, error) {
	if err := c.login(ctx); err != nil {
		return nil, err
	}
	body, err := c.get(ctx, "/api/v2/torrents/info", nil)
	if err != nil {
		return nil, fmt.Errorf("list torrents: %w", err)
	}
	var rows []torrentRow
	if err := json.Unmarshal([]byte(body), &rows); err != nil {
		return nil, fmt.Errorf("list torrents: decode: %w", err)
	}
	out := make([]domain.Torrent, 0, len(rows))
	for _, r := range rows {
		out = append(out, domain.Torrent{
			Hash:      r.Hash,
			Name:      r.Name,
			State:     r.State,
			Progress:  int(r.Progress*100 + 0.5),
			Size:      r.Size,
			Completed: r.Completed,
			DLSpeed:   r.DLSpeed,
			UPSpeed:   r.UPSpeed,
			Priority:  r.Priority,
		})
	}
	return out, nil
}

// Add enqueues a torrent by magnet link or download URL.
func (c *Client) Add(ctx context.Context, link string) error {
	if err := c.login(ctx); err != nil {
		return err
	}
	if _, err := c.postForm(ctx, "/api/v2/torrents/add", url.Values{"urls": {link}}); err != nil {
		return fmt.Errorf("add torrent: %w", err)
	}
	return nil
}

// Pause stops the torrent identified by hash.
func (c *Client) Pause(ctx context.Context, hash string) error {
	return c.hashesPost(ctx, "/api/v2/torrents/stop", hash)
}

// Resume starts the torrent identified by hash.
func (c *Client) Resume(ctx context.Context, hash string) error {
	return c.hashesPost(ctx, "/api/v2/torrents/start", hash)
}

// PauseAll stops every torrent.
func (c *Client) PauseAll(ctx context.Context) error {
	return c.hashesPost(ctx, "/api/v2/torrents/stop", "all")
}

// ResumeAll starts every torrent.
func (c *Client) ResumeAll(ctx context.Context) error {
	return c.hashesPost(ctx, "/api/v2/torrents/start", "all")
}

// Delete removes the torrent, and its downloaded files when deleteFiles
// is set.
func (c *Client) Delete(ctx context.Context, hash string, deleteFiles bool) error {
	if err := c.login(ctx); err != nil {
		return err
	}
	form := url.Values{
		"hashes":      {hash},
		"deleteFiles": {strconv.FormatBool(deleteFiles)},
	}
	if _, err := c.postForm(ctx, "/api/v2/torrents/delete", form); err != nil {
		return fmt.Errorf("delete torrent: %w", err)
	}
	return nil
}

// SetPriority moves the torrent to the top or bottom of the queue.
func (c *Client) SetPriority(ctx context.Context, hash string, top bool) error {
	endpoint := "/api/v2/torrents/bottomPrio"
	if top {
		endpoint = "/api/v2/torrents/topPrio"
	}
	return c.hashesPost(ctx, endpoint, hash)
}

// transferInfo is the wire shape of /transfer/info.
type transferInfo struct {
	DLRateLimit int64 `json:"dl_rate_limit"`
	UPRateLimit int64 `json:"up_rate_limit"`
}

// TransferInfo returns the global speed limits in bytes/sec; zero means
// unlimited.
func (c *Client) TransferInfo(ctx context.Context) (domain.SpeedLimits, error) {
	if err := c.login(ctx); err != nil {
		return domain.SpeedLimits{}, err
	}
	body, err := c.get(ctx, "/api/v2/transfer/info", nil)
	if err != nil {
		return domain.SpeedLimits{}, fmt.Errorf("transfer info: %w", err)
	}
	var info transferInfo
	if err := json.Unmarshal([]byte(body), &info); err != nil {
		return domain.SpeedLimits{}, fmt.Errorf("transfer info: decode: %w", err)
	}
	return domain.SpeedLimits{Download: info.DLRateLimit, Upload: info.UPRateLimit}, nil
}

// SetDownloadLimit sets the global download cap in bytes/sec; zero or
// negative clears the limit.
func (c *Client) SetDownloadLimit(ctx context.Context, bytesPerSec int64) error {
	return c.setLimit(ctx, "/api/v2/transfer/setDownloadLimit", bytesPerSec)
}

// SetUploadLimit sets the global upload cap in bytes/sec; zero or
// negative clears the limit.
func (c *Client) SetUploadLimit(ctx context.Context, bytesPerSec int64) error {
	return c.setLimit(ctx, "/api/v2/transfer/setUploadLimit", bytesPerSec)
}

func (c *Client) setLimit(ctx context.Context, endpoint string, bytesPerSec int64) error {
	if bytesPerSec < 0 {
		bytesPerSec = 0
	}
	if err := c.login(ctx); err != nil {
		return err
	}
	form := url.Values{"limit": {strconv.FormatInt(bytesPerSec, 10)}}
	if _, err := c.postForm(ctx, endpoint, form); err != nil {
		return fmt.Errorf("set limit: %w", err)
	}
	return nil
}

func (c *Client) hashesPost(ctx context.Context, endpoint, hashes string) error {
	if err := c.login(ctx); err != nil {
		return err
	}
	if _, err := c.postForm(ctx, endpoint, url.Values{"hashes": {hashes}}); err != nil {
		return fmt.Errorf("%s: %w", strings.TrimPrefix(endpoint, "/api/v2/torrents/"), err)
	}
	return nil
}

func (c *Client) get(ctx context.Context, endpoint string, query url.Values) (string, error) {
	u := c.baseURL + endpoint
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return "", err
	}
	return c.do(req)
}

func (c *Client) postForm(ctx context.Context, endpoint string, form url.Values) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.do(req)
}

func (c *Client) do(req *http.Request) (string, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return string(body), nil
}
