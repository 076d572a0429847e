// Package jackett implements a client for the Jackett indexer aggregator:
// aggregate and per-indexer torrent search, the configured-indexer list,
// and a health probe. Search timeouts are generous because Jackett fans
// a query out to every configured tracker.
package jackett

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ndrozd/homebot/internal/domain"
)

// ErrNoAPIKey is returned by search operations when no API key is
// configured; indexer search cannot work without one.
var ErrNoAPIKey = errors.New("jackett: API key is not configured")

// Client talks to one Jackett instance.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// New returns a client for the Jackett API at baseURL.
func New(baseURL, apiKey string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http: &http.Client{
			Timeout: timeout,
			// The dashboard redirects to a login page; the health probe
			// treats that as reachable rather than following it.
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

// searchResponse is the wire shape of /indexers/.../results.
type searchResponse struct {
	Results []searchRow `json:"Results"`
}

type searchRow struct {
	Title        string `json:"Title"`
	Link         string `json:"Link"`
	MagnetURI    string `json:"MagnetUri"`
	Size         int64  `json:"Size"`
	Seeders      int    `json:"Seeders"`
	Peers        int    `json:"Peers"`
	Tracker      string `json:"Tracker"`
	CategoryDesc string `json:"CategoryDesc"`
}

// Search queries every configured indexer and returns at most limit
// results.
func (c *Client) Search(ctx context.Context, query string, limit int) ([]domain.SearchResult, error) {
	return c.search(ctx, "/api/v2.0/indexers/all/results", query, limit)
}

// SearchIndexer queries a single indexer by its Jackett id.
func (c *Client) SearchIndexer(ctx context.Context, indexerID, query string, limit int) ([]domain.SearchResult, error) {
	return c.search(ctx, "/api/v2.0/indexers/"+url.PathEscape(indexerID)+"/results", query, limit)
}

func (c *Client) search(ctx context.Context, endpoint, query string, limit int) ([]domain.SearchResult, error) {
	if c.apiKey == "" {
		return nil, ErrNoAPIKey
	}
	params := url.Values{
		"apikey":   {c.apiKey},
		"Query":    {query},
		"Category": {""},
	}
	body, err := c.get(ctx, endpoint, params)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	var resp searchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("search: decode: %w", err)
	}

	rows := resp.Results
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}
	out := make([]domain.SearchResult, 0, len(rows))
	for _, r := range rows {
		link := r.Link
		if link == "" {
			link = r.MagnetURI
		}
		title := r.Title
		if title == "" {
			title = "Unknown"
		}
		out = append(out, domain.SearchResult{
			Title:    title,
			Link:     link,
			Size:     r.Size,
			Seeders:  r.Seeders,
			Peers:    r.Peers,
			Tracker:  r.Tracker,
			Category: r.CategoryDesc,
		})
	}
	return out, nil
}

// indexerRow is the wire shape of one /indexers entry.
type indexerRow struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Configured bool   `json:"configured"`
}

// Indexers lists the trackers configured in Jackett.
func (c *Client) Indexers(ctx context.Context) ([]domain.Indexer, error) {
	if c.apiKey == "" {
		return nil, ErrNoAPIKey
	}
	body, err := c.get(ctx, "/api/v2.0/indexers", url.Values{
		"apikey":     {c.apiKey},
		"configured": {"true"},
	})
	if err != nil {
		return nil, fmt.Errorf("indexers: %w", err)
	}
	var rows []indexerRow
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("indexers: decode: %w", err)
	}
	out := make([]domain.Indexer, 0, len(rows))
	for _, r := range rows {
		name := r.Name
		if name == "" {
			name = r.ID
		}
		out = append(out, domain.Indexer{ID: r.ID, Name: name, Configured: r.Configured})
	}
	return out, nil
}

// Health probes the web root. A redirect to the dashboard or login page
// counts as online; only transport errors and 4xx/5xx count as down.
func (c *Client) Health(ctx context.Context) domain.ServiceStatus {
	start := time.Now()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/", nil)
	if err != nil {
		return domain.ServiceStatus{Name: "Jackett", Online: false, Message: err.Error()}
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return domain.ServiceStatus{Name: "Jackett", Online: false, Message: err.Error()}
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<16))

	if resp.StatusCode >= 400 {
		return domain.ServiceStatus{Name: "Jackett", Online: false, Message: fmt.Sprintf("HTTP %d", resp.StatusCode)}
	}
	msg := "HTTP server accessible"
	if resp.StatusCode == http.StatusMovedPermanently || resp.StatusCode == http.StatusFound {
		msg = "Web server accessible (redirects to dashboard)"
	}
	return domain.ServiceStatus{
		Name:    "Jackett",
		Online:  true,
		Message: msg,
		Latency: time.Since(start),
	}
}

func (c *Client) get(ctx context.Context, endpoint string, params url.Values) ([]byte, error) {
	u := c.baseURL + endpoint
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return body, nil
}
