// Package torrserver probes a TorrServer instance. The bot only needs a
// health check; streaming control stays in TorrServer's own UI.
package torrserver

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ndrozd/homebot/internal/domain"
)

// Client talks to one TorrServer instance.
type Client struct {
	baseURL string
	http    *http.Client
}

// New returns a client for the TorrServer at baseURL.
func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// Health probes the web root and falls back to the /echo API endpoint
// when the root is unreachable.
func (c *Client) Health(ctx context.Context) domain.ServiceStatus {
	start := time.Now()
	if body, err := c.get(ctx, "/"); err == nil {
		msg := "HTTP server accessible"
		if strings.Contains(body, "TorrServer") {
			msg = "Web interface accessible"
		}
		return domain.ServiceStatus{
			Name:    "TorrServer",
			Online:  true,
			Message: msg,
			Latency: time.Since(start),
		}
	}

	start = time.Now()
	if _, err := c.get(ctx, "/echo"); err == nil {
		return domain.ServiceStatus{
			Name:    "TorrServer",
			Online:  true,
			Message: "API accessible",
			Latency: time.Since(start),
		}
	} else {
		return domain.ServiceStatus{Name: "TorrServer", Online: false, Message: err.Error()}
	}
}

func (c *Client) get(ctx context.Context, endpoint string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+endpoint, nil)
	if err != nil {
		return "", err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", err
	}
	if resp.StatusCode >= 400 {
		return "", &statusError{code: resp.StatusCode}
	}
	return string(body), nil
}

type statusError struct{ code int }

func (e *statusError) Error() string { return fmt.Sprintf("unexpected status %d", e.code) }
