package jackett

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

const sampleResults = `{"Results":[
	{"Title":"Ubuntu 22.04 LTS","Link":"http://dl/1","Size":3000000000,"Seeders":120,"Peers":30,"Tracker":"linuxtracker","CategoryDesc":"PC/ISO"},
	{"Title":"Ubuntu 22.04 Server","MagnetUri":"magnet:?xt=urn:btih:xyz","Size":1500000000,"Seeders":80,"Peers":10,"Tracker":"rutracker","CategoryDesc":"PC/ISO"},
	{"Title":"","Link":"http://dl/3","Size":0,"Seeders":0,"Peers":0,"Tracker":"x","CategoryDesc":"Other"}
]}`

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(srv.URL, "key123", 5*time.Second)
}

func TestSearch(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v2.0/indexers/all/results" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("apikey") != "key123" || q.Get("Query") != "ubuntu" {
			t.Errorf("query params = %v", q)
		}
		w.Write([]byte(sampleResults))
	}))

	results, err := c.Search(context.Background(), "ubuntu", 2)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results; want limit 2", len(results))
	}
	if results[0].Link != "http://dl/1" {
		t.Fatalf("first link = %q", results[0].Link)
	}
	// MagnetUri used when Link is absent.
	if results[1].Link != "magnet:?xt=urn:btih:xyz" {
		t.Fatalf("second link = %q", results[1].Link)
	}
}

func TestSearchFillsUnknownTitle(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(sampleResults))
	}))
	results, err := c.Search(context.Background(), "ubuntu", 0)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if results[2].Title != "Unknown" {
		t.Fatalf("empty title rendered as %q", results[2].Title)
	}
}

func TestSearchIndexerPath(t *testing.T) {
	var gotPath string
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Write([]byte(`{"Results":[]}`))
	}))

	if _, err := c.SearchIndexer(context.Background(), "rutracker", "брат", 3); err != nil {
		t.Fatalf("SearchIndexer: %v", err)
	}
	if gotPath != "/api/v2.0/indexers/rutracker/results" {
		t.Fatalf("path = %q", gotPath)
	}
}

func TestSearchWithoutAPIKey(t *testing.T) {
	c := New("http://localhost:9117", "", time.Second)
	if _, err := c.Search(context.Background(), "x", 1); !errors.Is(err, ErrNoAPIKey) {
		t.Fatalf("err = %v; want ErrNoAPIKey", err)
	}
}

func TestIndexers(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v2.0/indexers" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		w.Write([]byte(`[{"id":"rutracker","name":"RuTracker.org","configured":true},{"id":"anon","name":"","configured":true}]`))
	}))

	indexers, err := c.Indexers(context.Background())
	if err != nil {
		t.Fatalf("Indexers: %v", err)
	}
	if len(indexers) != 2 {
		t.Fatalf("got %d indexers", len(indexers))
	}
	if indexers[0].Name != "RuTracker.org" {
		t.Fatalf("name = %q", indexers[0].Name)
	}
	// Falls back to id when the name is empty.
	if indexers[1].Name != "anon" {
		t.Fatalf("fallback name = %q", indexers[1].Name)
	}
}

func TestHealthTreatsRedirectAsOnline(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/UI/Login", http.StatusFound)
	}))
	st := c.Health(context.Background())
	if !st.Online {
		t.Fatalf("redirecting instance reported offline: %+v", st)
	}
}

func TestHealthOffline(t *testing.T) {
	c := New("http://127.0.0.1:1", "key", time.Second)
	if st := c.Health(context.Background()); st.Online {
		t.Fatalf("unreachable instance reported online: %+v", st)
	}

	errSrv := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	if st := errSrv.Health(context.Background()); st.Online {
		t.Fatalf("5xx instance reported online: %+v", st)
	}
}
