package qbittorrent

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(srv.URL, "", "", 5*time.Second)
}

func TestTorrents(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v2/torrents/info" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		w.Write([]byte(`[{"hash":"abc","name":"Ubuntu","progress":0.42,"dlspeed":1024,"upspeed":0,"priority":1,"state":"downloading","size":1000,"completed":420}]`))
	}))

	torrents, err := c.Torrents(context.Background())
	if err != nil {
		t.Fatalf("Torrents: %v", err)
	}
	if len(torrents) != 1 {
		t.Fatalf("got %d torrents; want 1", len(torrents))
	}
	tor := torrents[0]
	if tor.Hash != "abc" || tor.State != "downloading" {
		t.Fatalf("torrent = %+v", tor)
	}
	if tor.Progress != 42 {
		t.Fatalf("progress = %d; want 42", tor.Progress)
	}
}

func TestLoginSentBeforeMutation(t *testing.T) {
	var loginSeen bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v2/auth/login":
			if err := r.ParseForm(); err != nil {
				t.Errorf("parse login form: %v", err)
			}
			if r.PostForm.Get("username") != "admin" || r.PostForm.Get("password") != "secret" {
				t.Errorf("login form = %v", r.PostForm)
			}
			loginSeen = true
			w.Write([]byte("Ok."))
		case "/api/v2/torrents/stop":
			if !loginSeen {
				t.Error("pause reached server before login")
			}
			if err := r.ParseForm(); err != nil {
				t.Errorf("parse form: %v", err)
			}
			if r.PostForm.Get("hashes") != "abc" {
				t.Errorf("hashes = %q", r.PostForm.Get("hashes"))
			}
		default:
			t.Errorf("unexpected path %q", r.URL.Path)
		}
	}))
	defer srv.Close()

	c := New(srv.URL, "admin", "secret", 5*time.Second)
	if err := c.Pause(context.Background(), "abc"); err != nil {
		t.Fatalf("Pause: %v", err)
	}
	if !loginSeen {
		t.Fatal("login was never issued")
	}
}

func TestLoginRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("Fails."))
	}))
	defer srv.Close()

	c := New(srv.URL, "admin", "wrong", 5*time.Second)
	if err := c.Pause(context.Background(), "abc"); err == nil {
		t.Fatal("expected error on rejected credentials")
	}
}

func TestDeleteSendsFilesFlag(t *testing.T) {
	var gotFiles string
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v2/torrents/delete" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		r.ParseForm()
		gotFiles = r.PostForm.Get("deleteFiles")
	}))

	if err := c.Delete(context.Background(), "abc", true); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if gotFiles != "true" {
		t.Fatalf("deleteFiles = %q; want true", gotFiles)
	}
}

func TestPauseAllUsesAllSentinel(t *testing.T) {
	var gotHashes string
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.ParseForm()
		gotHashes = r.PostForm.Get("hashes")
	}))
	if err := c.PauseAll(context.Background()); err != nil {
		t.Fatalf("PauseAll: %v", err)
	}
	if gotHashes != "all" {
		t.Fatalf("hashes = %q; want all", gotHashes)
	}
}

func TestSetPriorityEndpoints(t *testing.T) {
	var gotPath string
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
	}))

	if err := c.SetPriority(context.Background(), "abc", true); err != nil {
		t.Fatalf("SetPriority(top): %v", err)
	}
	if gotPath != "/api/v2/torrents/topPrio" {
		t.Fatalf("top path = %q", gotPath)
	}

	if err := c.SetPriority(context.Background(), "abc", false); err != nil {
		t.Fatalf("SetPriority(bottom): %v", err)
	}
	if gotPath != "/api/v2/torrents/bottomPrio" {
		t.Fatalf("bottom path = %q", gotPath)
	}
}

func TestTransferInfoAndLimits(t *testing.T) {
	var limitPath, limitValue string
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v2/transfer/info":
			w.Write([]byte(`{"dl_rate_limit":5242880,"up_rate_limit":0}`))
		case "/api/v2/transfer/setDownloadLimit", "/api/v2/transfer/setUploadLimit":
			r.ParseForm()
			limitPath = r.URL.Path
			limitValue = r.PostForm.Get("limit")
		}
	}))

	limits, err := c.TransferInfo(context.Background())
	if err != nil {
		t.Fatalf("TransferInfo: %v", err)
	}
	if limits.Download != 5242880 || limits.Upload != 0 {
		t.Fatalf("limits = %+v", limits)
	}

	if err := c.SetDownloadLimit(context.Background(), 1048576); err != nil {
		t.Fatalf("SetDownloadLimit: %v", err)
	}
	if limitPath != "/api/v2/transfer/setDownloadLimit" || limitValue != "1048576" {
		t.Fatalf("limit call = %q %q", limitPath, limitValue)
	}

	// Negative clamps to unlimited.
	if err := c.SetUploadLimit(context.Background(), -5); err != nil {
		t.Fatalf("SetUploadLimit: %v", err)
	}
	if limitValue != "0" {
		t.Fatalf("negative limit sent %q; want 0", limitValue)
	}
}

func TestHealth(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("v5.0.1"))
	}))
	st := c.Health(context.Background())
	if !st.Online || st.Message != "Version: v5.0.1" {
		t.Fatalf("status = %+v", st)
	}

	down := New("http://127.0.0.1:1", "", "", time.Second)
	if st := down.Health(context.Background()); st.Online {
		t.Fatalf("unreachable instance reported online: %+v", st)
	}
}

func TestErrorStatusSurfaces(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	if _, err := c.Torrents(context.Background()); err == nil {
		t.Fatal("expected error for 403 response")
	}
}
