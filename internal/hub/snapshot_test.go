package hub

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
)

// fakeHub serves a minimal model API for one repo with two files.
func fakeHub(t *testing.T, requireToken string) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	check := func(w http.ResponseWriter, r *http.Request) bool {
		if requireToken == "" {
			return true
		}
		if r.Header.Get("Authorization") != "Bearer "+requireToken {
			w.WriteHeader(http.StatusUnauthorized)
			return false
		}
		return true
	}
	mux.HandleFunc("/api/models/org/tiny", func(w http.ResponseWriter, r *http.Request) {
		if !check(w, r) {
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"siblings":[{"rfilename":"config.json"},{"rfilename":"weights/model.bin"}]}`))
	})
	mux.HandleFunc("/org/tiny/resolve/main/", func(w http.ResponseWriter, r *http.Request) {
		if !check(w, r) {
			return
		}
		_, _ = w.Write([]byte("payload:" + r.URL.Path))
	})
	return httptest.NewServer(mux)
}

func TestSnapshotDownloadsAllFiles(t *testing.T) {
	srv := fakeHub(t, "")
	defer srv.Close()

	dir := filepath.Join(t.TempDir(), "cache")
	c := NewClient(srv.URL, "", zerolog.Nop())
	if err := c.Snapshot(context.Background(), "org/tiny", dir); err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	for _, name := range []string{"config.json", filepath.Join("weights", "model.bin")} {
		b, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			t.Fatalf("read %s: %v", name, err)
		}
		if len(b) == 0 {
			t.Fatalf("empty file %s", name)
		}
	}
}

func TestSnapshotSkipsNonEmptyDir(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "existing.bin"), []byte("x"), 0o644); err != nil {
		t.Fatalf("seed: %v", err)
	}
	// No server: any network access would fail, so a nil round trip proves
	// the skip path.
	c := NewClient("http://127.0.0.1:1", "", zerolog.Nop())
	if err := c.Snapshot(context.Background(), "org/tiny", dir); err != nil {
		t.Fatalf("snapshot should skip non-empty dir: %v", err)
	}
}

func TestSnapshotSendsBearerToken(t *testing.T) {
	srv := fakeHub(t, "hf_secret")
	defer srv.Close()

	dir := filepath.Join(t.TempDir(), "cache")
	c := NewClient(srv.URL, "hf_secret", zerolog.Nop())
	if err := c.Snapshot(context.Background(), "org/tiny", dir); err != nil {
		t.Fatalf("snapshot with token: %v", err)
	}

	// Missing token must surface the hub error.
	c2 := NewClient(srv.URL, "", zerolog.Nop())
	if err := c2.Snapshot(context.Background(), "org/tiny", filepath.Join(t.TempDir(), "cache2")); err == nil {
		t.Fatalf("expected error for gated repo without token")
	}
}

func TestSnapshotRejectsEscapingFileNames(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/models/org/evil", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"siblings":[{"rfilename":"../escape.bin"}]}`))
	})
	mux.HandleFunc("/org/evil/resolve/main/", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("payload"))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	parent := t.TempDir()
	dir := filepath.Join(parent, "cache")
	c := NewClient(srv.URL, "", zerolog.Nop())
	if err := c.Snapshot(context.Background(), "org/evil", dir); err == nil {
		t.Fatal("expected error for file name escaping the cache dir")
	}
	if _, err := os.Stat(filepath.Join(parent, "escape.bin")); err == nil {
		t.Fatal("file written outside the cache dir")
	}
}

func TestSafeRelPath(t *testing.T) {
	cases := map[string]bool{
		"config.json":       true,
		"weights/model.bin": true,
		"":                  false,
		"/etc/passwd":       false,
		"../escape.bin":     false,
		"a/../../b":         false,
	}
	for name, want := range cases {
		if got := safeRelPath(name); got != want {
			t.Errorf("safeRelPath(%q) = %v, want %v", name, got, want)
		}
	}
}

func TestSnapshotEmptyRepoFails(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/models/org/empty", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"siblings":[]}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := NewClient(srv.URL, "", zerolog.Nop())
	if err := c.Snapshot(context.Background(), "org/empty", filepath.Join(t.TempDir(), "cache")); err == nil {
		t.Fatalf("expected error for repo with no files")
	}
}
