package ffmpeg

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
)

func TestValidName(t *testing.T) {
	tests := map[string]bool{
		"input.mp4":    true,
		"subs.srt":     true,
		"":             false,
		".":            false,
		"..":           false,
		"../etc/passw": false,
		`a\b`:          false,
	}
	for in, want := range tests {
		if got := validName(in); got != want {
			t.Fatalf("validName(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestFileOpsRequireLoad(t *testing.T) {
	a := New(Options{})
	if err := a.WriteFile(context.Background(), "x", nil); !errors.Is(err, ErrNotLoaded) {
		t.Fatalf("expected ErrNotLoaded, got %v", err)
	}
	if _, err := a.Exec(context.Background(), []string{"-version"}); !errors.Is(err, ErrNotLoaded) {
		t.Fatalf("expected ErrNotLoaded, got %v", err)
	}
}

// "true" accepts any arguments and exits 0, which is all Load needs.
func TestWorkspaceLifecycle(t *testing.T) {
	if _, err := exec.LookPath("true"); err != nil {
		t.Skip("true(1) not available")
	}
	a := New(Options{FFmpegPath: "true"})
	ctx := context.Background()
	if err := a.Load(ctx); err != nil {
		t.Fatalf("load: %v", err)
	}
	if err := a.Load(ctx); err != nil {
		t.Fatalf("second load: %v", err)
	}
	dir := a.dir

	if err := a.WriteFile(ctx, "input.mp4", []byte("abc")); err != nil {
		t.Fatalf("write: %v", err)
	}
	b, err := a.ReadFile(ctx, "input.mp4")
	if err != nil || string(b) != "abc" {
		t.Fatalf("read: %q, %v", b, err)
	}
	res, err := a.Exec(ctx, []string{"-i", "input.mp4"})
	if err != nil || res.ExitCode != 0 {
		t.Fatalf("exec: %+v, %v", res, err)
	}
	if err := a.DeleteFile(ctx, "input.mp4"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "input.mp4")); !os.IsNotExist(err) {
		t.Fatalf("expected file removed, stat err=%v", err)
	}
	if err := a.WriteFile(ctx, "leak.tmp", []byte("x")); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := a.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if _, err := os.Stat(dir); !os.IsNotExist(err) {
		t.Fatalf("expected workspace removed, stat err=%v", err)
	}
}

func TestExecReportsExitCode(t *testing.T) {
	if _, err := exec.LookPath("false"); err != nil {
		t.Skip("false(1) not available")
	}
	a := New(Options{FFmpegPath: "false"})
	a.bin, a.dir, a.loaded = "false", t.TempDir(), true

	res, err := a.Exec(context.Background(), nil)
	if err != nil {
		t.Fatalf("exec: %v", err)
	}
	if res.ExitCode == 0 {
		t.Fatalf("expected non-zero exit code")
	}
}

func TestFetchRemoteCachesBinary(t *testing.T) {
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits++
		_, _ = w.Write([]byte("#!/bin/sh\nexit 0\n"))
	}))
	defer srv.Close()

	cache := t.TempDir()
	a := New(Options{Preload: PreloadRemote, RemoteURL: srv.URL + "/ffmpeg", CacheDir: cache})

	p1, err := a.fetchRemote(context.Background())
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	p2, err := a.fetchRemote(context.Background())
	if err != nil {
		t.Fatalf("second fetch: %v", err)
	}
	if p1 != p2 || hits != 1 {
		t.Fatalf("expected cached binary, paths %q %q, hits %d", p1, p2, hits)
	}
	st, err := os.Stat(p1)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if st.Mode().Perm()&0o100 == 0 {
		t.Fatalf("expected executable bit, got %v", st.Mode())
	}
}

func TestFetchRemoteRejectsBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	a := New(Options{Preload: PreloadRemote, RemoteURL: srv.URL, CacheDir: t.TempDir()})
	if _, err := a.fetchRemote(context.Background()); err == nil {
		t.Fatalf("expected error for 404")
	}
}
