package internal

import (
	"bufio"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/starford/depot/internal/plugins/devmode"
	"github.com/starford/depot/internal/server"
	"github.com/starford/depot/internal/sse"
	"github.com/starford/depot/internal/testutil"
)

func getStatus(t *testing.T, url string) int {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	resp.Body.Close()
	return resp.StatusCode
}

// streamEvents opens the event stream and forwards every event name.
func streamEvents(t *testing.T, ctx context.Context, url string) <-chan string {
	t.Helper()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("events: %v", err)
	}
	events := make(chan string, 16)
	go func() {
		defer resp.Body.Close()
		sc := bufio.NewScanner(resp.Body)
		for sc.Scan() {
			if name, ok := strings.CutPrefix(sc.Text(), "event: "); ok {
				events <- name
			}
		}
	}()
	return events
}

func TestDevServer_RebuildsOnChange(t *testing.T) {
	t.Setenv(devmode.EnvVar, "")
	cfg := testConfig(t, map[string]string{
		"bookmarks/first.md": "---\ntitle: First link\ndate: 2013-05-01\nurl: https://go.dev\n---\n",
	})
	cfg.Serve.Debounce = 20 * time.Millisecond

	app, err := newApplication([]Option{WithConfig(cfg), WithLogger(testutil.Logger())})
	if err != nil {
		t.Fatal(err)
	}
	rt, err := app.openRuntime(devmode.WithGetenv(serveGetenv))
	if err != nil {
		t.Fatal(err)
	}
	defer rt.Close()

	dev := newDevServer(rt, app.logger)
	defer dev.Close()
	ts := httptest.NewServer(dev.Handler())
	defer ts.Close()

	if code := getStatus(t, ts.URL+"/health/ready"); code != http.StatusServiceUnavailable {
		t.Fatalf("ready before first build = %d, want 503", code)
	}

	streamCtx, stopStream := context.WithCancel(context.Background())
	defer stopStream()
	events := streamEvents(t, streamCtx, ts.URL+server.EventsPath)

	deadline := time.Now().Add(2 * time.Second)
	for dev.broker.ClientCount() != 1 {
		if time.Now().After(deadline) {
			t.Fatal("event stream never subscribed")
		}
		time.Sleep(10 * time.Millisecond)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	watchDone := make(chan error, 1)
	go func() { watchDone <- dev.Watch(ctx) }()

	// Let the watcher register its directories.
	time.Sleep(100 * time.Millisecond)
	second := "---\ntitle: Second link\ndate: 2013-05-02\nurl: https://pkg.go.dev\n---\n"
	if err := os.WriteFile(filepath.Join(cfg.Content.Path, "bookmarks", "second.md"), []byte(second), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case name := <-events:
		if name != sse.EventBuildSucceeded {
			t.Fatalf("event = %q, want %q", name, sse.EventBuildSucceeded)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timeout waiting for build event")
	}

	if code := getStatus(t, ts.URL+"/health/ready"); code != http.StatusOK {
		t.Errorf("ready after rebuild = %d, want 200", code)
	}
	page := testutil.ReadFile(t, cfg.Output.Path, "bookmarks.html")
	if !strings.Contains(page, "Second link") {
		t.Errorf("rebuilt page missing new bookmark:\n%s", page)
	}
	if !strings.Contains(page, server.EventsPath) {
		t.Error("serve should build with the live reload script")
	}

	cancel()
	select {
	case err := <-watchDone:
		if err != nil {
			t.Errorf("Watch: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not stop after cancel")
	}
	stopStream()
}
