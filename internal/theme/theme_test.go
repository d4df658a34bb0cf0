package theme

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoad_Builtin(t *testing.T) {
	tmpl, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if tmpl.Lookup("bookmarks.html") == nil {
		t.Fatal("builtin bookmarks template missing")
	}

	var buf bytes.Buffer
	err = tmpl.ExecuteTemplate(&buf, "bookmarks.html", map[string]any{
		"SITENAME": "site", "SITEURL": "http://x", "devMode": "1",
	})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !strings.Contains(buf.String(), "EventSource") {
		t.Error("devMode should include the live-reload script")
	}
	if !strings.Contains(buf.String(), "No bookmarks yet.") {
		t.Error("empty list placeholder missing")
	}
}

func TestLoad_ThemeOverrides(t *testing.T) {
	dir := t.TempDir()
	_ = os.MkdirAll(filepath.Join(dir, "templates"), 0o755)
	_ = os.WriteFile(filepath.Join(dir, "templates", "bookmarks.html"), []byte(`custom {{len .bookmarks}}`), 0o644)

	tmpl, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "bookmarks.html", map[string]any{"bookmarks": []int{1, 2}}); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if buf.String() != "custom 2" {
		t.Errorf("out = %q", buf.String())
	}
	if tmpl.Lookup("livereload") == nil {
		t.Error("builtin partials should survive an override")
	}
}

func TestLoad_MissingDir(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Fatal("expected error for missing theme dir")
	}
}
