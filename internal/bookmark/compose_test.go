package bookmark

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/starford/depot/internal/models"
	"github.com/starford/depot/internal/parser"
)

func TestCompose_RoundTrip(t *testing.T) {
	d := Draft{
		URL:         "https://go.dev/blog/",
		Title:       "The Go Blog: \"quotes\" & colons",
		Date:        time.Date(2024, 3, 9, 14, 5, 0, 0, time.UTC),
		Tags:        []string{"go", "blog"},
		Description: "Worth a read.",
	}
	data, err := Compose(d)
	if err != nil {
		t.Fatalf("Compose: %v", err)
	}

	res, err := parser.Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	meta, err := parser.ProcessMetadata(res.Metadata, time.UTC)
	if err != nil {
		t.Fatalf("ProcessMetadata: %v", err)
	}
	b, err := New(&models.Source{Filename: "x.md", Metadata: meta})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if b.Title != d.Title || b.URL != d.URL || !b.Date.Equal(d.Date) {
		t.Errorf("bookmark = %+v", b)
	}
	if diff := cmp.Diff(d.Tags, b.Tags()); diff != "" {
		t.Errorf("tags mismatch (-want +got):\n%s", diff)
	}
	if strings.TrimSpace(res.Body) != "Worth a read." {
		t.Errorf("body = %q", res.Body)
	}
}

func TestFileName(t *testing.T) {
	date := time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC)
	if got := FileName(Draft{Title: "Éloge de la fuite!", Date: date}); got != "2024-03-09-eloge-de-la-fuite.md" {
		t.Errorf("FileName = %q", got)
	}
	if got := FileName(Draft{Title: "???", URL: "https://go.dev/x", Date: date}); got != "2024-03-09-go-dev.md" {
		t.Errorf("FileName fallback = %q", got)
	}
}

func TestFetchTitle(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("<html><head><title>\n  Hello\n  Page </title></head><body></body></html>"))
	}))
	defer srv.Close()

	if got := FetchTitle(context.Background(), srv.Client(), srv.URL+"/"); got != "Hello Page" {
		t.Errorf("title = %q", got)
	}
	if got := FetchTitle(context.Background(), srv.Client(), srv.URL+"/missing"); got != "" {
		t.Errorf("title for 404 = %q, want empty", got)
	}
}

func TestWriteTable(t *testing.T) {
	bs := []*Bookmark{
		{Date: day(2), Domain: "example.com", Title: "Short"},
		{Date: day(1), Domain: "例え.jp", Title: strings.Repeat("long title ", 20)},
	}
	var buf bytes.Buffer
	if err := WriteTable(&buf, bs, 60); err != nil {
		t.Fatalf("WriteTable: %v", err)
	}
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("lines = %d, want 3:\n%s", len(lines), buf.String())
	}
	if !strings.HasPrefix(lines[0], "DATE") || !strings.Contains(lines[0], "TITLE") {
		t.Errorf("header = %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "2013-05-02  example.com") {
		t.Errorf("row = %q", lines[1])
	}
	if !strings.HasSuffix(lines[2], "…") {
		t.Errorf("long title should be truncated: %q", lines[2])
	}
}
