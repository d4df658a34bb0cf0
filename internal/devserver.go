package internal

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/starford/depot/internal/server"
	"github.com/starford/depot/internal/sse"
	"github.com/starford/depot/internal/watcher"
)

// devServer ties the rebuild loop of depot serve together: file changes
// trigger a build, the outcome is recorded for /health/ready and pushed to
// open pages over SSE.
type devServer struct {
	rt     *runtime
	logger *slog.Logger
	broker *sse.Broker
	status *server.Status
}

func newDevServer(rt *runtime, logger *slog.Logger) *devServer {
	return &devServer{
		rt:     rt,
		logger: logger,
		broker: sse.NewBroker(30 * time.Second),
		status: &server.Status{},
	}
}

// Handler serves the output directory, health probes and build events.
func (d *devServer) Handler() http.Handler {
	return server.NewRouter(d.rt.output.Root(), d.broker, d.status)
}

func (d *devServer) rebuild(ctx context.Context) {
	start := time.Now()
	_, err := d.rt.build(ctx)
	d.status.Record(err)
	d.broker.PublishBuild(time.Since(start), err)
	if err != nil {
		d.logger.Error("serve: build failed", slog.String("error", err.Error()))
	}
}

// Watch rebuilds on every debounced change under the content and theme
// directories until ctx is done.
func (d *devServer) Watch(ctx context.Context) error {
	cfg := d.rt.cfg
	roots := []string{d.rt.content.Root(), cfg.Theme.Path}
	return watcher.Watch(ctx, roots, cfg.Serve.Debounce, d.logger, func(changed []string) {
		d.logger.Info("serve: change detected", slog.Int("files", len(changed)))
		d.rebuild(ctx)
	})
}

// Close disconnects event stream clients.
func (d *devServer) Close() {
	d.broker.Close()
}

// serveGetenv makes an unset or empty DEV_MODE read as "1".
func serveGetenv(key string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return "1"
}
