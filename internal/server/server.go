// Package server provides the development HTTP server: static files from
// the output directory, a live-reload SSE endpoint, and optional metrics.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fwdslsh/unify-sub011/internal/config"
	"github.com/fwdslsh/unify-sub011/internal/logfields"
	"github.com/fwdslsh/unify-sub011/internal/metrics"
)

const (
	reloadPath       = "/__unify/reload"
	reloadScriptPath = "/__unify/reload.js"
)

// Server serves the composed site during development.
type Server struct {
	cfg      *config.Config
	hub      *ReloadHub
	recorder *metrics.PrometheusRecorder // nil disables /metrics
	logger   *slog.Logger
	httpSrv  *http.Server
}

// New creates a development server rooted on the configured output
// directory. recorder may be nil.
func New(cfg *config.Config, hub *ReloadHub, recorder *metrics.PrometheusRecorder) *Server {
	return &Server{
		cfg:      cfg,
		hub:      hub,
		recorder: recorder,
		logger:   slog.Default(),
	}
}

// Hub returns the live-reload hub so builds can broadcast completions.
func (s *Server) Hub() *ReloadHub { return s.hub }

// Handler assembles the full request mux.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	if s.cfg.Serve.LiveReloadEnabled() && s.hub != nil {
		mux.Handle(reloadPath, s.hub)
		mux.HandleFunc(reloadScriptPath, serveReloadScript)
	}
	if s.cfg.Serve.Metrics && s.recorder != nil {
		mux.Handle("/metrics", s.recorder.HTTPHandler())
	}
	mux.Handle("/", s.fileHandler())
	return mux
}

// ListenAndServe runs the server until ctx is canceled, then shuts it
// down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	addr := fmt.Sprintf(":%d", s.cfg.Serve.Port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve runs the server on an existing listener until ctx is canceled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.httpSrv = &http.Server{
		Handler:     s.Handler(),
		ReadTimeout: 10 * time.Second,
		// long-lived SSE connections rule out a write timeout
		WriteTimeout: 0,
		IdleTimeout:  300 * time.Second,
	}

	s.logger.Info("serving site",
		slog.String("addr", ln.Addr().String()),
		logfields.Output(s.cfg.Output.Directory))

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.httpSrv.Serve(ln)
	}()

	select {
	case <-ctx.Done():
		if s.hub != nil {
			s.hub.Close()
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.httpSrv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// fileHandler serves the output directory. HTML responses get the
// live-reload script injected before the closing body tag.
func (s *Server) fileHandler() http.Handler {
	root := s.cfg.Output.Directory
	fileServer := http.FileServer(http.Dir(root))
	inject := s.cfg.Serve.LiveReloadEnabled() && s.hub != nil

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !inject {
			fileServer.ServeHTTP(w, r)
			return
		}
		path := r.URL.Path
		if strings.HasSuffix(path, "/") {
			path += "index.html"
		}
		if !strings.HasSuffix(path, ".html") && !strings.HasSuffix(path, ".htm") {
			fileServer.ServeHTTP(w, r)
			return
		}
		full := filepath.Join(root, filepath.FromSlash(strings.TrimPrefix(path, "/")))
		content, err := os.ReadFile(full)
		if err != nil {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if _, err := w.Write(injectReloadScript(content)); err != nil {
			s.logger.Debug("write page", logfields.Error(err))
		}
	})
}

var reloadTag = []byte(`<script src="` + reloadScriptPath + `"></script>`)

// injectReloadScript adds the reload script tag before </body>, or
// appends it when no body close tag exists.
func injectReloadScript(page []byte) []byte {
	idx := strings.LastIndex(strings.ToLower(string(page)), "</body>")
	if idx < 0 {
		return append(page, reloadTag...)
	}
	out := make([]byte, 0, len(page)+len(reloadTag))
	out = append(out, page[:idx]...)
	out = append(out, reloadTag...)
	out = append(out, page[idx:]...)
	return out
}

func serveReloadScript(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/javascript; charset=utf-8")
	script := `(() => {
  if (window.__UNIFY_LR__) return;
  window.__UNIFY_LR__ = true;
  function connect() {
    const es = new EventSource('` + reloadPath + `');
    let first = true, current = null;
    es.onmessage = (e) => {
      try {
        const p = JSON.parse(e.data);
        if (first) { current = p.build; first = false; return; }
        if (p.build && p.build !== current) { location.reload(); }
      } catch (_) {}
    };
    es.onerror = () => { es.close(); setTimeout(connect, 2000); };
  }
  connect();
})();`
	if _, err := w.Write([]byte(script)); err != nil {
		slog.Debug("write reload script", logfields.Error(err))
	}
}
