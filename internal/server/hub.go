package server

import (
	"bufio"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/fwdslsh/unify-sub011/internal/logfields"
)

// ReloadHub manages SSE clients for rebuild broadcasts. Connected browsers
// receive the build ID of every completed rebuild and reload on change.
type ReloadHub struct {
	mu          sync.RWMutex
	nextID      int
	clients     map[int]*hubClient
	closed      bool
	lastBuildID string
}

type hubClient struct {
	id   int
	ch   chan string
	done chan struct{}
}

// NewReloadHub creates an empty hub.
func NewReloadHub() *ReloadHub {
	return &ReloadHub{clients: map[int]*hubClient{}}
}

// Broadcast notifies all connected clients that a build completed.
func (h *ReloadHub) Broadcast(buildID string) {
	h.mu.Lock()
	h.lastBuildID = buildID
	clients := make([]*hubClient, 0, len(h.clients))
	for _, c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.Unlock()

	for _, c := range clients {
		select {
		case c.ch <- buildID:
		default:
			// slow client; it catches up on the next broadcast
		}
	}
}

// Close disconnects all clients and rejects new connections.
func (h *ReloadHub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for id, c := range h.clients {
		delete(h.clients, id)
		close(c.done)
	}
}

// ServeHTTP implements the SSE endpoint.
func (h *ReloadHub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	closed := h.closed
	h.mu.RUnlock()
	if closed {
		http.Error(w, "reload hub shutting down", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "stream unsupported", http.StatusInternalServerError)
		return
	}

	client := &hubClient{ch: make(chan string, 8), done: make(chan struct{})}
	h.mu.Lock()
	client.id = h.nextID
	h.nextID++
	h.clients[client.id] = client
	current := h.lastBuildID
	h.mu.Unlock()

	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString(": connected\n\n"); err != nil {
		slog.Debug("reload client write", logfields.Error(err))
		return
	}
	if current != "" {
		if _, err := bw.WriteString("data: {\"build\":\"" + current + "\"}\n\n"); err != nil {
			slog.Debug("reload client write", logfields.Error(err))
			return
		}
	}
	if err := bw.Flush(); err == nil {
		flusher.Flush()
	}

	hb := time.NewTicker(30 * time.Second)
	defer hb.Stop()
	ctx := r.Context()

	for {
		select {
		case <-ctx.Done():
			h.removeClient(client.id)
			return
		case <-client.done:
			return
		case <-hb.C:
			if _, err := bw.WriteString(": ping\n\n"); err != nil {
				h.removeClient(client.id)
				return
			}
			bw.Flush()
			flusher.Flush()
		case buildID := <-client.ch:
			if _, err := bw.WriteString("data: {\"build\":\"" + buildID + "\"}\n\n"); err != nil {
				h.removeClient(client.id)
				return
			}
			bw.Flush()
			flusher.Flush()
		}
	}
}

func (h *ReloadHub) removeClient(id int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if c, ok := h.clients[id]; ok {
		delete(h.clients, id)
		close(c.done)
	}
}
