package server

import (
	"bufio"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"git.home.luguber.info/inful/snowbow/internal/logfields"
)

// LiveReloadPath is the server-sent events endpoint browsers subscribe to.
const LiveReloadPath = "/_snowbow/livereload"

// LiveReloadHub streams the digest of each new snapshot to connected browsers.
type LiveReloadHub struct {
	mu         sync.RWMutex
	nextID     int
	clients    map[int]*lrClient
	closed     bool
	lastDigest string
	heartbeat  time.Duration
}

type lrClient struct {
	id   int
	ch   chan string
	done chan struct{}
}

// NewLiveReloadHub creates a hub. The first broadcast digest is sent to
// clients as they connect so they can tell later changes apart.
func NewLiveReloadHub() *LiveReloadHub {
	return &LiveReloadHub{clients: map[int]*lrClient{}, heartbeat: 30 * time.Second}
}

// ServeHTTP implements the event stream.
func (h *LiveReloadHub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	closed := h.closed
	h.mu.RUnlock()
	if closed {
		http.Error(w, "livereload shutting down", http.StatusServiceUnavailable)
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "stream unsupported", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	client := &lrClient{ch: make(chan string, 8), done: make(chan struct{})}
	h.mu.Lock()
	client.id = h.nextID
	h.nextID++
	h.clients[client.id] = client
	current := h.lastDigest
	h.mu.Unlock()
	defer h.removeClient(client.id)

	bw := bufio.NewWriter(w)
	send := func(s string) bool {
		if _, err := bw.WriteString(s); err != nil {
			slog.Debug("Livereload write failed", logfields.Error(err))
			return false
		}
		if err := bw.Flush(); err != nil {
			return false
		}
		flusher.Flush()
		return true
	}

	if !send(": connected\n\n") {
		return
	}
	if current != "" && !send(event(current)) {
		return
	}

	hb := time.NewTicker(h.heartbeat)
	defer hb.Stop()
	for {
		select {
		case <-r.Context().Done():
			return
		case <-client.done:
			return
		case <-hb.C:
			if !send(": ping\n\n") {
				return
			}
		case digest := <-client.ch:
			if !send(event(digest)) {
				return
			}
		}
	}
}

func event(digest string) string {
	return "data: {\"digest\":\"" + digest + "\"}\n\n"
}

func (h *LiveReloadHub) removeClient(id int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if c, ok := h.clients[id]; ok {
		delete(h.clients, id)
		close(c.done)
	}
}

// Clients returns the number of connected browsers.
func (h *LiveReloadHub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Broadcast sends digest to every client. Repeated digests are dropped, as
// are clients whose buffers are full.
func (h *LiveReloadHub) Broadcast(digest string) {
	h.mu.Lock()
	if h.closed || digest == "" || digest == h.lastDigest {
		h.mu.Unlock()
		return
	}
	h.lastDigest = digest
	snapshot := make([]*lrClient, 0, len(h.clients))
	for _, c := range h.clients {
		snapshot = append(snapshot, c)
	}
	h.mu.Unlock()

	dropped := 0
	for _, c := range snapshot {
		select {
		case c.ch <- digest:
		default:
			dropped++
			h.removeClient(c.id)
		}
	}
	slog.Debug("Livereload broadcast", logfields.Digest(digest),
		logfields.Count(len(snapshot)), slog.Int("dropped", dropped))
}

// Shutdown disconnects all clients and ignores later broadcasts.
func (h *LiveReloadHub) Shutdown() {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	h.closed = true
	clients := h.clients
	h.clients = map[int]*lrClient{}
	h.mu.Unlock()
	for _, c := range clients {
		close(c.done)
	}
}

// LiveReloadScript reloads the page when the stream reports a digest other
// than the first one it saw.
const LiveReloadScript = `<script>(() => {
  if (window.__SNOWBOW_LR__) return;
  window.__SNOWBOW_LR__ = true;
  function connect() {
    const es = new EventSource('` + LiveReloadPath + `');
    let current = null;
    es.onmessage = (e) => {
      try {
        const p = JSON.parse(e.data);
        if (current === null) { current = p.digest; return; }
        if (p.digest && p.digest !== current) { location.reload(); }
      } catch (_) {}
    };
    es.onerror = () => { es.close(); setTimeout(connect, 2000); };
  }
  connect();
})();</script>`

// maxInjectSize bounds how much of an HTML response is buffered for injection.
const maxInjectSize = 4 << 20

// InjectLiveReload adds LiveReloadScript before </body> in HTML responses.
func InjectLiveReload(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		inj := &injector{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(inj, r)
		inj.finalize()
	})
}

// injector buffers an HTML body so the script can be inserted. Other content
// types, and bodies larger than maxInjectSize, pass through.
type injector struct {
	http.ResponseWriter
	status        int
	buf           []byte
	decided       bool
	passthrough   bool
	headerWritten bool
}

func (i *injector) WriteHeader(code int) {
	i.status = code
	i.decide()
	if i.passthrough && !i.headerWritten {
		i.ResponseWriter.WriteHeader(code)
		i.headerWritten = true
	}
}

func (i *injector) decide() {
	if i.decided {
		return
	}
	i.decided = true
	ct := i.Header().Get("Content-Type")
	i.passthrough = !strings.HasPrefix(ct, "text/html")
}

func (i *injector) Write(data []byte) (int, error) {
	i.decide()
	if i.passthrough {
		if !i.headerWritten {
			i.ResponseWriter.WriteHeader(i.status)
			i.headerWritten = true
		}
		return i.ResponseWriter.Write(data)
	}
	if len(i.buf)+len(data) > maxInjectSize {
		i.passthrough = true
		i.ResponseWriter.WriteHeader(i.status)
		i.headerWritten = true
		if _, err := i.ResponseWriter.Write(i.buf); err != nil {
			return 0, err
		}
		i.buf = nil
		return i.ResponseWriter.Write(data)
	}
	i.buf = append(i.buf, data...)
	return len(data), nil
}

func (i *injector) finalize() {
	if i.headerWritten {
		return
	}
	body := string(i.buf)
	if idx := strings.LastIndex(body, "</body>"); idx >= 0 {
		body = body[:idx] + LiveReloadScript + body[idx:]
	} else if len(body) > 0 {
		body += LiveReloadScript
	}
	i.Header().Del("Content-Length")
	i.ResponseWriter.WriteHeader(i.status)
	_, _ = i.ResponseWriter.Write([]byte(body))
}
