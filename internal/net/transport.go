package net

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/matryer/way"
	"github.com/sirupsen/logrus"

	"CircuiPlanner/internal/export"
	"CircuiPlanner/internal/log"
	"CircuiPlanner/internal/state"
)

const (
	maxScale   = 64
	sendBuffer = 8
	writeWait  = time.Second
)

// Snapshot is one published state of the drawing. Image is at cell
// resolution and must not be modified after Publish.
type Snapshot struct {
	Image     *image.NRGBA
	Revision  uint64
	PixelSize int
}

// GridInfo is the body of GET /grid.json.
type GridInfo struct {
	Session   string `json:"session"`
	Cols      int    `json:"cols"`
	Rows      int    `json:"rows"`
	Revision  uint64 `json:"revision"`
	PixelSize int    `json:"pixel_size"`
}

// Event is pushed to every /events subscriber when the revision changes.
type Event struct {
	Type     string `json:"type"`
	Revision uint64 `json:"revision"`
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub holds the latest snapshot and the websocket subscribers.
type Hub struct {
	mu       sync.RWMutex
	snap     Snapshot
	clients  map[*client]bool
	upgrader websocket.Upgrader
	log      *logrus.Entry
}

// NewHub creates a hub with an empty 1x1 snapshot.
func NewHub() *Hub {
	return &Hub{
		snap:    Snapshot{Image: image.NewNRGBA(image.Rect(0, 0, 1, 1)), PixelSize: 1},
		clients: make(map[*client]bool),
		log:     log.With("net"),
	}
}

// Publish replaces the current snapshot. Subscribers are notified only
// when the revision moved; a subscriber that is not keeping up misses the
// event rather than blocking the caller.
func (h *Hub) Publish(s Snapshot) {
	h.mu.Lock()
	defer h.mu.Unlock()
	changed := s.Revision != h.snap.Revision
	h.snap = s
	if !changed {
		return
	}
	msg, _ := json.Marshal(Event{Type: "revision", Revision: s.Revision})
	for c := range h.clients {
		select {
		case c.send <- msg:
		default:
			h.log.Debugf("[NET] dropped revision %d for a slow viewer", s.Revision)
		}
	}
}

// Latest returns the current snapshot.
func (h *Hub) Latest() Snapshot {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.snap
}

// Clients is the number of connected subscribers.
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) add(c *client) {
	h.mu.Lock()
	h.clients[c] = true
	h.mu.Unlock()
	h.log.Infof("[NET] viewer connected from %s", c.conn.RemoteAddr())
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	delete(h.clients, c)
	close(c.send)
	h.mu.Unlock()
	h.log.Infof("[NET] viewer %s left", c.conn.RemoteAddr())
}

// Server exposes the hub's snapshot read-only over HTTP.
type Server struct {
	router *way.Router
	hub    *Hub
}

func NewServer(hub *Hub) *Server {
	s := &Server{hub: hub}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.router = way.NewRouter()
	s.router.HandleFunc("GET", "/", s.handleIndex())
	s.router.HandleFunc("GET", "/export.png", s.handleExport())
	s.router.HandleFunc("GET", "/grid.json", s.handleGrid())
	s.router.HandleFunc("GET", "/events", s.handleEvents())
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is done. It calls ready, if not
// nil, with the bound address once the listener is open.
func (s *Server) ListenAndServe(ctx context.Context, addr string, ready func(net.Addr)) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	srv := &http.Server{Handler: s, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()
	s.hub.log.Infof("[NET] export server listening on %s", ln.Addr())
	if ready != nil {
		ready(ln.Addr())
	}
	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) handleIndex() http.HandlerFunc {
	const page = `<!doctype html>
<title>CircuiPlanner</title>
<img id="art" src="/export.png">
<script>
const ws = new WebSocket("ws://" + location.host + "/events");
ws.onmessage = () => { document.getElementById("art").src = "/export.png?t=" + Date.now(); };
</script>
`
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, page)
	}
}

func (s *Server) handleExport() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap := s.hub.Latest()
		scale := snap.PixelSize
		if q := r.URL.Query().Get("scale"); q != "" {
			n, err := strconv.Atoi(q)
			if err != nil || n < 1 || n > maxScale {
				http.Error(w, fmt.Sprintf("scale must be 1..%d", maxScale), http.StatusBadRequest)
				return
			}
			scale = n
		}

		etag := fmt.Sprintf(`"%s-%d-%d"`, state.SessionID(), snap.Revision, scale)
		w.Header().Set("ETag", etag)
		w.Header().Set("Cache-Control", "no-cache")
		if r.Header.Get("If-None-Match") == etag {
			w.WriteHeader(http.StatusNotModified)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		if err := export.EncodeImage(w, export.Scale(snap.Image, scale)); err != nil {
			s.hub.log.Errorf("[NET] export failed: %v", err)
		}
	}
}

func (s *Server) handleGrid() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap := s.hub.Latest()
		b := snap.Image.Bounds()
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(GridInfo{
			Session:   state.SessionID(),
			Cols:      b.Dx(),
			Rows:      b.Dy(),
			Revision:  snap.Revision,
			PixelSize: snap.PixelSize,
		})
	}
}

func (s *Server) handleEvents() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := s.hub.upgrader.Upgrade(w, r, nil)
		if err != nil {
			s.hub.log.Warnf("[NET] websocket upgrade failed: %v", err)
			return
		}
		c := &client{conn: conn, send: make(chan []byte, sendBuffer)}
		first, _ := json.Marshal(Event{Type: "revision", Revision: s.hub.Latest().Revision})
		c.send <- first
		s.hub.add(c)

		go c.writeLoop()
		// Viewers never send anything; reading only detects the close.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				break
			}
		}
		s.hub.remove(c)
	}
}

func (c *client) writeLoop() {
	defer c.conn.Close()
	for msg := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			return
		}
	}
	c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
}

// Serve runs the export server on addr and advertises it over mDNS until
// ctx is done. Advertising failures are logged, not fatal.
func Serve(ctx context.Context, hub *Hub, addr string) error {
	port, err := portOf(addr)
	if err != nil {
		return err
	}
	return NewServer(hub).ListenAndServe(ctx, addr, func(bound net.Addr) {
		if tcp, ok := bound.(*net.TCPAddr); ok {
			port = tcp.Port
		}
		if url, err := ShareURL(bound.String()); err == nil {
			hub.log.Infof("[NET] share link: %s", url)
		}
		md, err := Advertise(port)
		if err != nil {
			hub.log.Warnf("[NET] mDNS advertise failed: %v", err)
			return
		}
		go func() {
			<-ctx.Done()
			md.Shutdown()
		}()
	})
}
