// Package ws carries chat sessions over websocket connections.
package ws

import (
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"quicktalk/auth"
	"quicktalk/domain"
	"quicktalk/errors"
	"quicktalk/session"

	"github.com/gorilla/websocket"
)

type Config struct {
	MaxMessageSize int64
	PongWait       time.Duration
	PingPeriod     time.Duration
	WriteWait      time.Duration
	AllowedOrigins []string
}

func DefaultConfig() Config {
	return Config{
		MaxMessageSize: 64 << 10,
		PongWait:       60 * time.Second,
		PingPeriod:     54 * time.Second,
		WriteWait:      10 * time.Second,
	}
}

// Handler serves GET /ws/chat/{chat_id}/ behind auth.Middleware.
// Membership is checked before the upgrade so a refused join is answered
// with a plain HTTP status.
type Handler struct {
	log      *slog.Logger
	deps     session.Deps
	cfg      Config
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*client]struct{}
}

func NewHandler(log *slog.Logger, deps session.Deps, cfg Config) *Handler {
	return &Handler{
		log:  log,
		deps: deps,
		cfg:  cfg,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     newOriginPolicy(cfg.AllowedOrigins, log).check,
		},
		clients: make(map[*client]struct{}),
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		http.Error(w, errors.ErrUnauthenticated.Error(), http.StatusUnauthorized)
		return
	}
	id, err := strconv.ParseInt(r.PathValue("chat_id"), 10, 64)
	if err != nil || id <= 0 {
		http.Error(w, "invalid chat id", http.StatusBadRequest)
		return
	}

	s := session.New(domain.ChatID(id), identity.Participant(), h.deps)
	if err := s.Open(r.Context()); err != nil {
		http.Error(w, err.Error(), errors.MapToHTTPStatus(err))
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// the upgrader already answered the request
		h.log.Debug("Websocket upgrade failed", "chat_id", id, "error", err)
		s.Close()
		return
	}

	c := newClient(h.log.With("chat_id", id, "user_id", identity.UserID), conn, s, h.cfg)
	h.track(c)
	defer h.untrack(c)

	go c.writePump()
	c.readPump(r.Context())
}

func (h *Handler) track(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c] = struct{}{}
}

func (h *Handler) untrack(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients, c)
}

// Active returns the number of upgraded connections still pumping.
func (h *Handler) Active() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Shutdown closes every open websocket. http.Server.Shutdown does not track
// hijacked connections.
func (h *Handler) Shutdown() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		c.session.Close()
	}
}
