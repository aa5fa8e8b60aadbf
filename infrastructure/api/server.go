// Package api exposes the account, chat management and history endpoints,
// and mounts the websocket handler.
package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"quicktalk/auth"
	"quicktalk/domain"
	"quicktalk/errors"
	"quicktalk/observability"
	"quicktalk/services"

	"github.com/go-playground/validator/v10"
)

const maxBodyBytes = 1 << 20

type StatsProvider interface {
	GetLatest() observability.MonitoringStats
}

type Server struct {
	log      *slog.Logger
	secret   []byte
	accounts services.IAuthService
	users    services.IUserService
	chats    services.IChatManagementService
	messages services.IChatService
	stats    StatsProvider
	ws       http.Handler
	validate *validator.Validate
}

func NewServer(log *slog.Logger, secret []byte,
	accounts services.IAuthService,
	users services.IUserService,
	chats services.IChatManagementService,
	messages services.IChatService,
	stats StatsProvider,
	ws http.Handler) *Server {
	return &Server{
		log:      log,
		secret:   secret,
		accounts: accounts,
		users:    users,
		chats:    chats,
		messages: messages,
		stats:    stats,
		ws:       ws,
		validate: validator.New(),
	}
}

// Routes returns the whole HTTP surface. Everything but registration, login
// and health requires a bearer token.
func (s *Server) Routes() http.Handler {
	authenticated := auth.Middleware(s.secret, s.log)
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /debug/stats", s.handleStats)
	mux.HandleFunc("POST /api/users/register", s.handleRegister)
	mux.HandleFunc("POST /api/users/login", s.handleLogin)
	mux.Handle("POST /api/users/search", authenticated(http.HandlerFunc(s.handleSearchUser)))
	mux.Handle("GET /api/users/{id}", authenticated(http.HandlerFunc(s.handleGetUser)))

	mux.Handle("GET /api/chats", authenticated(http.HandlerFunc(s.handleListChats)))
	mux.Handle("POST /api/chats/personal", authenticated(http.HandlerFunc(s.handleCreatePersonal)))
	mux.Handle("POST /api/chats/group", authenticated(http.HandlerFunc(s.handleCreateGroup)))
	mux.Handle("GET /api/chats/search", authenticated(http.HandlerFunc(s.handleSearch)))
	mux.Handle("GET /api/chats/{id}", authenticated(http.HandlerFunc(s.handleGetChat)))
	mux.Handle("PUT /api/chats/{id}", authenticated(http.HandlerFunc(s.handleRename)))
	mux.Handle("DELETE /api/chats/{id}", authenticated(http.HandlerFunc(s.handleDelete)))
	mux.Handle("POST /api/chats/{id}/join", authenticated(http.HandlerFunc(s.handleJoin)))
	mux.Handle("GET /api/chats/{id}/messages", authenticated(http.HandlerFunc(s.handleMessages)))

	if s.ws != nil {
		mux.Handle("GET /ws/chat/{chat_id}/", authenticated(s.ws))
	}
	return mux
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStats(w http.ResponseWriter, _ *http.Request) {
	if s.stats == nil {
		s.writeJSON(w, http.StatusOK, observability.MonitoringStats{})
		return
	}
	s.writeJSON(w, http.StatusOK, s.stats.GetLatest())
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var body RegisterRequest
	if !s.decode(w, r, &body) {
		return
	}
	token, err := s.accounts.Register(body.PhoneNumber, body.Username, body.Password)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, TokenResponse{Token: token.String()})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var body LoginRequest
	if !s.decode(w, r, &body) {
		return
	}
	token, err := s.accounts.Login(body.PhoneNumber, body.Password)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, TokenResponse{Token: token.String()})
}

func (s *Server) handleListChats(w http.ResponseWriter, r *http.Request) {
	views, err := s.chats.ListForUser(r.Context(), caller(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, toChatResponses(views))
}

func (s *Server) handleCreatePersonal(w http.ResponseWriter, r *http.Request) {
	var body PersonalChatRequest
	if !s.decode(w, r, &body) {
		return
	}
	view, err := s.chats.CreatePersonal(r.Context(), caller(r), domain.UserID(body.UserID))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, toChatResponse(view))
}

func (s *Server) handleCreateGroup(w http.ResponseWriter, r *http.Request) {
	var body GroupChatRequest
	if !s.decode(w, r, &body) {
		return
	}
	view, err := s.chats.CreateGroup(r.Context(), caller(r), body.Name)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, toChatResponse(view))
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	views, err := s.chats.Search(r.Context(), caller(r), r.URL.Query().Get("query"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, toChatResponses(views))
}

func (s *Server) handleGetChat(w http.ResponseWriter, r *http.Request) {
	chatID, ok := s.chatID(w, r)
	if !ok {
		return
	}
	view, err := s.chats.Get(r.Context(), caller(r), chatID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, toChatResponse(view))
}

func (s *Server) handleRename(w http.ResponseWriter, r *http.Request) {
	chatID, ok := s.chatID(w, r)
	if !ok {
		return
	}
	var body GroupChatRequest
	if !s.decode(w, r, &body) {
		return
	}
	view, err := s.chats.Rename(r.Context(), caller(r), chatID, body.Name)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, toChatResponse(view))
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	chatID, ok := s.chatID(w, r)
	if !ok {
		return
	}
	if err := s.chats.Delete(r.Context(), caller(r), chatID); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleJoin(w http.ResponseWriter, r *http.Request) {
	chatID, ok := s.chatID(w, r)
	if !ok {
		return
	}
	view, err := s.chats.Join(r.Context(), caller(r), chatID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, toChatResponse(view))
}

// handleMessages returns the history in ascending order. "limit" and "before"
// are optional and page backwards from the latest message.
func (s *Server) handleMessages(w http.ResponseWriter, r *http.Request) {
	chatID, ok := s.chatID(w, r)
	if !ok {
		return
	}
	cmd := domain.GetMessagesCommand{Chat: chatID, UserID: caller(r)}
	query := r.URL.Query()
	if raw := query.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit <= 0 {
			s.writeError(w, r, fmt.Errorf("%w: invalid limit %q", errors.ErrValidation, raw))
			return
		}
		cmd.Limit = limit
	}
	if raw := query.Get("before"); raw != "" {
		before, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			s.writeError(w, r, fmt.Errorf("%w: invalid cursor %q", errors.ErrValidation, raw))
			return
		}
		cmd.Before = &before
	}

	messages, err := s.messages.GetMessages(r.Context(), cmd)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, toMessageResponses(messages))
}

// handleSearchUser finds a user by exact phone number, typically to open a
// personal chat with them.
func (s *Server) handleSearchUser(w http.ResponseWriter, r *http.Request) {
	var body UserSearchRequest
	if !s.decode(w, r, &body) {
		return
	}
	user, err := s.users.SearchByPhone(r.Context(), body.PhoneNumber)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, toUserResponse(user))
}

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	raw := r.PathValue("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		s.writeError(w, r, fmt.Errorf("%w: invalid user id %q", errors.ErrValidation, raw))
		return
	}
	user, err := s.users.Get(r.Context(), domain.UserID(id))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, toUserResponse(user))
}

// caller is only used behind auth.Middleware.
func caller(r *http.Request) domain.UserID {
	identity, _ := auth.IdentityFromContext(r.Context())
	return identity.UserID
}

func (s *Server) chatID(w http.ResponseWriter, r *http.Request) (domain.ChatID, bool) {
	raw := r.PathValue("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		s.writeError(w, r, fmt.Errorf("%w: invalid chat id %q", errors.ErrValidation, raw))
		return 0, false
	}
	return domain.ChatID(id), true
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, out any) bool {
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(out); err != nil {
		s.writeError(w, r, fmt.Errorf("%w: malformed body: %v", errors.ErrValidation, err))
		return false
	}
	if err := s.validate.Struct(out); err != nil {
		s.writeError(w, r, fmt.Errorf("%w: %v", errors.ErrValidation, err))
		return false
	}
	return true
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := errors.MapToHTTPStatus(err)
	message := err.Error()
	if status >= http.StatusInternalServerError {
		s.log.Error("Request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		message = http.StatusText(status)
	} else {
		s.log.Debug("Request refused", "method", r.Method, "path", r.URL.Path, "status", status, "error", err)
	}
	s.writeJSON(w, status, ErrorResponse{Error: message})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.log.Debug("Writing response failed", "error", err)
	}
}
