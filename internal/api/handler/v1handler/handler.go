// Package v1handler implements the v1 HTTP API: missions, health and the
// game WebSocket.
package v1handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"radiomirchi/internal/config"
	"radiomirchi/internal/game"
	"radiomirchi/internal/missions"
	"radiomirchi/pkg/logger"
	"radiomirchi/pkg/serrors"
	"slices"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// DefaultLimit is the page size used when the client does not ask for one.
const DefaultLimit = 20

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 64 << 10

// Pinger checks that a dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Deps struct {
	Missions missions.Service
	Sessions game.Manager
	Health   Pinger
}

type Options struct {
	// AllowedOrigins are the origins allowed to open game sessions. "*" allows all.
	AllowedOrigins []string
}

// NewOptions constructs an Options value from the provided application config.
func NewOptions(cfg *config.Config) Options {
	return Options{AllowedOrigins: cfg.HTTP.AllowedOrigins}
}

type Handler struct {
	deps     Deps
	upgrader websocket.Upgrader
}

func New(deps Deps, opts Options) *Handler {
	h := &Handler{deps: deps}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 16 << 10,
		CheckOrigin:     checkOrigin(opts.AllowedOrigins),
	}

	return h
}

func checkOrigin(allowed []string) func(r *http.Request) bool {
	if len(allowed) == 0 || slices.Contains(allowed, "*") {
		return func(*http.Request) bool { return true }
	}

	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")

		return origin == "" || slices.Contains(allowed, origin)
	}
}

// ErrorResponse is the body of every error response.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorStatus pairs an ErrorResponse with its HTTP status code.
type ErrorStatus struct {
	StatusCode int
	Response   ErrorResponse
}

var errorStatuses = map[serrors.Kind]struct { //nolint: gochecknoglobals
	status  int
	message string
}{
	serrors.ErrBadRequest:   {http.StatusBadRequest, "bad request"},
	serrors.ErrUnauthorized: {http.StatusUnauthorized, "unauthorized"},
	serrors.ErrForbidden:    {http.StatusForbidden, "forbidden"},
	serrors.ErrNotFound:     {http.StatusNotFound, "resource not found"},
	serrors.ErrConflict:     {http.StatusConflict, "conflict"},
	serrors.ErrRateLimited:  {http.StatusTooManyRequests, "too many requests"},
	serrors.ErrUnavailable:  {http.StatusServiceUnavailable, "service unavailable"},
	serrors.ErrTimeout:      {http.StatusGatewayTimeout, "request timed out"},
	serrors.ErrInternal:     {http.StatusInternalServerError, "internal error"},
}

// NewError maps err to a response. Errors without a kind are internal and
// their text is never sent to the client.
func (h Handler) NewError(ctx context.Context, err error) *ErrorStatus {
	kind := serrors.KindOf(err)
	if kind == nil && errors.Is(err, context.DeadlineExceeded) {
		kind = serrors.ErrTimeout
	}
	st, ok := errorStatuses[kind]
	if !ok {
		kind = serrors.ErrInternal
		st = errorStatuses[kind]
	}

	message := st.message
	var serr *serrors.Error
	if kind != serrors.ErrInternal && errors.As(err, &serr) && serr.Message() != "" {
		message = serr.Message()
	}

	if st.status >= http.StatusInternalServerError {
		logger.Error(ctx, "request failed", zap.Error(err))
	} else {
		logger.Debug(ctx, "request rejected", zap.Error(err))
	}

	return &ErrorStatus{
		StatusCode: st.status,
		Response:   ErrorResponse{Code: kind.Error(), Message: message},
	}
}

func (h Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	res := h.NewError(r.Context(), err)
	writeJSON(r.Context(), w, res.StatusCode, res.Response)
}

func writeJSON(ctx context.Context, w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Debug(ctx, "could not write response", zap.Error(err))
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return serrors.Wrap(serrors.ErrBadRequest, err, "invalid request body")
	}

	return nil
}

// API returns the REST routes.
func (h *Handler) API(createLimiter func(http.Handler) http.Handler) http.Handler {
	if createLimiter == nil {
		createLimiter = func(next http.Handler) http.Handler { return next }
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", h.Root)
	mux.HandleFunc("GET /healthz", h.Healthz)
	mux.Handle("POST /api/v1/create_mission", createLimiter(http.HandlerFunc(h.CreateMission)))
	mux.HandleFunc("GET /api/v1/mission_status/{id}", h.MissionStatus)
	mux.HandleFunc("GET /api/v1/missions", h.ListMissions)
	mux.HandleFunc("GET /api/v1/missions/{id}", h.GetMission)
	mux.HandleFunc("DELETE /api/v1/missions/{id}", h.DeleteMission)

	return mux
}

// Game returns the WebSocket route.
func (h *Handler) Game() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/ws/{id}", h.Play)

	return mux
}
