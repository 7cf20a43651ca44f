package http

import (
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/gorilla/websocket"

	wsAdapter "github.com/lorrc/service-desk-analytics/internal/adapters/primary/websocket"
	"github.com/lorrc/service-desk-analytics/internal/auth"
	"github.com/lorrc/service-desk-analytics/internal/core/domain"
	apperrors "github.com/lorrc/service-desk-analytics/internal/core/errors"
	"github.com/lorrc/service-desk-analytics/internal/infrastructure/logging"
)

// WebSocketOptions configures the event stream endpoint.
type WebSocketOptions struct {
	ReadBufferSize  int
	WriteBufferSize int
	// AllowedOrigins lists hosts ("app.example.com") or wildcard
	// subdomains ("*.example.com") browsers may connect from.
	AllowedOrigins []string
	// AllowAnyOrigin skips the origin check. Development only.
	AllowAnyOrigin bool
}

// WebSocketHandler authenticates callers, decides which technicians they
// may follow from the start, and hands the connection to the event hub.
//
//	GET /api/v1/ws?token=<jwt>&technician=Ana&technician=Bruno
//
// The token may also come in an Authorization header. Every technician
// requested must be visible to the caller: technicians see only themselves,
// supervisors and admins see everyone. A single forbidden name rejects the
// whole request before the upgrade.
type WebSocketHandler struct {
	hub          *wsAdapter.Hub
	tokens       *auth.TokenManager
	errorHandler *ErrorHandler
	upgrader     websocket.Upgrader
	logger       *slog.Logger
}

// NewWebSocketHandler creates a new WebSocket handler
func NewWebSocketHandler(
	hub *wsAdapter.Hub,
	tokens *auth.TokenManager,
	errorHandler *ErrorHandler,
	opts WebSocketOptions,
	logger *slog.Logger,
) *WebSocketHandler {
	h := &WebSocketHandler{
		hub:          hub,
		tokens:       tokens,
		errorHandler: errorHandler,
		logger:       logger.With("handler", "websocket"),
	}

	origins := newOriginPolicy(opts.AllowedOrigins, opts.AllowAnyOrigin)
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  opts.ReadBufferSize,
		WriteBufferSize: opts.WriteBufferSize,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origins.allows(origin) {
				return true
			}
			h.logger.WarnContext(r.Context(), "websocket origin rejected", "origin", origin)
			return false
		},
	}
	return h
}

// ServeHTTP handles WebSocket connection requests
func (h *WebSocketHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	token := bearerToken(r)
	if token == "" {
		h.errorHandler.Handle(w, r, apperrors.ErrUnauthorized)
		return
	}
	claims, err := h.tokens.ValidateToken(token)
	if err != nil {
		h.logger.WarnContext(ctx, "websocket token rejected", "error", err)
		h.errorHandler.Handle(w, r, apperrors.ErrUnauthorized)
		return
	}
	logging.Caller(ctx, claims.Subject, claims.Role)

	follow, err := Subscriptions(claims, r.URL.Query()["technician"])
	if HandleError(w, r, err, h.errorHandler) {
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the response.
		h.logger.WarnContext(ctx, "websocket upgrade failed", "error", err)
		return
	}

	client := wsAdapter.NewClient(h.hub, conn, claims, h.logger)
	for _, key := range follow {
		client.AddSubscription(key)
	}
	if !h.hub.Attach(client) {
		_ = conn.Close()
		return
	}

	h.logger.InfoContext(ctx, "websocket connected", "following", len(follow)+1)

	go client.WritePump()
	go client.ReadPump()
}

// Subscriptions returns the folded, de-duplicated technician names the
// caller asked to follow on connect. The caller's own room is implied and
// left out. It fails with ErrForbidden on the first name the caller may not
// see.
func Subscriptions(claims *auth.Claims, requested []string) ([]string, error) {
	own := domain.Fold(claims.Subject)
	seen := map[string]bool{own: true}
	keys := []string{}

	for _, name := range requested {
		key := domain.Fold(name)
		if key == "" || seen[key] {
			continue
		}
		if !claims.CanView(name) {
			return nil, apperrors.ErrForbidden
		}
		seen[key] = true
		keys = append(keys, key)
	}
	return keys, nil
}

func bearerToken(r *http.Request) string {
	if header := r.Header.Get("Authorization"); header != "" {
		scheme, token, ok := strings.Cut(header, " ")
		if ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
		return ""
	}
	return r.URL.Query().Get("token")
}

// originPolicy is the parsed form of WebSocketOptions.AllowedOrigins.
type originPolicy struct {
	allowAny bool
	hosts    map[string]bool
	suffixes []string
}

func newOriginPolicy(allowed []string, allowAny bool) originPolicy {
	p := originPolicy{allowAny: allowAny, hosts: make(map[string]bool)}
	for _, entry := range allowed {
		entry = strings.ToLower(strings.TrimSpace(entry))
		if suffix, ok := strings.CutPrefix(entry, "*."); ok {
			p.hosts[suffix] = true
			p.suffixes = append(p.suffixes, "."+suffix)
			continue
		}
		if entry != "" {
			p.hosts[entry] = true
		}
	}
	return p
}

// allows accepts a missing Origin (non-browser clients) and any origin whose
// host is listed or falls under a wildcard.
func (p originPolicy) allows(origin string) bool {
	if p.allowAny || origin == "" {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil || u.Host == "" {
		return false
	}
	host := strings.ToLower(u.Host)
	if p.hosts[host] {
		return true
	}
	for _, suffix := range p.suffixes {
		if strings.HasSuffix(host, suffix) {
			return true
		}
	}
	return false
}
