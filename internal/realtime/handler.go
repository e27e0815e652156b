package realtime

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
)

// CloseUnauthorized is the close code sent when the websocket handshake
// carries a missing or invalid token. It is distinct from the normal and
// error close codes so client reconnect logic can tell an expired token
// apart from a transient failure.
const CloseUnauthorized = 4401

// Handler upgrades HTTP requests to websocket connections, authenticates
// them, and runs the connection lifecycle. One Handler serves all
// connections; each accepted socket gets its own Conn.
type Handler struct {
	validator      TokenValidator
	registry       *Registry
	upgrader       websocket.Upgrader
	sendBufferSize int
	logger         *slog.Logger
}

// NewHandler creates the websocket endpoint handler. allowedOrigins
// restricts the Origin header on upgrade requests; an empty list or a
// "*" entry allows any origin.
func NewHandler(
	validator TokenValidator,
	registry *Registry,
	sendBufferSize int,
	allowedOrigins []string,
	logger *slog.Logger,
) *Handler {
	h := &Handler{
		validator:      validator,
		registry:       registry,
		sendBufferSize: sendBufferSize,
		logger:         logger.With("component", "realtime_handler"),
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     originChecker(allowedOrigins),
	}
	return h
}

func originChecker(allowed []string) func(*http.Request) bool {
	if len(allowed) == 0 {
		return func(*http.Request) bool { return true }
	}
	set := make(map[string]struct{}, len(allowed))
	for _, origin := range allowed {
		if origin == "*" {
			return func(*http.Request) bool { return true }
		}
		set[origin] = struct{}{}
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		_, ok := set[origin]
		return ok
	}
}

// bearerToken extracts the token from the Authorization header or, when
// absent, the token query parameter. Browser websocket clients cannot
// set arbitrary headers, so both sources must be accepted; the header
// wins when both are present.
func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return r.URL.Query().Get("token")
}

// ServeHTTP accepts one websocket connection. The socket is upgraded
// before the token is validated so the unauthorized close code can be
// delivered over the websocket protocol itself.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	token := bearerToken(r)

	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the HTTP error response.
		h.logger.Debug("websocket upgrade failed", "error", err, "remote_addr", r.RemoteAddr)
		return
	}

	identity, err := h.validator.Validate(r.Context(), token)
	if err != nil {
		h.logger.Info("websocket authentication rejected",
			"remote_addr", r.RemoteAddr,
			"error", err)
		h.closeUnauthorized(ws)
		return
	}

	conn := NewConn(ws, *identity, h.sendBufferSize, h.logger)
	conn.onClose = h.registry.Unregister

	// The acknowledgement is enqueued before registration so it is the
	// first frame out, ahead of any broadcast the connection becomes
	// eligible for.
	conn.Enqueue(connectionEstablishedPayload(identity.CompanyName))

	if err := h.registry.Register(conn); err != nil {
		h.logger.Error("failed to register connection",
			"user_id", identity.UserID,
			"company_id", identity.CompanyID,
			"error", err)
		conn.Close()
		return
	}

	h.logger.Info("websocket connection established",
		"user_id", identity.UserID,
		"company_id", identity.CompanyID,
		"company_name", identity.CompanyName)

	conn.run()
}

func (h *Handler) closeUnauthorized(ws *websocket.Conn) {
	deadline := time.Now().Add(writeWait)
	msg := websocket.FormatCloseMessage(CloseUnauthorized, "unauthorized")
	_ = ws.WriteControl(websocket.CloseMessage, msg, deadline)
	_ = ws.Close()
}
