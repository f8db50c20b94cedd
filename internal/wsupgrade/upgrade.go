// Package wsupgrade authenticates the WebSocket upgrade request,
// installs the new session into the Router, and spawns its Actor.
package wsupgrade

import (
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/roomrelay/server/internal/auth"
	"github.com/roomrelay/server/internal/router"
	"github.com/roomrelay/server/internal/session"
	"github.com/roomrelay/server/internal/store"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Handler serves the WebSocket upgrade endpoint.
type Handler struct {
	encoder *auth.Encoder
	router  *router.Router
	stores  *store.Stores
	log     zerolog.Logger
}

// New builds the upgrade handler.
func New(encoder *auth.Encoder, rt *router.Router, stores *store.Stores, log zerolog.Logger) *Handler {
	return &Handler{encoder: encoder, router: rt, stores: stores, log: log}
}

// ServeHTTP validates the bearer token, registers the session, and
// spawns its Actor.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.authenticate(r)
	if !ok {
		http.Error(w, "InvalidToken", http.StatusBadRequest)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn().Err(err).Msg("wsupgrade: upgrade failed")
		return
	}

	inbox := session.NewInbox()
	h.router.Register(claims.UserID, inbox)

	actor := session.NewActor(conn, claims.UserID, inbox, h.router, h.stores, h.log)
	go actor.Run()
}

func (h *Handler) authenticate(r *http.Request) (*auth.Claims, bool) {
	token, ok := auth.ExtractBearerToken(r.Header.Get("Authorization"))
	if !ok {
		return nil, false
	}

	claims, err := h.encoder.Decode(token)
	if err != nil {
		return nil, false
	}
	return claims, true
}
