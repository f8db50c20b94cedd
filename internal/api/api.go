// Package api implements the HTTP request API: login, list users,
// create a private room, list rooms, and paginated message history.
package api

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/roomrelay/server/internal/auth"
	"github.com/roomrelay/server/internal/store"
)

// API bundles the handlers' dependencies.
type API struct {
	stores *store.Stores
	tokens *auth.Encoder
	log    zerolog.Logger
}

// New builds the Request API.
func New(stores *store.Stores, tokens *auth.Encoder, log zerolog.Logger) *API {
	return &API{stores: stores, tokens: tokens, log: log}
}

// Router builds the gorilla/mux router for the HTTP endpoints: POST
// /login, GET /get-users, POST /create-private-room, GET /get-rooms,
// GET /get-messages.
func (a *API) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/login", a.handleLogin).Methods(http.MethodPost)
	r.HandleFunc("/get-users", a.requireBearer(a.handleGetUsers)).Methods(http.MethodGet)
	r.HandleFunc("/get-rooms", a.requireBearer(a.handleGetRooms)).Methods(http.MethodGet)
	r.HandleFunc("/create-private-room", a.requireBearer(a.handleCreatePrivateRoom)).Methods(http.MethodPost)
	r.HandleFunc("/get-messages", a.requireBearer(a.handleGetMessages)).Methods(http.MethodGet)
	return r
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
