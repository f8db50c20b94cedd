package wsupgrade

import (
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"

	"github.com/roomrelay/server/internal/auth"
	"github.com/roomrelay/server/internal/router"
	"github.com/roomrelay/server/internal/store"
	"github.com/roomrelay/server/internal/types"
)

func TestAuthenticateAcceptsBearerToken(t *testing.T) {
	encoder := auth.NewEncoder("test-secret")
	token, err := encoder.Encode(types.Uid(7))
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	h := New(encoder, router.New(), &store.Stores{}, zerolog.Nop())

	req := httptest.NewRequest("GET", "/ws", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	claims, ok := h.authenticate(req)
	if !ok || claims.UserID != types.Uid(7) {
		t.Fatalf("authenticate = %+v, %v", claims, ok)
	}
}

func TestAuthenticateAcceptsLowercaseBearer(t *testing.T) {
	encoder := auth.NewEncoder("test-secret")
	token, err := encoder.Encode(types.Uid(1))
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	h := New(encoder, router.New(), &store.Stores{}, zerolog.Nop())

	req := httptest.NewRequest("GET", "/ws", nil)
	req.Header.Set("Authorization", "bearer "+token)

	if _, ok := h.authenticate(req); !ok {
		t.Fatal("authenticate rejected a lowercase bearer prefix")
	}
}

func TestAuthenticateRejectsMissingHeader(t *testing.T) {
	h := New(auth.NewEncoder("test-secret"), router.New(), &store.Stores{}, zerolog.Nop())
	req := httptest.NewRequest("GET", "/ws", nil)

	if _, ok := h.authenticate(req); ok {
		t.Fatal("authenticate accepted a request with no Authorization header")
	}
}

func TestAuthenticateRejectsInvalidToken(t *testing.T) {
	h := New(auth.NewEncoder("test-secret"), router.New(), &store.Stores{}, zerolog.Nop())
	req := httptest.NewRequest("GET", "/ws", nil)
	req.Header.Set("Authorization", "Bearer not-a-real-token")

	if _, ok := h.authenticate(req); ok {
		t.Fatal("authenticate accepted a malformed token")
	}
}
