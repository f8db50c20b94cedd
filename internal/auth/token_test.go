package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/roomrelay/server/internal/types"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	enc := NewEncoder("test-secret")

	token, err := enc.Encode(types.Uid(42))
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	claims, err := enc.Decode(token)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if claims.UserID != types.Uid(42) {
		t.Fatalf("UserID = %d, want 42", claims.UserID)
	}
}

func TestDecodeRejectsWrongSecret(t *testing.T) {
	enc := NewEncoder("test-secret")
	other := NewEncoder("different-secret")

	token, err := enc.Encode(types.Uid(1))
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	if _, err := other.Decode(token); err != ErrInvalidToken {
		t.Fatalf("Decode with wrong secret = %v, want ErrInvalidToken", err)
	}
}

func TestDecodeRejectsExpiredToken(t *testing.T) {
	enc := NewEncoder("test-secret")
	past := time.Now().Add(-TokenLifetime * 2)

	claims := Claims{
		UserID: types.Uid(1),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(past.Add(time.Minute)),
			IssuedAt:  jwt.NewNumericDate(past),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(enc.secret)
	if err != nil {
		t.Fatalf("SignedString: %v", err)
	}

	if _, err := enc.Decode(signed); err != ErrInvalidToken {
		t.Fatalf("Decode expired token = %v, want ErrInvalidToken", err)
	}
}

func TestDecodeRejectsGarbage(t *testing.T) {
	enc := NewEncoder("test-secret")
	if _, err := enc.Decode("not.a.token"); err != ErrInvalidToken {
		t.Fatalf("Decode garbage = %v, want ErrInvalidToken", err)
	}
}
