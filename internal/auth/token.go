package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/roomrelay/server/internal/types"
)

// TokenLifetime is how long an issued bearer token remains valid.
const TokenLifetime = time.Hour

// ErrInvalidToken covers every way token decoding can fail: bad signature,
// malformed payload, or expiry.
var ErrInvalidToken = errors.New("auth: invalid token")

// Claims is the payload carried by a bearer token.
type Claims struct {
	UserID types.Uid `json:"user_id"`
	jwt.RegisteredClaims
}

// Encoder issues and validates bearer tokens against one HMAC secret.
type Encoder struct {
	secret []byte
}

// NewEncoder builds an Encoder around the given signing secret.
func NewEncoder(secret string) *Encoder {
	return &Encoder{secret: []byte(secret)}
}

// Encode produces a signed bearer token carrying {user_id, exp}, expiring
// one hour from now.
func (e *Encoder) Encode(userID types.Uid) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(TokenLifetime)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(e.secret)
}

// Decode validates signature and expiry and returns the claims. Any
// failure is collapsed to ErrInvalidToken.
func (e *Encoder) Decode(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return e.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
