package auth

import (
	"errors"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"github.com/gs-sport/storefront/internal/domain"
)

// SessionTTL is the fixed lifetime of a session token.
const SessionTTL = 7 * 24 * time.Hour

var errNoSecret = errors.New("token signing secret not configured")

// TokenManager handles issuing and validating JWT session tokens.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// TokenOption customises a TokenManager.
type TokenOption func(*TokenManager)

// WithClock overrides the time source used for issuing and validating tokens.
func WithClock(now func() time.Time) TokenOption {
	return func(tm *TokenManager) {
		if now != nil {
			tm.now = now
		}
	}
}

// NewTokenManager builds a new manager signing with secret.
func NewTokenManager(secret string, opts ...TokenOption) *TokenManager {
	tm := &TokenManager{secret: []byte(secret), ttl: SessionTTL, now: time.Now}
	for _, opt := range opts {
		opt(tm)
	}
	return tm
}

// Claims describes JWT payload. The subject id travels in the registered "sub" claim.
type Claims struct {
	Email string      `json:"email"`
	Role  domain.Role `json:"role"`
	jwt.RegisteredClaims
}

// Issue builds and signs a token for the identity.
func (tm *TokenManager) Issue(identity domain.Identity) (string, time.Time, error) {
	if len(tm.secret) == 0 {
		return "", time.Time{}, errNoSecret
	}
	if identity.SubjectID == "" || !identity.Role.Valid() {
		return "", time.Time{}, errors.New("incomplete identity")
	}

	issuedAt := tm.now()
	expiresAt := issuedAt.Add(tm.ttl)
	claims := &Claims{
		Email: identity.Email,
		Role:  identity.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity.SubjectID,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(tm.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return tokenString, expiresAt, nil
}

// Verify checks signature and expiry. Any failure reports ok=false.
func (tm *TokenManager) Verify(tokenStr string) (domain.Identity, bool) {
	if tokenStr == "" || len(tm.secret) == 0 {
		return domain.Identity{}, false
	}

	parsed, err := jwt.ParseWithClaims(tokenStr, &Claims{}, tm.key,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(tm.now),
	)
	if err != nil || !parsed.Valid {
		return domain.Identity{}, false
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || claims.Subject == "" || !claims.Role.Valid() {
		return domain.Identity{}, false
	}
	return domain.Identity{
		SubjectID: claims.Subject,
		Email:     claims.Email,
		Role:      claims.Role,
	}, true
}

func (tm *TokenManager) key(*jwt.Token) (interface{}, error) {
	return tm.secret, nil
}
