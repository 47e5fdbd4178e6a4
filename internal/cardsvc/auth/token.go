package auth

import (
	"errors"
	"time"

	"github.com/avvvet/bizcard-services/internal/cardsvc/apperr"
	"github.com/go-chi/jwtauth"
)

const DefaultTokenTTL = 24 * time.Hour

const (
	claimID         = "id"
	claimIsBusiness = "isBusiness"
	claimIsAdmin    = "isAdmin"
)

// Identity is the caller described by a verified session token.
type Identity struct {
	ID         string
	IsBusiness bool
	IsAdmin    bool
}

// TokenIssuer signs and verifies HS256 session tokens with a shared secret.
type TokenIssuer struct {
	tokenAuth *jwtauth.JWTAuth
	ttl       time.Duration
	now       func() time.Time
}

func NewTokenIssuer(secret string, ttl time.Duration) *TokenIssuer {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &TokenIssuer{
		tokenAuth: jwtauth.New("HS256", []byte(secret), nil),
		ttl:       ttl,
		now:       time.Now,
	}
}

// WithClock replaces the time source used for iat/exp.
func (t *TokenIssuer) WithClock(now func() time.Time) *TokenIssuer {
	t.now = now
	return t
}

func (t *TokenIssuer) TTL() time.Duration { return t.ttl }

func (t *TokenIssuer) Issue(id Identity) (string, error) {
	now := t.now()
	claims := map[string]interface{}{
		claimID:         id.ID,
		claimIsBusiness: id.IsBusiness,
		claimIsAdmin:    id.IsAdmin,
	}
	jwtauth.SetIssuedAt(claims, now)
	jwtauth.SetExpiry(claims, now.Add(t.ttl))

	_, tokenString, err := t.tokenAuth.Encode(claims)
	if err != nil {
		return "", apperr.Wrap(err, apperr.KindUnexpected, "unable to sign token")
	}
	return tokenString, nil
}

// Verify decodes tokenString, failing with KindInvalidToken for malformed or
// foreign-signed tokens and KindExpiredToken once exp has passed.
func (t *TokenIssuer) Verify(tokenString string) (Identity, error) {
	token, err := jwtauth.VerifyToken(t.tokenAuth, tokenString)
	if err != nil {
		if errors.Is(err, jwtauth.ErrExpired) {
			return Identity{}, apperr.Wrap(err, apperr.KindExpiredToken, "Token expired")
		}
		return Identity{}, apperr.Wrap(err, apperr.KindInvalidToken, "Invalid token")
	}

	if token.Expiration().IsZero() {
		return Identity{}, apperr.New(apperr.KindInvalidToken, "Invalid token")
	}
	if !token.Expiration().After(t.now()) {
		return Identity{}, apperr.New(apperr.KindExpiredToken, "Token expired")
	}

	claims := token.PrivateClaims()
	id, _ := claims[claimID].(string)
	if id == "" {
		return Identity{}, apperr.New(apperr.KindInvalidToken, "Invalid token")
	}
	isBusiness, _ := claims[claimIsBusiness].(bool)
	isAdmin, _ := claims[claimIsAdmin].(bool)

	return Identity{ID: id, IsBusiness: isBusiness, IsAdmin: isAdmin}, nil
}
