package auth_test

import (
	"testing"
	"time"

	"github.com/avvvet/bizcard-services/internal/cardsvc/apperr"
	"github.com/avvvet/bizcard-services/internal/cardsvc/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenIssuerRoundTrip(t *testing.T) {
	issuer := auth.NewTokenIssuer("secret", time.Hour)

	want := auth.Identity{ID: "64b7f0c2a1b2c3d4e5f60718", IsBusiness: true}
	token, err := issuer.Issue(want)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	got, err := issuer.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestTokenIssuerDefaultTTL(t *testing.T) {
	assert.Equal(t, auth.DefaultTokenTTL, auth.NewTokenIssuer("secret", 0).TTL())
}

func TestTokenIssuerVerifyFailures(t *testing.T) {
	issuer := auth.NewTokenIssuer("secret", time.Hour)
	id := auth.Identity{ID: "64b7f0c2a1b2c3d4e5f60718", IsAdmin: true}

	foreign, err := auth.NewTokenIssuer("other-secret", time.Hour).Issue(id)
	require.NoError(t, err)

	expired, err := auth.NewTokenIssuer("secret", 24*time.Hour).
		WithClock(func() time.Time { return time.Now().Add(-48 * time.Hour) }).
		Issue(id)
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
		want  apperr.Kind
	}{
		{name: "garbage", token: "not-a-token", want: apperr.KindInvalidToken},
		{name: "empty", token: "", want: apperr.KindInvalidToken},
		{name: "foreign secret", token: foreign, want: apperr.KindInvalidToken},
		{name: "expired", token: expired, want: apperr.KindExpiredToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := issuer.Verify(tt.token)
			require.Error(t, err)
			assert.Equal(t, tt.want, apperr.KindOf(err))
		})
	}
}

func TestTokenIssuerExpiryUsesClock(t *testing.T) {
	now := time.Now()
	issuer := auth.NewTokenIssuer("secret", time.Hour).WithClock(func() time.Time { return now })

	token, err := issuer.Issue(auth.Identity{ID: "abc"})
	require.NoError(t, err)

	issuer.WithClock(func() time.Time { return now.Add(2 * time.Hour) })
	_, err = issuer.Verify(token)
	assert.True(t, apperr.Is(err, apperr.KindExpiredToken))
}
