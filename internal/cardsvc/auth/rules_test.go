package auth_test

import (
	"context"
	"testing"

	"github.com/avvvet/bizcard-services/internal/cardsvc/apperr"
	"github.com/avvvet/bizcard-services/internal/cardsvc/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequireAuthenticated(t *testing.T) {
	_, err := auth.RequireAuthenticated(context.Background())
	assert.True(t, apperr.Is(err, apperr.KindUnauthenticated))

	ctx := auth.WithIdentity(context.Background(), auth.Identity{ID: "u1"})
	id, err := auth.RequireAuthenticated(ctx)
	require.NoError(t, err)
	assert.Equal(t, "u1", id.ID)
}

func TestRoleRules(t *testing.T) {
	regular := auth.Identity{ID: "u1"}
	business := auth.Identity{ID: "u2", IsBusiness: true}
	admin := auth.Identity{ID: "u3", IsAdmin: true}

	assert.True(t, apperr.Is(auth.RequireBusiness(regular), apperr.KindForbidden))
	assert.NoError(t, auth.RequireBusiness(business))

	assert.True(t, apperr.Is(auth.RequireAdmin(business), apperr.KindForbidden))
	assert.NoError(t, auth.RequireAdmin(admin))
}

func TestRequireOwnershipOrAdmin(t *testing.T) {
	tests := []struct {
		name    string
		caller  auth.Identity
		owner   string
		allowed bool
	}{
		{name: "owner", caller: auth.Identity{ID: "u1"}, owner: "u1", allowed: true},
		{name: "owner upper-case hex", caller: auth.Identity{ID: "65a1f0c2e4b0a1b2c3d4e5f6"}, owner: "65A1F0C2E4B0A1B2C3D4E5F6", allowed: true},
		{name: "other user", caller: auth.Identity{ID: "u2"}, owner: "u1"},
		{name: "admin", caller: auth.Identity{ID: "u3", IsAdmin: true}, owner: "u1", allowed: true},
		{name: "anonymous", caller: auth.Identity{}, owner: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := auth.RequireOwnershipOrAdmin(tt.caller, tt.owner)
			if tt.allowed {
				assert.NoError(t, err)
				return
			}
			assert.True(t, apperr.Is(err, apperr.KindForbidden))
		})
	}
}
