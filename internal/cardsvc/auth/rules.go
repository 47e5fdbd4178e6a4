package auth

import (
	"context"
	"strings"

	"github.com/avvvet/bizcard-services/internal/cardsvc/apperr"
)

type ctxKey struct{}

// WithIdentity stores the verified caller on ctx.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

func FromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(ctxKey{}).(Identity)
	return id, ok
}

// RequireAuthenticated returns the caller stored on ctx.
func RequireAuthenticated(ctx context.Context) (Identity, error) {
	id, ok := FromContext(ctx)
	if !ok || id.ID == "" {
		return Identity{}, apperr.New(apperr.KindUnauthenticated, "Access denied. No token provided.")
	}
	return id, nil
}

func RequireBusiness(id Identity) error {
	if !id.IsBusiness {
		return apperr.Forbidden("Access denied. Business account required.")
	}
	return nil
}

func RequireAdmin(id Identity) error {
	if !id.IsAdmin {
		return apperr.Forbidden("Access denied. Admin privileges required.")
	}
	return nil
}

// RequireOwnershipOrAdmin passes when the caller owns the resource or is an admin.
// Hex ids are compared without regard to case.
func RequireOwnershipOrAdmin(id Identity, ownerID string) error {
	if id.IsAdmin || (id.ID != "" && strings.EqualFold(id.ID, ownerID)) {
		return nil
	}
	return apperr.Forbidden("Access denied. You can only access your own resources.")
}
