package handlers

import (
	"net/http"

	"github.com/avvvet/bizcard-services/internal/cardsvc/apperr"
	"github.com/avvvet/bizcard-services/internal/cardsvc/auth"
	"github.com/go-chi/chi"
	"github.com/go-chi/jwtauth"
)

// Authenticate verifies the bearer token and stores the caller on the
// request context. Requests without a valid token stop here with 401.
func (h *Handler) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := jwtauth.TokenFromHeader(r)
		if token == "" {
			h.Fail(w, r, apperr.New(apperr.KindUnauthenticated, "Access denied. No token provided."))
			return
		}

		id, err := h.tokens.Verify(token)
		if err != nil {
			h.Fail(w, r, err)
			return
		}

		next.ServeHTTP(w, r.WithContext(auth.WithIdentity(r.Context(), id)))
	})
}

// SelfTarget makes /me routes address the caller by setting the id URL
// parameter to the caller id.
func (h *Handler) SelfTarget(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := h.caller(r)
		if err != nil {
			h.Fail(w, r, err)
			return
		}
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			rctx.URLParams.Add("id", id.ID)
		}
		next.ServeHTTP(w, r)
	})
}

func (h *Handler) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := h.caller(r)
		if err == nil {
			err = auth.RequireAdmin(id)
		}
		if err != nil {
			h.Fail(w, r, err)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireSelfOrAdmin lets through admins and callers addressing their own
// account through the id URL parameter.
func (h *Handler) RequireSelfOrAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := h.caller(r)
		if err == nil {
			err = auth.RequireOwnershipOrAdmin(id, chi.URLParam(r, "id"))
		}
		if err != nil {
			h.Fail(w, r, err)
			return
		}
		next.ServeHTTP(w, r)
	})
}
