package handlers

import (
	"net/http"

	"github.com/avvvet/bizcard-services/internal/cardsvc/models"
	"github.com/go-chi/chi"
)

type authData struct {
	User  *models.User `json:"user"`
	Token string       `json:"token"`
}

func (h *Handler) RegisterUser(w http.ResponseWriter, r *http.Request) {
	var in models.RegisterInput
	if err := h.decode(w, r, &in); err != nil {
		h.Fail(w, r, err)
		return
	}

	ctx, cancel := h.opContext(r)
	defer cancel()

	user, token, err := h.users.Register(ctx, in)
	if err != nil {
		h.Fail(w, r, err)
		return
	}
	h.ok(w, http.StatusCreated, "User registered successfully", authData{User: user, Token: token})
}

func (h *Handler) LoginUser(w http.ResponseWriter, r *http.Request) {
	var in models.LoginInput
	if err := h.decode(w, r, &in); err != nil {
		h.Fail(w, r, err)
		return
	}

	ctx, cancel := h.opContext(r)
	defer cancel()

	user, token, err := h.users.Login(ctx, in)
	if err != nil {
		h.Fail(w, r, err)
		return
	}
	h.ok(w, http.StatusOK, "Login successful", authData{User: user, Token: token})
}

func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.opContext(r)
	defer cancel()

	users, err := h.users.ListUsers(ctx)
	if err != nil {
		h.Fail(w, r, err)
		return
	}
	h.list(w, users, len(users))
}

func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.opContext(r)
	defer cancel()

	user, err := h.users.GetUser(ctx, chi.URLParam(r, "id"))
	if err != nil {
		h.Fail(w, r, err)
		return
	}
	h.ok(w, http.StatusOK, "", user)
}

func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	var upd models.UserUpdate
	if err := h.decode(w, r, &upd); err != nil {
		h.Fail(w, r, err)
		return
	}

	ctx, cancel := h.opContext(r)
	defer cancel()

	user, err := h.users.UpdateUser(ctx, chi.URLParam(r, "id"), upd)
	if err != nil {
		h.Fail(w, r, err)
		return
	}
	h.ok(w, http.StatusOK, "User updated successfully", user)
}

func (h *Handler) ChangeBusinessStatus(w http.ResponseWriter, r *http.Request) {
	var in models.BusinessStatusInput
	if err := h.decode(w, r, &in); err != nil {
		h.Fail(w, r, err)
		return
	}

	ctx, cancel := h.opContext(r)
	defer cancel()

	user, err := h.users.ChangeBusinessStatus(ctx, chi.URLParam(r, "id"), in)
	if err != nil {
		h.Fail(w, r, err)
		return
	}
	h.ok(w, http.StatusOK, "Business status updated successfully", user)
}

func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.opContext(r)
	defer cancel()

	if err := h.users.DeleteUser(ctx, chi.URLParam(r, "id")); err != nil {
		h.Fail(w, r, err)
		return
	}
	h.ok(w, http.StatusOK, "User deleted successfully", nil)
}
