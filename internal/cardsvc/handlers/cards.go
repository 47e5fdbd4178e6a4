package handlers

import (
	"net/http"

	"github.com/avvvet/bizcard-services/internal/cardsvc/models"
	"github.com/go-chi/chi"
)

func (h *Handler) ListCards(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.opContext(r)
	defer cancel()

	cards, err := h.cards.ListCards(ctx)
	if err != nil {
		h.Fail(w, r, err)
		return
	}
	h.list(w, cards, len(cards))
}

func (h *Handler) MyCards(w http.ResponseWriter, r *http.Request) {
	caller, err := h.caller(r)
	if err != nil {
		h.Fail(w, r, err)
		return
	}

	ctx, cancel := h.opContext(r)
	defer cancel()

	cards, err := h.cards.MyCards(ctx, caller)
	if err != nil {
		h.Fail(w, r, err)
		return
	}
	h.list(w, cards, len(cards))
}

func (h *Handler) GetCard(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.opContext(r)
	defer cancel()

	card, err := h.cards.GetCard(ctx, chi.URLParam(r, "id"))
	if err != nil {
		h.Fail(w, r, err)
		return
	}
	h.ok(w, http.StatusOK, "", card)
}

func (h *Handler) CreateCard(w http.ResponseWriter, r *http.Request) {
	caller, err := h.caller(r)
	if err != nil {
		h.Fail(w, r, err)
		return
	}

	var in models.CardInput
	if err := h.decode(w, r, &in); err != nil {
		h.Fail(w, r, err)
		return
	}

	ctx, cancel := h.opContext(r)
	defer cancel()

	card, err := h.cards.CreateCard(ctx, caller, in)
	if err != nil {
		h.Fail(w, r, err)
		return
	}
	h.ok(w, http.StatusCreated, "Card created successfully", card)
}

func (h *Handler) UpdateCard(w http.ResponseWriter, r *http.Request) {
	caller, err := h.caller(r)
	if err != nil {
		h.Fail(w, r, err)
		return
	}

	var upd models.CardUpdate
	if err := h.decode(w, r, &upd); err != nil {
		h.Fail(w, r, err)
		return
	}

	ctx, cancel := h.opContext(r)
	defer cancel()

	card, err := h.cards.UpdateCard(ctx, caller, chi.URLParam(r, "id"), upd)
	if err != nil {
		h.Fail(w, r, err)
		return
	}
	h.ok(w, http.StatusOK, "Card updated successfully", card)
}

func (h *Handler) LikeCard(w http.ResponseWriter, r *http.Request) {
	caller, err := h.caller(r)
	if err != nil {
		h.Fail(w, r, err)
		return
	}

	ctx, cancel := h.opContext(r)
	defer cancel()

	card, liked, err := h.cards.ToggleLike(ctx, caller, chi.URLParam(r, "id"))
	if err != nil {
		h.Fail(w, r, err)
		return
	}

	message := "Card unliked successfully"
	if liked {
		message = "Card liked successfully"
	}
	h.ok(w, http.StatusOK, message, card)
}

func (h *Handler) DeleteCard(w http.ResponseWriter, r *http.Request) {
	caller, err := h.caller(r)
	if err != nil {
		h.Fail(w, r, err)
		return
	}

	ctx, cancel := h.opContext(r)
	defer cancel()

	if err := h.cards.DeleteCard(ctx, caller, chi.URLParam(r, "id")); err != nil {
		h.Fail(w, r, err)
		return
	}
	h.ok(w, http.StatusOK, "Card deleted successfully", nil)
}

func (h *Handler) ChangeBizNumber(w http.ResponseWriter, r *http.Request) {
	caller, err := h.caller(r)
	if err != nil {
		h.Fail(w, r, err)
		return
	}

	var in models.BizNumberInput
	if err := h.decode(w, r, &in); err != nil {
		h.Fail(w, r, err)
		return
	}

	ctx, cancel := h.opContext(r)
	defer cancel()

	card, err := h.cards.ChangeBizNumber(ctx, caller, chi.URLParam(r, "id"), in)
	if err != nil {
		h.Fail(w, r, err)
		return
	}
	h.ok(w, http.StatusOK, "Business number updated successfully", card)
}
