package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/avvvet/bizcard-services/internal/cardsvc/apperr"
	"github.com/avvvet/bizcard-services/internal/cardsvc/auth"
	"github.com/avvvet/bizcard-services/internal/cardsvc/service"
	"github.com/go-chi/chi/middleware"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

const (
	maxBodyBytes = 10 << 20
	opTimeout    = 10 * time.Second
)

type Options struct {
	UploadsDir  string
	Development bool
	InstanceId  string
}

type Handler struct {
	users     *service.UserService
	cards     *service.CardService
	tokens    *auth.TokenIssuer
	opts      Options
	startedAt time.Time
}

func NewHandler(users *service.UserService, cards *service.CardService, tokens *auth.TokenIssuer, opts Options) *Handler {
	return &Handler{
		users:     users,
		cards:     cards,
		tokens:    tokens,
		opts:      opts,
		startedAt: time.Now(),
	}
}

// Response is the envelope of every JSON answer.
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Count   *int        `json:"count,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Errors  []string    `json:"errors,omitempty"`
	ErrorId string      `json:"errorId,omitempty"`
	Stack   string      `json:"stack,omitempty"`
	Code    int         `json:"-"`
}

func (h *Handler) CreateResponse(w http.ResponseWriter, rsp Response) {
	if rsp.Code == 0 {
		rsp.Code = http.StatusOK
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(rsp.Code)

	if err := json.NewEncoder(w).Encode(rsp); err != nil {
		log.Errorf("unable to encode response: %s", err)
	}
}

func (h *Handler) ok(w http.ResponseWriter, code int, message string, data interface{}) {
	h.CreateResponse(w, Response{Success: true, Code: code, Message: message, Data: data})
}

func (h *Handler) list(w http.ResponseWriter, data interface{}, count int) {
	h.CreateResponse(w, Response{Success: true, Code: http.StatusOK, Count: &count, Data: data})
}

// Fail answers with the status and public message of err. Unexpected errors
// are logged with their stack under a fresh error id.
func (h *Handler) Fail(w http.ResponseWriter, r *http.Request, err error) {
	status := apperr.KindOf(err).Status()
	message, details := apperr.Public(err)

	rsp := Response{
		Success: false,
		Message: message,
		Errors:  details,
		Code:    status,
	}

	if status >= http.StatusInternalServerError {
		rsp.ErrorId = uuid.NewString()
		log.WithFields(log.Fields{
			"error_id":   rsp.ErrorId,
			"request_id": middleware.GetReqID(r.Context()),
			"method":     r.Method,
			"url":        r.URL.RequestURI(),
		}).Errorf("%+v", err)
	}
	if h.opts.Development {
		rsp.Stack = fmt.Sprintf("%+v", err)
	}

	h.CreateResponse(w, rsp)
}

// decode reads a JSON body into dst. An empty body leaves dst untouched so
// payload validation reports the missing fields.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(dst)
	switch {
	case err == nil, errors.Is(err, io.EOF):
		return nil
	default:
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return apperr.Validation("request body too large")
		}
		return apperr.Validation("invalid JSON body: " + err.Error())
	}
}

func (h *Handler) opContext(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), opTimeout)
}

func (h *Handler) caller(r *http.Request) (auth.Identity, error) {
	return auth.RequireAuthenticated(r.Context())
}

func (h *Handler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	h.ok(w, http.StatusOK, "Server is running", map[string]interface{}{
		"status":     "OK",
		"timestamp":  time.Now().UTC().Format(time.RFC3339),
		"uptime":     time.Since(h.startedAt).Round(time.Second).String(),
		"instanceId": h.opts.InstanceId,
	})
}

func (h *Handler) NotFoundHandler(w http.ResponseWriter, r *http.Request) {
	h.CreateResponse(w, Response{Success: false, Code: http.StatusNotFound, Message: "Route not found"})
}

func (h *Handler) MethodNotAllowedHandler(w http.ResponseWriter, r *http.Request) {
	h.CreateResponse(w, Response{Success: false, Code: http.StatusMethodNotAllowed, Message: "Method not allowed"})
}

func (h *Handler) TooManyRequestsHandler(w http.ResponseWriter, r *http.Request) {
	h.CreateResponse(w, Response{
		Success: false,
		Code:    http.StatusTooManyRequests,
		Message: "Too many requests from this IP, please try again later.",
	})
}
