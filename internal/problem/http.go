package problem

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/gokatarajesh/problem-bank/internal/logging"
	httperrors "github.com/gokatarajesh/problem-bank/pkg/http/errors"
)

const maxBodyBytes = 1 << 20

// HTTPOptions tunes pagination defaults and per-request store deadlines.
type HTTPOptions struct {
	DefaultPageSize int
	MaxPageSize     int
	Timeout         time.Duration
}

// HTTPHandler exposes REST endpoints for problems.
type HTTPHandler struct {
	svc         *Service
	defaultSize int
	maxSize     int
	timeout     time.Duration
	logger      zerolog.Logger
}

// NewHTTPHandler constructs a problem HTTP handler.
func NewHTTPHandler(svc *Service, opts HTTPOptions, logger zerolog.Logger) *HTTPHandler {
	if opts.DefaultPageSize <= 0 {
		opts.DefaultPageSize = 10
	}
	if opts.MaxPageSize < opts.DefaultPageSize {
		opts.MaxPageSize = defaultMaxPageSize
	}
	return &HTTPHandler{
		svc:         svc,
		defaultSize: opts.DefaultPageSize,
		maxSize:     opts.MaxPageSize,
		timeout:     opts.Timeout,
		logger:      logger.With().Str("component", "problem_http").Logger(),
	}
}

// Register mounts the problem routes. guard wraps the mutating routes; pass
// nil to leave them open.
func (h *HTTPHandler) Register(mux *http.ServeMux, guard func(http.Handler) http.Handler) {
	if guard == nil {
		guard = func(next http.Handler) http.Handler { return next }
	}

	mux.HandleFunc("GET /v1/problems", h.List)
	mux.HandleFunc("GET /v1/problems/{id}", h.Get)
	mux.HandleFunc("GET /v1/problems/{id}/masked", h.GetMasked)

	mux.Handle("POST /v1/problems", guard(http.HandlerFunc(h.Create)))
	mux.Handle("PATCH /v1/problems/{id}", guard(http.HandlerFunc(h.Update)))
	mux.Handle("PUT /v1/problems/{id}", guard(http.HandlerFunc(h.Update)))
	mux.Handle("DELETE /v1/problems/{id}", guard(http.HandlerFunc(h.Delete)))
}

// List handles GET /v1/problems?page=1&limit=10
func (h *HTTPHandler) List(w http.ResponseWriter, r *http.Request) {
	page, ok := h.queryInt(w, r, "page", 1)
	if !ok {
		return
	}
	limit, ok := h.queryInt(w, r, "limit", h.defaultSize)
	if !ok {
		return
	}
	if limit > h.maxSize {
		limit = h.maxSize
	}

	ctx, cancel := h.context(r)
	defer cancel()

	problems, err := h.svc.GetAll(ctx, page, limit)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, Page{Problems: problems})
}

// Get handles GET /v1/problems/{id}
func (h *HTTPHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	ctx, cancel := h.context(r)
	defer cancel()

	p, err := h.svc.GetOne(ctx, id)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// GetMasked handles GET /v1/problems/{id}/masked
func (h *HTTPHandler) GetMasked(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	ctx, cancel := h.context(r)
	defer cancel()

	p, err := h.svc.GetOneMasked(ctx, id)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// Create handles POST /v1/problems
func (h *HTTPHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in CreateInput
	if !decodeBody(w, r, &in) {
		return
	}

	ctx, cancel := h.context(r)
	defer cancel()

	p, err := h.svc.Create(ctx, in)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

// Update handles PATCH and PUT /v1/problems/{id}. Only fields present in the
// body are changed.
func (h *HTTPHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	var in UpdateInput
	if !decodeBody(w, r, &in) {
		return
	}

	ctx, cancel := h.context(r)
	defer cancel()

	ack, err := h.svc.Update(ctx, id, in)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ack)
}

// Delete handles DELETE /v1/problems/{id}
func (h *HTTPHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	ctx, cancel := h.context(r)
	defer cancel()

	ack, err := h.svc.Delete(ctx, id)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ack)
}

func (h *HTTPHandler) context(r *http.Request) (context.Context, context.CancelFunc) {
	if h.timeout <= 0 {
		return context.WithCancel(r.Context())
	}
	return context.WithTimeout(r.Context(), h.timeout)
}

func (h *HTTPHandler) pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id < 1 {
		httperrors.RespondValidationError(w, httperrors.ErrCodeInvalidRequest, "Invalid problem id", "id")
		return 0, false
	}
	return id, true
}

func (h *HTTPHandler) queryInt(w http.ResponseWriter, r *http.Request, key string, fallback int) (int, bool) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 1 {
		httperrors.RespondValidationError(w, httperrors.ErrCodeInvalidRequest, key+" must be a positive integer", key)
		return 0, false
	}
	return v, true
}

func (h *HTTPHandler) respondServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var domainErr *Error
	if errors.As(err, &domainErr) {
		switch {
		case errors.Is(err, ErrNotFound):
			httperrors.RespondNotFound(w, httperrors.ErrCodeNotFound, domainErr.Message)
			return
		case errors.Is(err, ErrValidation):
			httperrors.RespondBadRequest(w, httperrors.ErrCodeValidationFailed, domainErr.Message)
			return
		}
	}

	l := logging.FromContextOr(r.Context(), h.logger)
	if errors.Is(err, context.DeadlineExceeded) {
		l.Warn().Err(err).Str("path", r.URL.Path).Msg("problem request timed out")
		httperrors.RespondServiceUnavailable(w, httperrors.ErrCodeServiceUnavailable, "Request timed out")
		return
	}

	l.Error().Err(err).Str("method", r.Method).Str("path", r.URL.Path).Msg("problem request failed")
	httperrors.RespondInternalError(w, "Internal server error")
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "Invalid JSON payload")
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
