package rest

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/heartmarshall/khmer-lookup/internal/domain"
)

// lookupService defines the minimal interface needed by LookupHandler.
type lookupService interface {
	Tokenize(sentence string) []string
	Lookup(ctx context.Context, sentence string) ([]string, domain.EnrichmentResult)
}

// LookupHandler serves sentence segmentation and lookup endpoints.
type LookupHandler struct {
	svc      lookupService
	maxRunes int
	log      *slog.Logger
}

// NewLookupHandler creates a LookupHandler. maxRunes bounds the input sentence.
func NewLookupHandler(svc lookupService, maxRunes int, logger *slog.Logger) *LookupHandler {
	return &LookupHandler{svc: svc, maxRunes: maxRunes, log: logger.With("handler", "lookup")}
}

type lookupRequest struct {
	Text string `json:"text"`
}

type segmentResponse struct {
	Tokens []string `json:"tokens"`
}

type lookupResponse struct {
	Tokens  []string                `json:"tokens"`
	Results domain.EnrichmentResult `json:"results"`
}

// Segment handles GET /api/segment?text=. It never contacts the lexicon.
func (h *LookupHandler) Segment(w http.ResponseWriter, r *http.Request) {
	text := r.URL.Query().Get("text")
	if err := domain.ValidateSentence(text, h.maxRunes); err != nil {
		h.handleError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, segmentResponse{Tokens: h.svc.Tokenize(text)})
}

// Lookup handles GET /api/lookup?text= and POST /api/lookup {"text": ...}.
func (h *LookupHandler) Lookup(w http.ResponseWriter, r *http.Request) {
	text, err := h.readText(w, r)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	if err := domain.ValidateSentence(text, h.maxRunes); err != nil {
		h.handleError(w, r, err)
		return
	}

	tokens, results := h.svc.Lookup(r.Context(), text)
	if r.Context().Err() != nil {
		h.log.InfoContext(r.Context(), "client went away before lookup finished")
		return
	}

	writeJSON(w, http.StatusOK, lookupResponse{Tokens: tokens, Results: results})
}

func (h *LookupHandler) readText(w http.ResponseWriter, r *http.Request) (string, error) {
	if r.Method != http.MethodPost {
		return r.URL.Query().Get("text"), nil
	}

	// Room for maxRunes four-byte runes plus JSON escaping.
	limit := int64(1 << 20)
	if h.maxRunes > 0 {
		limit = int64(h.maxRunes)*12 + 1024
	}
	r.Body = http.MaxBytesReader(w, r.Body, limit)

	var req lookupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return "", domain.NewValidationError("body", "invalid request body")
	}
	return req.Text, nil
}

func (h *LookupHandler) handleError(w http.ResponseWriter, r *http.Request, err error) {
	var ve *domain.ValidationError
	switch {
	case errors.As(err, &ve) && len(ve.Errors) == 1:
		writeError(w, http.StatusBadRequest, ve.Errors[0].Field+": "+ve.Errors[0].Message)
	case errors.Is(err, domain.ErrValidation):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		h.log.ErrorContext(r.Context(), "internal error", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}
