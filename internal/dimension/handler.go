package dimension

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/talentvault/talentvault/internal/capability"
	"github.com/talentvault/talentvault/internal/platform/httpx"
)

var timeNow = time.Now

// Handler manages monthly snapshot endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers snapshot routes under the people subtree.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Put("/{id}/dimensions/{month}", h.handleReplaceMonth)
	r.Get("/{id}/dimensions", h.handleReadRange)
}

type submissionPayload struct {
	Category string `json:"category"`
	Detail   string `json:"detail"`
}

type replaceMonthRequest struct {
	Entries []submissionPayload `json:"entries"`
}

func (h *Handler) handleReplaceMonth(w http.ResponseWriter, r *http.Request) {
	actor, ok := capability.ActorFromContext(r.Context())
	if !ok {
		httpx.Problem(w, http.StatusForbidden, "Forbidden", "")
		return
	}
	personID, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	month, err := ParseMonth(chi.URLParam(r, "month"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	var req replaceMonthRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}
	submitted := make([]Submission, 0, len(req.Entries))
	for _, e := range req.Entries {
		submitted = append(submitted, Submission{Category: Category(e.Category), Detail: e.Detail})
	}
	if err := h.service.ReplaceMonth(r.Context(), actor, personID, month, submitted); err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "saved", "month": string(month)})
}

func (h *Handler) handleReadRange(w http.ResponseWriter, r *http.Request) {
	actor, ok := capability.ActorFromContext(r.Context())
	if !ok {
		httpx.Problem(w, http.StatusForbidden, "Forbidden", "")
		return
	}
	personID, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	months, err := monthsFromQuery(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	records, err := h.service.ReadRange(r.Context(), actor, personID, months)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": records})
}

// maxRangeMonths bounds any requested window; every month in the range is
// materialized in memory.
const maxRangeMonths = 36

// monthsFromQuery resolves the requested window. An explicit from/to pair
// wins; otherwise the last N months ending at the current month.
func monthsFromQuery(r *http.Request) ([]MonthKey, error) {
	q := r.URL.Query()
	if from, to := q.Get("from"), q.Get("to"); from != "" || to != "" {
		fromKey, err := ParseMonth(from)
		if err != nil {
			return nil, err
		}
		toKey, err := ParseMonth(to)
		if err != nil {
			return nil, err
		}
		months, err := MonthsBetween(fromKey, toKey)
		if err != nil {
			return nil, err
		}
		if len(months) > maxRangeMonths {
			return nil, fmt.Errorf("%w: range spans %d months, maximum is %d", ErrValidation, len(months), maxRangeMonths)
		}
		return months, nil
	}
	n, _ := strconv.Atoi(q.Get("months"))
	if n <= 0 || n > maxRangeMonths {
		n = 6
	}
	return LastNMonths(MonthOf(timeNow()), n), nil
}

func (h *Handler) respondError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, capability.ErrForbidden):
		httpx.Problem(w, http.StatusForbidden, "Forbidden", "")
	case errors.Is(err, ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", "record not found")
	case errors.Is(err, ErrValidation):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	default:
		h.logger.Error("dimension handler", slog.String("path", r.URL.Path), slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
