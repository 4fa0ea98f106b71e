package person

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"golang.org/x/sync/errgroup"

	"github.com/talentvault/talentvault/internal/capability"
	"github.com/talentvault/talentvault/internal/dimension"
	"github.com/talentvault/talentvault/internal/platform/httpx"
	"github.com/talentvault/talentvault/internal/shared"
)

var timeNow = time.Now

// DimensionPort exposes the profile reads the person handler needs.
type DimensionPort interface {
	ReadRange(ctx context.Context, actor capability.Actor, personID int64, months []dimension.MonthKey) ([]dimension.Record, error)
}

// Handler manages personnel endpoints.
type Handler struct {
	logger     *slog.Logger
	service    *Service
	dimensions DimensionPort
	validate   *validator.Validate
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service, dimensions DimensionPort) *Handler {
	return &Handler{logger: logger, service: service, dimensions: dimensions, validate: validator.New()}
}

// MountRoutes registers person routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.handleList)
	r.Post("/", h.handleCreate)
	r.Get("/{id}", h.handleGet)
	r.Put("/{id}", h.handleUpdate)
	r.Delete("/{id}", h.handleDelete)
	r.Get("/{id}/profile", h.handleProfile)
}

type personRequest struct {
	Name       string `json:"name" validate:"required"`
	Title      string `json:"title"`
	Department string `json:"department"`
	Focus      string `json:"focus"`
	Bio        string `json:"bio"`
	BirthDate  string `json:"birthDate" validate:"omitempty,datetime=2006-01-02"`
	Phone      string `json:"phone"`
}

type personResponse struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	Title      string `json:"title"`
	Department string `json:"department"`
	Focus      string `json:"focus"`
	Bio        string `json:"bio"`
	BirthDate  string `json:"birthDate"`
	Phone      string `json:"phone"`
}

func toResponse(p Person) personResponse {
	return personResponse{
		ID:         p.ID,
		Name:       p.Name,
		Title:      p.Title,
		Department: p.Department,
		Focus:      p.Focus,
		Bio:        p.Bio,
		BirthDate:  p.BirthDate,
		Phone:      p.Phone,
	}
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	actor, ok := capability.ActorFromContext(r.Context())
	if !ok {
		httpx.Problem(w, http.StatusForbidden, "Forbidden", "")
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit <= 0 {
		limit = 20
	}
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	people, total, err := h.service.List(r.Context(), actor, limit, offset)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	items := make([]personResponse, 0, len(people))
	for _, p := range people {
		items = append(items, toResponse(p))
	}
	page := offset/limit + 1
	httpx.JSON(w, http.StatusOK, map[string]any{
		"items":      items,
		"pagination": shared.NewPagination(page, limit, total),
	})
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	actor, ok := capability.ActorFromContext(r.Context())
	if !ok {
		httpx.Problem(w, http.StatusForbidden, "Forbidden", "")
		return
	}
	var req personRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "name is required; birthDate must be YYYY-MM-DD")
		return
	}
	created, err := h.service.Create(r.Context(), actor, Input(req))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, toResponse(created))
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	actor, ok := capability.ActorFromContext(r.Context())
	if !ok {
		httpx.Problem(w, http.StatusForbidden, "Forbidden", "")
		return
	}
	id, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	p, err := h.service.Get(r.Context(), actor, id)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toResponse(p))
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	actor, ok := capability.ActorFromContext(r.Context())
	if !ok {
		httpx.Problem(w, http.StatusForbidden, "Forbidden", "")
		return
	}
	id, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	var req personRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "name is required; birthDate must be YYYY-MM-DD")
		return
	}
	updated, err := h.service.Update(r.Context(), actor, id, Input(req))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toResponse(updated))
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	actor, ok := capability.ActorFromContext(r.Context())
	if !ok {
		httpx.Problem(w, http.StatusForbidden, "Forbidden", "")
		return
	}
	id, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err := h.service.Delete(r.Context(), actor, id); err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// handleProfile returns the person record together with the last six
// monthly snapshots, fetched concurrently.
func (h *Handler) handleProfile(w http.ResponseWriter, r *http.Request) {
	actor, ok := capability.ActorFromContext(r.Context())
	if !ok {
		httpx.Problem(w, http.StatusForbidden, "Forbidden", "")
		return
	}
	id, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	monthsBack, _ := strconv.Atoi(r.URL.Query().Get("months"))
	if monthsBack <= 0 || monthsBack > 36 {
		monthsBack = 6
	}
	anchor := dimension.MonthOf(timeNow())
	months := dimension.LastNMonths(anchor, monthsBack)

	var (
		p       Person
		records []dimension.Record
	)
	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		var err error
		p, err = h.service.Get(ctx, actor, id)
		return err
	})
	g.Go(func() error {
		var err error
		records, err = h.dimensions.ReadRange(ctx, actor, id, months)
		return err
	})
	if err := g.Wait(); err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"person":     toResponse(p),
		"dimensions": records,
	})
}

func (h *Handler) respondError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, capability.ErrForbidden):
		httpx.Problem(w, http.StatusForbidden, "Forbidden", "")
	case errors.Is(err, ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", "person not found")
	case errors.Is(err, ErrDuplicate):
		httpx.Problem(w, http.StatusConflict, "Duplicate", "a person with this name already exists")
	case errors.Is(err, ErrValidation), errors.Is(err, dimension.ErrValidation):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	default:
		h.logger.Error("person handler", slog.String("path", r.URL.Path), slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
