package account

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/talentvault/talentvault/internal/capability"
	"github.com/talentvault/talentvault/internal/platform/httpx"
)

// Handler manages account administration endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// MountRoutes registers account routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.handleList)
	r.Post("/", h.handleProvision)
	r.Get("/{id}", h.handleGet)
	r.Delete("/{id}", h.handleDelete)
	r.Put("/{id}/role", h.handleChangeRole)
	r.Post("/{id}/permissions", h.handleGrant)
	r.Delete("/{id}/permissions/{token}", h.handleRevoke)
	r.Put("/{id}/sensitive-preference", h.handleSensitivePreference)
	r.Put("/{id}/person", h.handleLinkPerson)
}

type accountResponse struct {
	ID                int64    `json:"id"`
	Email             string   `json:"email"`
	Role              string   `json:"role"`
	Permissions       []string `json:"permissions"`
	IsSuperAdmin      bool     `json:"isSuperAdmin"`
	SensitiveUnmasked bool     `json:"sensitiveUnmasked"`
	LinkedPersonID    int64    `json:"linkedPersonId,omitempty"`
	IsActive          bool     `json:"isActive"`
}

func toResponse(a Account) accountResponse {
	return accountResponse{
		ID:                a.ID,
		Email:             a.Email,
		Role:              string(a.Role),
		Permissions:       capability.NewTokenSet(a.Permissions).List(),
		IsSuperAdmin:      a.IsSuperAdmin,
		SensitiveUnmasked: a.SensitiveUnmasked,
		LinkedPersonID:    a.LinkedPersonID,
		IsActive:          a.IsActive,
	}
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	actor, ok := capability.ActorFromContext(r.Context())
	if !ok {
		httpx.Problem(w, http.StatusForbidden, "Forbidden", "")
		return
	}
	accounts, err := h.service.List(r.Context(), actor)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	items := make([]accountResponse, 0, len(accounts))
	for _, a := range accounts {
		items = append(items, toResponse(a))
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": items})
}

type provisionRequest struct {
	Email          string `json:"email" validate:"required,email"`
	Password       string `json:"password" validate:"required,min=8"`
	Role           string `json:"role" validate:"required"`
	LinkedPersonID int64  `json:"linkedPersonId"`
}

func (h *Handler) handleProvision(w http.ResponseWriter, r *http.Request) {
	actor, ok := capability.ActorFromContext(r.Context())
	if !ok {
		httpx.Problem(w, http.StatusForbidden, "Forbidden", "")
		return
	}
	var req provisionRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "email, password (min 8) and role are required")
		return
	}
	created, err := h.service.Provision(r.Context(), actor, ProvisionInput{
		Email:          req.Email,
		Password:       req.Password,
		Role:           capability.Role(req.Role),
		LinkedPersonID: req.LinkedPersonID,
	})
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
	a, err := h.service.Get(r.Context(), actor, id)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toResponse(a))
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

type roleRequest struct {
	Role string `json:"role" validate:"required"`
}

func (h *Handler) handleChangeRole(w http.ResponseWriter, r *http.Request) {
	actor, ok := capability.ActorFromContext(r.Context())
	if !ok {
		httpx.Problem(w, http.StatusForbidden, "Forbidden", "")
		return
	}
	id, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	var req roleRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}
	if err := h.service.ChangeRole(r.Context(), actor, id, capability.Role(req.Role)); err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

type grantRequest struct {
	Token string `json:"token" validate:"required"`
}

func (h *Handler) handleGrant(w http.ResponseWriter, r *http.Request) {
	actor, ok := capability.ActorFromContext(r.Context())
	if !ok {
		httpx.Problem(w, http.StatusForbidden, "Forbidden", "")
		return
	}
	id, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	var req grantRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}
	if err := h.service.GrantPermission(r.Context(), actor, id, req.Token); err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "granted"})
}

func (h *Handler) handleRevoke(w http.ResponseWriter, r *http.Request) {
	actor, ok := capability.ActorFromContext(r.Context())
	if !ok {
		httpx.Problem(w, http.StatusForbidden, "Forbidden", "")
		return
	}
	id, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	token := chi.URLParam(r, "token")
	if err := h.service.RevokePermission(r.Context(), actor, id, token); err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "revoked"})
}

type sensitivePreferenceRequest struct {
	Unmasked bool `json:"unmasked"`
}

func (h *Handler) handleSensitivePreference(w http.ResponseWriter, r *http.Request) {
	actor, ok := capability.ActorFromContext(r.Context())
	if !ok {
		httpx.Problem(w, http.StatusForbidden, "Forbidden", "")
		return
	}
	id, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	var req sensitivePreferenceRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}
	if err := h.service.SetSensitiveUnmasked(r.Context(), actor, id, req.Unmasked); err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

type linkPersonRequest struct {
	PersonID int64 `json:"personId"`
}

func (h *Handler) handleLinkPerson(w http.ResponseWriter, r *http.Request) {
	actor, ok := capability.ActorFromContext(r.Context())
	if !ok {
		httpx.Problem(w, http.StatusForbidden, "Forbidden", "")
		return
	}
	id, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	var req linkPersonRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}
	if err := h.service.LinkPerson(r.Context(), actor, id, req.PersonID); err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "linked"})
}

func (h *Handler) respondError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, capability.ErrForbidden):
		httpx.Problem(w, http.StatusForbidden, "Forbidden", "")
	case errors.Is(err, ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", "account not found")
	case errors.Is(err, ErrDuplicate):
		httpx.Problem(w, http.StatusConflict, "Duplicate", "an account with this email already exists")
	case errors.Is(err, ErrValidation):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	default:
		h.logger.Error("account handler", slog.String("path", r.URL.Path), slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
