package capability

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/talentvault/talentvault/internal/platform/httpx"
)

// Handler exposes the capability catalog.
type Handler struct{}

// NewHandler builds Handler instance.
func NewHandler() *Handler {
	return &Handler{}
}

// MountRoutes registers catalog routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.handleCatalog)
}

func (h *Handler) handleCatalog(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, map[string]any{"items": Catalog()})
}
