package importer

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/talentvault/talentvault/internal/capability"
	"github.com/talentvault/talentvault/internal/platform/httpx"
)

// maxUploadBytes caps the spreadsheet payload at 8 MiB.
const maxUploadBytes = 8 << 20

// Handler manages spreadsheet import endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers import routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/", h.handleRun)
}

// handleRun accepts a multipart upload under the "file" field. The same
// endpoint serves both phases; allowCreate=true confirms creation of the
// names reported as pending by the previous call.
func (h *Handler) handleRun(w http.ResponseWriter, r *http.Request) {
	actor, ok := capability.ActorFromContext(r.Context())
	if !ok {
		httpx.Problem(w, http.StatusForbidden, "Forbidden", "")
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "expected multipart form upload")
		return
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "missing file field")
		return
	}
	defer file.Close()

	allowCreate, _ := strconv.ParseBool(r.FormValue("allowCreate"))
	result, err := h.service.Run(r.Context(), actor, Input{Reader: file, AllowCreate: allowCreate})
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	status := http.StatusOK
	if result.NeedsConfirm {
		status = http.StatusConflict
	}
	httpx.JSON(w, status, result)
}

func (h *Handler) respondError(w http.ResponseWriter, r *http.Request, err error) {
	var vErr *ValidationError
	switch {
	case errors.Is(err, capability.ErrForbidden):
		httpx.Problem(w, http.StatusForbidden, "Forbidden", "")
	case errors.As(err, &vErr):
		httpx.ValidationProblem(w, "import file rejected", vErr.Rows)
	case errors.Is(err, ErrValidation):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	default:
		h.logger.Error("import handler", slog.String("path", r.URL.Path), slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
