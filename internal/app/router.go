package app

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"

	"github.com/talentvault/talentvault/internal/account"
	"github.com/talentvault/talentvault/internal/auth"
	"github.com/talentvault/talentvault/internal/capability"
	"github.com/talentvault/talentvault/internal/dimension"
	"github.com/talentvault/talentvault/internal/importer"
	"github.com/talentvault/talentvault/internal/observability"
	"github.com/talentvault/talentvault/internal/person"
	"github.com/talentvault/talentvault/internal/platform/httpx"
	"github.com/talentvault/talentvault/internal/shared"
	"github.com/talentvault/talentvault/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger         *slog.Logger
	Config         *Config
	SessionManager *shared.SessionManager
	CSRFManager    *shared.CSRFManager

	AuthHandler       *auth.Handler
	PersonHandler     *person.Handler
	DimensionHandler  *dimension.Handler
	ImportHandler     *importer.Handler
	AccountHandler    *account.Handler
	CapabilityHandler *capability.Handler
	JobHandler        *jobs.Handler

	CapabilityMiddleware capability.Middleware
	Metrics              *observability.Metrics
}

// NewRouter constructs the chi.Router with TalentVault defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:         params.Logger,
		Config:         params.Config,
		SessionManager: params.SessionManager,
		CSRFManager:    params.CSRFManager,
		Metrics:        params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// Hands the session-bound CSRF token to API clients before their
	// first mutating request.
	r.Get("/csrf", func(w http.ResponseWriter, r *http.Request) {
		sess := shared.SessionFromContext(r.Context())
		token, err := params.CSRFManager.EnsureToken(r.Context(), sess)
		if err != nil {
			params.Logger.Error("issue csrf token", slog.Any("error", err))
			httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
			return
		}
		httpx.JSON(w, http.StatusOK, map[string]string{"token": token})
	})

	r.Route("/auth", params.AuthHandler.MountRoutes)

	r.Group(func(r chi.Router) {
		r.Use(params.CapabilityMiddleware.ResolveActor)

		r.Route("/people", func(r chi.Router) {
			params.PersonHandler.MountRoutes(r)
			params.DimensionHandler.MountRoutes(r)
		})

		importLimit, importWindow := 10, params.Config.ImportRateWindow
		if params.Config.ImportRateLimit > 0 {
			importLimit = params.Config.ImportRateLimit
		}
		if importWindow <= 0 {
			importWindow = time.Minute
		}
		r.Route("/imports", func(r chi.Router) {
			r.Use(httprate.Limit(importLimit, importWindow, httprate.WithKeyFuncs(httprate.KeyByIP)))
			params.ImportHandler.MountRoutes(r)
		})

		r.Route("/accounts", params.AccountHandler.MountRoutes)

		r.Route("/capabilities", func(r chi.Router) {
			r.Use(params.CapabilityMiddleware.RequireAny(capability.PermAccountsManage))
			params.CapabilityHandler.MountRoutes(r)
		})

		if params.JobHandler != nil {
			r.Route("/jobs", func(r chi.Router) {
				r.Use(params.CapabilityMiddleware.RequireAny(capability.PermAccountsManage))
				params.JobHandler.MountRoutes(r)
			})
		}
	})

	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	return r
}
