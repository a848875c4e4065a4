// Package httpapi exposes the same operations as the gRPC services over
// JSON/HTTP, plus liveness, readiness and Prometheus endpoints.
package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/oggyb/crush-radar/internal/app"
	authsvc "github.com/oggyb/crush-radar/internal/service/auth"
	crushsvc "github.com/oggyb/crush-radar/internal/service/crush"
	profilesvc "github.com/oggyb/crush-radar/internal/service/profile"
)

// Options tune NewRouter.
type Options struct {
	Timeout time.Duration
}

// Handlers adapts HTTP requests onto the gRPC service implementations so
// both transports share validation and error mapping.
type Handlers struct {
	appCtx   *app.AppContext
	auth     *authsvc.Service
	profiles *profilesvc.Service
	crushes  *crushsvc.Service
}

// NewRouter builds the chi router.
//
// Routes:
//
//	POST   /api/auth/signup | /api/auth/signin | /api/auth/signout
//	GET    /api/auth/me
//	GET    /api/profile          PATCH /api/profile
//	POST   /api/profile/avatar   DELETE /api/profile/avatar
//	GET    /api/session
//	GET    /api/candidates?q=&name=&class=&batch=&page_size=&page_token=
//	POST   /api/crushes/{target}/toggle
//	GET    /api/crushes/count
//	GET    /api/matches
//	GET    /livez | /healthz | /metrics
func NewRouter(appCtx *app.AppContext, opts Options) http.Handler {
	h := &Handlers{
		appCtx:   appCtx,
		auth:     authsvc.NewAuthService(appCtx),
		profiles: profilesvc.NewProfileService(appCtx),
		crushes:  crushsvc.NewCrushService(appCtx),
	}

	r := chi.NewRouter()
	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		logging(appCtx.Logger),
		middleware.Recoverer,
	)

	r.Get("/livez", h.Livez)
	r.Get("/healthz", h.Healthz)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		if opts.Timeout > 0 {
			r.Use(middleware.Timeout(opts.Timeout))
		}

		r.Post("/auth/signup", h.SignUp)
		r.Post("/auth/signin", h.SignIn)

		r.Group(func(r chi.Router) {
			r.Use(requireBearer(appCtx))

			r.Post("/auth/signout", h.SignOut)
			r.Get("/auth/me", h.WhoAmI)

			r.Get("/profile", h.GetProfile)
			r.Patch("/profile", h.UpdateProfile)
			r.Post("/profile/avatar", h.UploadAvatar)
			r.Delete("/profile/avatar", h.RemoveAvatar)
			r.Get("/session", h.Session)

			r.Get("/candidates", h.ListCandidates)
			r.Post("/crushes/{target}/toggle", h.ToggleCrush)
			r.Get("/crushes/count", h.CountCrushes)
			r.Get("/matches", h.ListMatches)
		})
	})

	return r
}
