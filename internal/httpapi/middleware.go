package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/oggyb/crush-radar/internal/app"
	"github.com/oggyb/crush-radar/internal/auth"
	svcErr "github.com/oggyb/crush-radar/internal/errors"
	"github.com/oggyb/crush-radar/internal/logger"
)

type tokenKey struct{}

// logging writes one line per request once the response is done.
func logging(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			l := log.With("request_id", middleware.GetReqID(r.Context()))

			next.ServeHTTP(ww, r.WithContext(logger.Into(r.Context(), l)))

			lvl := slog.LevelInfo
			if ww.Status() >= http.StatusInternalServerError {
				lvl = slog.LevelError
			}
			l.Log(r.Context(), lvl, "http",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"dur", time.Since(start),
			)
		})
	}
}

// requireBearer verifies the Authorization header and stores the identity
// (and the raw token, for sign-out) in the request context.
func requireBearer(appCtx *app.AppContext) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := auth.BearerToken(r.Header.Get("Authorization"))
			if !ok {
				writeError(w, r, svcErr.Unauthenticated("missing bearer token"))
				return
			}
			id, err := appCtx.Auth.Verify(r.Context(), token)
			if err != nil {
				writeError(w, r, svcErr.Map(err))
				return
			}
			ctx := auth.WithIdentity(r.Context(), id)
			ctx = context.WithValue(ctx, tokenKey{}, token)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func tokenFromContext(ctx context.Context) string {
	t, _ := ctx.Value(tokenKey{}).(string)
	return t
}
