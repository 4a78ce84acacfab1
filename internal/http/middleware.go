package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/MrJamesThe3rd/tally/internal/logger"
)

// RequestLogger logs one line per request and puts a request-scoped logger
// into the context for handlers to pick up with zerolog.Ctx.
func RequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		l := logger.WithComponent("http").With().
			Str("request_id", middleware.GetReqID(r.Context())).
			Logger()

		defer func() {
			var ev *zerolog.Event

			switch status := ww.Status(); {
			case status >= http.StatusInternalServerError:
				ev = l.Error()
			case status >= http.StatusBadRequest:
				ev = l.Warn()
			default:
				ev = l.Info()
			}

			ev.Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.Status()).
				Int("bytes", ww.BytesWritten()).
				Dur("duration", time.Since(start)).
				Msg("request")
		}()

		next.ServeHTTP(ww, r.WithContext(l.WithContext(r.Context())))
	})
}
