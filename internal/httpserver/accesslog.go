package httpserver

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"statusboard/internal/logger"
)

func accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !logger.Enabled(logger.DEBUG) {
			next.ServeHTTP(w, r)
			return
		}

		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		logger.Debugf("%s %s %d %dB %s reqid=%s remote=%s",
			r.Method, r.URL.Path, ww.Status(), ww.BytesWritten(), time.Since(start),
			middleware.GetReqID(r.Context()), r.RemoteAddr)
	})
}
