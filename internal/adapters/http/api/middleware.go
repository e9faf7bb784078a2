package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/okian/tally/pkg/metrics"
)

// MetricsMiddleware records request count, latency and failure class for
// one endpoint label.
func MetricsMiddleware(next http.HandlerFunc, endpoint string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		metrics.RecordHTTPRequest(endpoint, r.Method, strconv.Itoa(status), time.Since(start).Seconds())
		if kind := failureKind(status); kind != "" {
			metrics.RecordErrorByComponent("http", kind)
		}
	}
}

// failureKind labels a failed response; successes map to "".
func failureKind(status int) string {
	switch {
	case status == http.StatusGatewayTimeout:
		return "timeout"
	case status >= http.StatusInternalServerError:
		return "server_error"
	case status == http.StatusNotFound:
		return "not_found"
	case status >= http.StatusBadRequest:
		return "client_error"
	default:
		return ""
	}
}
