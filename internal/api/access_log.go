package api

import (
	"bufio"
	"net"
	"net/http"

	"grimm.is/rampart/internal/clock"
	"grimm.is/rampart/internal/logging"
	"grimm.is/rampart/internal/metrics"
)

// accessLogWriter wraps http.ResponseWriter to capture the status code
type accessLogWriter struct {
	http.ResponseWriter
	status int
	size   int
}

func (rw *accessLogWriter) WriteHeader(status int) {
	rw.status = status
	rw.ResponseWriter.WriteHeader(status)
}

func (rw *accessLogWriter) Write(b []byte) (int, error) {
	size, err := rw.ResponseWriter.Write(b)
	rw.size += size
	return size, err
}

// Hijack lets websocket upgrades through the wrapper.
func (rw *accessLogWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := rw.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, http.ErrNotSupported
	}
	return h.Hijack()
}

// AccessLogger logs every request and records it in reg. Requests are
// labelled by their route pattern so ids do not explode the label space.
func AccessLogger(logger *logging.Logger, reg *metrics.Registry, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := clock.Now()

		rw := &accessLogWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rw, r)

		duration := clock.Since(start)
		route := r.Pattern
		if route == "" {
			route = "unmatched"
		}
		reg.RecordAPIRequest(r.Method, route, rw.status, duration.Seconds())

		args := []any{
			"method", r.Method,
			"path", r.URL.Path,
			"client", clientIP(r),
			"status", rw.status,
			"size", rw.size,
			"duration", duration,
		}
		switch {
		case rw.status >= 500:
			logger.Error("request", args...)
		case rw.status >= 400:
			logger.Warn("request", args...)
		default:
			logger.Debug("request", args...)
		}
	})
}
