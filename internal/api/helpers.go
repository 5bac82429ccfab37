package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/netip"
	"strings"

	"grimm.is/rampart/internal/dispatch"
	"grimm.is/rampart/internal/i18n"
)

// clientIP prefers the first X-Forwarded-For hop, then X-Real-IP, then
// the peer address. Header values that are not addresses are ignored.
func clientIP(r *http.Request) string {
	first, _, _ := strings.Cut(r.Header.Get("X-Forwarded-For"), ",")
	for _, candidate := range []string{first, r.Header.Get("X-Real-IP")} {
		if addr, err := netip.ParseAddr(strings.TrimSpace(candidate)); err == nil {
			return addr.String()
		}
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

// ErrorResponse is the body of every non-2xx answer.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// WriteJSON writes data with the given status. A nil data writes no body.
func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(data)
}

// WriteError answers with an ErrorResponse.
func WriteError(w http.ResponseWriter, status int, message string, details ...string) {
	WriteJSON(w, status, ErrorResponse{Error: message, Details: strings.Join(details, "; ")})
}

// WriteErrorCtx is WriteError with the message localized for the request.
func WriteErrorCtx(w http.ResponseWriter, r *http.Request, status int, format string, args ...any) {
	WriteError(w, status, i18n.GetPrinter(r.Context()).Sprintf(format, args...))
}

var errEmptyBody = errors.New("request body is empty")

// decodeJSON reads exactly one JSON value with no unknown fields.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	switch err := dec.Decode(v); {
	case errors.Is(err, io.EOF):
		return errEmptyBody
	case err != nil:
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

// writeOutcome answers a dispatched operation: payload on success, 502
// with the rejection message, nothing when the client already left.
func writeOutcome(w http.ResponseWriter, r *http.Request, status int, payload any, err error) {
	if re, ok := dispatch.AsRejected(err); ok {
		WriteError(w, http.StatusBadGateway, re.Message)
		return
	}
	switch {
	case err == nil:
		WriteJSON(w, status, payload)
	case r.Context().Err() != nil && errors.Is(err, r.Context().Err()):
	default:
		WriteError(w, http.StatusServiceUnavailable, err.Error())
	}
}
