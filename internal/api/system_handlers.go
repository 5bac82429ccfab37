package api

import (
	"math"
	"net/http"
	"strconv"
	"strings"

	"grimm.is/rampart/internal/dispatch"
)

func (s *Server) handleFetchInfo(w http.ResponseWriter, r *http.Request) {
	info, err := s.dispatcher.System.FetchInfo(r.Context()).Wait(r.Context())
	writeOutcome(w, r, http.StatusOK, info, err)
}

func (s *Server) handleFetchUpdates(w http.ResponseWriter, r *http.Request) {
	updates, err := s.dispatcher.System.FetchUpdates(r.Context()).Wait(r.Context())
	writeOutcome(w, r, http.StatusOK, updates, err)
}

func (s *Server) handleInstallUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := s.dispatcher.System.InstallUpdate(r.Context(), r.PathValue("id")).Wait(r.Context())
	writeOutcome(w, r, http.StatusOK, map[string]string{"id": id}, err)
}

func (s *Server) handleReboot(w http.ResponseWriter, r *http.Request) {
	_, err := s.dispatcher.System.Reboot(r.Context()).Wait(r.Context())
	writeOutcome(w, r, http.StatusAccepted, map[string]string{"status": "rebooting"}, err)
}

// LoginRequest is the body of POST /api/auth/login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(req.Username) == "" {
		WriteErrorCtx(w, r, http.StatusBadRequest, "username is required")
		return
	}

	client := clientIP(r)
	if s.loginLimiter != nil && !s.loginLimiter.Allow(client) {
		retry := s.loginLimiter.RetryAfter(client)
		w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(retry.Seconds()))))
		s.logger.Warn("login rate limited", "client", client)
		WriteErrorCtx(w, r, http.StatusTooManyRequests, "too many login attempts")
		return
	}

	user, err := s.dispatcher.Session.Login(r.Context(), req.Username, req.Password).Wait(r.Context())
	if re, ok := dispatch.AsRejected(err); ok {
		WriteError(w, http.StatusUnauthorized, re.Message)
		return
	}
	if err == nil && s.loginLimiter != nil {
		s.loginLimiter.Reset(client)
	}
	writeOutcome(w, r, http.StatusOK, user, err)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	_, err := s.dispatcher.Session.Logout(r.Context()).Wait(r.Context())
	if err != nil {
		writeOutcome(w, r, 0, nil, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
