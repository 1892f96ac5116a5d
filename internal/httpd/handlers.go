package httpd

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/orbitlms/authgate"
	"github.com/orbitlms/authgate/internal/obs"
)

// result is the uniform response envelope of the platform API.
type result struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func writeResult(w http.ResponseWriter, status int, message string, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(result{Code: status, Message: message, Data: data})
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeResult(w, status, message, nil)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeResult(w, http.StatusOK, "ok", nil)
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Username == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "username and password are required")
		return
	}

	token, err := s.engine.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		s.writeLoginError(w, r, req.Username, err)
		return
	}

	writeResult(w, http.StatusOK, "login successful", map[string]string{"token": token})
}

func (s *Server) writeLoginError(w http.ResponseWriter, r *http.Request, username string, err error) {
	switch {
	case errors.Is(err, authgate.ErrBadCredential):
		writeError(w, http.StatusUnauthorized, "invalid username or password")
	case errors.Is(err, authgate.ErrAccountLocked):
		writeError(w, http.StatusLocked, "too many failed attempts, account temporarily locked")
	case errors.Is(err, authgate.ErrAccountDisabled):
		writeError(w, http.StatusForbidden, "account disabled")
	case errors.Is(err, authgate.ErrAccountAdminLocked):
		writeError(w, http.StatusForbidden, "account locked by administrator")
	default:
		// Infrastructure failure: store or directory down.
		obs.CaptureError(err)
		s.logger.Error("login_infrastructure_error", map[string]any{
			"error":      err.Error(),
			"username":   username,
			"request_id": obs.RequestIDFromContext(r.Context()),
		})
		writeError(w, http.StatusServiceUnavailable, "service unavailable")
	}
}

func (s *Server) handleHello(w http.ResponseWriter, r *http.Request) {
	principal, _ := authgate.PrincipalFromContext(r.Context())
	writeResult(w, http.StatusOK, "hello from the user module", map[string]string{
		"subject": principal.Subject,
	})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	principal, _ := authgate.PrincipalFromContext(r.Context())
	writeResult(w, http.StatusOK, "ok", map[string]any{
		"subject": principal.Subject,
		"userId":  principal.UserID,
		"roles":   principal.Roles,
	})
}

func (s *Server) handleUserByID(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	// Entity persistence lives elsewhere; this service only vouches for
	// who is asking.
	principal, _ := authgate.PrincipalFromContext(r.Context())
	writeResult(w, http.StatusOK, "ok", map[string]any{
		"userId":      id,
		"requestedBy": principal.Subject,
	})
}

func (s *Server) handleAttempts(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")

	count, err := s.engine.FailureCount(r.Context(), username)
	if err != nil {
		obs.CaptureError(err)
		writeError(w, http.StatusServiceUnavailable, "service unavailable")
		return
	}

	writeResult(w, http.StatusOK, "ok", map[string]any{
		"username": username,
		"failures": count,
	})
}

func (s *Server) handleRateReset(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")

	if err := s.engine.ResetRate(r.Context(), key); err != nil {
		obs.CaptureError(err)
		writeError(w, http.StatusServiceUnavailable, "service unavailable")
		return
	}

	writeResult(w, http.StatusOK, "rate window cleared", nil)
}
