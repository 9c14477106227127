// Package api exposes the authenticator over a JSON REST interface.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/mmynk/authd/internal/auth"
	"github.com/mmynk/authd/internal/metrics"
	"github.com/mmynk/authd/internal/models"
)

const maxBodyBytes = 1 << 20

// Banner is served on GET /.
const Banner = "Welcome to the Auth APIs"

// Authenticator is the subset of auth.Authenticator the handlers call.
type Authenticator interface {
	Register(ctx context.Context, in auth.RegisterInput) (*auth.Result, error)
	Login(ctx context.Context, req auth.LoginRequest) (*auth.Result, error)
	GoogleLogin(ctx context.Context, assertion string) (*auth.Result, error)
}

// Handler serves the authentication endpoints.
type Handler struct {
	authenticator Authenticator
	metrics       *metrics.Metrics
	logger        *slog.Logger
}

// NewHandler creates the REST handler. m may be nil.
func NewHandler(authenticator Authenticator, m *metrics.Metrics, logger *slog.Logger) *Handler {
	return &Handler{
		authenticator: authenticator,
		metrics:       m,
		logger:        logger,
	}
}

type registerRequest struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Password string `json:"password"`
	GoogleID string `json:"googleId"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	GoogleID string `json:"googleId"`
}

type googleLoginRequest struct {
	Token string `json:"token"`
}

type authResponse struct {
	Success     bool                  `json:"success"`
	Message     string                `json:"message,omitempty"`
	AccessToken string                `json:"accessToken"`
	User        *models.PublicProfile `json:"user,omitempty"`
}

type errorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// Register handles POST /register.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !h.decode(w, r, &req) {
		return
	}

	res, err := h.authenticator.Register(r.Context(), auth.RegisterInput{
		FullName:    req.FullName,
		Email:       req.Email,
		Password:    req.Password,
		FederatedID: req.GoogleID,
	})
	h.observe("register", err)
	if err != nil {
		h.writeError(w, err, "Internal Server Error")
		return
	}

	writeJSON(w, http.StatusCreated, authResponse{
		Success:     true,
		Message:     "Registration successful",
		AccessToken: res.Token,
		User:        &res.Profile,
	})
}

// Login handles POST /login with either email+password or googleId.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !h.decode(w, r, &req) {
		return
	}

	loginReq, err := auth.ParseLoginRequest(req.Email, req.Password, req.GoogleID)
	if err != nil {
		h.observe("login", err)
		h.writeError(w, err, "Login failed")
		return
	}

	res, err := h.authenticator.Login(r.Context(), loginReq)
	h.observe("login", err)
	if err != nil {
		h.writeError(w, err, "Login failed")
		return
	}

	writeJSON(w, http.StatusOK, authResponse{
		Success:     true,
		AccessToken: res.Token,
		User:        &res.Profile,
	})
}

// GoogleLogin handles POST /google-login.
func (h *Handler) GoogleLogin(w http.ResponseWriter, r *http.Request) {
	var req googleLoginRequest
	if !h.decode(w, r, &req) {
		return
	}

	res, err := h.authenticator.GoogleLogin(r.Context(), req.Token)
	h.observe("google_login", err)
	if err != nil {
		h.writeError(w, err, "Internal Server Error")
		return
	}

	writeJSON(w, http.StatusOK, authResponse{
		Success:     true,
		AccessToken: res.Token,
	})
}

// Root handles GET /.
func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, Banner)
}

// Health handles GET /healthz.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

// decode reads the JSON body into v. An empty body decodes to the zero value
// so that missing fields are reported by the authenticator.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v)
	if err == nil || errors.Is(err, io.EOF) {
		return true
	}
	h.logger.Debug("Invalid request body", "path", r.URL.Path, "error", err)
	writeJSON(w, http.StatusBadRequest, errorResponse{Message: "Invalid request body"})
	return false
}

func (h *Handler) writeError(w http.ResponseWriter, err error, internalMessage string) {
	kind := auth.KindOf(err)
	status := statusFor(kind)
	if kind == auth.KindUnexpected {
		h.logger.Error("Request failed", "error", err)
		writeJSON(w, status, errorResponse{Message: internalMessage, Details: err.Error()})
		return
	}
	writeJSON(w, status, errorResponse{Message: auth.MessageOf(err)})
}

func (h *Handler) observe(operation string, err error) {
	if h.metrics == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = auth.KindOf(err).String()
	}
	h.metrics.ObserveAuth(operation, outcome)
}

func statusFor(kind auth.Kind) int {
	switch kind {
	case auth.KindValidation, auth.KindConflict:
		return http.StatusBadRequest
	case auth.KindAuth:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
