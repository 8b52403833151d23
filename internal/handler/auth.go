package handler

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"

	"github.com/vkarev/rotagen/internal/auth"
	"github.com/vkarev/rotagen/internal/config"
	"github.com/vkarev/rotagen/internal/middleware"
)

// AuthHandler issues and inspects API tokens. The scheduler has a single
// built-in operator account configured through the environment.
type AuthHandler struct {
	cfg        *config.Config
	jwtManager *auth.JWTManager
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(cfg *config.Config, jm *auth.JWTManager) *AuthHandler {
	return &AuthHandler{cfg: cfg, jwtManager: jm}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// Login checks the operator credentials and returns a bearer token.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	emailOK := subtle.ConstantTimeCompare([]byte(req.Email), []byte(h.cfg.Admin.Email)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(req.Password), []byte(h.cfg.Admin.Password)) == 1
	if !emailOK || !passOK {
		respondError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	token, err := h.jwtManager.Generate(req.Email, "Operator", "admin")
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to issue token")
		return
	}
	respondJSON(w, http.StatusOK, loginResponse{Token: token, Email: req.Email, Role: "admin"})
}

// DevLogin issues a token without credentials. Registered only in dev mode.
func (h *AuthHandler) DevLogin(w http.ResponseWriter, r *http.Request) {
	token, err := h.jwtManager.Generate(h.cfg.Admin.Email, "Operator", "admin")
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to issue token")
		return
	}
	respondJSON(w, http.StatusOK, loginResponse{Token: token, Email: h.cfg.Admin.Email, Role: "admin"})
}

// Me returns the authenticated claims.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{
		"email": claims.Email,
		"name":  claims.DisplayName,
		"role":  claims.Role,
	})
}
