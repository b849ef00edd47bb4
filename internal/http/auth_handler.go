package httpapi

import (
	"errors"
	"net/http"

	"labtrack-data/internal/repository"
	"labtrack-data/internal/service"

	"go.uber.org/zap"
)

// AuthHandler serves login/logout/register.
type AuthHandler struct {
	auth     *service.AuthService
	sessions *SessionStore
	logger   *zap.Logger
}

func NewAuthHandler(auth *service.AuthService, sessions *SessionStore, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		auth:     auth,
		sessions: sessions,
		logger:   logger,
	}
}

// Login handles GET (form page) and POST (credential check).
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	// already signed in: straight to the listing
	if _, _, ok := h.sessions.FromRequest(r); ok {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	if r.Method == http.MethodGet {
		writeJSON(w, http.StatusOK, Ok(map[string]any{"title": "Sign In"}))
		return
	}

	if err := r.ParseForm(); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid form"))
		return
	}
	username := r.PostFormValue("username")
	password := r.PostFormValue("password")
	remember := formBool(r.PostFormValue("remember_me"))

	ident, err := h.auth.Login(r.Context(), username, password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			writeJSON(w, http.StatusUnauthorized, Fail("Invalid username or password"))
			return
		}
		h.logger.Error("Login failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, Fail("login failed"))
		return
	}

	token, err := h.sessions.Create(r.Context(), ident, remember)
	if err != nil {
		h.logger.Error("Failed to create session", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, Fail("login failed"))
		return
	}
	h.sessions.SetCookie(w, token, remember)

	http.Redirect(w, r, safeNext(r.URL.Query().Get("next")), http.StatusSeeOther)
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if _, token, ok := h.sessions.FromRequest(r); ok {
		_ = h.sessions.Destroy(r.Context(), token)
	}
	h.sessions.ClearCookie(w)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// Register creates a new staff account. Admin only.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	_, token, ok := h.sessions.RequireAdmin(w, r, "Only administrators can register new users.")
	if !ok {
		return
	}

	if r.Method == http.MethodGet {
		writeJSON(w, http.StatusOK, Ok(map[string]any{"title": "Register"}))
		return
	}

	if err := r.ParseForm(); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid form"))
		return
	}
	username := r.PostFormValue("username")
	password := r.PostFormValue("password")
	isAdmin := formBool(r.PostFormValue("is_admin"))

	_, err := h.auth.Register(r.Context(), username, password, isAdmin)
	if err != nil {
		var verr *service.ValidationError
		switch {
		case errors.As(err, &verr):
			writeJSON(w, http.StatusBadRequest, FailFields(verr.Fields))
		case errors.Is(err, repository.ErrDuplicateKey):
			writeJSON(w, http.StatusBadRequest, FailFields(map[string]string{"username": "username already taken"}))
		default:
			h.logger.Error("Register failed", zap.Error(err))
			writeJSON(w, http.StatusInternalServerError, Fail("registration failed"))
		}
		return
	}

	_ = h.sessions.PushFlash(r.Context(), token, "Congratulations, you are now a registered user!")
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
