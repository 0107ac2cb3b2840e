package http

import (
	"net/http"
	"time"

	"github.com/inkwell/blog-backend/internal/auth/service"
	commonhttp "github.com/inkwell/blog-backend/internal/common/http"
	"github.com/inkwell/blog-backend/internal/common/jwtverify"
	"github.com/inkwell/blog-backend/internal/common/logger"
)

const refreshCookieName = "refresh_token"

type Handler struct {
	auth         *service.AuthService
	errorHandler *commonhttp.ErrorHandler
	log          *logger.Logger
	secureCookie bool
}

func NewHandler(auth *service.AuthService, log *logger.Logger, secureCookie bool) *Handler {
	return &Handler{
		auth:         auth,
		errorHandler: commonhttp.NewErrorHandler(log),
		log:          log,
		secureCookie: secureCookie,
	}
}

// Register mounts the auth routes. requireAuth wraps the endpoints that need
// a valid bearer token.
func (h *Handler) Register(mux *http.ServeMux, requireAuth func(http.Handler) http.Handler) {
	mux.HandleFunc("/api/auth/register", commonhttp.RequireMethod(http.MethodPost)(h.handleRegister))
	mux.HandleFunc("/api/auth/login", commonhttp.RequireMethod(http.MethodPost)(h.handleLogin))
	mux.HandleFunc("/api/auth/refresh", commonhttp.RequireMethod(http.MethodPost)(h.handleRefresh))
	mux.Handle("/api/auth/logout", requireAuth(commonhttp.RequireMethod(http.MethodPost)(h.handleLogout)))
	mux.Handle("/api/auth/account", requireAuth(http.HandlerFunc(h.handleAccount)))
}

type registerRequest struct {
	Username string `json:"username" validate:"required,min=3,max=32"`
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

type registerResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !commonhttp.DecodeAndValidate(w, r, &req) {
		return
	}

	user, err := h.auth.Register(r.Context(), service.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	commonhttp.WriteJSON(w, http.StatusCreated, registerResponse{
		ID:       string(user.ID),
		Username: user.Username,
		Email:    user.Email,
	})
}

type loginRequest struct {
	Identifier string `json:"identifier" validate:"required"`
	Password   string `json:"password" validate:"required"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !commonhttp.DecodeAndValidate(w, r, &req) {
		return
	}

	_, pair, err := h.auth.Login(r.Context(), service.LoginInput{
		Identifier: req.Identifier,
		Password:   req.Password,
	})
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	h.setRefreshCookie(w, pair)
	commonhttp.WriteJSON(w, http.StatusOK, h.tokenResponse(pair))
}

func (h *Handler) handleRefresh(w http.ResponseWriter, r *http.Request) {
	refreshToken, ok := refreshTokenFromRequest(r)
	if !ok {
		commonhttp.WriteErrorEnvelope(w, http.StatusUnauthorized, commonhttp.CodeMissingRefreshToken, "missing refresh token", nil, "")
		return
	}

	_, pair, err := h.auth.Refresh(r.Context(), refreshToken)
	if err != nil {
		h.clearRefreshCookie(w)
		h.errorHandler.HandleError(w, r, err)
		return
	}

	h.setRefreshCookie(w, pair)
	commonhttp.WriteJSON(w, http.StatusOK, h.tokenResponse(pair))
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	claims, ok := jwtverify.FromContext(r.Context())
	if !ok {
		commonhttp.WriteErrorEnvelope(w, http.StatusUnauthorized, commonhttp.CodeInvalidToken, "invalid or expired token", nil, "")
		return
	}

	refreshToken, _ := refreshTokenFromRequest(r)
	if err := h.auth.Logout(r.Context(), refreshToken, claims); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	h.clearRefreshCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleAccount(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		commonhttp.WriteErrorEnvelope(w, http.StatusMethodNotAllowed, commonhttp.CodeMethodNotAllowed, "method not allowed", nil, "")
		return
	}

	claims, ok := jwtverify.FromContext(r.Context())
	if !ok {
		commonhttp.WriteErrorEnvelope(w, http.StatusUnauthorized, commonhttp.CodeInvalidToken, "invalid or expired token", nil, "")
		return
	}

	if err := h.auth.DeleteAccount(r.Context(), claims); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	h.clearRefreshCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) tokenResponse(pair service.TokenPair) tokenResponse {
	return tokenResponse{
		AccessToken: pair.AccessToken,
		TokenType:   "Bearer",
		ExpiresIn:   int64(time.Until(pair.AccessExpiresAt).Seconds()),
	}
}

func (h *Handler) setRefreshCookie(w http.ResponseWriter, pair service.TokenPair) {
	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookieName,
		Value:    pair.RefreshToken,
		Path:     "/api/auth",
		Expires:  pair.RefreshExpiresAt,
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteStrictMode,
	})
}

func (h *Handler) clearRefreshCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookieName,
		Value:    "",
		Path:     "/api/auth",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteStrictMode,
	})
}

// refreshTokenFromRequest prefers the httpOnly cookie and falls back to a
// JSON body for non-browser clients.
func refreshTokenFromRequest(r *http.Request) (string, bool) {
	if cookie, err := r.Cookie(refreshCookieName); err == nil && cookie.Value != "" {
		return cookie.Value, true
	}

	var body struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := commonhttp.DecodeJSON(r, &body); err == nil && body.RefreshToken != "" {
		return body.RefreshToken, true
	}
	return "", false
}
