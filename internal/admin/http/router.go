package http

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	adminservice "github.com/inkwell/blog-backend/internal/admin/service"
	authservice "github.com/inkwell/blog-backend/internal/auth/service"
	"github.com/inkwell/blog-backend/internal/common/constants"
	commonhttp "github.com/inkwell/blog-backend/internal/common/http"
	"github.com/inkwell/blog-backend/internal/common/jwtverify"
	"github.com/inkwell/blog-backend/internal/common/logger"
	userdomain "github.com/inkwell/blog-backend/internal/user/domain"
)

type Handler struct {
	auth         *authservice.AuthService
	admin        *adminservice.AdminService
	errorHandler *commonhttp.ErrorHandler
	log          *logger.Logger
}

func NewHandler(auth *authservice.AuthService, admin *adminservice.AdminService, log *logger.Logger) *Handler {
	return &Handler{
		auth:         auth,
		admin:        admin,
		errorHandler: commonhttp.NewErrorHandler(log),
		log:          log,
	}
}

// Register mounts the admin routes. Registration is open but gated by the
// master key inside the service; the management routes need a bearer token
// and an admin role on top.
func (h *Handler) Register(mux *http.ServeMux, requireAuth func(http.Handler) http.Handler) {
	mux.HandleFunc("/api/admin/register", commonhttp.RequireMethod(http.MethodPost)(h.handleRegister))
	mux.Handle("/api/admin/users", requireAuth(commonhttp.RequireMethod(http.MethodGet)(h.handleListUsers)))
	mux.Handle("/api/admin/users/", requireAuth(http.HandlerFunc(h.handleUserByID)))
}

type registerRequest struct {
	Username  string `json:"username" validate:"required,min=3,max=32"`
	Email     string `json:"email" validate:"required,email,max=254"`
	Password  string `json:"password" validate:"required,min=8,max=72"`
	MasterKey string `json:"master_key" validate:"required"`
}

type userResponse struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

func toUserResponse(user userdomain.User) userResponse {
	return userResponse{
		ID:        string(user.ID),
		Username:  user.Username,
		Email:     user.Email,
		Role:      string(user.Role),
		CreatedAt: user.CreatedAt,
	}
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !commonhttp.DecodeAndValidate(w, r, &req) {
		return
	}

	user, err := h.auth.RegisterAdmin(r.Context(), authservice.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	}, req.MasterKey)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	commonhttp.WriteJSON(w, http.StatusCreated, toUserResponse(user))
}

func (h *Handler) handleListUsers(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.requireClaims(w, r)
	if !ok {
		return
	}

	query := r.URL.Query()
	users, err := h.admin.ListUsers(r.Context(), claims, parseLimit(query.Get("limit")), parseOffset(query.Get("offset")))
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	out := make([]userResponse, 0, len(users))
	for _, user := range users {
		out = append(out, toUserResponse(user))
	}
	commonhttp.WriteJSON(w, http.StatusOK, out)
}

func (h *Handler) handleUserByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		commonhttp.WriteErrorEnvelope(w, http.StatusMethodNotAllowed, commonhttp.CodeMethodNotAllowed, "method not allowed", nil, "")
		return
	}

	claims, ok := h.requireClaims(w, r)
	if !ok {
		return
	}

	id := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/admin/users/"), "/")
	if err := commonhttp.ValidateUUID(id); err != nil {
		commonhttp.WriteErrorEnvelope(w, http.StatusBadRequest, commonhttp.CodeInvalidPath, "invalid user id", nil, "")
		return
	}

	if err := h.admin.DeleteUser(r.Context(), claims, id); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) requireClaims(w http.ResponseWriter, r *http.Request) (jwtverify.Claims, bool) {
	claims, ok := jwtverify.FromContext(r.Context())
	if !ok {
		commonhttp.WriteErrorEnvelope(w, http.StatusUnauthorized, commonhttp.CodeMissingAuthorization, "authentication required", nil, "")
		return jwtverify.Claims{}, false
	}
	return claims, true
}

func parseLimit(value string) int {
	limit, err := strconv.Atoi(value)
	if err != nil || limit <= 0 {
		return constants.DefaultListLimit
	}
	if limit > constants.MaxListLimit {
		return constants.MaxListLimit
	}
	return limit
}

func parseOffset(value string) int {
	offset, err := strconv.Atoi(value)
	if err != nil || offset < 0 {
		return 0
	}
	return offset
}
