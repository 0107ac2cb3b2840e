package http

import (
	"net/http"
	"strings"
	"time"

	commonhttp "github.com/inkwell/blog-backend/internal/common/http"
	"github.com/inkwell/blog-backend/internal/common/logger"
	"github.com/inkwell/blog-backend/internal/profile/service"
)

type Handler struct {
	profiles     *service.ProfileService
	errorHandler *commonhttp.ErrorHandler
}

func NewHandler(profiles *service.ProfileService, log *logger.Logger) *Handler {
	return &Handler{
		profiles:     profiles,
		errorHandler: commonhttp.NewErrorHandler(log),
	}
}

func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/api/users/", commonhttp.RequireMethod(http.MethodGet)(h.handleGet))
}

type profileResponse struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	FullName  string    `json:"full_name,omitempty"`
	Bio       string    `json:"bio,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	id := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/users/"), "/")
	if err := commonhttp.ValidateUUID(id); err != nil {
		commonhttp.WriteErrorEnvelope(w, http.StatusBadRequest, commonhttp.CodeInvalidPath, "invalid user id", nil, "")
		return
	}

	profile, err := h.profiles.Get(r.Context(), id)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	commonhttp.WriteJSON(w, http.StatusOK, profileResponse{
		ID:        string(profile.ID),
		Username:  profile.Username,
		FullName:  profile.FullName,
		Bio:       profile.Bio,
		CreatedAt: profile.CreatedAt,
	})
}
