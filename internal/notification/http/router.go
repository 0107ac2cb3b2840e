package http

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/inkwell/blog-backend/internal/common/constants"
	commonhttp "github.com/inkwell/blog-backend/internal/common/http"
	"github.com/inkwell/blog-backend/internal/common/jwtverify"
	"github.com/inkwell/blog-backend/internal/common/logger"
	"github.com/inkwell/blog-backend/internal/notification/domain"
	"github.com/inkwell/blog-backend/internal/notification/service"
)

type Handler struct {
	notifications *service.NotificationService
	errorHandler  *commonhttp.ErrorHandler
	log           *logger.Logger
}

func NewHandler(notifications *service.NotificationService, log *logger.Logger) *Handler {
	return &Handler{
		notifications: notifications,
		errorHandler:  commonhttp.NewErrorHandler(log),
		log:           log,
	}
}

func (h *Handler) Register(mux *http.ServeMux, requireAuth func(http.Handler) http.Handler) {
	mux.Handle("/api/notifications", requireAuth(commonhttp.RequireMethod(http.MethodGet)(h.handleList)))
	mux.Handle("/api/notifications/", requireAuth(http.HandlerFunc(h.handleMarkRead)))
}

type notificationResponse struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Message   string    `json:"message"`
	IsRead    bool      `json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
}

func toNotificationResponse(n domain.Notification) notificationResponse {
	return notificationResponse{
		ID:        n.ID,
		Type:      n.Type,
		Message:   n.Message,
		IsRead:    n.IsRead,
		CreatedAt: n.CreatedAt,
	}
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	claims, ok := jwtverify.FromContext(r.Context())
	if !ok {
		commonhttp.WriteErrorEnvelope(w, http.StatusUnauthorized, commonhttp.CodeInvalidToken, "invalid or expired token", nil, "")
		return
	}

	query := r.URL.Query()
	notifications, err := h.notifications.List(r.Context(), claims.UserID, parseLimit(query.Get("limit")), parseOffset(query.Get("offset")))
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	out := make([]notificationResponse, 0, len(notifications))
	for _, n := range notifications {
		out = append(out, toNotificationResponse(n))
	}
	commonhttp.WriteJSON(w, http.StatusOK, out)
}

// handleMarkRead serves POST /api/notifications/{id}/read.
func (h *Handler) handleMarkRead(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		commonhttp.WriteErrorEnvelope(w, http.StatusMethodNotAllowed, commonhttp.CodeMethodNotAllowed, "method not allowed", nil, "")
		return
	}

	rest := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/notifications/"), "/")
	parts := strings.Split(rest, "/")
	if len(parts) != 2 || parts[1] != "read" {
		commonhttp.WriteErrorEnvelope(w, http.StatusNotFound, commonhttp.CodeInvalidPath, "not found", nil, "")
		return
	}
	id := parts[0]
	if err := commonhttp.ValidateUUID(id); err != nil {
		commonhttp.WriteErrorEnvelope(w, http.StatusBadRequest, commonhttp.CodeInvalidPath, "invalid notification id", nil, "")
		return
	}

	claims, ok := jwtverify.FromContext(r.Context())
	if !ok {
		commonhttp.WriteErrorEnvelope(w, http.StatusUnauthorized, commonhttp.CodeInvalidToken, "invalid or expired token", nil, "")
		return
	}

	if err := h.notifications.MarkRead(r.Context(), claims.UserID, id); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
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
