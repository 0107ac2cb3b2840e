package http

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/inkwell/blog-backend/internal/blog/domain"
	"github.com/inkwell/blog-backend/internal/blog/repository"
	"github.com/inkwell/blog-backend/internal/blog/service"
	"github.com/inkwell/blog-backend/internal/common/constants"
	commonhttp "github.com/inkwell/blog-backend/internal/common/http"
	"github.com/inkwell/blog-backend/internal/common/jwtverify"
	"github.com/inkwell/blog-backend/internal/common/logger"
)

type Handler struct {
	posts        *service.PostService
	comments     *service.CommentService
	taxonomy     *service.TaxonomyService
	errorHandler *commonhttp.ErrorHandler
	log          *logger.Logger
}

func NewHandler(
	posts *service.PostService,
	comments *service.CommentService,
	taxonomy *service.TaxonomyService,
	log *logger.Logger,
) *Handler {
	return &Handler{
		posts:        posts,
		comments:     comments,
		taxonomy:     taxonomy,
		errorHandler: commonhttp.NewErrorHandler(log),
		log:          log,
	}
}

// Register mounts the blog routes. optionalAuth validates a bearer token when
// present; mutating methods then insist on claims via requireClaims.
func (h *Handler) Register(mux *http.ServeMux, optionalAuth func(http.Handler) http.Handler) {
	mux.Handle("/api/posts", optionalAuth(http.HandlerFunc(h.handlePosts)))
	mux.Handle("/api/posts/", optionalAuth(http.HandlerFunc(h.handlePostByID)))
	mux.Handle("/api/comments/", optionalAuth(http.HandlerFunc(h.handleCommentByID)))
	mux.Handle("/api/categories", optionalAuth(http.HandlerFunc(h.handleCategories)))
	mux.Handle("/api/tags", optionalAuth(http.HandlerFunc(h.handleTags)))
}

type postRequest struct {
	Title       string   `json:"title" validate:"required,max=150"`
	Content     string   `json:"content" validate:"required,max=100000"`
	CategoryID  string   `json:"category_id" validate:"omitempty,uuid4"`
	TagIDs      []string `json:"tag_ids" validate:"omitempty,dive,uuid4"`
	IsPublished bool     `json:"is_published"`
}

type postResponse struct {
	ID          string        `json:"id"`
	AuthorID    string        `json:"author_id"`
	Title       string        `json:"title"`
	Content     string        `json:"content"`
	CategoryID  string        `json:"category_id,omitempty"`
	Tags        []tagResponse `json:"tags"`
	IsPublished bool          `json:"is_published"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

type tagResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func toPostResponse(post domain.Post) postResponse {
	tags := make([]tagResponse, 0, len(post.Tags))
	for _, t := range post.Tags {
		tags = append(tags, tagResponse{ID: t.ID, Name: t.Name})
	}
	return postResponse{
		ID:          post.ID,
		AuthorID:    post.AuthorID,
		Title:       post.Title,
		Content:     post.Content,
		CategoryID:  post.CategoryID,
		Tags:        tags,
		IsPublished: post.IsPublished,
		CreatedAt:   post.CreatedAt,
		UpdatedAt:   post.UpdatedAt,
	}
}

func (h *Handler) handlePosts(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.listPosts(w, r)
	case http.MethodPost:
		h.createPost(w, r)
	default:
		commonhttp.WriteErrorEnvelope(w, http.StatusMethodNotAllowed, commonhttp.CodeMethodNotAllowed, "method not allowed", nil, "")
	}
}

func (h *Handler) listPosts(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := repository.PostFilter{
		AuthorID:      query.Get("author_id"),
		CategoryID:    query.Get("category_id"),
		TagID:         query.Get("tag_id"),
		OnlyPublished: true,
		Limit:         parseLimit(query.Get("limit")),
		Offset:        parseOffset(query.Get("offset")),
	}

	// Authors may list their own drafts.
	if claims, ok := jwtverify.FromContext(r.Context()); ok && filter.AuthorID == claims.UserID {
		filter.OnlyPublished = false
	}

	posts, err := h.posts.List(r.Context(), filter)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	out := make([]postResponse, 0, len(posts))
	for _, post := range posts {
		out = append(out, toPostResponse(post))
	}
	commonhttp.WriteJSON(w, http.StatusOK, out)
}

func (h *Handler) createPost(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.requireClaims(w, r)
	if !ok {
		return
	}

	var req postRequest
	if !commonhttp.DecodeAndValidate(w, r, &req) {
		return
	}

	post, err := h.posts.Create(r.Context(), claims, service.PostInput{
		Title:       req.Title,
		Content:     req.Content,
		CategoryID:  req.CategoryID,
		TagIDs:      req.TagIDs,
		IsPublished: req.IsPublished,
	})
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	commonhttp.WriteJSON(w, http.StatusCreated, toPostResponse(post))
}

// handlePostByID serves /api/posts/{id} and /api/posts/{id}/comments.
func (h *Handler) handlePostByID(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/posts/")
	parts := strings.Split(strings.Trim(rest, "/"), "/")

	switch {
	case len(parts) == 1 && parts[0] != "":
		h.servePost(w, r, parts[0])
	case len(parts) == 2 && parts[1] == "comments":
		h.servePostComments(w, r, parts[0])
	default:
		commonhttp.WriteErrorEnvelope(w, http.StatusNotFound, commonhttp.CodeInvalidPath, "not found", nil, "")
	}
}

func (h *Handler) servePost(w http.ResponseWriter, r *http.Request, id string) {
	if err := commonhttp.ValidateUUID(id); err != nil {
		commonhttp.WriteErrorEnvelope(w, http.StatusBadRequest, commonhttp.CodeInvalidPath, "invalid post id", nil, "")
		return
	}

	claims, _ := jwtverify.FromContext(r.Context())

	switch r.Method {
	case http.MethodGet:
		post, err := h.posts.Get(r.Context(), claims, id)
		if err != nil {
			h.errorHandler.HandleError(w, r, err)
			return
		}
		commonhttp.WriteJSON(w, http.StatusOK, toPostResponse(post))

	case http.MethodPut:
		claims, ok := h.requireClaims(w, r)
		if !ok {
			return
		}
		var req postRequest
		if !commonhttp.DecodeAndValidate(w, r, &req) {
			return
		}
		post, err := h.posts.Update(r.Context(), claims, id, service.PostInput{
			Title:       req.Title,
			Content:     req.Content,
			CategoryID:  req.CategoryID,
			TagIDs:      req.TagIDs,
			IsPublished: req.IsPublished,
		})
		if err != nil {
			h.errorHandler.HandleError(w, r, err)
			return
		}
		commonhttp.WriteJSON(w, http.StatusOK, toPostResponse(post))

	case http.MethodDelete:
		claims, ok := h.requireClaims(w, r)
		if !ok {
			return
		}
		if err := h.posts.Delete(r.Context(), claims, id); err != nil {
			h.errorHandler.HandleError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)

	default:
		commonhttp.WriteErrorEnvelope(w, http.StatusMethodNotAllowed, commonhttp.CodeMethodNotAllowed, "method not allowed", nil, "")
	}
}

type commentRequest struct {
	Content string `json:"content" validate:"required,max=4000"`
}

type commentResponse struct {
	ID        string    `json:"id"`
	PostID    string    `json:"post_id"`
	AuthorID  string    `json:"author_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toCommentResponse(comment domain.Comment) commentResponse {
	return commentResponse{
		ID:        comment.ID,
		PostID:    comment.PostID,
		AuthorID:  comment.AuthorID,
		Content:   comment.Content,
		CreatedAt: comment.CreatedAt,
		UpdatedAt: comment.UpdatedAt,
	}
}

func (h *Handler) servePostComments(w http.ResponseWriter, r *http.Request, postID string) {
	if err := commonhttp.ValidateUUID(postID); err != nil {
		commonhttp.WriteErrorEnvelope(w, http.StatusBadRequest, commonhttp.CodeInvalidPath, "invalid post id", nil, "")
		return
	}

	switch r.Method {
	case http.MethodGet:
		claims, _ := jwtverify.FromContext(r.Context())
		query := r.URL.Query()
		comments, err := h.comments.ListByPost(r.Context(), claims, postID, parseLimit(query.Get("limit")), parseOffset(query.Get("offset")))
		if err != nil {
			h.errorHandler.HandleError(w, r, err)
			return
		}
		out := make([]commentResponse, 0, len(comments))
		for _, comment := range comments {
			out = append(out, toCommentResponse(comment))
		}
		commonhttp.WriteJSON(w, http.StatusOK, out)

	case http.MethodPost:
		claims, ok := h.requireClaims(w, r)
		if !ok {
			return
		}
		var req commentRequest
		if !commonhttp.DecodeAndValidate(w, r, &req) {
			return
		}
		comment, err := h.comments.Create(r.Context(), claims, postID, req.Content)
		if err != nil {
			h.errorHandler.HandleError(w, r, err)
			return
		}
		commonhttp.WriteJSON(w, http.StatusCreated, toCommentResponse(comment))

	default:
		commonhttp.WriteErrorEnvelope(w, http.StatusMethodNotAllowed, commonhttp.CodeMethodNotAllowed, "method not allowed", nil, "")
	}
}

func (h *Handler) handleCommentByID(w http.ResponseWriter, r *http.Request) {
	id := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/comments/"), "/")
	if err := commonhttp.ValidateUUID(id); err != nil {
		commonhttp.WriteErrorEnvelope(w, http.StatusBadRequest, commonhttp.CodeInvalidPath, "invalid comment id", nil, "")
		return
	}

	claims, ok := h.requireClaims(w, r)
	if !ok {
		return
	}

	switch r.Method {
	case http.MethodPut:
		var req commentRequest
		if !commonhttp.DecodeAndValidate(w, r, &req) {
			return
		}
		comment, err := h.comments.Update(r.Context(), claims, id, req.Content)
		if err != nil {
			h.errorHandler.HandleError(w, r, err)
			return
		}
		commonhttp.WriteJSON(w, http.StatusOK, toCommentResponse(comment))

	case http.MethodDelete:
		if err := h.comments.Delete(r.Context(), claims, id); err != nil {
			h.errorHandler.HandleError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)

	default:
		commonhttp.WriteErrorEnvelope(w, http.StatusMethodNotAllowed, commonhttp.CodeMethodNotAllowed, "method not allowed", nil, "")
	}
}

type categoryRequest struct {
	Name        string `json:"name" validate:"required,max=50"`
	Description string `json:"description" validate:"omitempty,max=255"`
}

type categoryResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

func (h *Handler) handleCategories(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		categories, err := h.taxonomy.ListCategories(r.Context())
		if err != nil {
			h.errorHandler.HandleError(w, r, err)
			return
		}
		out := make([]categoryResponse, 0, len(categories))
		for _, c := range categories {
			out = append(out, categoryResponse{ID: c.ID, Name: c.Name, Description: c.Description})
		}
		commonhttp.WriteJSON(w, http.StatusOK, out)

	case http.MethodPost:
		if _, ok := h.requireClaims(w, r); !ok {
			return
		}
		var req categoryRequest
		if !commonhttp.DecodeAndValidate(w, r, &req) {
			return
		}
		category, err := h.taxonomy.CreateCategory(r.Context(), req.Name, req.Description)
		if err != nil {
			h.errorHandler.HandleError(w, r, err)
			return
		}
		commonhttp.WriteJSON(w, http.StatusCreated, categoryResponse{ID: category.ID, Name: category.Name, Description: category.Description})

	default:
		commonhttp.WriteErrorEnvelope(w, http.StatusMethodNotAllowed, commonhttp.CodeMethodNotAllowed, "method not allowed", nil, "")
	}
}

type tagRequest struct {
	Name string `json:"name" validate:"required,max=50"`
}

func (h *Handler) handleTags(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		tags, err := h.taxonomy.ListTags(r.Context())
		if err != nil {
			h.errorHandler.HandleError(w, r, err)
			return
		}
		out := make([]tagResponse, 0, len(tags))
		for _, t := range tags {
			out = append(out, tagResponse{ID: t.ID, Name: t.Name})
		}
		commonhttp.WriteJSON(w, http.StatusOK, out)

	case http.MethodPost:
		if _, ok := h.requireClaims(w, r); !ok {
			return
		}
		var req tagRequest
		if !commonhttp.DecodeAndValidate(w, r, &req) {
			return
		}
		tag, err := h.taxonomy.CreateTag(r.Context(), req.Name)
		if err != nil {
			h.errorHandler.HandleError(w, r, err)
			return
		}
		commonhttp.WriteJSON(w, http.StatusCreated, tagResponse{ID: tag.ID, Name: tag.Name})

	default:
		commonhttp.WriteErrorEnvelope(w, http.StatusMethodNotAllowed, commonhttp.CodeMethodNotAllowed, "method not allowed", nil, "")
	}
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
