package blog

import (
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/blogosphere/blogd/internal/domain"
	"github.com/blogosphere/blogd/internal/httputil"
	"github.com/blogosphere/blogd/internal/http/middleware"
	"github.com/blogosphere/blogd/internal/policy"
	"github.com/blogosphere/blogd/internal/repository"
)

// Handler serves post, comment and category CRUD. Authorization is the
// conjunction of the policy predicates composed per resource.
type Handler struct {
	logger     *slog.Logger
	posts      *repository.PostsRepository
	comments   *repository.CommentsRepository
	categories *repository.CategoriesRepository
}

// NewHandler creates the blog handler.
func NewHandler(
	logger *slog.Logger,
	posts *repository.PostsRepository,
	comments *repository.CommentsRepository,
	categories *repository.CategoriesRepository,
) *Handler {
	return &Handler{
		logger:     logger,
		posts:      posts,
		comments:   comments,
		categories: categories,
	}
}

func randomColor() string {
	var b [3]byte
	rand.Read(b[:])
	return fmt.Sprintf("#%02x%02x%02x", b[0], b[1], b[2])
}

// actor resolves the request's policy actor; anonymous requests get the
// zero actor, which every unsafe-method predicate rejects.
func actor(r *http.Request) policy.Actor {
	a, _ := middleware.GetActor(r.Context())
	return a
}

func parseID(r *http.Request, name string) (uuid.UUID, error) {
	return uuid.Parse(chi.URLParam(r, name))
}

type postResponse struct {
	ID         string     `json:"id"`
	Title      string     `json:"title"`
	Content    string     `json:"content"`
	AuthorID   string     `json:"author_id"`
	CategoryID *string    `json:"category_id,omitempty"`
	Published  bool       `json:"published"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

func toPostResponse(p *domain.Post) postResponse {
	resp := postResponse{
		ID:        p.ID.String(),
		Title:     p.Title,
		Content:   p.Content,
		AuthorID:  p.AuthorID.String(),
		Published: p.Published,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
	if p.CategoryID != nil {
		s := p.CategoryID.String()
		resp.CategoryID = &s
	}
	return resp
}

// ListPosts handles GET /v1/posts.
func (h *Handler) ListPosts(w http.ResponseWriter, r *http.Request) {
	posts, err := h.posts.ListPublished(r.Context())
	if err != nil {
		h.logger.Error("post list failed", "error", err)
		httputil.Error(w, http.StatusInternalServerError, "internal server error")
		return
	}

	resp := make([]postResponse, 0, len(posts))
	for _, p := range posts {
		resp = append(resp, toPostResponse(p))
	}
	httputil.JSON(w, http.StatusOK, resp)
}

// GetPost handles GET /v1/posts/{id}.
func (h *Handler) GetPost(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid post id")
		return
	}

	post, err := h.posts.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrPostNotFound) {
			httputil.Error(w, http.StatusNotFound, "post not found")
			return
		}
		h.logger.Error("post lookup failed", "error", err)
		httputil.Error(w, http.StatusInternalServerError, "internal server error")
		return
	}
	httputil.JSON(w, http.StatusOK, toPostResponse(post))
}

type postRequest struct {
	Title      string  `json:"title"`
	Content    string  `json:"content"`
	CategoryID *string `json:"category_id"`
	Published  *bool   `json:"published"`
}

// CreatePost handles POST /v1/posts. Unverified actors may only read.
func (h *Handler) CreatePost(w http.ResponseWriter, r *http.Request) {
	a := actor(r)
	if !policy.ReadOnlyOrVerified(a, r.Method) {
		httputil.Error(w, http.StatusForbidden, "email verification required")
		return
	}

	var req postRequest
	if !httputil.Decode(w, r, &req) {
		return
	}
	if req.Title == "" || req.Content == "" {
		httputil.Error(w, http.StatusBadRequest, "title and content are required")
		return
	}

	now := time.Now()
	post := &domain.Post{
		ID:        uuid.New(),
		Title:     req.Title,
		Content:   req.Content,
		AuthorID:  a.ID,
		Published: true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if req.Published != nil {
		post.Published = *req.Published
	}
	if req.CategoryID != nil {
		categoryID, err := uuid.Parse(*req.CategoryID)
		if err != nil {
			httputil.Error(w, http.StatusBadRequest, "invalid category id")
			return
		}
		post.CategoryID = &categoryID
	}

	if err := h.posts.Create(r.Context(), post); err != nil {
		h.logger.Error("post create failed", "error", err)
		httputil.Error(w, http.StatusInternalServerError, "internal server error")
		return
	}
	httputil.JSON(w, http.StatusCreated, toPostResponse(post))
}

// UpdatePost handles PUT /v1/posts/{id}. Only the author or a superuser may
// edit.
func (h *Handler) UpdatePost(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid post id")
		return
	}

	post, err := h.posts.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrPostNotFound) {
			httputil.Error(w, http.StatusNotFound, "post not found")
			return
		}
		h.logger.Error("post lookup failed", "error", err)
		httputil.Error(w, http.StatusInternalServerError, "internal server error")
		return
	}

	a := actor(r)
	if !policy.ReadOnlyOrVerified(a, r.Method) ||
		!(policy.ReadOnlyOrOwner(a, r.Method, post.AuthorID) || a.IsSuperuser) {
		httputil.Error(w, http.StatusForbidden, "not allowed")
		return
	}

	var req postRequest
	if !httputil.Decode(w, r, &req) {
		return
	}
	if req.Title != "" {
		post.Title = req.Title
	}
	if req.Content != "" {
		post.Content = req.Content
	}
	if req.Published != nil {
		post.Published = *req.Published
	}
	if req.CategoryID != nil {
		categoryID, err := uuid.Parse(*req.CategoryID)
		if err != nil {
			httputil.Error(w, http.StatusBadRequest, "invalid category id")
			return
		}
		post.CategoryID = &categoryID
	}

	if err := h.posts.Update(r.Context(), post); err != nil {
		h.logger.Error("post update failed", "error", err)
		httputil.Error(w, http.StatusInternalServerError, "internal server error")
		return
	}
	httputil.JSON(w, http.StatusOK, toPostResponse(post))
}

// DeletePost handles DELETE /v1/posts/{id}.
func (h *Handler) DeletePost(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid post id")
		return
	}

	post, err := h.posts.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrPostNotFound) {
			httputil.Error(w, http.StatusNotFound, "post not found")
			return
		}
		h.logger.Error("post lookup failed", "error", err)
		httputil.Error(w, http.StatusInternalServerError, "internal server error")
		return
	}

	a := actor(r)
	if !policy.ReadOnlyOrVerified(a, r.Method) ||
		!(policy.ReadOnlyOrOwner(a, r.Method, post.AuthorID) || a.IsSuperuser) {
		httputil.Error(w, http.StatusForbidden, "not allowed")
		return
	}

	if err := h.posts.Delete(r.Context(), id); err != nil {
		h.logger.Error("post delete failed", "error", err)
		httputil.Error(w, http.StatusInternalServerError, "internal server error")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type commentResponse struct {
	ID        string    `json:"id"`
	PostID    string    `json:"post_id"`
	AuthorID  string    `json:"author_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

func toCommentResponse(c *domain.Comment) commentResponse {
	return commentResponse{
		ID:        c.ID.String(),
		PostID:    c.PostID.String(),
		AuthorID:  c.AuthorID.String(),
		Content:   c.Content,
		CreatedAt: c.CreatedAt,
	}
}

// ListComments handles GET /v1/posts/{id}/comments.
func (h *Handler) ListComments(w http.ResponseWriter, r *http.Request) {
	postID, err := parseID(r, "id")
	if err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid post id")
		return
	}

	comments, err := h.comments.ListByPost(r.Context(), postID)
	if err != nil {
		h.logger.Error("comment list failed", "error", err)
		httputil.Error(w, http.StatusInternalServerError, "internal server error")
		return
	}

	resp := make([]commentResponse, 0, len(comments))
	for _, c := range comments {
		resp = append(resp, toCommentResponse(c))
	}
	httputil.JSON(w, http.StatusOK, resp)
}

type commentRequest struct {
	Content string `json:"content"`
}

// CreateComment handles POST /v1/posts/{id}/comments.
func (h *Handler) CreateComment(w http.ResponseWriter, r *http.Request) {
	a := actor(r)
	if !policy.ReadOnlyOrVerified(a, r.Method) {
		httputil.Error(w, http.StatusForbidden, "email verification required")
		return
	}

	postID, err := parseID(r, "id")
	if err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid post id")
		return
	}
	if _, err := h.posts.GetByID(r.Context(), postID); err != nil {
		if errors.Is(err, domain.ErrPostNotFound) {
			httputil.Error(w, http.StatusNotFound, "post not found")
			return
		}
		h.logger.Error("post lookup failed", "error", err)
		httputil.Error(w, http.StatusInternalServerError, "internal server error")
		return
	}

	var req commentRequest
	if !httputil.Decode(w, r, &req) {
		return
	}
	if req.Content == "" {
		httputil.Error(w, http.StatusBadRequest, "content is required")
		return
	}

	comment := &domain.Comment{
		ID:        uuid.New(),
		PostID:    postID,
		AuthorID:  a.ID,
		Content:   req.Content,
		CreatedAt: time.Now(),
	}
	if err := h.comments.Create(r.Context(), comment); err != nil {
		h.logger.Error("comment create failed", "error", err)
		httputil.Error(w, http.StatusInternalServerError, "internal server error")
		return
	}
	httputil.JSON(w, http.StatusCreated, toCommentResponse(comment))
}

// DeleteComment handles DELETE /v1/comments/{id}.
func (h *Handler) DeleteComment(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid comment id")
		return
	}

	comment, err := h.comments.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrCommentNotFound) {
			httputil.Error(w, http.StatusNotFound, "comment not found")
			return
		}
		h.logger.Error("comment lookup failed", "error", err)
		httputil.Error(w, http.StatusInternalServerError, "internal server error")
		return
	}

	a := actor(r)
	if !policy.ReadOnlyOrVerified(a, r.Method) ||
		!(policy.ReadOnlyOrOwner(a, r.Method, comment.AuthorID) || a.IsSuperuser) {
		httputil.Error(w, http.StatusForbidden, "not allowed")
		return
	}

	if err := h.comments.Delete(r.Context(), id); err != nil {
		h.logger.Error("comment delete failed", "error", err)
		httputil.Error(w, http.StatusInternalServerError, "internal server error")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type categoryResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

func toCategoryResponse(c *domain.Category) categoryResponse {
	return categoryResponse{ID: c.ID.String(), Name: c.Name, Color: c.Color}
}

// ListCategories handles GET /v1/categories.
func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.categories.List(r.Context())
	if err != nil {
		h.logger.Error("category list failed", "error", err)
		httputil.Error(w, http.StatusInternalServerError, "internal server error")
		return
	}

	resp := make([]categoryResponse, 0, len(categories))
	for _, c := range categories {
		resp = append(resp, toCategoryResponse(c))
	}
	httputil.JSON(w, http.StatusOK, resp)
}

type categoryRequest struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

// CreateCategory handles POST /v1/categories. Superusers only.
func (h *Handler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	if !policy.ReadOnlyOrSuperuser(actor(r), r.Method) {
		httputil.Error(w, http.StatusForbidden, "not allowed")
		return
	}

	var req categoryRequest
	if !httputil.Decode(w, r, &req) {
		return
	}
	if req.Name == "" {
		httputil.Error(w, http.StatusBadRequest, "name is required")
		return
	}

	category := &domain.Category{ID: uuid.New(), Name: req.Name, Color: req.Color}
	if category.Color == "" {
		category.Color = randomColor()
	}
	if err := h.categories.Create(r.Context(), category); err != nil {
		h.logger.Error("category create failed", "error", err)
		httputil.Error(w, http.StatusInternalServerError, "internal server error")
		return
	}
	httputil.JSON(w, http.StatusCreated, toCategoryResponse(category))
}

// UpdateCategory handles PUT /v1/categories/{id}. Superusers only.
func (h *Handler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	if !policy.ReadOnlyOrSuperuser(actor(r), r.Method) {
		httputil.Error(w, http.StatusForbidden, "not allowed")
		return
	}

	id, err := parseID(r, "id")
	if err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid category id")
		return
	}
	category, err := h.categories.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrCategoryNotFound) {
			httputil.Error(w, http.StatusNotFound, "category not found")
			return
		}
		h.logger.Error("category lookup failed", "error", err)
		httputil.Error(w, http.StatusInternalServerError, "internal server error")
		return
	}

	var req categoryRequest
	if !httputil.Decode(w, r, &req) {
		return
	}
	if req.Name != "" {
		category.Name = req.Name
	}
	if req.Color != "" {
		category.Color = req.Color
	}

	if err := h.categories.Update(r.Context(), category); err != nil {
		h.logger.Error("category update failed", "error", err)
		httputil.Error(w, http.StatusInternalServerError, "internal server error")
		return
	}
	httputil.JSON(w, http.StatusOK, toCategoryResponse(category))
}

// DeleteCategory handles DELETE /v1/categories/{id}. Superusers only.
func (h *Handler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	if !policy.ReadOnlyOrSuperuser(actor(r), r.Method) {
		httputil.Error(w, http.StatusForbidden, "not allowed")
		return
	}

	id, err := parseID(r, "id")
	if err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid category id")
		return
	}
	if err := h.categories.Delete(r.Context(), id); err != nil {
		if errors.Is(err, domain.ErrCategoryNotFound) {
			httputil.Error(w, http.StatusNotFound, "category not found")
			return
		}
		h.logger.Error("category delete failed", "error", err)
		httputil.Error(w, http.StatusInternalServerError, "internal server error")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
