package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"mathblog/internal/domain"
	"mathblog/pkg/slug"
)

// PostRecords is the post persistence surface for the HTTP layer.
type PostRecords interface {
	Create(ctx context.Context, post domain.Post) (domain.Post, error)
	Update(ctx context.Context, post domain.Post) (domain.Post, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Get(ctx context.Context, id uuid.UUID) (domain.Post, error)
	GetBySlug(ctx context.Context, slug string) (domain.Post, error)
	List(ctx context.Context, publishedOnly bool) ([]domain.Post, error)
}

// PostHandler serves the public reading endpoints and the admin CRUD.
type PostHandler struct {
	posts PostRecords
	log   *slog.Logger
}

func NewPostHandler(posts PostRecords, log *slog.Logger) *PostHandler {
	return &PostHandler{posts: posts, log: log}
}

type postRequest struct {
	Title     string `json:"title"`
	Slug      string `json:"slug"`
	Excerpt   string `json:"excerpt"`
	Content   string `json:"content"`
	Published bool   `json:"published"`
}

func (h *PostHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req postRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, h.log, err)
		return
	}
	if req.Title == "" {
		respondError(w, r, h.log, badRequest("title is required"))
		return
	}
	if req.Slug == "" {
		req.Slug = slug.Make(req.Title)
	}
	if req.Slug == "" {
		// Title slugged to nothing (e.g. all symbols); fall back to a random one.
		req.Slug = slug.Make(req.Title, slug.WithSuffix(8))
	}

	post, err := h.posts.Create(r.Context(), domain.Post{
		Title:     req.Title,
		Slug:      req.Slug,
		Excerpt:   req.Excerpt,
		Content:   req.Content,
		Published: req.Published,
	})
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	respondJSON(w, http.StatusCreated, post)
}

func (h *PostHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, h.log, badRequest("invalid post id"))
		return
	}

	existing, err := h.posts.Get(r.Context(), id)
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}

	req := postRequest{
		Title:     existing.Title,
		Slug:      existing.Slug,
		Excerpt:   existing.Excerpt,
		Content:   existing.Content,
		Published: existing.Published,
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, h.log, err)
		return
	}
	if req.Title == "" {
		respondError(w, r, h.log, badRequest("title is required"))
		return
	}
	if req.Slug == "" {
		req.Slug = slug.Make(req.Title)
	}

	existing.Title = req.Title
	existing.Slug = req.Slug
	existing.Excerpt = req.Excerpt
	existing.Content = req.Content
	existing.Published = req.Published

	updated, err := h.posts.Update(r.Context(), existing)
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, updated)
}

func (h *PostHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, h.log, badRequest("invalid post id"))
		return
	}
	if err := h.posts.Delete(r.Context(), id); err != nil {
		respondError(w, r, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListPublished serves the public post index.
func (h *PostHandler) ListPublished(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, true)
}

// ListAll serves the admin post index, drafts included.
func (h *PostHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, false)
}

func (h *PostHandler) list(w http.ResponseWriter, r *http.Request, publishedOnly bool) {
	posts, err := h.posts.List(r.Context(), publishedOnly)
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	if posts == nil {
		posts = []domain.Post{}
	}
	respondJSON(w, http.StatusOK, map[string]any{"posts": posts, "total": len(posts)})
}

// GetBySlug serves a single published post.
func (h *PostHandler) GetBySlug(w http.ResponseWriter, r *http.Request) {
	post, err := h.posts.GetBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	if !post.Published {
		respondError(w, r, h.log, domain.ErrNotFound)
		return
	}
	respondJSON(w, http.StatusOK, post)
}
