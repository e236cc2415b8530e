package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"mathblog/internal/domain"
	"mathblog/pkg/sanitizer"
)

// CommentRecords is the comment persistence surface for the HTTP layer.
type CommentRecords interface {
	Create(ctx context.Context, comment domain.Comment) (domain.Comment, error)
	ListByPost(ctx context.Context, postID uuid.UUID) ([]domain.Comment, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// CommentHandler serves reader comments on posts.
type CommentHandler struct {
	comments CommentRecords
	posts    PostRecords
	log      *slog.Logger
}

func NewCommentHandler(comments CommentRecords, posts PostRecords, log *slog.Logger) *CommentHandler {
	return &CommentHandler{comments: comments, posts: posts, log: log}
}

const maxCommentLength = 4000

// Create accepts a comment on a published post. Author names are stripped of
// markup entirely; bodies keep minimal inline formatting.
func (h *CommentHandler) Create(w http.ResponseWriter, r *http.Request) {
	post, err := h.posts.GetBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	if !post.Published {
		respondError(w, r, h.log, domain.ErrNotFound)
		return
	}

	var req struct {
		AuthorName string `json:"author_name"`
		Body       string `json:"body"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, h.log, err)
		return
	}

	author := strings.TrimSpace(sanitizer.StripHTML(req.AuthorName))
	body := strings.TrimSpace(sanitizer.SanitizeComment(req.Body))
	switch {
	case author == "":
		respondError(w, r, h.log, badRequest("author_name is required"))
		return
	case body == "":
		respondError(w, r, h.log, badRequest("body is required"))
		return
	case len(body) > maxCommentLength:
		respondError(w, r, h.log, badRequest("body exceeds %d characters", maxCommentLength))
		return
	}

	comment, err := h.comments.Create(r.Context(), domain.Comment{
		PostID:     post.ID,
		AuthorName: author,
		Body:       body,
	})
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	respondJSON(w, http.StatusCreated, comment)
}

func (h *CommentHandler) ListByPost(w http.ResponseWriter, r *http.Request) {
	post, err := h.posts.GetBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}

	comments, err := h.comments.ListByPost(r.Context(), post.ID)
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	if comments == nil {
		comments = []domain.Comment{}
	}
	respondJSON(w, http.StatusOK, map[string]any{"comments": comments, "total": len(comments)})
}

func (h *CommentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, h.log, badRequest("invalid comment id"))
		return
	}
	if err := h.comments.Delete(r.Context(), id); err != nil {
		respondError(w, r, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
