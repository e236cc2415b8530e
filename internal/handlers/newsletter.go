package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"mathblog/internal/domain"
	"mathblog/internal/newsletter"
)

// SendRecords is the send persistence surface the HTTP layer needs beyond
// what the processor already covers.
type SendRecords interface {
	Create(ctx context.Context, send domain.Send) (domain.Send, error)
	Get(ctx context.Context, id uuid.UUID) (domain.Send, error)
	List(ctx context.Context) ([]domain.Send, error)
}

// NewsletterHandler serves subscription, send management, and the scheduled
// send trigger.
type NewsletterHandler struct {
	subscriptions *newsletter.Subscriptions
	subscribers   newsletter.SubscriberDirectory
	sends         SendRecords
	posts         PostRecords
	processor     *newsletter.Processor
	driver        *newsletter.Driver
	content       *newsletter.ContentBuilder
	log           *slog.Logger
}

func NewNewsletterHandler(
	subscriptions *newsletter.Subscriptions,
	subscribers newsletter.SubscriberDirectory,
	sends SendRecords,
	posts PostRecords,
	processor *newsletter.Processor,
	driver *newsletter.Driver,
	content *newsletter.ContentBuilder,
	log *slog.Logger,
) *NewsletterHandler {
	return &NewsletterHandler{
		subscriptions: subscriptions,
		subscribers:   subscribers,
		sends:         sends,
		posts:         posts,
		processor:     processor,
		driver:        driver,
		content:       content,
		log:           log,
	}
}

func (h *NewsletterHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, h.log, err)
		return
	}

	sub, err := h.subscriptions.Subscribe(r.Context(), req.Email)
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	respondJSON(w, http.StatusCreated, sub)
}

func (h *NewsletterHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	sub, err := h.subscriptions.Confirm(r.Context(), r.URL.Query().Get("token"))
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"confirmed": true,
		"email":     sub.Email,
	})
}

type createSendRequest struct {
	Subject     string     `json:"subject"`
	PostID      *uuid.UUID `json:"post_id"`
	Body        string     `json:"body"`
	Markdown    bool       `json:"markdown"`
	ScheduledAt *time.Time `json:"scheduled_at"`
}

type sendResponse struct {
	Send   domain.Send        `json:"send"`
	Result *newsletter.Result `json:"result,omitempty"`
}

// CreateSend creates a send record. Post-derived sends reference a published
// post and build content at dispatch time; custom markdown bodies are
// rendered once here and stored as HTML. Records without a future scheduled
// time are dispatched synchronously before responding.
func (h *NewsletterHandler) CreateSend(w http.ResponseWriter, r *http.Request) {
	var req createSendRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, h.log, err)
		return
	}

	send, err := h.buildSend(r.Context(), req)
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}

	created, err := h.sends.Create(r.Context(), send)
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}

	if created.Status == domain.SendStatusScheduled {
		respondJSON(w, http.StatusCreated, sendResponse{Send: created})
		return
	}

	result, err := h.processor.Process(r.Context(), created.ID)
	if err != nil {
		h.log.Error("immediate send dispatch failed",
			slog.String("send_id", created.ID.String()),
			slog.String("error", err.Error()))
		if errors.Is(err, newsletter.ErrDelivery) {
			// The record exists and stays retryable; surface both facts.
			respondJSON(w, http.StatusBadGateway, map[string]any{
				"send_id": created.ID,
				"error":   err.Error(),
			})
			return
		}
		respondError(w, r, h.log, err)
		return
	}

	created, _ = h.sends.Get(r.Context(), created.ID)
	respondJSON(w, http.StatusCreated, sendResponse{Send: created, Result: &result})
}

func (h *NewsletterHandler) buildSend(ctx context.Context, req createSendRequest) (domain.Send, error) {
	send := domain.Send{ScheduledAt: req.ScheduledAt}

	if req.PostID != nil {
		post, err := h.posts.Get(ctx, *req.PostID)
		if err != nil {
			return domain.Send{}, err
		}
		if !post.Published {
			return domain.Send{}, badRequest("post %s is not published", post.ID)
		}
		send.PostID = &post.ID
		send.Subject = post.Title
		return send, nil
	}

	if req.Subject == "" {
		return domain.Send{}, badRequest("subject is required for custom sends")
	}
	if req.Body == "" {
		return domain.Send{}, badRequest("body is required for custom sends")
	}
	send.Subject = req.Subject

	if req.Markdown {
		content, err := h.content.BuildCustom(req.Subject, req.Body, true)
		if err != nil {
			return domain.Send{}, err
		}
		send.BodyHTML = &content.HTML
	} else {
		body := req.Body
		send.BodyText = &body
	}
	return send, nil
}

func (h *NewsletterHandler) GetSend(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, h.log, badRequest("invalid send id"))
		return
	}

	send, err := h.sends.Get(r.Context(), id)
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, send)
}

func (h *NewsletterHandler) ListSends(w http.ResponseWriter, r *http.Request) {
	sends, err := h.sends.List(r.Context())
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	if sends == nil {
		sends = []domain.Send{}
	}
	respondJSON(w, http.StatusOK, map[string]any{"sends": sends, "total": len(sends)})
}

// ProcessSend re-dispatches a specific record, typically after a failed
// immediate send.
func (h *NewsletterHandler) ProcessSend(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, h.log, badRequest("invalid send id"))
		return
	}

	result, err := h.processor.Process(r.Context(), id)
	if err != nil {
		if errors.Is(err, newsletter.ErrDelivery) {
			respondJSON(w, http.StatusBadGateway, map[string]any{
				"send_id": id,
				"error":   err.Error(),
			})
			return
		}
		respondError(w, r, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// RunDue processes every due scheduled send. This is the endpoint external
// cron services call; the in-process scheduler does the same work.
func (h *NewsletterHandler) RunDue(w http.ResponseWriter, r *http.Request) {
	outcomes, err := h.driver.RunDue(r.Context(), time.Now().UTC())
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	if outcomes == nil {
		outcomes = []newsletter.RunOutcome{}
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"processed": len(outcomes),
		"outcomes":  outcomes,
	})
}

func (h *NewsletterHandler) ListSubscribers(w http.ResponseWriter, r *http.Request) {
	subs, err := h.subscribers.List(r.Context())
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	if subs == nil {
		subs = []domain.Subscriber{}
	}
	respondJSON(w, http.StatusOK, map[string]any{"subscribers": subs, "total": len(subs)})
}

func (h *NewsletterHandler) DeleteSubscriber(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, h.log, badRequest("invalid subscriber id"))
		return
	}

	if err := h.subscribers.Delete(r.Context(), id); err != nil {
		respondError(w, r, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
