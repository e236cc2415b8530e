package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"

	"mathblog/pkg/health"
)

// RouterConfig collects everything the HTTP surface depends on. Optional
// dependencies (Redis, Uploader) may be nil and degrade a single feature.
type RouterConfig struct {
	Newsletter *NewsletterHandler
	Posts      *PostHandler
	Comments   *CommentHandler
	Uploads    *UploadHandler

	Redis  redis.UniversalClient
	Checks health.Checks

	AdminToken string
	CronSecret string

	Log *slog.Logger
}

const (
	subscribeRateLimit  = 5
	subscribeRateWindow = time.Minute
	commentRateLimit    = 10
	commentRateWindow   = time.Minute
)

// NewRouter assembles the chi router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/healthz", health.LivenessHandler())
	r.Get("/readyz", health.ReadinessHandler(cfg.Checks, health.WithLogger(cfg.Log)))

	r.Route("/api", func(r chi.Router) {
		r.Route("/newsletter", func(r chi.Router) {
			r.With(rateLimit(cfg.Redis, subscribeRateLimit, subscribeRateWindow, cfg.Log)).
				Post("/subscribe", cfg.Newsletter.Subscribe)
			r.Get("/confirm", cfg.Newsletter.Confirm)

			// Hosted cron services differ on the verb they issue.
			r.With(cronAuth(cfg.CronSecret)).Post("/run", cfg.Newsletter.RunDue)
			r.With(cronAuth(cfg.CronSecret)).Get("/run", cfg.Newsletter.RunDue)
		})

		r.Route("/posts", func(r chi.Router) {
			r.Get("/", cfg.Posts.ListPublished)
			r.Get("/{slug}", cfg.Posts.GetBySlug)
			r.Get("/{slug}/comments", cfg.Comments.ListByPost)
			r.With(rateLimit(cfg.Redis, commentRateLimit, commentRateWindow, cfg.Log)).
				Post("/{slug}/comments", cfg.Comments.Create)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(adminAuth(cfg.AdminToken))

			r.Route("/posts", func(r chi.Router) {
				r.Get("/", cfg.Posts.ListAll)
				r.Post("/", cfg.Posts.Create)
				r.Put("/{id}", cfg.Posts.Update)
				r.Delete("/{id}", cfg.Posts.Delete)
			})

			r.Route("/newsletter", func(r chi.Router) {
				r.Get("/sends", cfg.Newsletter.ListSends)
				r.Post("/sends", cfg.Newsletter.CreateSend)
				r.Get("/sends/{id}", cfg.Newsletter.GetSend)
				r.Post("/sends/{id}/process", cfg.Newsletter.ProcessSend)
				r.Get("/subscribers", cfg.Newsletter.ListSubscribers)
				r.Delete("/subscribers/{id}", cfg.Newsletter.DeleteSubscriber)
			})

			r.Delete("/comments/{id}", cfg.Comments.Delete)
			r.Post("/uploads", cfg.Uploads.Upload)
		})
	})

	return r
}
