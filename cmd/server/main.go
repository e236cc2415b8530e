package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	redisdriver "github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"mathblog/internal/config"
	"mathblog/internal/handlers"
	"mathblog/internal/newsletter"
	"mathblog/internal/repository/postgres"
	"mathblog/internal/scheduler"
	"mathblog/internal/storage"
	"mathblog/internal/templates"
	"mathblog/pkg/db"
	"mathblog/pkg/health"
	"mathblog/pkg/logger"
	"mathblog/pkg/mailer"
	mailerresend "mathblog/pkg/mailer/resend"
	"mathblog/pkg/mathtext/mathml"
	"mathblog/pkg/redis"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server exited with error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log := logger.NewWithSentry(logger.SentryConfig{
		DSN:         cfg.Sentry.DSN,
		Environment: cfg.Sentry.Environment,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := db.Connect(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer func() { _ = db.Shutdown(pool)(context.Background()) }()

	if err := db.Migrate(ctx, pool, postgres.Migrations(), cfg.Database.MigrationsTable, log); err != nil {
		return err
	}

	var redisClient redisdriver.UniversalClient
	if cfg.Redis.URL != "" {
		redisClient, err = redis.Open(ctx, cfg.Redis.URL)
		if err != nil {
			return err
		}
		defer func() { _ = redis.Shutdown(redisClient)(context.Background()) }()
	} else {
		log.Warn("REDIS_URL not set, rate limiting disabled")
	}

	sendRepo := postgres.NewSendRepository(pool)
	postRepo := postgres.NewPostRepository(pool)
	subscriberRepo := postgres.NewSubscriberRepository(pool)
	commentRepo := postgres.NewCommentRepository(pool)

	sender := mailerresend.New(mailerresend.Config{
		APIKey:      cfg.Resend.APIKey,
		SenderEmail: cfg.Resend.SenderEmail,
		SenderName:  cfg.Resend.SenderName,
	})
	mail := mailer.New(sender, mailer.NewRenderer(templates.Emails(), mailer.RendererConfig{}), "base.html")

	pipeline := cfg.Newsletter.Pipeline
	content := newsletter.NewContentBuilder(mathml.New(), pipeline.SiteURL)
	processor := newsletter.NewProcessor(sendRepo, postRepo, subscriberRepo, sender, content, pipeline, log)
	driver := newsletter.NewDriver(processor, sendRepo, pipeline, log)
	subscriptions := newsletter.NewSubscriptions(
		subscriberRepo, mail, pipeline.SiteURL, cfg.Newsletter.DoubleOptIn, log)

	var uploader *storage.Uploader
	if cfg.Storage.Enabled() {
		uploader, err = storage.NewUploader(cfg.Storage)
		if err != nil {
			return err
		}
	}

	checks := health.Checks{"postgres": db.Healthcheck(pool)}
	if redisClient != nil {
		checks["redis"] = redis.Healthcheck(redisClient)
	}

	router := handlers.NewRouter(handlers.RouterConfig{
		Newsletter: handlers.NewNewsletterHandler(
			subscriptions, subscriberRepo, sendRepo, postRepo, processor, driver, content, log),
		Posts:      handlers.NewPostHandler(postRepo, log),
		Comments:   handlers.NewCommentHandler(commentRepo, postRepo, log),
		Uploads:    handlers.NewUploadHandler(uploader, log),
		Redis:      redisClient,
		Checks:     checks,
		AdminToken: cfg.Newsletter.AdminToken,
		CronSecret: cfg.Newsletter.CronSecret,
		Log:        log,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.HTTP.Port,
		Handler:      router,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}

	poller := scheduler.New(driver, cfg.Newsletter.PollInterval, log)
	poller.Start(ctx)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("server listening", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		poller.Stop()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	log.Info("server stopped")
	return nil
}
