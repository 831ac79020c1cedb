package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/mentor-site-api/api/swagger"
	"github.com/noah-isme/mentor-site-api/internal/dashboard"
	"github.com/noah-isme/mentor-site-api/internal/dto"
	"github.com/noah-isme/mentor-site-api/internal/handler"
	"github.com/noah-isme/mentor-site-api/internal/middleware"
	"github.com/noah-isme/mentor-site-api/internal/models"
	"github.com/noah-isme/mentor-site-api/internal/repository"
	"github.com/noah-isme/mentor-site-api/internal/service"
	"github.com/noah-isme/mentor-site-api/pkg/cache"
	"github.com/noah-isme/mentor-site-api/pkg/config"
	"github.com/noah-isme/mentor-site-api/pkg/database"
	"github.com/noah-isme/mentor-site-api/pkg/jobs"
	"github.com/noah-isme/mentor-site-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/mentor-site-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/mentor-site-api/pkg/middleware/requestid"
	"github.com/noah-isme/mentor-site-api/pkg/notify"
	"github.com/noah-isme/mentor-site-api/pkg/storage"
)

// @title Mentor Site API
// @version 1.0.0
// @description Public content and admin console backend for the mentor site
// @BasePath /api/v1
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	metrics := service.NewMetricsService()

	store, closeStore, err := openStore(ctx, cfg, logr)
	if err != nil {
		logr.Sugar().Fatalw("failed to open document store", "driver", cfg.Store.Driver, "error", err)
	}
	defer closeStore()
	store = repository.NewInstrumentedStore(store, metrics)

	cacheRepo := repository.NewCacheRepository(nil)
	if cfg.Cache.Enabled {
		client, err := cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			logr.Sugar().Warnw("redis unavailable, public cache disabled", "error", err)
		} else {
			cacheRepo = repository.NewCacheRepository(client)
		}
	}
	defer cacheRepo.Close() //nolint:errcheck
	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Cache.TTL, logr, cfg.Cache.Enabled && cacheRepo.Enabled())

	blobs, mediaDir, err := openBlobStore(ctx, cfg)
	if err != nil {
		logr.Sugar().Fatalw("failed to open blob store", "driver", cfg.Media.Driver, "error", err)
	}

	var dispatcher service.Dispatcher
	if cfg.Notifications.Enabled {
		d := notify.NewDispatcher(service.NewMeteredMailer(newMailer(cfg, logr), metrics), jobs.QueueConfig{
			Workers:    cfg.Notifications.Workers,
			MaxRetries: cfg.Notifications.Retries,
			RetryDelay: cfg.Notifications.RetryDelay,
			JobTimeout: 30 * time.Second,
			Logger:     logr,
			OnExhausted: func(job jobs.Job, err error) {
				metrics.RecordNotification("failed")
			},
		})
		d.Queue().Start(ctx)
		defer d.Queue().Stop()
		dispatcher = d
	}
	notifier := service.NewNotificationService(dispatcher, "Site admin", cfg.Notifications.AdminEmail, metrics, logr)

	validate := service.NewValidator()
	deps := service.ContentDeps{Store: store, Validator: validate, Cache: cacheSvc, Logger: logr}
	webinars := service.NewWebinarService(deps)
	events := service.NewEventService(deps)
	testimonials := service.NewTestimonialService(deps)
	links := service.NewCommunityLinkService(deps)
	gallery := service.NewGalleryService(deps)
	reviews := service.NewReviewService(deps, notifier)
	messages := service.NewContactMessageService(deps, notifier)
	media := service.NewMediaService(blobs, service.MediaConfig{
		MaxFileSize:  cfg.Media.MaxFileSizeBytes,
		AllowedMIMEs: cfg.Media.AllowedMIMEs,
	}, logr)

	audit := repository.NewAuditRepository(store)
	auth := service.NewAuthService(repository.NewAdminUserRepository(store), audit, validate, logr, service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		AccessTokenExpiry: cfg.JWT.Expiration,
		Issuer:            cfg.JWT.Issuer,
	})

	sources := func(actor *models.JWTClaims) dashboard.Sources {
		return dashboard.Sources{
			Webinars:       webinars.List,
			Events:         events.List,
			Testimonials:   testimonials.List,
			CommunityLinks: links.List,
			Gallery:        gallery.List,
			Messages: func(ctx context.Context) ([]models.ContactMessage, error) {
				return messages.List(ctx, actor)
			},
			Reviews: func(ctx context.Context) ([]models.Review, error) {
				return reviews.List(ctx, actor, dto.ReviewQuery{})
			},
		}
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr, "/health", "/metrics"))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metrics))
	r.Use(middleware.WithResponseMeta())

	checks := map[string]handler.Pinger{"store": store}
	if cacheRepo.Enabled() {
		checks["cache"] = cacheRepo
	}
	ops := handler.NewMetricsHandler(metrics, checks, logr)
	r.GET("/health", ops.Health)
	r.GET("/ready", ops.Ready)
	r.GET("/metrics", ops.Prometheus)
	if mediaDir != "" {
		r.Static("/media", mediaDir)
	}
	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	handler.RegisterRoutes(r.Group(cfg.APIPrefix), handler.Handlers{
		Auth: handler.NewAuthHandler(auth),
		Public: handler.NewPublicHandler(handler.PublicServices{
			Webinars: webinars, Events: events, Testimonials: testimonials,
			CommunityLinks: links, Gallery: gallery, Reviews: reviews, Contact: messages,
		}),
		Webinars:       handler.NewContentHandler[models.Webinar, dto.WebinarRequest, dto.WebinarUpdate]("webinar", webinars, logr),
		Events:         handler.NewContentHandler[models.Event, dto.EventRequest, dto.EventUpdate]("event", events, logr),
		Testimonials:   handler.NewContentHandler[models.Testimonial, dto.TestimonialRequest, dto.TestimonialUpdate]("testimonial", testimonials, logr),
		CommunityLinks: handler.NewContentHandler[models.CommunityLink, dto.CommunityLinkRequest, dto.CommunityLinkUpdate]("community link", links, logr),
		Gallery:        handler.NewGalleryHandler(gallery, logr),
		Media:          handler.NewMediaHandler(media, cfg.Media.MaxFileSizeBytes),
		Reviews:        handler.NewReviewHandler(reviews, logr),
		Messages:       handler.NewMessageHandler(messages, logr),
		Dashboard:      handler.NewDashboardHandler(sources, metrics, logr),
		Audit:          handler.NewAuditHandler(audit),
	}, handler.RouteDeps{Tokens: auth, Audit: audit, Logger: logr})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env, "store", cfg.Store.Driver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("graceful shutdown failed", "error", err)
	}
	logr.Sugar().Infow("server stopped")
}

func openStore(ctx context.Context, cfg *config.Config, logr *zap.Logger) (repository.DocumentStore, func(), error) {
	switch cfg.Store.Driver {
	case config.StoreDriverMongo:
		db, err := database.NewMongo(ctx, cfg.Mongo)
		if err != nil {
			return nil, nil, err
		}
		return repository.NewMongoDocumentStore(db), func() {
			_ = db.Client().Disconnect(context.Background())
		}, nil
	case config.StoreDriverMemory:
		logr.Warn("using in-memory document store; data is lost on restart")
		return repository.NewMemoryDocumentStore(), func() {}, nil
	default:
		db, err := database.NewPostgres(cfg.Database)
		if err != nil {
			return nil, nil, err
		}
		if err := database.EnsureDocumentSchema(ctx, db); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		return repository.NewPostgresDocumentStore(db), func() { _ = db.Close() }, nil
	}
}

// openBlobStore returns the media backend and, for local storage, the
// directory to serve statically.
func openBlobStore(ctx context.Context, cfg *config.Config) (service.BlobStore, string, error) {
	if cfg.Media.Driver == config.BlobDriverS3 {
		s3Store, err := storage.NewS3Storage(ctx, cfg.S3)
		if err != nil {
			return nil, "", err
		}
		return s3Store, "", nil
	}
	local, err := storage.NewLocalStorage(cfg.Media.StorageDir, cfg.Media.BaseURL)
	if err != nil {
		return nil, "", err
	}
	return local, local.Dir(), nil
}

func newMailer(cfg *config.Config, logr *zap.Logger) notify.Mailer {
	if cfg.Notifications.SendGridAPIKey == "" {
		logr.Warn("SENDGRID_API_KEY not set, notifications are logged only")
		return notify.LogMailer{Logger: logr}
	}
	mailer, err := notify.NewSendGridMailer(cfg.Notifications.SendGridAPIKey, cfg.Notifications.FromName, cfg.Notifications.FromEmail)
	if err != nil {
		logr.Sugar().Warnw("sendgrid mailer unavailable, notifications are logged only", "error", err)
		return notify.LogMailer{Logger: logr}
	}
	return mailer
}
