package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/njprem/TravelReel_BackEnd/internal/config"
	"github.com/njprem/TravelReel_BackEnd/internal/logging"
	"github.com/njprem/TravelReel_BackEnd/internal/media"
	"github.com/njprem/TravelReel_BackEnd/internal/repository/minio"
	"github.com/njprem/TravelReel_BackEnd/internal/repository/ports"
	"github.com/njprem/TravelReel_BackEnd/internal/repository/postgres"
	"github.com/njprem/TravelReel_BackEnd/internal/repository/redis"
	"github.com/njprem/TravelReel_BackEnd/internal/service"
	"github.com/njprem/TravelReel_BackEnd/internal/supervisor"
	"github.com/njprem/TravelReel_BackEnd/internal/supervisor/services"
	transporthttp "github.com/njprem/TravelReel_BackEnd/internal/transport/http"
	"github.com/njprem/TravelReel_BackEnd/internal/util"
)

func main() {
	cfg := config.Load()

	logger, logCloser := logging.New(logging.Options{
		Level:        cfg.LogLevel,
		Format:       cfg.LogFormat,
		Service:      "travelreel-api",
		LogstashAddr: cfg.LogstashTCPAddr,
	})
	defer logCloser.Close()
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := postgres.New(cfg.DatabaseURL, postgres.PoolConfig{
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxLifetime: 30 * time.Minute,
	})
	if err != nil {
		log.Fatalf("connect database: %v", err)
	}
	defer db.Close()

	minioClient, err := minio.NewClient(cfg.MinIOEndpoint, cfg.MinIOAccessKey, cfg.MinIOSecretKey, cfg.MinIOUseSSL)
	if err != nil {
		log.Fatalf("connect object storage: %v", err)
	}
	storage := minio.NewStorage(minioClient, cfg.MinIOPublicURL)
	if err := storage.EnsureBuckets(ctx, cfg.MinIOBucketVideos, cfg.MinIOBucketImages); err != nil {
		log.Fatalf("ensure buckets: %v", err)
	}

	// Without Redis every replica recomputes trending on its own schedule.
	var locker ports.JobLocker
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		defer redisClient.Close()
		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.Warn("redis unavailable, trending lock disabled", slog.Any("error", err))
		} else {
			locker = redis.NewLocker(redisClient)
		}
	}

	accountRepo := postgres.NewAccountRepo(db)
	sessionRepo := postgres.NewSessionRepo(db)
	destinationRepo := postgres.NewDestinationRepo(db)
	postRepo := postgres.NewPostRepo(db)
	commentRepo := postgres.NewCommentRepo(db)
	preferenceRepo := postgres.NewPreferenceRepo(db)
	tagRepo := postgres.NewTagRepo(db)
	ledger := postgres.NewLedger(db)

	thumbnailer := media.NewFFMPEGThumbnailer(cfg.FFMPEGPath, cfg.ThumbnailMaxDimension)
	listLimits := service.PageLimits{Default: cfg.ListDefaultPageSize, Max: cfg.ListMaxPageSize}
	feedLimits := service.PageLimits{Default: cfg.FeedDefaultPageSize, Max: cfg.FeedMaxPageSize}

	jwtManager := util.NewJWTManager(cfg.JWTSecret, cfg.SessionTTL)
	authSvc := service.NewAuthService(accountRepo, sessionRepo, jwtManager, cfg.GoogleAudience)
	accountSvc := service.NewAccountService(accountRepo, storage, service.AccountServiceConfig{
		ImageBucket:   cfg.MinIOBucketImages,
		ImageMaxBytes: cfg.ThumbnailMaxBytes,
		Thumbnailer:   thumbnailer,
	})
	destinationSvc := service.NewDestinationService(destinationRepo, storage, service.DestinationServiceConfig{
		ImageBucket:   cfg.MinIOBucketImages,
		ImageMaxBytes: cfg.ThumbnailMaxBytes,
		Thumbnailer:   thumbnailer,
		Limits:        listLimits,
	})
	feedSvc := service.NewFeedService(postRepo, preferenceRepo, feedLimits)
	postSvc := service.NewPostService(postRepo, commentRepo, destinationRepo, ledger, storage, feedSvc, logger, service.PostServiceConfig{
		VideoBucket:       cfg.MinIOBucketVideos,
		VideoMaxBytes:     cfg.VideoMaxBytes,
		ImageBucket:       cfg.MinIOBucketImages,
		ThumbnailMaxBytes: cfg.ThumbnailMaxBytes,
		Thumbnailer:       thumbnailer,
		Limits:            listLimits,
	})
	engagementSvc := service.NewEngagementService(ledger, postRepo, accountRepo, commentRepo, listLimits)
	preferenceSvc := service.NewPreferenceService(preferenceRepo)
	searchSvc := service.NewSearchService(postgres.NewSearchRepo(db), postRepo, cfg.SearchResultLimit)
	tagSvc := service.NewTagService(tagRepo, listLimits)
	trendingSvc := service.NewTrendingService(postgres.NewTrendingRepo(db), locker, logger, service.TrendingServiceConfig{
		Interval: cfg.TrendingInterval,
		LockTTL:  cfg.TrendingLockTTL,
		Limits:   listLimits,
	})

	e := transporthttp.NewRouter(transporthttp.RouterConfig{
		AllowOrigins: cfg.AllowOrigins,
		RateLimitRPS: cfg.RateLimitRPS,
		Logger:       logger,
	})
	transporthttp.RegisterAuth(e, authSvc)
	transporthttp.RegisterUsers(e, authSvc, accountSvc, engagementSvc, preferenceSvc)
	transporthttp.RegisterDestinations(e, authSvc, destinationSvc, trendingSvc)
	transporthttp.RegisterPosts(e, authSvc, postSvc, engagementSvc)
	transporthttp.RegisterDiscovery(e, authSvc, feedSvc, searchSvc, tagSvc)
	transporthttp.RegisterSwagger(e, "docs/swagger.yaml")

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           e,
		ReadHeaderTimeout: 10 * time.Second,
	}

	tree := supervisor.NewTree(logger, supervisor.DefaultTreeConfig())
	tree.AddJob(trendingSvc)
	tree.AddAPIService(services.NewHTTPServerService(server, 15*time.Second))

	logger.Info("travelreel api listening", slog.String("addr", server.Addr))
	if err := tree.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("supervisor stopped", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("travelreel api stopped")
}
