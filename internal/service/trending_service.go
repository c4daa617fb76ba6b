package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/njprem/TravelReel_BackEnd/internal/domain"
	"github.com/njprem/TravelReel_BackEnd/internal/metrics"
	"github.com/njprem/TravelReel_BackEnd/internal/repository/ports"
)

const trendingLockKey = "trending-recompute"

type TrendingServiceConfig struct {
	Weights  domain.TrendingWeights
	Interval time.Duration
	LockTTL  time.Duration
	Limits   PageLimits
}

// TrendingService maintains the trending_destination cache.
type TrendingService struct {
	repo    ports.TrendingRepository
	locker  ports.JobLocker
	logger  *slog.Logger
	weights domain.TrendingWeights
	every   time.Duration
	lockTTL time.Duration
	limits  PageLimits
	now     func() time.Time
}

// NewTrendingService accepts a nil locker for single-replica deployments.
func NewTrendingService(repo ports.TrendingRepository, locker ports.JobLocker, logger *slog.Logger, cfg TrendingServiceConfig) *TrendingService {
	weights := cfg.Weights
	if weights == (domain.TrendingWeights{}) {
		weights = domain.DefaultTrendingWeights
	}
	every := cfg.Interval
	if every <= 0 {
		every = 15 * time.Minute
	}
	lockTTL := cfg.LockTTL
	if lockTTL <= 0 {
		lockTTL = every
	}
	return &TrendingService{
		repo:    repo,
		locker:  locker,
		logger:  logger,
		weights: weights,
		every:   every,
		lockTTL: lockTTL,
		limits:  cfg.Limits,
		now:     time.Now,
	}
}

// Recompute rewrites every destination's trending row from current activity.
// It reports false when another replica holds the recompute lock.
func (s *TrendingService) Recompute(ctx context.Context) (int, bool, error) {
	if s.locker != nil {
		release, ok, err := s.locker.TryLock(ctx, trendingLockKey, s.lockTTL)
		if err != nil {
			metrics.TrendingRuns.WithLabelValues("error").Inc()
			return 0, false, err
		}
		if !ok {
			metrics.TrendingRuns.WithLabelValues("skipped").Inc()
			return 0, false, nil
		}
		defer func() {
			if err := release(context.WithoutCancel(ctx)); err != nil {
				s.logger.Warn("trending: release lock", slog.Any("error", err))
			}
		}()
	}

	start := time.Now()
	defer metrics.ObserveSince(metrics.TrendingDuration, start)

	now := s.now()
	activity, err := s.repo.Activity(ctx, now.Add(-domain.TrendingWindow), now.Add(-7*24*time.Hour))
	if err != nil {
		metrics.TrendingRuns.WithLabelValues("error").Inc()
		return 0, true, err
	}
	rows := make([]domain.TrendingDestination, 0, len(activity))
	for _, a := range activity {
		rows = append(rows, domain.ComputeTrending(a, s.weights, now))
	}
	if err := s.repo.Upsert(ctx, rows); err != nil {
		metrics.TrendingRuns.WithLabelValues("error").Inc()
		return 0, true, err
	}
	metrics.TrendingRuns.WithLabelValues("ok").Inc()
	return len(rows), true, nil
}

// Serve recomputes at start and then on every tick until ctx ends. Failures
// are logged and retried on the next tick.
func (s *TrendingService) Serve(ctx context.Context) error {
	s.runOnce(ctx)

	ticker := time.NewTicker(s.every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.runOnce(ctx)
		}
	}
}

func (s *TrendingService) String() string {
	return "trending-scheduler"
}

func (s *TrendingService) runOnce(ctx context.Context) {
	n, ran, err := s.Recompute(ctx)
	switch {
	case err != nil:
		s.logger.Error("trending recompute failed", slog.Any("error", err))
	case !ran:
		s.logger.Debug("trending recompute skipped, lock held elsewhere")
	default:
		s.logger.Info("trending recompute done", slog.Int("destinations", n))
	}
}

func (s *TrendingService) List(ctx context.Context, page domain.Page) (*domain.PageResult[domain.TrendingDestination], error) {
	page = s.limits.normalize(page)
	rows, err := s.repo.List(ctx, page.Size, page.Offset())
	if err != nil {
		return nil, err
	}
	total, err := s.repo.Count(ctx)
	if err != nil {
		return nil, err
	}
	return &domain.PageResult[domain.TrendingDestination]{
		Items:    rows,
		Total:    total,
		Page:     page.Number,
		PageSize: page.Size,
	}, nil
}
