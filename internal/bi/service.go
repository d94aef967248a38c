package bi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"brokerage/server/internal/analytics"
	"brokerage/server/internal/cache"
	"brokerage/server/internal/models"
)

// RecordStore is the read side of a record database.
type RecordStore interface {
	ListProperties(ctx context.Context) ([]models.PropertyRecord, error)
	ListClients(ctx context.Context) ([]models.ClientRecord, error)
	ListLeads(ctx context.Context) ([]models.LeadRecord, error)
	Ping(ctx context.Context) error
}

type Source string

const (
	SourceLive     Source = "live"
	SourceCache    Source = "cache"
	SourceFallback Source = "fallback"
)

// DashboardResult always carries a well-formed snapshot. Failure is set only for fallback data.
type DashboardResult struct {
	Snapshot models.DashboardSnapshot
	Source   Source
	Failure  *Failure
}

type Options struct {
	FetchTimeout time.Duration
	CacheTTL     time.Duration
	Bands        []analytics.PriceBand
	RecentSales  int
}

const defaultFetchTimeout = 15 * time.Second

var dashboardCacheKey = cache.Key("bi", "dashboard")

type Service struct {
	store  RecordStore
	cache  cache.Cache
	opts   Options
	logger *logrus.Logger
	group  singleflight.Group
	now    func() time.Time
}

// NewService builds the dashboard service. snapshots may be nil to disable caching.
func NewService(store RecordStore, snapshots cache.Cache, opts Options, logger *logrus.Logger) *Service {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
		logger.SetOutput(os.Stdout)
	}
	if opts.FetchTimeout <= 0 {
		opts.FetchTimeout = defaultFetchTimeout
	}
	return &Service{
		store:  store,
		cache:  snapshots,
		opts:   opts,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Dashboard returns the current snapshot. Store failures and timeouts degrade to the
// fallback snapshot instead of an error.
func (s *Service) Dashboard(ctx context.Context) DashboardResult {
	if snap, ok := s.cached(ctx); ok {
		return DashboardResult{Snapshot: snap, Source: SourceCache}
	}

	// Identical concurrent requests share one fetch; it must outlive any single caller.
	detached := context.WithoutCancel(ctx)
	v, _, _ := s.group.Do(dashboardCacheKey, func() (interface{}, error) {
		snap, err := s.compute(detached)
		if err != nil {
			failure := classify(err)
			s.logger.WithFields(logrus.Fields{
				"kind":  failure.Kind,
				"error": failure.Message,
			}).Warn("Serving fallback dashboard snapshot")
			return DashboardResult{Snapshot: FallbackSnapshot(s.now()), Source: SourceFallback, Failure: failure}, nil
		}
		s.save(detached, snap)
		return DashboardResult{Snapshot: snap, Source: SourceLive}, nil
	})
	return v.(DashboardResult)
}

// Refresh recomputes the snapshot and replaces the cached copy.
func (s *Service) Refresh(ctx context.Context) (models.DashboardSnapshot, error) {
	snap, err := s.compute(ctx)
	if err != nil {
		return models.DashboardSnapshot{}, classify(err)
	}
	s.save(ctx, snap)
	return snap, nil
}

// Properties returns the normalized property list under the fetch deadline.
func (s *Service) Properties(ctx context.Context) ([]models.Property, error) {
	ctx, cancel := context.WithTimeout(ctx, s.opts.FetchTimeout)
	defer cancel()

	records, err := s.store.ListProperties(ctx)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			err = fmt.Errorf("%w after %s: %v", ErrTimeout, s.opts.FetchTimeout, err)
		}
		return nil, classify(fmt.Errorf("failed to fetch properties: %w", err))
	}
	return analytics.NormalizeProperties(records), nil
}

// Ping reports whether the record store is reachable.
func (s *Service) Ping(ctx context.Context) error {
	if err := s.store.Ping(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

// CachingEnabled reports whether snapshots are kept between requests.
func (s *Service) CachingEnabled() bool {
	return s.cache != nil && s.opts.CacheTTL > 0
}

// compute fetches all record sets concurrently under the fetch deadline. The first
// failure cancels the remaining fetches; the deadline is enforced even against a store
// that ignores its context.
func (s *Service) compute(ctx context.Context) (models.DashboardSnapshot, error) {
	ctx, cancel := context.WithTimeout(ctx, s.opts.FetchTimeout)
	defer cancel()

	var (
		properties []models.PropertyRecord
		clients    []models.ClientRecord
		leads      []models.LeadRecord
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		records, err := s.store.ListProperties(gctx)
		if err != nil {
			return fmt.Errorf("failed to fetch properties: %w", err)
		}
		properties = records
		return nil
	})
	g.Go(func() error {
		records, err := s.store.ListClients(gctx)
		if err != nil {
			return fmt.Errorf("failed to fetch clients: %w", err)
		}
		clients = records
		return nil
	})
	g.Go(func() error {
		records, err := s.store.ListLeads(gctx)
		if err != nil {
			return fmt.Errorf("failed to fetch leads: %w", err)
		}
		leads = records
		return nil
	})

	done := make(chan error, 1)
	go func() { done <- g.Wait() }()

	var err error
	select {
	case err = <-done:
	case <-ctx.Done():
		select {
		case err = <-done:
		default:
			return models.DashboardSnapshot{}, fmt.Errorf("%w after %s", ErrTimeout, s.opts.FetchTimeout)
		}
	}
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return models.DashboardSnapshot{}, fmt.Errorf("%w after %s: %v", ErrTimeout, s.opts.FetchTimeout, err)
		}
		return models.DashboardSnapshot{}, err
	}

	s.logger.WithFields(logrus.Fields{
		"properties": len(properties),
		"clients":    len(clients),
		"leads":      len(leads),
	}).Debug("Fetched dashboard records")

	return analytics.Aggregate(
		analytics.NormalizeProperties(properties),
		analytics.NormalizeClients(clients),
		analytics.NormalizeLeads(leads),
		analytics.Options{Bands: s.opts.Bands, RecentSales: s.opts.RecentSales, Now: s.now()},
	), nil
}

func (s *Service) cached(ctx context.Context) (models.DashboardSnapshot, bool) {
	var snap models.DashboardSnapshot
	if !s.CachingEnabled() {
		return snap, false
	}
	data, ok, err := s.cache.Get(ctx, dashboardCacheKey)
	if err != nil {
		s.logger.WithError(err).Warn("Failed to read cached dashboard snapshot")
		return snap, false
	}
	if !ok {
		return snap, false
	}
	if err := json.Unmarshal(data, &snap); err != nil {
		s.logger.WithError(err).Warn("Discarding unreadable cached dashboard snapshot")
		return snap, false
	}
	return snap, true
}

func (s *Service) save(ctx context.Context, snap models.DashboardSnapshot) {
	if !s.CachingEnabled() {
		return
	}
	data, err := json.Marshal(snap)
	if err != nil {
		s.logger.WithError(err).Error("Failed to encode dashboard snapshot")
		return
	}
	if err := s.cache.Set(ctx, dashboardCacheKey, data, s.opts.CacheTTL); err != nil {
		s.logger.WithError(err).Warn("Failed to cache dashboard snapshot")
	}
}
