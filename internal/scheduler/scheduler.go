package scheduler

import (
	"context"
	"os"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"brokerage/server/internal/models"
)

// Refresher recomputes and stores the dashboard snapshot.
type Refresher interface {
	Refresh(ctx context.Context) (models.DashboardSnapshot, error)
}

// Scheduler keeps the cached dashboard snapshot warm
type Scheduler struct {
	refresher Refresher
	interval  time.Duration
	logger    *logrus.Logger
	stopChan  chan struct{}
	stopOnce  sync.Once
	wg        sync.WaitGroup
	jobMutex  sync.Mutex // Ensures refreshes never overlap
	runs      int
	failures  int
}

// NewScheduler creates a new scheduler
func NewScheduler(refresher Refresher, interval time.Duration, logger *logrus.Logger) *Scheduler {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
		logger.SetOutput(os.Stdout)
		logger.SetLevel(logrus.InfoLevel)
	}

	return &Scheduler{
		refresher: refresher,
		interval:  interval,
		logger:    logger,
		stopChan:  make(chan struct{}),
	}
}

// Start runs a refresh immediately and then on every tick
func (s *Scheduler) Start() {
	if s.interval <= 0 {
		s.logger.Info("Dashboard refresh disabled")
		return
	}
	s.wg.Add(1)
	go s.runScheduler()
}

func (s *Scheduler) runScheduler() {
	defer s.wg.Done()

	s.runRefresh()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.runRefresh()
		}
	}
}

func (s *Scheduler) runRefresh() {
	s.jobMutex.Lock()
	defer s.jobMutex.Unlock()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		select {
		case <-s.stopChan:
			cancel()
		case <-ctx.Done():
		}
	}()

	start := time.Now()
	snap, err := s.refresher.Refresh(ctx)
	s.runs++
	if err != nil {
		s.failures++
		s.logger.WithError(err).Warn("Scheduled dashboard refresh failed")
		return
	}

	s.logger.WithFields(logrus.Fields{
		"duration":   time.Since(start).String(),
		"properties": snap.Summary.TotalProperties,
		"leads":      snap.Summary.TotalLeads,
	}).Info("Refreshed dashboard snapshot")
}

// Runs returns how many refreshes ran and how many of them failed
func (s *Scheduler) Runs() (runs, failures int) {
	s.jobMutex.Lock()
	defer s.jobMutex.Unlock()
	return s.runs, s.failures
}

// Stop gracefully stops the scheduler
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() { close(s.stopChan) })
	s.wg.Wait()
}
