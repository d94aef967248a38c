package processor

import (
	"context"
	"fmt"
	"os"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"brokerage/server/config"
	"brokerage/server/internal/models"
	"brokerage/server/internal/queue"
	"brokerage/server/internal/seed"
)

// Stats counts batches handled since start.
type Stats struct {
	Processed int64 `json:"processed"`
	Failed    int64 `json:"failed"`
	Records   int64 `json:"records"`
	Queued    int   `json:"queued"`
	Accepting bool  `json:"accepting"`
}

// BatchProcessor writes record batches from the queue to the store
type BatchProcessor struct {
	writer    seed.Writer
	logger    *logrus.Logger
	config    *config.Config
	queue     *queue.RecordQueue
	ctx       context.Context
	cancel    context.CancelFunc
	processed atomic.Int64
	failed    atomic.Int64
	records   atomic.Int64
}

// NewBatchProcessor creates a new batch processor instance
func NewBatchProcessor(writer seed.Writer, queue *queue.RecordQueue, config *config.Config, logger *logrus.Logger) *BatchProcessor {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
		logger.SetOutput(os.Stdout)
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &BatchProcessor{
		writer: writer,
		queue:  queue,
		config: config,
		logger: logger,
		ctx:    ctx,
		cancel: cancel,
	}
}

// Start subscribes to the queue and launches the configured number of workers
func (p *BatchProcessor) Start() {
	p.queue.Subscribe(p.processBatch)
	p.queue.Start(p.config.BatchProcessing.ProcessorCount)
}

// Stop aborts pending retries and waits for the workers to exit
func (p *BatchProcessor) Stop() {
	p.cancel()
	p.queue.Close()
}

// Drain waits for every queued batch to be written, then stops the workers. Once timeout
// elapses pending retries are aborted and the remaining batches are counted as failed.
func (p *BatchProcessor) Drain(timeout time.Duration) {
	if timeout > 0 {
		timer := time.AfterFunc(timeout, func() {
			p.logger.WithFields(logrus.Fields{
				"timeout": timeout.String(),
				"queued":  p.queue.Len(),
			}).Warn("Import drain timed out, abandoning queued batches")
			p.cancel()
		})
		defer timer.Stop()
	}
	p.queue.Close()
	p.cancel()
}

// Enqueue pushes batches until the queue refuses one. It returns how many were accepted.
func (p *BatchProcessor) Enqueue(batches []models.RecordBatch) (int, error) {
	for i, batch := range batches {
		if err := p.queue.Push(batch); err != nil {
			return i, fmt.Errorf("failed to enqueue batch %d of %d: %w", i+1, len(batches), err)
		}
	}
	return len(batches), nil
}

func (p *BatchProcessor) Stats() Stats {
	return Stats{
		Processed: p.processed.Load(),
		Failed:    p.failed.Load(),
		Records:   p.records.Load(),
		Queued:    p.queue.Len(),
		Accepting: !p.queue.IsClosed(),
	}
}

// processBatch handles a single batch with retry logic; the store wraps each attempt in a transaction
func (p *BatchProcessor) processBatch(batch models.RecordBatch) error {
	maxRetries := p.config.BatchProcessing.MaxRetries
	delay := time.Duration(p.config.BatchProcessing.RetryDelay) * time.Second

	if p.ctx.Err() != nil {
		p.failed.Add(1)
		return fmt.Errorf("batch processing stopped: %w", p.ctx.Err())
	}

	var err error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			p.logger.Infof("Retrying batch processing, attempt %d of %d", attempt, maxRetries)
			select {
			case <-p.ctx.Done():
				p.failed.Add(1)
				return fmt.Errorf("batch processing stopped: %w", p.ctx.Err())
			case <-time.After(delay):
			}
		}

		err = p.writer.UpsertBatch(p.ctx, batch)
		if err == nil {
			p.processed.Add(1)
			p.records.Add(int64(batch.Len()))
			p.logger.WithField("records", batch.Len()).Info("Successfully processed record batch")
			return nil
		}

		p.logger.WithError(err).Error("Batch processing failed")
		if p.ctx.Err() != nil {
			break
		}
	}

	p.failed.Add(1)
	return fmt.Errorf("failed to process batch after %d attempts: %w", maxRetries+1, err)
}
