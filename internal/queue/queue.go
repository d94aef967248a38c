package queue

import (
	"errors"
	"os"
	"sync"

	"github.com/sirupsen/logrus"

	"brokerage/server/internal/models"
)

var (
	ErrQueueFull   = errors.New("queue is full")
	ErrQueueClosed = errors.New("queue is closed")
)

// RecordQueue represents an in-memory queue for record batches
type RecordQueue struct {
	items    chan models.RecordBatch
	maxSize  int
	closed   bool
	mu       sync.RWMutex
	wg       sync.WaitGroup
	logger   *logrus.Logger
	handlers []func(models.RecordBatch) error
}

// NewRecordQueue creates a new record queue with the specified buffer size
func NewRecordQueue(bufferSize int, logger *logrus.Logger) *RecordQueue {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
		logger.SetOutput(os.Stdout)
	}
	return &RecordQueue{
		items:    make(chan models.RecordBatch, bufferSize),
		maxSize:  bufferSize,
		logger:   logger,
		handlers: make([]func(models.RecordBatch) error, 0),
	}
}

// Push adds a batch to the queue without blocking
func (q *RecordQueue) Push(batch models.RecordBatch) error {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		return ErrQueueClosed
	}

	select {
	case q.items <- batch:
		q.logger.WithField("batch_size", batch.Len()).Debug("Pushed batch to queue")
		return nil
	default:
		return ErrQueueFull
	}
}

// Subscribe adds a handler function that will be called for each batch
func (q *RecordQueue) Subscribe(handler func(models.RecordBatch) error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.handlers = append(q.handlers, handler)
}

// Start launches workers that drain the queue until it is closed
func (q *RecordQueue) Start(workers int) {
	if workers < 1 {
		workers = 1
	}
	for i := 0; i < workers; i++ {
		q.wg.Add(1)
		go q.process()
	}
}

func (q *RecordQueue) process() {
	defer q.wg.Done()
	for batch := range q.items {
		q.processBatch(batch)
	}
}

// processBatch sends the batch to all subscribed handlers
func (q *RecordQueue) processBatch(batch models.RecordBatch) {
	q.mu.RLock()
	handlers := q.handlers
	q.mu.RUnlock()

	for _, handler := range handlers {
		if err := handler(batch); err != nil {
			q.logger.WithError(err).Error("Handler failed to process batch")
		}
	}
}

// Close stops accepting batches and waits for queued ones to be handled
func (q *RecordQueue) Close() error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return nil
	}
	q.closed = true
	close(q.items)
	q.mu.Unlock()

	q.wg.Wait()
	return nil
}

// Len returns the current number of batches in the queue
func (q *RecordQueue) Len() int {
	return len(q.items)
}

// IsClosed returns whether the queue has been closed
func (q *RecordQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}
