package processor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"brokerage/server/config"
	"brokerage/server/internal/models"
	"brokerage/server/internal/queue"
)

// MockWriter is a mock implementation of seed.Writer
type MockWriter struct {
	mock.Mock
}

func (m *MockWriter) UpsertBatch(ctx context.Context, batch models.RecordBatch) error {
	args := m.Called(ctx, batch)
	return args.Error(0)
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.BatchProcessing.ProcessorCount = 2
	cfg.BatchProcessing.MaxRetries = 3
	cfg.BatchProcessing.RetryDelay = 0
	return cfg
}

func testBatch() models.RecordBatch {
	return models.RecordBatch{
		Properties: []models.PropertyRecord{{ID: "p1"}, {ID: "p2"}},
		Leads:      []models.LeadRecord{{ID: "l1"}},
	}
}

func TestNewBatchProcessor(t *testing.T) {
	// Setup
	mockWriter := &MockWriter{}
	recordQueue := queue.NewRecordQueue(10, logrus.New())
	cfg := testConfig()
	logger := logrus.New()

	// Test
	processor := NewBatchProcessor(mockWriter, recordQueue, cfg, logger)

	// Assert
	assert.NotNil(t, processor)
	assert.Equal(t, mockWriter, processor.writer)
	assert.Equal(t, recordQueue, processor.queue)
	assert.Equal(t, cfg, processor.config)
	assert.Equal(t, logger, processor.logger)
}

func TestBatchProcessor_ProcessBatch(t *testing.T) {
	// Setup
	mockWriter := &MockWriter{}
	processor := NewBatchProcessor(mockWriter, queue.NewRecordQueue(10, logrus.New()), testConfig(), logrus.New())
	batch := testBatch()

	// Test successful processing
	mockWriter.On("UpsertBatch", mock.Anything, batch).Return(nil).Once()
	err := processor.processBatch(batch)
	assert.NoError(t, err)

	// Test retry on failure
	mockWriter.On("UpsertBatch", mock.Anything, batch).Return(errors.New("db error")).Times(4)
	err = processor.processBatch(batch)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to process batch after 4 attempts")
	mockWriter.AssertExpectations(t)

	stats := processor.Stats()
	assert.Equal(t, int64(1), stats.Processed)
	assert.Equal(t, int64(1), stats.Failed)
	assert.Equal(t, int64(3), stats.Records)
}

func TestBatchProcessor_RecoversOnRetry(t *testing.T) {
	mockWriter := &MockWriter{}
	processor := NewBatchProcessor(mockWriter, queue.NewRecordQueue(10, logrus.New()), testConfig(), logrus.New())
	batch := testBatch()

	mockWriter.On("UpsertBatch", mock.Anything, batch).Return(errors.New("database is locked")).Once()
	mockWriter.On("UpsertBatch", mock.Anything, batch).Return(nil).Once()

	assert.NoError(t, processor.processBatch(batch))
	mockWriter.AssertNumberOfCalls(t, "UpsertBatch", 2)
}

func TestBatchProcessor_StopAbortsRetryWait(t *testing.T) {
	mockWriter := &MockWriter{}
	cfg := testConfig()
	cfg.BatchProcessing.RetryDelay = 60
	processor := NewBatchProcessor(mockWriter, queue.NewRecordQueue(10, logrus.New()), cfg, logrus.New())

	attempted := make(chan struct{}, 1)
	mockWriter.On("UpsertBatch", mock.Anything, mock.Anything).Run(func(mock.Arguments) {
		select {
		case attempted <- struct{}{}:
		default:
		}
	}).Return(errors.New("db error"))

	processor.Start()
	_, err := processor.Enqueue([]models.RecordBatch{testBatch()})
	require.NoError(t, err)
	<-attempted

	done := make(chan struct{})
	go func() {
		processor.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop did not interrupt the retry delay")
	}
	assert.Equal(t, int64(1), processor.Stats().Failed)
}

func TestBatchProcessor_DrainTimeout(t *testing.T) {
	mockWriter := &MockWriter{}
	cfg := testConfig()
	cfg.BatchProcessing.ProcessorCount = 1
	cfg.BatchProcessing.RetryDelay = 60
	processor := NewBatchProcessor(mockWriter, queue.NewRecordQueue(10, logrus.New()), cfg, logrus.New())

	mockWriter.On("UpsertBatch", mock.Anything, mock.Anything).Return(errors.New("db error"))

	processor.Start()
	n, err := processor.Enqueue([]models.RecordBatch{testBatch(), testBatch(), testBatch()})
	require.NoError(t, err)
	require.Equal(t, 3, n)

	done := make(chan struct{})
	go func() {
		processor.Drain(100 * time.Millisecond)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Drain did not give up after its timeout")
	}

	stats := processor.Stats()
	assert.Equal(t, int64(3), stats.Failed)
	assert.Equal(t, int64(0), stats.Processed)
	assert.False(t, stats.Accepting)
	// Batches still queued at the deadline are not written
	mockWriter.AssertNumberOfCalls(t, "UpsertBatch", 1)
}

func TestBatchProcessor_DrainWritesQueued(t *testing.T) {
	mockWriter := &MockWriter{}
	processor := NewBatchProcessor(mockWriter, queue.NewRecordQueue(10, logrus.New()), testConfig(), logrus.New())
	mockWriter.On("UpsertBatch", mock.Anything, mock.Anything).Return(nil)

	processor.Start()
	assert.True(t, processor.Stats().Accepting)
	_, err := processor.Enqueue([]models.RecordBatch{testBatch(), testBatch()})
	require.NoError(t, err)

	processor.Drain(5 * time.Second)

	stats := processor.Stats()
	assert.Equal(t, int64(2), stats.Processed)
	assert.Equal(t, int64(6), stats.Records)
	assert.False(t, stats.Accepting)
}

func TestBatchProcessor_EnqueueFull(t *testing.T) {
	processor := NewBatchProcessor(&MockWriter{}, queue.NewRecordQueue(1, logrus.New()), testConfig(), logrus.New())

	n, err := processor.Enqueue([]models.RecordBatch{testBatch(), testBatch()})
	assert.Equal(t, 1, n)
	assert.ErrorIs(t, err, queue.ErrQueueFull)
	assert.Equal(t, 1, processor.Stats().Queued)
}

func TestBatchProcessor_StartStop(t *testing.T) {
	// Setup
	recordQueue := queue.NewRecordQueue(10, logrus.New())
	processor := NewBatchProcessor(&MockWriter{}, recordQueue, testConfig(), logrus.New())

	// Test Start
	processor.Start()

	// Test Stop
	processor.Stop()
	assert.True(t, recordQueue.IsClosed())

	_, err := processor.Enqueue([]models.RecordBatch{testBatch()})
	assert.ErrorIs(t, err, queue.ErrQueueClosed)
}
