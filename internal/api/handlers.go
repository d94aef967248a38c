package api

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"brokerage/server/config"
	"brokerage/server/internal/bi"
	"brokerage/server/internal/insights"
	"brokerage/server/internal/models"
	"brokerage/server/internal/processor"
)

// RecordCounter reports table sizes for the admin endpoints.
type RecordCounter interface {
	Counts(ctx context.Context) (models.RecordCounts, error)
}

// Response is the envelope every BI and admin endpoint answers with.
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Source  bi.Source   `json:"source,omitempty"`
	Failure *bi.Failure `json:"failure,omitempty"`
}

type Handler struct {
	service   *bi.Service
	pricer    *bi.Pricer
	insights  *insights.Service
	processor *processor.BatchProcessor
	records   RecordCounter
	markets   []config.Market
	batchSize int
	logger    *logrus.Logger
	started   time.Time
}

type Dependencies struct {
	Service   *bi.Service
	Pricer    *bi.Pricer
	Insights  *insights.Service
	Processor *processor.BatchProcessor
	Records   RecordCounter
	Markets   []config.Market
	BatchSize int
}

func NewHandler(deps Dependencies, logger *logrus.Logger) *Handler {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
		logger.SetOutput(os.Stdout)
	}

	return &Handler{
		service:   deps.Service,
		pricer:    deps.Pricer,
		insights:  deps.Insights,
		processor: deps.Processor,
		records:   deps.Records,
		markets:   deps.Markets,
		batchSize: deps.BatchSize,
		logger:    logger,
		started:   time.Now(),
	}
}

// Health is a liveness probe; a store outage is reported but does not fail it.
func (h *Handler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	store := "up"
	if err := h.service.Ping(ctx); err != nil {
		h.logger.WithError(err).Warn("Record store ping failed")
		store = "down"
	}

	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"store":     store,
		"timestamp": time.Now().UTC(),
		"uptime":    time.Since(h.started).Round(time.Second).String(),
	})
}
