package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"brokerage/server/internal/bi"
	"brokerage/server/internal/queue"
	"brokerage/server/internal/seed"
)

const (
	defaultSeedProperties = 50
	defaultSeedClients    = 30
	defaultSeedLeads      = 40
)

func queryInt(c *gin.Context, key string, fallback int) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return fallback, nil
	}
	return strconv.Atoi(raw)
}

// Seed generates demo records and queues them for the batch processor.
func (h *Handler) Seed(c *gin.Context) {
	var counts seed.Counts
	var err error
	if counts.Properties, err = queryInt(c, "properties", defaultSeedProperties); err != nil {
		c.JSON(http.StatusBadRequest, Response{Error: "properties must be an integer"})
		return
	}
	if counts.Clients, err = queryInt(c, "clients", defaultSeedClients); err != nil {
		c.JSON(http.StatusBadRequest, Response{Error: "clients must be an integer"})
		return
	}
	if counts.Leads, err = queryInt(c, "leads", defaultSeedLeads); err != nil {
		c.JSON(http.StatusBadRequest, Response{Error: "leads must be an integer"})
		return
	}
	if err := counts.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, Response{Error: err.Error()})
		return
	}

	seedValue := time.Now().UnixNano()
	if raw := c.Query("seed"); raw != "" {
		if seedValue, err = strconv.ParseInt(raw, 10, 64); err != nil {
			c.JSON(http.StatusBadRequest, Response{Error: "seed must be an integer"})
			return
		}
	}

	batches := seed.NewGenerator(seedValue, time.Now()).Batches(counts, h.batchSize)
	queued, err := h.processor.Enqueue(batches)
	if err != nil {
		h.logger.WithError(err).WithField("queued", queued).Warn("Seed request only partially queued")
		status := http.StatusInternalServerError
		if errors.Is(err, queue.ErrQueueFull) || errors.Is(err, queue.ErrQueueClosed) {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, Response{
			Error: "Import queue is unavailable, try again later",
			Data:  gin.H{"batches": queued, "requested": len(batches)},
		})
		return
	}

	h.logger.WithFields(logrus.Fields{
		"properties": counts.Properties,
		"clients":    counts.Clients,
		"leads":      counts.Leads,
		"batches":    queued,
		"seed":       seedValue,
	}).Info("Queued demo records")

	c.JSON(http.StatusAccepted, Response{
		Success: true,
		Data: gin.H{
			"batches": queued,
			"records": counts.Properties + counts.Clients + counts.Leads,
			"seed":    seedValue,
		},
	})
}

// Records reports table sizes and import progress.
func (h *Handler) Records(c *gin.Context) {
	counts, err := h.records.Counts(c.Request.Context())
	if err != nil {
		h.logger.WithError(err).Error("Failed to count records")
		c.JSON(http.StatusServiceUnavailable, Response{Error: "Failed to count records"})
		return
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data: gin.H{
			"counts": counts,
			"import": h.processor.Stats(),
		},
	})
}

// Refresh recomputes the dashboard snapshot now.
func (h *Handler) Refresh(c *gin.Context) {
	snap, err := h.service.Refresh(c.Request.Context())
	if err != nil {
		h.logger.WithError(err).Warn("Manual dashboard refresh failed")
		resp := Response{Error: "Failed to refresh dashboard data"}
		var failure *bi.Failure
		if errors.As(err, &failure) {
			resp.Failure = failure
		}
		c.JSON(http.StatusServiceUnavailable, resp)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: snap, Source: bi.SourceLive})
}
