package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"brokerage/server/internal/bi"
	"brokerage/server/internal/geometry"
)

// DashboardData always answers 200; when live data is unavailable the fallback snapshot is
// returned with success=false and the failure classification.
func (h *Handler) DashboardData(c *gin.Context) {
	result := h.service.Dashboard(c.Request.Context())

	if result.Failure != nil {
		c.JSON(http.StatusOK, Response{
			Success: false,
			Data:    result.Snapshot,
			Error:   "Failed to load live dashboard data",
			Source:  result.Source,
			Failure: result.Failure,
		})
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: result.Snapshot, Source: result.Source})
}

func (h *Handler) PredictPrice(c *gin.Context) {
	var req bi.PriceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.WithError(err).Debug("Failed to parse price request")
		c.JSON(http.StatusBadRequest, Response{Error: "Invalid request body"})
		return
	}

	estimate, err := h.pricer.Predict(req)
	if err != nil {
		if errors.Is(err, bi.ErrInvalidInput) {
			c.JSON(http.StatusBadRequest, Response{Error: err.Error()})
			return
		}
		h.logger.WithError(err).Error("Failed to predict price")
		c.JSON(http.StatusInternalServerError, Response{Error: "Failed to predict price"})
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: estimate})
}

func (h *Handler) ScoreLeads(c *gin.Context) {
	var leads []bi.LeadFeatures
	if err := c.ShouldBindJSON(&leads); err != nil {
		h.logger.WithError(err).Debug("Failed to parse lead scoring request")
		c.JSON(http.StatusBadRequest, Response{Error: "Request body must be an array of leads"})
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: bi.ScoreLeads(leads)})
}

func (h *Handler) Insights(c *gin.Context) {
	result := h.service.Dashboard(c.Request.Context())
	report := h.insights.Generate(c.Request.Context(), result.Snapshot)

	c.JSON(http.StatusOK, Response{
		Success: result.Failure == nil,
		Data:    report,
		Source:  result.Source,
		Failure: result.Failure,
	})
}

// MarketCoverage answers a GeoJSON feature collection with one feature per covered market.
func (h *Handler) MarketCoverage(c *gin.Context) {
	properties, err := h.service.Properties(c.Request.Context())
	if err != nil {
		h.logger.WithError(err).Warn("Failed to load properties for market coverage")
		resp := Response{Error: "Failed to load properties"}
		var failure *bi.Failure
		if errors.As(err, &failure) {
			resp.Failure = failure
		}
		c.JSON(http.StatusServiceUnavailable, resp)
		return
	}

	c.JSON(http.StatusOK, geometry.Coverage(properties, h.markets, time.Now().UTC()))
}
