package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/rtb-12/StorySentinel-sub000/internal/data/repos"
	"github.com/rtb-12/StorySentinel-sub000/internal/http/response"
	"github.com/rtb-12/StorySentinel-sub000/internal/services"
)

type AlertHandler struct {
	monitoring services.MonitoringService
}

func NewAlertHandler(monitoring services.MonitoringService) *AlertHandler {
	return &AlertHandler{monitoring: monitoring}
}

// GET /api/alerts
func (h *AlertHandler) List(c *gin.Context) {
	limit, err := strconv.Atoi(strings.TrimSpace(c.DefaultQuery("limit", "100")))
	if err != nil || limit < 1 {
		response.RespondError(c, http.StatusBadRequest, "invalid_limit", fmt.Errorf("limit must be a positive integer"))
		return
	}
	alerts, err := h.monitoring.ListAlerts(c.Request.Context(), repos.AlertFilter{
		AssetID: c.Query("asset_id"),
		Status:  c.Query("status"),
		Limit:   limit,
	})
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"alerts": alerts})
}

type updateStatusRequest struct {
	Status         string `json:"status" binding:"required"`
	ChainDisputeID string `json:"chain_dispute_id"`
}

// PATCH /api/alerts/:id
func (h *AlertHandler) UpdateStatus(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_alert_id", err)
		return
	}
	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	alert, err := h.monitoring.UpdateAlertStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"alert": alert})
}
