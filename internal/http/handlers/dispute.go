package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/rtb-12/StorySentinel-sub000/internal/http/response"
	"github.com/rtb-12/StorySentinel-sub000/internal/services"
)

type DisputeHandler struct {
	disputes services.DisputeService
}

func NewDisputeHandler(disputes services.DisputeService) *DisputeHandler {
	return &DisputeHandler{disputes: disputes}
}

// GET /api/disputes
func (h *DisputeHandler) List(c *gin.Context) {
	out, err := h.disputes.List(c.Request.Context(), c.Query("asset_id"))
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"disputes": out})
}

// POST /api/disputes
func (h *DisputeHandler) Create(c *gin.Context) {
	var in services.CreateDisputeInput
	if err := c.ShouldBindJSON(&in); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	d, err := h.disputes.Create(c.Request.Context(), in)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"dispute": d})
}

// PATCH /api/disputes/:id
func (h *DisputeHandler) UpdateStatus(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_dispute_id", err)
		return
	}
	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	d, err := h.disputes.UpdateStatus(c.Request.Context(), id, req.Status, req.ChainDisputeID)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"dispute": d})
}

// GET /api/disputes/:id/chain
func (h *DisputeHandler) ChainStatus(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_dispute_id", err)
		return
	}
	out, err := h.disputes.ChainStatus(c.Request.Context(), id)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"chain_dispute": out})
}
