package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/rtb-12/StorySentinel-sub000/internal/http/response"
	"github.com/rtb-12/StorySentinel-sub000/internal/platform/logger"
	"github.com/rtb-12/StorySentinel-sub000/internal/services"
)

const maxBodyBytes = 1 << 20

type IPAssetHandler struct {
	log          *logger.Logger
	registration services.RegistrationService
	monitoring   services.MonitoringService
}

func NewIPAssetHandler(log *logger.Logger, registration services.RegistrationService, monitoring services.MonitoringService) *IPAssetHandler {
	return &IPAssetHandler{
		log:          log.With("handler", "IPAssetHandler"),
		registration: registration,
		monitoring:   monitoring,
	}
}

// readPayload decodes a JSON object body. A literal null decodes to a nil
// map, which validation reports field by field.
func readPayload(c *gin.Context) (map[string]any, error) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes)
	raw, err := io.ReadAll(c.Request.Body)
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("empty body")
	}
	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("body must be a JSON object: %w", err)
	}
	return out, nil
}

// POST /api/ip-assets/validate
func (h *IPAssetHandler) Validate(c *gin.Context) {
	raw, err := readPayload(c)
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	payload, violations := h.registration.Validate(c.Request.Context(), raw)
	if len(violations) > 0 {
		response.RespondViolations(c, violations)
		return
	}
	response.RespondOK(c, gin.H{"payload": payload})
}

// POST /api/ip-assets
func (h *IPAssetHandler) Register(c *gin.Context) {
	raw, err := readPayload(c)
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	asset, violations, err := h.registration.Register(c.Request.Context(), raw)
	if len(violations) > 0 {
		response.RespondViolations(c, violations)
		return
	}
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"ip_asset": asset})
}

// POST /api/ip-assets/:id/chain
func (h *IPAssetHandler) ImportFromChain(c *gin.Context) {
	asset, violations, err := h.registration.ImportFromStory(c.Request.Context(), c.Param("id"))
	if len(violations) > 0 {
		response.RespondViolations(c, violations)
		return
	}
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"ip_asset": asset})
}

// GET /api/ip-assets
func (h *IPAssetHandler) List(c *gin.Context) {
	limit, err := strconv.Atoi(strings.TrimSpace(c.DefaultQuery("limit", "50")))
	if err != nil || limit < 1 {
		response.RespondError(c, http.StatusBadRequest, "invalid_limit", fmt.Errorf("limit must be a positive integer"))
		return
	}
	assets, err := h.registration.List(c.Request.Context(), c.Query("creator_id"), limit)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"ip_assets": assets})
}

// GET /api/ip-assets/:id
func (h *IPAssetHandler) Get(c *gin.Context) {
	asset, err := h.registration.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"ip_asset": asset})
}

// GET /api/ip-assets/:id/infringements
func (h *IPAssetHandler) Infringements(c *gin.Context) {
	report, err := h.monitoring.Infringements(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"report": report})
}

type refreshRequest struct {
	AssetIDs []string `json:"asset_ids" binding:"required"`
}

// POST /api/monitoring/refresh
func (h *IPAssetHandler) Refresh(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	refreshed, err := h.monitoring.RefreshAll(c.Request.Context(), req.AssetIDs)
	body := gin.H{"requested": len(req.AssetIDs), "refreshed": refreshed}
	if err != nil {
		h.log.Warn("Refresh finished with failures", "requested", len(req.AssetIDs), "refreshed", refreshed)
		body["first_error"] = err.Error()
	}
	response.RespondOK(c, body)
}
