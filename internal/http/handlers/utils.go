package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rtb-12/StorySentinel-sub000/internal/http/response"
	"github.com/rtb-12/StorySentinel-sub000/internal/normalization"
)

// UtilsHandler exposes the identifier helpers for clients that build
// payloads themselves.
type UtilsHandler struct{}

func NewUtilsHandler() *UtilsHandler { return &UtilsHandler{} }

type coerceAddressRequest struct {
	Address string `json:"address"`
}

// POST /api/utils/coerce-address
func (h *UtilsHandler) CoerceAddress(c *gin.Context) {
	var req coerceAddressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	addr, repaired := normalization.CoerceAddress(req.Address)
	response.RespondOK(c, gin.H{"address": addr, "repaired": repaired})
}

type synthesizeHashRequest struct {
	Seed  string `json:"seed"`
	Index int    `json:"index"`
}

// POST /api/utils/synthesize-hash
func (h *UtilsHandler) SynthesizeHash(c *gin.Context) {
	var req synthesizeHashRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	response.RespondOK(c, gin.H{"hash": normalization.SynthesizeHash(req.Seed, req.Index)})
}
