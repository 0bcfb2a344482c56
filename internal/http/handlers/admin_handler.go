// README: Admin handlers for the provider reliability report and the provider location index.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/npsfilm/spaceseller-36983-sub001/internal/modules/matching"
	"github.com/npsfilm/spaceseller-36983-sub001/internal/modules/reliability"
	"github.com/npsfilm/spaceseller-36983-sub001/internal/types"
)

type AdminHandler struct {
	reliability *reliability.Service
	matching    *matching.Service
}

func NewAdminHandler(rel *reliability.Service, m *matching.Service) *AdminHandler {
	return &AdminHandler{reliability: rel, matching: m}
}

func (h *AdminHandler) Reliability(c *gin.Context) {
	report, err := h.reliability.Report(c.Request.Context())
	if err != nil {
		writeWizardError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"providers": report})
}

type providerLocationReq struct {
	Lat *float64 `json:"lat"`
	Lng *float64 `json:"lng"`
}

func (h *AdminHandler) UpsertProviderLocation(c *gin.Context) {
	id := c.Param("id")
	if !isValidID(id) {
		writeError(c, http.StatusBadRequest, "invalid provider id")
		return
	}
	var req providerLocationReq
	if err := c.ShouldBindJSON(&req); err != nil || req.Lat == nil || req.Lng == nil {
		writeError(c, http.StatusBadRequest, "lat and lng are required")
		return
	}
	if *req.Lat < -85.05 || *req.Lat > 85.05 || *req.Lng < -180 || *req.Lng > 180 {
		writeError(c, http.StatusBadRequest, "coordinates out of range")
		return
	}
	if err := h.matching.UpsertProvider(c.Request.Context(), types.ID(id), types.Point{Lat: *req.Lat, Lng: *req.Lng}); err != nil {
		writeWizardError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"status": "ok"})
}

func (h *AdminHandler) RemoveProvider(c *gin.Context) {
	id := c.Param("id")
	if !isValidID(id) {
		writeError(c, http.StatusBadRequest, "invalid provider id")
		return
	}
	if err := h.matching.RemoveProvider(c.Request.Context(), types.ID(id)); err != nil {
		writeWizardError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
