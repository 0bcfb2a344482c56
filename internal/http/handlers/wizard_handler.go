// README: Wizard handlers drive a server-side order draft from location to submission.
package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/npsfilm/spaceseller-36983-sub001/internal/http/middleware"
	"github.com/npsfilm/spaceseller-36983-sub001/internal/modules/order"
	"github.com/npsfilm/spaceseller-36983-sub001/internal/modules/pricing"
	"github.com/npsfilm/spaceseller-36983-sub001/internal/modules/wizard"
	"github.com/npsfilm/spaceseller-36983-sub001/internal/types"
)

type WizardHandler struct {
	wizard *wizard.Manager
}

func NewWizardHandler(m *wizard.Manager) *WizardHandler {
	return &WizardHandler{wizard: m}
}

// session resolves the :id param and checks the caller owns it.
func (h *WizardHandler) session(c *gin.Context) (string, bool) {
	id := c.Param("id")
	if !isValidSessionID(id) {
		writeError(c, http.StatusBadRequest, "invalid session id")
		return "", false
	}
	if err := h.wizard.Authorize(id, types.ID(middleware.CallerUID(c))); err != nil {
		writeWizardError(c, err)
		return "", false
	}
	return id, true
}

func (h *WizardHandler) Start(c *gin.Context) {
	v, err := h.wizard.Start(c.Request.Context(), types.ID(middleware.CallerUID(c)))
	if err != nil {
		writeWizardError(c, err)
		return
	}
	writeJSON(c, http.StatusCreated, v)
}

func (h *WizardHandler) Get(c *gin.Context) {
	id, ok := h.session(c)
	if !ok {
		return
	}
	v, err := h.wizard.Get(id)
	if err != nil {
		writeWizardError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, v)
}

func (h *WizardHandler) UpdateAddress(c *gin.Context) {
	id, ok := h.session(c)
	if !ok {
		return
	}
	var req order.Address
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	v, err := h.wizard.UpdateAddress(id, req)
	if err != nil {
		writeWizardError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, v)
}

type validateLocationReq struct {
	Lat *float64 `json:"lat"`
	Lng *float64 `json:"lng"`
}

func (h *WizardHandler) ValidateLocation(c *gin.Context) {
	id, ok := h.session(c)
	if !ok {
		return
	}
	var hint *types.Point
	if c.Request.ContentLength > 0 {
		var req validateLocationReq
		if err := c.ShouldBindJSON(&req); err != nil {
			writeError(c, http.StatusBadRequest, "invalid json")
			return
		}
		if req.Lat != nil && req.Lng != nil {
			hint = &types.Point{Lat: *req.Lat, Lng: *req.Lng}
		}
	}
	v, elig, err := h.wizard.ValidateLocation(c.Request.Context(), id, hint)
	if errors.Is(err, wizard.ErrLocationUnavailable) {
		writeJSON(c, http.StatusUnprocessableEntity, gin.H{"error": err.Error(), "session": v, "eligibility": elig})
		return
	}
	if err != nil {
		writeWizardError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"session": v, "eligibility": elig})
}

type selectCategoryReq struct {
	Category string `json:"category"`
}

func (h *WizardHandler) SelectCategory(c *gin.Context) {
	id, ok := h.session(c)
	if !ok {
		return
	}
	var req selectCategoryReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	cat, valid := pricing.ParseCategory(req.Category)
	if !valid {
		writeError(c, http.StatusBadRequest, "unknown category")
		return
	}
	v, err := h.wizard.SelectCategory(id, cat)
	if err != nil {
		writeWizardError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, v)
}

func (h *WizardHandler) Configure(c *gin.Context) {
	id, ok := h.session(c)
	if !ok {
		return
	}
	var req wizard.ConfigureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	if req.Units < 0 || req.Photos < 0 || req.Rooms < 0 || req.Variations < 0 {
		writeError(c, http.StatusBadRequest, "quantities must not be negative")
		return
	}
	v, err := h.wizard.ConfigureByID(id, req)
	if err != nil {
		writeWizardError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, v)
}

type scheduleReq struct {
	RequestedAt         *time.Time `json:"requested_at"`
	AlternativeAt       *time.Time `json:"alternative_at"`
	SpecialInstructions string     `json:"special_instructions"`
}

func (h *WizardHandler) SetSchedule(c *gin.Context) {
	id, ok := h.session(c)
	if !ok {
		return
	}
	var req scheduleReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	v, err := h.wizard.SetSchedule(id, wizard.ScheduleCommand{
		RequestedAt:         req.RequestedAt,
		AlternativeAt:       req.AlternativeAt,
		SpecialInstructions: req.SpecialInstructions,
	})
	if err != nil {
		writeWizardError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, v)
}

func (h *WizardHandler) Advance(c *gin.Context) {
	id, ok := h.session(c)
	if !ok {
		return
	}
	v, err := h.wizard.Advance(id)
	if err != nil {
		writeWizardError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, v)
}

func (h *WizardHandler) Back(c *gin.Context) {
	id, ok := h.session(c)
	if !ok {
		return
	}
	v, err := h.wizard.Back(id)
	if err != nil {
		writeWizardError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, v)
}

func (h *WizardHandler) Validation(c *gin.Context) {
	id, ok := h.session(c)
	if !ok {
		return
	}
	errs, canSubmit, err := h.wizard.Validation(id)
	if err != nil {
		writeWizardError(c, err)
		return
	}
	if errs == nil {
		errs = []string{}
	}
	writeJSON(c, http.StatusOK, gin.H{"errors": errs, "can_submit": canSubmit})
}

func (h *WizardHandler) Quote(c *gin.Context) {
	id, ok := h.session(c)
	if !ok {
		return
	}
	b, err := h.wizard.Quote(id)
	if err != nil {
		writeWizardError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, b)
}

type submitResponse struct {
	Success bool   `json:"success"`
	OrderID string `json:"order_id,omitempty"`
	Total   string `json:"total,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Submit reports failures as {"success":false,"error":...} with the underlying message.
func (h *WizardHandler) Submit(c *gin.Context) {
	id, ok := h.session(c)
	if !ok {
		return
	}
	res, err := h.wizard.Submit(c.Request.Context(), id)
	if err != nil {
		status := http.StatusInternalServerError
		var stepErr *order.StepError
		switch {
		case errors.Is(err, wizard.ErrSessionNotFound):
			status = http.StatusNotFound
		case errors.Is(err, wizard.ErrSubmitInFlight), errors.Is(err, order.ErrInvalidState):
			status = http.StatusConflict
		case errors.Is(err, order.ErrNoDraft), errors.Is(err, order.ErrIncomplete):
			status = http.StatusUnprocessableEntity
		case errors.As(err, &stepErr):
			status = http.StatusBadGateway
		}
		writeJSON(c, status, submitResponse{Success: false, Error: err.Error()})
		return
	}
	writeJSON(c, http.StatusOK, submitResponse{Success: true, OrderID: res.OrderID.String(), Total: res.Total.StringFixed(2)})
}

func (h *WizardHandler) Close(c *gin.Context) {
	id, ok := h.session(c)
	if !ok {
		return
	}
	if err := h.wizard.Close(id); err != nil {
		writeWizardError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
