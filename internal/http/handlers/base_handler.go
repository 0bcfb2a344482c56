// README: Base handler utilities (JSON helpers, error mapping).
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/npsfilm/spaceseller-36983-sub001/internal/maps"
	"github.com/npsfilm/spaceseller-36983-sub001/internal/modules/matching"
	"github.com/npsfilm/spaceseller-36983-sub001/internal/modules/order"
	"github.com/npsfilm/spaceseller-36983-sub001/internal/modules/wizard"
)

type errorResponse struct {
	Error string `json:"error"`
}

type stepErrorResponse struct {
	Error  string     `json:"error"`
	Step   order.Step `json:"step"`
	Errors []string   `json:"errors"`
}

// isValidSessionID accepts the UUIDs the wizard issues.
func isValidSessionID(v string) bool {
	_, err := uuid.Parse(v)
	return err == nil
}

// isValidID accepts short identifiers of letters, digits, '-' and '_'.
func isValidID(v string) bool {
	if v == "" || len(v) > 64 {
		return false
	}
	for _, c := range v {
		if (c >= '0' && c <= '9') || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c == '-' || c == '_' {
			continue
		}
		return false
	}
	return true
}

func writeJSON(c *gin.Context, status int, v any) {
	c.JSON(status, v)
}

func writeError(c *gin.Context, status int, msg string) {
	writeJSON(c, status, errorResponse{Error: msg})
}

func writeWizardError(c *gin.Context, err error) {
	var blocked *wizard.StepBlockedError
	if errors.As(err, &blocked) {
		writeJSON(c, http.StatusUnprocessableEntity, stepErrorResponse{Error: err.Error(), Step: blocked.Step, Errors: blocked.Errors})
		return
	}
	switch {
	case errors.Is(err, wizard.ErrSessionNotFound):
		writeError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, wizard.ErrUnknownItem),
		errors.Is(err, wizard.ErrCategoryMismatch),
		errors.Is(err, wizard.ErrGeocoderUnavailable),
		errors.Is(err, order.ErrBadRequest),
		errors.Is(err, matching.ErrBadRequest):
		writeError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, wizard.ErrIncompleteAddress),
		errors.Is(err, wizard.ErrNoCategory),
		errors.Is(err, wizard.ErrNoSelection),
		errors.Is(err, wizard.ErrLocationUnavailable),
		errors.Is(err, maps.ErrNoResult):
		writeError(c, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, wizard.ErrAddressChanged), errors.Is(err, wizard.ErrSubmitInFlight):
		writeError(c, http.StatusConflict, err.Error())
	default:
		zerolog.Ctx(c.Request.Context()).Error().Err(err).Msg("request failed")
		writeError(c, http.StatusInternalServerError, "internal error")
	}
}
