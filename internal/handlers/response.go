package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ar3/our-gruuv-sub014/internal/domain"
	apperrors "github.com/ar3/our-gruuv-sub014/internal/pkg/errors"
	"github.com/ar3/our-gruuv-sub014/internal/platform/apierr"
	"github.com/ar3/our-gruuv-sub014/internal/services"
)

type APIError struct {
	Message string            `json:"message"`
	Code    string            `json:"code,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

func RespondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.JSON(status, ErrorEnvelope{
		Error: APIError{
			Message: msg,
			Code:    code,
		},
	})
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

// RespondServiceError translates service-layer errors into HTTP statuses.
// Field-level validation failures carry their field map through.
func RespondServiceError(c *gin.Context, err error) {
	var verr *services.ValidationError
	if errors.As(err, &verr) {
		c.JSON(http.StatusUnprocessableEntity, ErrorEnvelope{
			Error: APIError{
				Message: verr.Error(),
				Code:    "validation_failed",
				Fields:  verr.Fields,
			},
		})
		return
	}

	var ae *apierr.Error
	if errors.As(err, &ae) {
		RespondError(c, ae.Status, ae.Code, ae.Err)
		return
	}

	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		RespondError(c, http.StatusNotFound, "not_found", err)
	case errors.Is(err, apperrors.ErrInvalidArgument):
		RespondError(c, http.StatusBadRequest, "invalid_argument", err)
	case errors.Is(err, apperrors.ErrUnauthorized):
		RespondError(c, http.StatusForbidden, "forbidden", err)
	case errors.Is(err, apperrors.ErrCheckInFinalized):
		RespondError(c, http.StatusConflict, "check_in_finalized", err)
	case errors.Is(err, apperrors.ErrAlreadyAcknowledged):
		RespondError(c, http.StatusConflict, "already_acknowledged", err)
	case errors.Is(err, apperrors.ErrNotReadyForFinalization):
		RespondError(c, http.StatusUnprocessableEntity, "not_ready_for_finalization", err)
	case errors.Is(err, apperrors.ErrWrongTeammate):
		RespondError(c, http.StatusUnprocessableEntity, "wrong_teammate", err)
	case errors.Is(err, apperrors.ErrNoActiveTenure):
		RespondError(c, http.StatusUnprocessableEntity, "no_active_tenure", err)
	default:
		RespondError(c, http.StatusInternalServerError, "internal", err)
	}
}

// CaptureRequestInfo snapshots who-from metadata for audit trails.
func CaptureRequestInfo(c *gin.Context) domain.RequestInfo {
	return domain.RequestInfo{
		IP:        c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
		At:        time.Now().UTC(),
	}
}
