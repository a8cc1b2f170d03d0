package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ar3/our-gruuv-sub014/internal/services"
)

type FinalizationHandler struct {
	checkIns     services.CheckInService
	finalization services.FinalizationService
}

func NewFinalizationHandler(checkIns services.CheckInService, finalization services.FinalizationService) *FinalizationHandler {
	return &FinalizationHandler{checkIns: checkIns, finalization: finalization}
}

// GetOverview shows the finalization picture for one teammate: ready
// check-ins, still-open counts, and prior snapshots.
func (h *FinalizationHandler) GetOverview(c *gin.Context) {
	if _, ok := viewer(c); !ok {
		return
	}
	teammateID, ok := pathUUID(c, "teammateID")
	if !ok {
		return
	}
	ov, err := h.checkIns.FinalizationOverview(c.Request.Context(), teammateID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, ov)
}

type finalizeRequest struct {
	Reason     string                                  `json:"reason"`
	Position   map[uuid.UUID]services.FinalizeDecision `json:"position"`
	Assignment map[uuid.UUID]services.FinalizeDecision `json:"assignment"`
	Aspiration map[uuid.UUID]services.FinalizeDecision `json:"aspiration"`
}

// Finalize closes the selected ready check-ins as one atomic batch and
// returns the snapshot that captured them.
func (h *FinalizationHandler) Finalize(c *gin.Context) {
	personID, ok := viewer(c)
	if !ok {
		return
	}
	teammateID, ok := pathUUID(c, "teammateID")
	if !ok {
		return
	}
	var req finalizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}

	batch := services.FinalizeBatch{
		Position:   req.Position,
		Assignment: req.Assignment,
		Aspiration: req.Aspiration,
	}
	snap, err := h.finalization.Finalize(c.Request.Context(), teammateID, batch, personID, req.Reason, CaptureRequestInfo(c))
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"snapshot": snap})
}

// Acknowledge records the employee's one-time acknowledgement of a
// snapshot.
func (h *FinalizationHandler) Acknowledge(c *gin.Context) {
	personID, ok := viewer(c)
	if !ok {
		return
	}
	snapshotID, ok := pathUUID(c, "snapshotID")
	if !ok {
		return
	}
	if err := h.finalization.AcknowledgeSnapshot(c.Request.Context(), snapshotID, personID, CaptureRequestInfo(c)); err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"acknowledged": true})
}
