package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ar3/our-gruuv-sub014/internal/middleware"
	"github.com/ar3/our-gruuv-sub014/internal/services"
)

type CheckInHandler struct {
	checkIns  services.CheckInService
	discovery services.DiscoveryService
}

func NewCheckInHandler(checkIns services.CheckInService, discovery services.DiscoveryService) *CheckInHandler {
	return &CheckInHandler{checkIns: checkIns, discovery: discovery}
}

type saveCheckInRequest struct {
	Status string            `json:"status"`
	Fields map[string]string `json:"fields"`
}

type saveCheckInResponse struct {
	CheckIn            any    `json:"check_in"`
	CompletionState    string `json:"completion_state"`
	CompletionDetected bool   `json:"completion_detected"`
}

func pathUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil || id == uuid.Nil {
		RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return uuid.Nil, false
	}
	return id, true
}

func viewer(c *gin.Context) (uuid.UUID, bool) {
	personID, ok := middleware.PersonID(c)
	if !ok {
		RespondError(c, http.StatusUnauthorized, "unauthenticated", nil)
		return uuid.Nil, false
	}
	return personID, true
}

// GetCheckInSet returns the open check-ins and discoverable subjects for
// one teammate, plus the caller's derived role so the client can pick
// display modes.
func (h *CheckInHandler) GetCheckInSet(c *gin.Context) {
	personID, ok := viewer(c)
	if !ok {
		return
	}
	teammateID, ok := pathUUID(c, "teammateID")
	if !ok {
		return
	}

	set, err := h.checkIns.LoadCheckInSet(c.Request.Context(), teammateID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	role := services.DeriveViewerRole(set.Teammate, personID)
	RespondOK(c, gin.H{
		"check_in_set": set,
		"viewer_role":  role.String(),
	})
}

func (h *CheckInHandler) SavePositionCheckIn(c *gin.Context) {
	personID, ok := viewer(c)
	if !ok {
		return
	}
	teammateID, ok := pathUUID(c, "teammateID")
	if !ok {
		return
	}
	var req saveCheckInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}

	rec, res, err := h.checkIns.SavePositionCheckIn(c.Request.Context(), personID, teammateID, req.Status, req.Fields)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, saveCheckInResponse{
		CheckIn:            rec,
		CompletionState:    res.State.String(),
		CompletionDetected: res.CompletionDetected,
	})
}

func (h *CheckInHandler) SaveAssignmentCheckIn(c *gin.Context) {
	personID, ok := viewer(c)
	if !ok {
		return
	}
	teammateID, ok := pathUUID(c, "teammateID")
	if !ok {
		return
	}
	assignmentID, ok := pathUUID(c, "assignmentID")
	if !ok {
		return
	}
	var req saveCheckInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}

	rec, res, err := h.checkIns.SaveAssignmentCheckIn(c.Request.Context(), personID, teammateID, assignmentID, req.Status, req.Fields)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, saveCheckInResponse{
		CheckIn:            rec,
		CompletionState:    res.State.String(),
		CompletionDetected: res.CompletionDetected,
	})
}

func (h *CheckInHandler) SaveAspirationCheckIn(c *gin.Context) {
	personID, ok := viewer(c)
	if !ok {
		return
	}
	teammateID, ok := pathUUID(c, "teammateID")
	if !ok {
		return
	}
	aspirationID, ok := pathUUID(c, "aspirationID")
	if !ok {
		return
	}
	var req saveCheckInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}

	rec, res, err := h.checkIns.SaveAspirationCheckIn(c.Request.Context(), personID, teammateID, aspirationID, req.Status, req.Fields)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, saveCheckInResponse{
		CheckIn:            rec,
		CompletionState:    res.State.String(),
		CompletionDetected: res.CompletionDetected,
	})
}

func (h *CheckInHandler) ListAssignmentSubjects(c *gin.Context) {
	if _, ok := viewer(c); !ok {
		return
	}
	teammateID, ok := pathUUID(c, "teammateID")
	if !ok {
		return
	}
	subs, err := h.discovery.DiscoverAssignmentSubjects(c.Request.Context(), teammateID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"subjects": subs})
}

func (h *CheckInHandler) ListAspirations(c *gin.Context) {
	if _, ok := viewer(c); !ok {
		return
	}
	organizationID, ok := pathUUID(c, "organizationID")
	if !ok {
		return
	}
	aspirations, err := h.discovery.ListAspirations(c.Request.Context(), organizationID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"aspirations": aspirations})
}
