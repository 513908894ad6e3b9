package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"maintenance-checklist-backend/internal/model"
	"maintenance-checklist-backend/internal/mw"
	"maintenance-checklist-backend/internal/notification"
	"maintenance-checklist-backend/internal/schedule"
	"maintenance-checklist-backend/internal/store"
)

type createSubmissionRequest struct {
	MachineID      string `json:"machineId"`
	CheckpointID   string `json:"checkpointId" binding:"required"`
	DepartmentID   string `json:"departmentId"`
	OrganizationID string `json:"organizationId" binding:"required"`
	UserStatus     string `json:"userStatus" binding:"required"`
	UserRemarks    string `json:"userRemarks"`
	Frequency      string `json:"frequency"`
	ImageName      string `json:"imageName"`
	ImagePath      string `json:"imagePath"`
}

// CreateSubmission records an operator filling out a checkpoint. The
// submitted-by user comes from the bearer token, the frequency from the
// checkpoint (a disagreeing caller-supplied value is rejected) and the
// department falls back to the configured default when omitted.
func (h *Handler) CreateSubmission(c *gin.Context) {
	var req createSubmissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var freq schedule.Frequency
	if req.Frequency != "" {
		parsed, err := schedule.ParseFrequency(req.Frequency)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		freq = parsed
	}

	sub := &model.Submission{
		MachineID:      req.MachineID,
		CheckpointID:   req.CheckpointID,
		DepartmentID:   req.DepartmentID,
		OrganizationID: req.OrganizationID,
		SubmittedBy:    c.GetString(mw.UserIDKey),
		SubmissionDate: time.Now(),
		Frequency:      freq,
		UserStatus:     req.UserStatus,
		UserRemarks:    req.UserRemarks,
	}
	if sub.DepartmentID == "" {
		sub.DepartmentID = h.defaultDept.ID
	}

	var img *model.SubmissionImage
	if req.ImagePath != "" {
		img = &model.SubmissionImage{Name: req.ImageName, Path: req.ImagePath}
	}

	if err := h.store.CreateSubmission(c.Request.Context(), sub, img); err != nil {
		abortStoreError(c, err)
		return
	}

	// A "not ok" report wakes up whoever watches this machine.
	if sub.UserStatus == model.StatusNotOK && h.notifier != nil {
		cpName := sub.CheckpointID
		filter := store.CheckpointFilter{MachineID: sub.MachineID}
		if cps, err := h.store.Checkpoints(c.Request.Context(), sub.OrganizationID, filter); err == nil {
			for _, cp := range cps {
				if cp.ID == sub.CheckpointID {
					cpName = cp.Name
				}
			}
		}
		h.notifier.Dispatch(notification.Job{MachineID: sub.MachineID, CheckpointName: cpName})
	}

	c.JSON(http.StatusCreated, sub)
}

type maintenanceRequest struct {
	MaintenanceStatus  string `json:"maintenanceStatus" binding:"required"`
	MaintenanceRemarks string `json:"maintenanceRemarks"`
	ImageName          string `json:"imageName"`
	ImagePath          string `json:"imagePath"`
}

// SetMaintenanceOutcome records the maintenance close-out. Repeated
// calls overwrite the maintenance fields; the operator's own status is
// never altered here.
func (h *Handler) SetMaintenanceOutcome(c *gin.Context) {
	submissionID := c.Param("submission_id")
	var req maintenanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var img *model.MaintenanceImage
	if req.ImagePath != "" {
		img = &model.MaintenanceImage{Name: req.ImageName, Path: req.ImagePath}
	}

	sub, err := h.store.SetMaintenanceOutcome(c.Request.Context(), submissionID, req.MaintenanceStatus, req.MaintenanceRemarks, img)
	if err != nil {
		abortStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, sub)
}

type adminActionRequest struct {
	AdminAction *bool `json:"adminAction" binding:"required"`
}

// SetAdminAcknowledgement toggles the admin_action flag on a
// submission, independent of the operator and maintenance fields.
func (h *Handler) SetAdminAcknowledgement(c *gin.Context) {
	submissionID := c.Param("submission_id")
	var req adminActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sub, err := h.store.SetAdminAcknowledgement(c.Request.Context(), submissionID, *req.AdminAction)
	if err != nil {
		abortStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, sub)
}
