package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"maintenance-checklist-backend/internal/model"
	"maintenance-checklist-backend/internal/schedule"
	"maintenance-checklist-backend/internal/store"
)

type checkpointRequest struct {
	MachineID     string `json:"machineId" binding:"required"`
	DepartmentID  string `json:"departmentId"`
	Name          string `json:"checkpointName" binding:"required"`
	ImportantNote string `json:"importantNote"`
	Frequency     string `json:"frequency" binding:"required"`
	ImageName     string `json:"imageName"`
	ImagePath     string `json:"imagePath"`
}

// checkpointResponse is a checkpoint with its reference image resolved.
type checkpointResponse struct {
	model.Checkpoint
	ReferenceImage string `json:"referenceImage"`
}

// CreateCheckpoint defines a new recurring inspection item on a
// machine. Frequency is fixed for the checkpoint's lifetime.
func (h *Handler) CreateCheckpoint(c *gin.Context) {
	var req checkpointRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	freq, err := schedule.ParseFrequency(req.Frequency)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	cp := &model.Checkpoint{
		MachineID:     req.MachineID,
		DepartmentID:  req.DepartmentID,
		Name:          req.Name,
		ImportantNote: req.ImportantNote,
		Frequency:     freq,
	}
	if cp.DepartmentID == "" {
		cp.DepartmentID = h.defaultDept.ID
	}

	var img *model.ChecklistImage
	if req.ImagePath != "" {
		img = &model.ChecklistImage{Name: req.ImageName, Path: req.ImagePath}
	}

	if err := h.store.CreateCheckpoint(c.Request.Context(), cp, img); err != nil {
		abortStoreError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Checkpoint created", "checkpointId": cp.ID})
}

// GetCheckpoints lists checkpoints for an organization, optionally
// narrowed by machine or frequency, with reference images resolved.
func (h *Handler) GetCheckpoints(c *gin.Context) {
	orgID := c.Param("org_id")

	filter := store.CheckpointFilter{MachineID: c.Query("machineId")}
	if fq := c.Query("frequency"); fq != "" {
		freq, err := schedule.ParseFrequency(fq)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		filter.Frequency = freq
	}

	cps, err := h.store.Checkpoints(c.Request.Context(), orgID, filter)
	if err != nil {
		abortStoreError(c, err)
		return
	}

	ids := make([]string, len(cps))
	for i, cp := range cps {
		ids[i] = cp.ID
	}
	imgs, err := h.store.ChecklistImages(c.Request.Context(), ids)
	if err != nil {
		abortStoreError(c, err)
		return
	}

	out := make([]checkpointResponse, 0, len(cps))
	for _, cp := range cps {
		resp := checkpointResponse{Checkpoint: cp}
		if img, ok := imgs[cp.ID]; ok {
			resp.ReferenceImage = h.media.DataURL(img.Path, img.Name)
		}
		out = append(out, resp)
	}
	c.JSON(http.StatusOK, out)
}
