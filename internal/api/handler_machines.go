package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"maintenance-checklist-backend/internal/model"
)

type machineRequest struct {
	MachineName string `json:"machineName" binding:"required"`
	Location    string `json:"location"`
	Description string `json:"description"`
	// Optional photo already placed in the blob store by the upload
	// collaborator; only the metadata is recorded here.
	ImageName string `json:"imageName"`
	ImagePath string `json:"imagePath"`
}

// machineResponse is a machine with its media resolved inline.
type machineResponse struct {
	model.Machine
	MachineImage string `json:"machineImage"`
	QRImage      string `json:"qrImage"`
}

// CreateMachine registers a machine with its QR code metadata and
// optional photo metadata.
func (h *Handler) CreateMachine(c *gin.Context) {
	orgID := c.Param("org_id")
	var req machineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	m := &model.Machine{
		ID:             uuid.NewString(),
		OrganizationID: orgID,
		Name:           req.MachineName,
		Location:       req.Location,
		Description:    req.Description,
		Status:         model.MachineActive,
	}

	var img *model.MachineImage
	if req.ImagePath != "" {
		img = &model.MachineImage{Name: req.ImageName, Path: req.ImagePath}
	}

	// The QR collaborator renders to a path derived from the machine
	// ID; the metadata row is written up front in the same transaction.
	qrName, qrPath := qrPathFor(m.ID)
	qr := &model.QRImage{Name: qrName, Path: qrPath}
	if err := h.store.CreateMachine(c.Request.Context(), m, qr, img); err != nil {
		abortStoreError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Machine created", "machineId": m.ID})
}

// UpdateMachine applies partial updates to a machine and optionally
// replaces its photo metadata.
func (h *Handler) UpdateMachine(c *gin.Context) {
	machineID := c.Param("machine_id")
	var req machineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	m := &model.Machine{
		ID:          machineID,
		Name:        req.MachineName,
		Location:    req.Location,
		Description: req.Description,
	}
	var img *model.MachineImage
	if req.ImagePath != "" {
		img = &model.MachineImage{Name: req.ImageName, Path: req.ImagePath}
	}

	if err := h.store.UpdateMachine(c.Request.Context(), m, img); err != nil {
		abortStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Machine updated", "machineId": machineID})
}

type machineStatusRequest struct {
	Status *int `json:"status" binding:"required"`
}

// UpdateMachineStatus activates or deactivates a machine.
func (h *Handler) UpdateMachineStatus(c *gin.Context) {
	machineID := c.Param("machine_id")
	var req machineStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if *req.Status != model.MachineActive && *req.Status != model.MachineInactive {
		c.JSON(http.StatusBadRequest, gin.H{"error": "status must be 0 or 1"})
		return
	}

	if err := h.store.UpdateMachineStatus(c.Request.Context(), machineID, *req.Status); err != nil {
		abortStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Machine status updated"})
}

// DeleteMachine removes a machine and its image metadata.
func (h *Handler) DeleteMachine(c *gin.Context) {
	machineID := c.Param("machine_id")
	if err := h.store.DeleteMachine(c.Request.Context(), machineID); err != nil {
		abortStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Machine deleted"})
}

// GetMachines lists an organization's machines with media resolved.
// An organization with no machines gets an empty list, not a 404.
func (h *Handler) GetMachines(c *gin.Context) {
	orgID := c.Param("org_id")
	machines, err := h.store.Machines(c.Request.Context(), orgID)
	if err != nil {
		abortStoreError(c, err)
		return
	}

	ids := make([]string, len(machines))
	for i, m := range machines {
		ids[i] = m.ID
	}
	imgs, qrs, err := h.store.MachineImages(c.Request.Context(), ids)
	if err != nil {
		abortStoreError(c, err)
		return
	}

	out := make([]machineResponse, 0, len(machines))
	for _, m := range machines {
		resp := machineResponse{Machine: m}
		if img, ok := imgs[m.ID]; ok {
			resp.MachineImage = h.media.DataURL(img.Path, img.Name)
		}
		if qr, ok := qrs[m.ID]; ok {
			resp.QRImage = h.media.DataURL(qr.Path, qr.Name)
		}
		out = append(out, resp)
	}
	c.JSON(http.StatusOK, out)
}

// GetMachine returns one machine with media resolved.
func (h *Handler) GetMachine(c *gin.Context) {
	machineID := c.Param("machine_id")
	m, err := h.store.Machine(c.Request.Context(), machineID)
	if err != nil {
		abortStoreError(c, err)
		return
	}

	imgs, qrs, err := h.store.MachineImages(c.Request.Context(), []string{m.ID})
	if err != nil {
		abortStoreError(c, err)
		return
	}

	resp := machineResponse{Machine: *m}
	if img, ok := imgs[m.ID]; ok {
		resp.MachineImage = h.media.DataURL(img.Path, img.Name)
	}
	if qr, ok := qrs[m.ID]; ok {
		resp.QRImage = h.media.DataURL(qr.Path, qr.Name)
	}
	c.JSON(http.StatusOK, resp)
}

func qrPathFor(machineID string) (name, path string) {
	name = fmt.Sprintf("%s.png", machineID)
	return name, fmt.Sprintf("/qr_images/%s", name)
}
