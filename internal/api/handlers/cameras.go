package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/your-org/argus/internal/models"
	"github.com/your-org/argus/internal/queue"
	"github.com/your-org/argus/internal/storage"
	"github.com/your-org/argus/pkg/dto"
)

type CameraHandler struct {
	db       *storage.PostgresStore
	producer *queue.Producer
}

func NewCameraHandler(db *storage.PostgresStore, producer *queue.Producer) *CameraHandler {
	return &CameraHandler{db: db, producer: producer}
}

func (h *CameraHandler) Create(c *gin.Context) {
	var req dto.CreateCameraRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	cam := &models.Camera{
		Name:            req.Name,
		SnapshotURL:     req.SnapshotURL,
		CaseID:          req.CaseID,
		Location:        req.Location,
		IntervalSeconds: req.IntervalSeconds,
	}

	if err := h.db.CreateCamera(c.Request.Context(), cam); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, cameraToResponse(cam))
}

func (h *CameraHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid camera id"})
		return
	}

	cam, err := h.db.GetCamera(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if cam == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "camera not found"})
		return
	}

	c.JSON(http.StatusOK, cameraToResponse(cam))
}

func (h *CameraHandler) List(c *gin.Context) {
	cameras, err := h.db.ListCameras(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	resp := make([]dto.CameraResponse, 0, len(cameras))
	for i := range cameras {
		resp = append(resp, cameraToResponse(&cameras[i]))
	}

	c.JSON(http.StatusOK, dto.CameraListResponse{Cameras: resp, Total: len(resp)})
}

func (h *CameraHandler) Start(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid camera id"})
		return
	}

	cam, err := h.db.GetCamera(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if cam == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "camera not found"})
		return
	}

	if cam.Status == models.CameraRunning {
		c.JSON(http.StatusConflict, gin.H{"error": "camera already running"})
		return
	}

	if err := h.db.UpdateCameraStatus(c.Request.Context(), id, models.CameraStarting, ""); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	cmd := map[string]interface{}{
		"action":           "start",
		"camera_id":        id.String(),
		"snapshot_url":     cam.SnapshotURL,
		"interval_seconds": cam.IntervalSeconds,
		"location":         cam.Location,
	}
	if cam.CaseID != nil {
		cmd["case_id"] = cam.CaseID.String()
	}

	cmdData, _ := json.Marshal(cmd)
	if err := h.producer.PublishControl(cmdData); err != nil {
		_ = h.db.UpdateCameraStatus(c.Request.Context(), id, models.CameraError, "failed to publish start command")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to send start command"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "starting", "camera_id": id})
}

func (h *CameraHandler) Stop(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid camera id"})
		return
	}

	cam, err := h.db.GetCamera(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if cam == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "camera not found"})
		return
	}

	cmd := map[string]interface{}{
		"action":    "stop",
		"camera_id": id.String(),
	}
	cmdData, _ := json.Marshal(cmd)
	_ = h.producer.PublishControl(cmdData)

	if err := h.db.UpdateCameraStatus(c.Request.Context(), id, models.CameraStopped, ""); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "stopped", "camera_id": id})
}

func (h *CameraHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid camera id"})
		return
	}

	// Stop sampling first if running
	cam, err := h.db.GetCamera(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if cam != nil && cam.Status == models.CameraRunning {
		cmd := map[string]interface{}{
			"action":    "stop",
			"camera_id": id.String(),
		}
		cmdData, _ := json.Marshal(cmd)
		_ = h.producer.PublishControl(cmdData)
	}

	if err := h.db.DeleteCamera(c.Request.Context(), id); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

func cameraToResponse(cam *models.Camera) dto.CameraResponse {
	return dto.CameraResponse{
		ID:              cam.ID,
		Name:            cam.Name,
		SnapshotURL:     cam.SnapshotURL,
		CaseID:          cam.CaseID,
		Location:        cam.Location,
		IntervalSeconds: cam.IntervalSeconds,
		Status:          string(cam.Status),
		ErrorMessage:    cam.ErrorMessage,
		CreatedAt:       cam.CreatedAt.Format(time.RFC3339),
		UpdatedAt:       cam.UpdatedAt.Format(time.RFC3339),
	}
}
