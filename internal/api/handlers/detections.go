package handlers

import (
	"encoding/base64"
	"errors"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/your-org/argus/internal/detect"
	"github.com/your-org/argus/internal/models"
	"github.com/your-org/argus/internal/storage"
	"github.com/your-org/argus/internal/vision"
	"github.com/your-org/argus/pkg/dto"
)

type DetectionHandler struct {
	db     *storage.PostgresStore
	media  *storage.MinIOStore
	engine *detect.Engine
}

func NewDetectionHandler(db *storage.PostgresStore, media *storage.MinIOStore, engine *detect.Engine) *DetectionHandler {
	return &DetectionHandler{db: db, media: media, engine: engine}
}

// DetectRealtime runs one client-captured frame through the pipeline
// synchronously and returns the matches.
func (h *DetectionHandler) DetectRealtime(c *gin.Context) {
	var req dto.DetectRealtimeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	res, err := h.engine.Run(c.Request.Context(), detect.RunInput{
		Frame:  detect.Frame{Ref: req.Frame, Location: req.Location},
		Mode:   models.DetectionRealtime,
		CaseID: req.CaseID,
	})
	if err != nil {
		status, msg := detectErrorStatus(err)
		c.JSON(status, gin.H{"error": msg})
		return
	}

	c.JSON(http.StatusOK, detectResultToResponse(res))
}

// videoExtensions are containers this service does not decode. Uploads of
// these are rejected up front instead of being fed to the model.
var videoExtensions = map[string]bool{
	".mp4": true, ".avi": true, ".mov": true, ".webm": true, ".mkv": true,
}

// DetectMedia analyzes one uploaded still image.
func (h *DetectionHandler) DetectMedia(c *gin.Context) {
	var req dto.DetectMediaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	name := req.Filename
	if name == "" && !strings.HasPrefix(req.MediaRef, "data:") {
		name = req.MediaRef
	}
	if ext := strings.ToLower(path.Ext(name)); videoExtensions[ext] {
		c.JSON(http.StatusUnsupportedMediaType, gin.H{
			"error": "video containers are not supported; upload a still image",
		})
		return
	}

	res, err := h.engine.Run(c.Request.Context(), detect.RunInput{
		Frame:  detect.Frame{Ref: req.MediaRef, Location: req.Location, VideoURL: req.Filename},
		Mode:   models.DetectionVideo,
		CaseID: req.CaseID,
	})
	if err != nil {
		status, msg := detectErrorStatus(err)
		c.JSON(status, gin.H{"error": msg})
		return
	}

	c.JSON(http.StatusOK, detectResultToResponse(res))
}

func (h *DetectionHandler) List(c *gin.Context) {
	var q dto.DetectionQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var f storage.DetectionFilter
	if q.Type != "" {
		t := models.DetectionType(q.Type)
		f.Type = &t
	}
	if q.CriminalID != "" {
		id, err := uuid.Parse(q.CriminalID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid criminal_id"})
			return
		}
		f.CriminalID = &id
	}
	if q.CaseID != "" {
		id, err := uuid.Parse(q.CaseID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid case_id"})
			return
		}
		f.CaseID = &id
	}
	if q.From != "" {
		t, err := time.Parse(time.RFC3339, q.From)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid from timestamp"})
			return
		}
		f.From = &t
	}
	if q.To != "" {
		t, err := time.Parse(time.RFC3339, q.To)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid to timestamp"})
			return
		}
		f.To = &t
	}
	f.Limit = q.Limit
	f.Offset = q.Offset

	detections, total, err := h.db.ListDetections(c.Request.Context(), f)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	resp := make([]dto.DetectionResponse, 0, len(detections))
	for i := range detections {
		resp = append(resp, detectionToResponse(&detections[i]))
	}

	c.JSON(http.StatusOK, dto.DetectionListResponse{Detections: resp, Total: total})
}

func (h *DetectionHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid detection id"})
		return
	}

	d, err := h.db.GetDetection(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if d == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "detection not found"})
		return
	}

	c.JSON(http.StatusOK, detectionToResponse(d))
}

func (h *DetectionHandler) Review(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid detection id"})
		return
	}

	var req dto.ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.db.MarkReviewed(c.Request.Context(), id, req.Reviewed); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"detection_id": id, "reviewed": req.Reviewed})
}

// Snapshot serves the stored frame of one detection: inline data URIs are
// decoded, remote URLs redirect, everything else is read from the bucket.
func (h *DetectionHandler) Snapshot(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid detection id"})
		return
	}

	d, err := h.db.GetDetection(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if d == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "detection not found"})
		return
	}
	if d.SnapshotURL == "" {
		c.JSON(http.StatusNotFound, gin.H{"error": "detection has no snapshot"})
		return
	}

	ref := d.SnapshotURL
	switch {
	case strings.HasPrefix(ref, "data:"):
		meta, b64, ok := strings.Cut(ref, ",")
		if !ok {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "malformed snapshot reference"})
			return
		}
		data, err := base64.StdEncoding.DecodeString(b64)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "malformed snapshot reference"})
			return
		}
		contentType := strings.TrimSuffix(strings.TrimPrefix(meta, "data:"), ";base64")
		if contentType == "" {
			contentType = "image/jpeg"
		}
		c.Data(http.StatusOK, contentType, data)
	case strings.HasPrefix(ref, "http://"), strings.HasPrefix(ref, "https://"):
		c.Redirect(http.StatusFound, ref)
	default:
		data, err := h.media.GetObject(c.Request.Context(), ref)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "snapshot object not found"})
			return
		}
		c.Data(http.StatusOK, http.DetectContentType(data), data)
	}
}

// detectErrorStatus maps pipeline failures to HTTP statuses. Rate limiting
// and quota exhaustion are surfaced distinctly so clients can back off or
// page an operator respectively.
func detectErrorStatus(err error) (int, string) {
	var ue *vision.UpstreamError
	if errors.As(err, &ue) {
		switch ue.Kind {
		case vision.KindRateLimited:
			return http.StatusTooManyRequests, "vision service rate limited, retry later"
		case vision.KindQuotaExceeded:
			return http.StatusPaymentRequired, "vision service quota exceeded"
		default:
			return http.StatusBadGateway, "vision service unavailable"
		}
	}
	return http.StatusInternalServerError, err.Error()
}

func detectResultToResponse(res *detect.Result) dto.DetectResponse {
	matches := make([]dto.MatchResponse, 0, len(res.Matches))
	for _, m := range res.Matches {
		mr := dto.MatchResponse{
			Kind:        string(m.Kind),
			CandidateID: m.CandidateID,
			Name:        m.Name,
			Confidence:  m.Confidence,
			Description: m.Face.Description,
			Position:    m.Face.Position,
		}
		if m.Detection != nil {
			id := m.Detection.ID
			mr.DetectionID = &id
		}
		matches = append(matches, mr)
	}
	return dto.DetectResponse{FaceCount: res.FaceCount, Matches: matches}
}

func detectionToResponse(d *models.Detection) dto.DetectionResponse {
	resp := dto.DetectionResponse{
		ID:            d.ID,
		DetectionType: string(d.DetectionType),
		Confidence:    d.Confidence,
		CriminalID:    d.CriminalID,
		CaseID:        d.CaseID,
		SnapshotURL:   d.SnapshotURL,
		VideoURL:      d.VideoURL,
		Location:      d.Location,
		Notes:         d.Notes,
		Alerted:       d.Alerted,
		Reviewed:      d.Reviewed,
		CreatedAt:     d.CreatedAt.Format(time.RFC3339),
	}
	if d.FrameTimestamp != nil {
		resp.FrameTimestamp = d.FrameTimestamp.Format(time.RFC3339)
	}
	return resp
}
