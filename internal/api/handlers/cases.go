package handlers

import (
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/your-org/argus/internal/detect"
	"github.com/your-org/argus/internal/models"
	"github.com/your-org/argus/internal/storage"
	"github.com/your-org/argus/pkg/dto"
)

type CaseHandler struct {
	db     *storage.PostgresStore
	media  *storage.MinIOStore
	engine *detect.Engine
}

func NewCaseHandler(db *storage.PostgresStore, media *storage.MinIOStore, engine *detect.Engine) *CaseHandler {
	return &CaseHandler{db: db, media: media, engine: engine}
}

func (h *CaseHandler) Create(c *gin.Context) {
	var req dto.CreateCaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	cs := &models.Case{
		CaseNumber:   req.CaseNumber,
		Title:        req.Title,
		Description:  req.Description,
		OfficerName:  req.OfficerName,
		OfficerBadge: req.OfficerBadge,
		Location:     req.Location,
	}
	if req.IncidentDate != "" {
		t, err := time.Parse(time.RFC3339, req.IncidentDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid incident_date"})
			return
		}
		cs.IncidentDate = &t
	}

	if err := h.db.CreateCase(c.Request.Context(), cs); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, caseToResponse(cs))
}

func (h *CaseHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid case id"})
		return
	}

	cs, err := h.db.GetCase(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if cs == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "case not found"})
		return
	}

	c.JSON(http.StatusOK, caseToResponse(cs))
}

func (h *CaseHandler) List(c *gin.Context) {
	var status *models.CaseStatus
	if s := c.Query("status"); s != "" {
		cs := models.CaseStatus(s)
		status = &cs
	}

	cases, err := h.db.ListCases(c.Request.Context(), status)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	resp := make([]dto.CaseResponse, 0, len(cases))
	for i := range cases {
		resp = append(resp, caseToResponse(&cases[i]))
	}

	c.JSON(http.StatusOK, dto.CaseListResponse{Cases: resp, Total: len(resp)})
}

func (h *CaseHandler) UpdateStatus(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid case id"})
		return
	}

	var req dto.UpdateCaseStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.db.UpdateCaseStatus(c.Request.Context(), id, models.CaseStatus(req.Status)); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": req.Status, "case_id": id})
}

// --- Suspects ---

func (h *CaseHandler) CreateSuspect(c *gin.Context) {
	caseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid case id"})
		return
	}

	var req dto.CreateSuspectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sp := &models.Suspect{
		CaseID:              caseID,
		Name:                req.Name,
		AgeRange:            req.AgeRange,
		Gender:              req.Gender,
		Ethnicity:           req.Ethnicity,
		Height:              req.Height,
		Build:               req.Build,
		DistinguishingMarks: req.DistinguishingMarks,
		ExtractedFeatures:   req.ExtractedFeatures,
		IsWanted:            req.IsWanted,
	}

	if err := h.db.CreateSuspect(c.Request.Context(), sp); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, suspectToResponse(sp))
}

func (h *CaseHandler) ListSuspects(c *gin.Context) {
	caseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid case id"})
		return
	}

	suspects, err := h.db.ListSuspects(c.Request.Context(), caseID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	resp := make([]dto.SuspectResponse, 0, len(suspects))
	for i := range suspects {
		resp = append(resp, suspectToResponse(&suspects[i]))
	}

	c.JSON(http.StatusOK, gin.H{"suspects": resp, "total": len(resp)})
}

// --- Evidence ---

const maxEvidenceBytes = 16 << 20

var evidenceTypes = map[models.EvidenceType]bool{
	models.EvidenceSketch:            true,
	models.EvidenceGenerated:         true,
	models.EvidenceAgeProgression:    true,
	models.EvidenceAngleView:         true,
	models.EvidenceFeatureExtraction: true,
}

// AddEvidence accepts either a JSON body referencing an existing image
// (object key or data URI) or a multipart upload whose file is stored in
// the bucket first.
func (h *CaseHandler) AddEvidence(c *gin.Context) {
	caseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid case id"})
		return
	}

	if strings.HasPrefix(c.ContentType(), "multipart/form-data") {
		h.addEvidenceUpload(c, caseID)
		return
	}

	var req dto.CreateEvidenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ev := &models.Evidence{
		CaseID:    caseID,
		SuspectID: req.SuspectID,
		Type:      models.EvidenceType(req.Type),
		ImageURL:  req.ImageURL,
		Notes:     req.Notes,
		Metadata:  req.Metadata,
	}

	if err := h.db.CreateEvidence(c.Request.Context(), ev); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, evidenceToResponse(ev))
}

func (h *CaseHandler) addEvidenceUpload(c *gin.Context, caseID uuid.UUID) {
	file, header, err := c.Request.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "image file is required"})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxEvidenceBytes+1))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if len(data) > maxEvidenceBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "evidence image exceeds 16MB"})
		return
	}

	typ := models.EvidenceType(c.PostForm("type"))
	if typ == "" {
		typ = models.EvidenceSketch
	}
	if !evidenceTypes[typ] {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid evidence type"})
		return
	}

	ev := &models.Evidence{
		CaseID: caseID,
		Type:   typ,
		Notes:  c.PostForm("notes"),
	}
	if s := c.PostForm("suspect_id"); s != "" {
		id, err := uuid.Parse(s)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid suspect_id"})
			return
		}
		ev.SuspectID = &id
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}
	ext := strings.ToLower(path.Ext(header.Filename))
	if ext == "" {
		ext = ".jpg"
	}
	key := fmt.Sprintf("evidence/%s/%s%s", caseID, uuid.New(), ext)
	if err := h.media.PutObject(c.Request.Context(), key, data, contentType); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	ev.ImageURL = key

	if err := h.db.CreateEvidence(c.Request.Context(), ev); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, evidenceToResponse(ev))
}

func (h *CaseHandler) ListEvidence(c *gin.Context) {
	caseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid case id"})
		return
	}

	items, err := h.db.CaseEvidence(c.Request.Context(), caseID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	resp := make([]dto.EvidenceResponse, 0, len(items))
	for i := range items {
		resp = append(resp, evidenceToResponse(&items[i]))
	}

	c.JSON(http.StatusOK, dto.EvidenceListResponse{Evidence: resp, Total: len(resp)})
}

func (h *CaseHandler) DeleteEvidence(c *gin.Context) {
	caseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid case id"})
		return
	}
	evidenceID, err := uuid.Parse(c.Param("evidenceId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid evidence id"})
		return
	}

	ev, err := h.db.GetEvidence(c.Request.Context(), evidenceID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if ev == nil || ev.CaseID != caseID {
		c.JSON(http.StatusNotFound, gin.H{"error": "evidence not found"})
		return
	}

	if err := h.db.DeleteEvidence(c.Request.Context(), evidenceID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	// Remove the stored image when it lives in the bucket; inline and
	// remote references have nothing to clean up.
	if ev.ImageURL != "" && !strings.HasPrefix(ev.ImageURL, "data:") &&
		!strings.HasPrefix(ev.ImageURL, "http://") && !strings.HasPrefix(ev.ImageURL, "https://") {
		_ = h.media.DeleteObject(c.Request.Context(), ev.ImageURL)
	}

	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

// MatchEvidence runs one evidence image against the watchlist and the rest
// of the case's evidence, excluding the source image from its own
// comparison set.
func (h *CaseHandler) MatchEvidence(c *gin.Context) {
	caseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid case id"})
		return
	}
	evidenceID, err := uuid.Parse(c.Param("evidenceId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid evidence id"})
		return
	}

	ev, err := h.db.GetEvidence(c.Request.Context(), evidenceID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if ev == nil || ev.CaseID != caseID {
		c.JSON(http.StatusNotFound, gin.H{"error": "evidence not found"})
		return
	}

	res, err := h.engine.Run(c.Request.Context(), detect.RunInput{
		Frame:             detect.Frame{Ref: ev.ImageURL},
		Mode:              models.DetectionEvidence,
		CaseID:            &caseID,
		ExcludeEvidenceID: &evidenceID,
	})
	if err != nil {
		status, msg := detectErrorStatus(err)
		c.JSON(status, gin.H{"error": msg})
		return
	}

	c.JSON(http.StatusOK, detectResultToResponse(res))
}

func caseToResponse(cs *models.Case) dto.CaseResponse {
	resp := dto.CaseResponse{
		ID:           cs.ID,
		CaseNumber:   cs.CaseNumber,
		Title:        cs.Title,
		Description:  cs.Description,
		Status:       string(cs.Status),
		OfficerName:  cs.OfficerName,
		OfficerBadge: cs.OfficerBadge,
		Location:     cs.Location,
		CreatedAt:    cs.CreatedAt.Format(time.RFC3339),
		UpdatedAt:    cs.UpdatedAt.Format(time.RFC3339),
	}
	if cs.IncidentDate != nil {
		resp.IncidentDate = cs.IncidentDate.Format(time.RFC3339)
	}
	return resp
}

func suspectToResponse(sp *models.Suspect) dto.SuspectResponse {
	return dto.SuspectResponse{
		ID:                  sp.ID,
		CaseID:              sp.CaseID,
		Name:                sp.Name,
		AgeRange:            sp.AgeRange,
		Gender:              sp.Gender,
		Ethnicity:           sp.Ethnicity,
		Height:              sp.Height,
		Build:               sp.Build,
		DistinguishingMarks: sp.DistinguishingMarks,
		ExtractedFeatures:   sp.ExtractedFeatures,
		IsWanted:            sp.IsWanted,
		CreatedAt:           sp.CreatedAt.Format(time.RFC3339),
	}
}

func evidenceToResponse(ev *models.Evidence) dto.EvidenceResponse {
	return dto.EvidenceResponse{
		ID:        ev.ID,
		CaseID:    ev.CaseID,
		SuspectID: ev.SuspectID,
		Type:      string(ev.Type),
		ImageURL:  ev.ImageURL,
		Notes:     ev.Notes,
		Metadata:  ev.Metadata,
		CreatedAt: ev.CreatedAt.Format(time.RFC3339),
	}
}
