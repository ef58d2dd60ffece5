package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/your-org/argus/internal/models"
	"github.com/your-org/argus/internal/storage"
	"github.com/your-org/argus/pkg/dto"
)

type CriminalHandler struct {
	db *storage.PostgresStore
}

func NewCriminalHandler(db *storage.PostgresStore) *CriminalHandler {
	return &CriminalHandler{db: db}
}

func (h *CriminalHandler) Create(c *gin.Context) {
	var req dto.CreateCriminalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}

	cr := &models.Criminal{
		Name:                req.Name,
		PhotoURL:            req.PhotoURL,
		ThreatLevel:         models.ThreatLevel(req.ThreatLevel),
		IsActive:            active,
		AgeRange:            req.AgeRange,
		Gender:              req.Gender,
		Ethnicity:           req.Ethnicity,
		Height:              req.Height,
		Weight:              req.Weight,
		Build:               req.Build,
		DistinguishingMarks: req.DistinguishingMarks,
		KnownOffenses:       req.KnownOffenses,
		Aliases:             req.Aliases,
		LastKnownLocation:   req.LastKnownLocation,
		WarrantStatus:       req.WarrantStatus,
	}

	if err := h.db.CreateCriminal(c.Request.Context(), cr); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, criminalToResponse(cr))
}

func (h *CriminalHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid criminal id"})
		return
	}

	cr, err := h.db.GetCriminal(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if cr == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "criminal not found"})
		return
	}

	c.JSON(http.StatusOK, criminalToResponse(cr))
}

func (h *CriminalHandler) List(c *gin.Context) {
	criminals, err := h.db.ListCriminals(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	resp := make([]dto.CriminalResponse, 0, len(criminals))
	for i := range criminals {
		resp = append(resp, criminalToResponse(&criminals[i]))
	}

	c.JSON(http.StatusOK, dto.CriminalListResponse{Criminals: resp, Total: len(resp)})
}

func (h *CriminalHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid criminal id"})
		return
	}

	cr, err := h.db.GetCriminal(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if cr == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "criminal not found"})
		return
	}

	var req dto.CreateCriminalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	cr.Name = req.Name
	cr.PhotoURL = req.PhotoURL
	if req.ThreatLevel != "" {
		cr.ThreatLevel = models.ThreatLevel(req.ThreatLevel)
	}
	if req.IsActive != nil {
		cr.IsActive = *req.IsActive
	}
	cr.AgeRange = req.AgeRange
	cr.Gender = req.Gender
	cr.Ethnicity = req.Ethnicity
	cr.Height = req.Height
	cr.Weight = req.Weight
	cr.Build = req.Build
	cr.DistinguishingMarks = req.DistinguishingMarks
	cr.KnownOffenses = req.KnownOffenses
	cr.Aliases = req.Aliases
	cr.LastKnownLocation = req.LastKnownLocation
	cr.WarrantStatus = req.WarrantStatus

	if err := h.db.UpdateCriminal(c.Request.Context(), cr); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, criminalToResponse(cr))
}

func (h *CriminalHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid criminal id"})
		return
	}

	if err := h.db.DeleteCriminal(c.Request.Context(), id); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

func criminalToResponse(cr *models.Criminal) dto.CriminalResponse {
	return dto.CriminalResponse{
		ID:                  cr.ID,
		Name:                cr.Name,
		PhotoURL:            cr.PhotoURL,
		ThreatLevel:         string(cr.ThreatLevel),
		IsActive:            cr.IsActive,
		AgeRange:            cr.AgeRange,
		Gender:              cr.Gender,
		Ethnicity:           cr.Ethnicity,
		Height:              cr.Height,
		Weight:              cr.Weight,
		Build:               cr.Build,
		DistinguishingMarks: cr.DistinguishingMarks,
		KnownOffenses:       cr.KnownOffenses,
		Aliases:             cr.Aliases,
		LastKnownLocation:   cr.LastKnownLocation,
		WarrantStatus:       cr.WarrantStatus,
		CreatedAt:           cr.CreatedAt.Format(time.RFC3339),
		UpdatedAt:           cr.UpdatedAt.Format(time.RFC3339),
	}
}
