package dto

import (
	"encoding/json"

	"github.com/google/uuid"
)

type CreateCaseRequest struct {
	CaseNumber   string `json:"case_number" binding:"required"`
	Title        string `json:"title" binding:"required"`
	Description  string `json:"description,omitempty"`
	OfficerName  string `json:"officer_name" binding:"required"`
	OfficerBadge string `json:"officer_badge,omitempty"`
	IncidentDate string `json:"incident_date,omitempty"`
	Location     string `json:"location,omitempty"`
}

type CaseResponse struct {
	ID           uuid.UUID `json:"id"`
	CaseNumber   string    `json:"case_number"`
	Title        string    `json:"title"`
	Description  string    `json:"description,omitempty"`
	Status       string    `json:"status"`
	OfficerName  string    `json:"officer_name"`
	OfficerBadge string    `json:"officer_badge,omitempty"`
	IncidentDate string    `json:"incident_date,omitempty"`
	Location     string    `json:"location,omitempty"`
	CreatedAt    string    `json:"created_at"`
	UpdatedAt    string    `json:"updated_at"`
}

type CaseListResponse struct {
	Cases []CaseResponse `json:"cases"`
	Total int            `json:"total"`
}

type UpdateCaseStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=active pending solved closed"`
}

type CreateSuspectRequest struct {
	Name                string          `json:"name,omitempty"`
	AgeRange            string          `json:"age_range,omitempty"`
	Gender              string          `json:"gender,omitempty"`
	Ethnicity           string          `json:"ethnicity,omitempty"`
	Height              string          `json:"height,omitempty"`
	Build               string          `json:"build,omitempty"`
	DistinguishingMarks string          `json:"distinguishing_marks,omitempty"`
	ExtractedFeatures   json.RawMessage `json:"extracted_features,omitempty"`
	IsWanted            bool            `json:"is_wanted"`
}

type SuspectResponse struct {
	ID                  uuid.UUID       `json:"id"`
	CaseID              uuid.UUID       `json:"case_id"`
	Name                string          `json:"name,omitempty"`
	AgeRange            string          `json:"age_range,omitempty"`
	Gender              string          `json:"gender,omitempty"`
	Ethnicity           string          `json:"ethnicity,omitempty"`
	Height              string          `json:"height,omitempty"`
	Build               string          `json:"build,omitempty"`
	DistinguishingMarks string          `json:"distinguishing_marks,omitempty"`
	ExtractedFeatures   json.RawMessage `json:"extracted_features,omitempty"`
	IsWanted            bool            `json:"is_wanted"`
	CreatedAt           string          `json:"created_at"`
}

type CreateEvidenceRequest struct {
	SuspectID *uuid.UUID      `json:"suspect_id,omitempty"`
	Type      string          `json:"type" binding:"required,oneof=sketch generated age_progression angle_view feature_extraction"`
	ImageURL  string          `json:"image_url" binding:"required"`
	Notes     string          `json:"notes,omitempty"`
	Metadata  json.RawMessage `json:"metadata,omitempty"`
}

type EvidenceResponse struct {
	ID        uuid.UUID       `json:"id"`
	CaseID    uuid.UUID       `json:"case_id"`
	SuspectID *uuid.UUID      `json:"suspect_id,omitempty"`
	Type      string          `json:"type"`
	ImageURL  string          `json:"image_url"`
	Notes     string          `json:"notes,omitempty"`
	Metadata  json.RawMessage `json:"metadata,omitempty"`
	CreatedAt string          `json:"created_at"`
}

type EvidenceListResponse struct {
	Evidence []EvidenceResponse `json:"evidence"`
	Total    int                `json:"total"`
}
