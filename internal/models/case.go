package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type CaseStatus string

const (
	CaseActive  CaseStatus = "active"
	CasePending CaseStatus = "pending"
	CaseSolved  CaseStatus = "solved"
	CaseClosed  CaseStatus = "closed"
)

type Case struct {
	ID           uuid.UUID  `json:"id" db:"id"`
	CaseNumber   string     `json:"case_number" db:"case_number"`
	Title        string     `json:"title" db:"title"`
	Description  string     `json:"description,omitempty" db:"description"`
	Status       CaseStatus `json:"status" db:"status"`
	OfficerName  string     `json:"officer_name" db:"officer_name"`
	OfficerBadge string     `json:"officer_badge,omitempty" db:"officer_badge"`
	IncidentDate *time.Time `json:"incident_date,omitempty" db:"incident_date"`
	Location     string     `json:"location,omitempty" db:"location"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at" db:"updated_at"`
}

// Suspect is a per-case person of interest, described by an officer or
// extracted from evidence by the analysis tools.
type Suspect struct {
	ID                  uuid.UUID       `json:"id" db:"id"`
	CaseID              uuid.UUID       `json:"case_id" db:"case_id"`
	Name                string          `json:"name,omitempty" db:"name"`
	AgeRange            string          `json:"age_range,omitempty" db:"age_range"`
	Gender              string          `json:"gender,omitempty" db:"gender"`
	Ethnicity           string          `json:"ethnicity,omitempty" db:"ethnicity"`
	Height              string          `json:"height,omitempty" db:"height"`
	Build               string          `json:"build,omitempty" db:"build"`
	DistinguishingMarks string          `json:"distinguishing_marks,omitempty" db:"distinguishing_marks"`
	ExtractedFeatures   json.RawMessage `json:"extracted_features,omitempty" db:"extracted_features"`
	IsWanted            bool            `json:"is_wanted" db:"is_wanted"`
	CreatedAt           time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt           time.Time       `json:"updated_at" db:"updated_at"`
}

type EvidenceType string

const (
	EvidenceSketch            EvidenceType = "sketch"
	EvidenceGenerated         EvidenceType = "generated"
	EvidenceAgeProgression    EvidenceType = "age_progression"
	EvidenceAngleView         EvidenceType = "angle_view"
	EvidenceFeatureExtraction EvidenceType = "feature_extraction"
)

// Evidence is an image tied to one case. ImageURL is either a MinIO object
// key or an inline data URI; immutable during a detection run.
type Evidence struct {
	ID        uuid.UUID       `json:"id" db:"id"`
	CaseID    uuid.UUID       `json:"case_id" db:"case_id"`
	SuspectID *uuid.UUID      `json:"suspect_id,omitempty" db:"suspect_id"`
	Type      EvidenceType    `json:"type" db:"type"`
	ImageURL  string          `json:"image_url" db:"image_url"`
	Notes     string          `json:"notes,omitempty" db:"notes"`
	Metadata  json.RawMessage `json:"metadata,omitempty" db:"metadata"`
	CreatedAt time.Time       `json:"created_at" db:"created_at"`
}
