package dto

import "github.com/google/uuid"

type CreateCriminalRequest struct {
	Name                string   `json:"name" binding:"required"`
	PhotoURL            string   `json:"photo_url"`
	ThreatLevel         string   `json:"threat_level" binding:"omitempty,oneof=low medium high critical"`
	IsActive            *bool    `json:"is_active,omitempty"`
	AgeRange            string   `json:"age_range,omitempty"`
	Gender              string   `json:"gender,omitempty"`
	Ethnicity           string   `json:"ethnicity,omitempty"`
	Height              string   `json:"height,omitempty"`
	Weight              string   `json:"weight,omitempty"`
	Build               string   `json:"build,omitempty"`
	DistinguishingMarks string   `json:"distinguishing_marks,omitempty"`
	KnownOffenses       []string `json:"known_offenses,omitempty"`
	Aliases             []string `json:"aliases,omitempty"`
	LastKnownLocation   string   `json:"last_known_location,omitempty"`
	WarrantStatus       string   `json:"warrant_status,omitempty"`
}

type CriminalResponse struct {
	ID                  uuid.UUID `json:"id"`
	Name                string    `json:"name"`
	PhotoURL            string    `json:"photo_url,omitempty"`
	ThreatLevel         string    `json:"threat_level"`
	IsActive            bool      `json:"is_active"`
	AgeRange            string    `json:"age_range,omitempty"`
	Gender              string    `json:"gender,omitempty"`
	Ethnicity           string    `json:"ethnicity,omitempty"`
	Height              string    `json:"height,omitempty"`
	Weight              string    `json:"weight,omitempty"`
	Build               string    `json:"build,omitempty"`
	DistinguishingMarks string    `json:"distinguishing_marks,omitempty"`
	KnownOffenses       []string  `json:"known_offenses,omitempty"`
	Aliases             []string  `json:"aliases,omitempty"`
	LastKnownLocation   string    `json:"last_known_location,omitempty"`
	WarrantStatus       string    `json:"warrant_status,omitempty"`
	CreatedAt           string    `json:"created_at"`
	UpdatedAt           string    `json:"updated_at"`
}

type CriminalListResponse struct {
	Criminals []CriminalResponse `json:"criminals"`
	Total     int                `json:"total"`
}
