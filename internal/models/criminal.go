package models

import (
	"time"

	"github.com/google/uuid"
)

type ThreatLevel string

const (
	ThreatLow      ThreatLevel = "low"
	ThreatMedium   ThreatLevel = "medium"
	ThreatHigh     ThreatLevel = "high"
	ThreatCritical ThreatLevel = "critical"
)

// Criminal is a wanted-person profile that detected faces are compared
// against. The engine reads a snapshot of active criminals per run.
type Criminal struct {
	ID                  uuid.UUID   `json:"id" db:"id"`
	Name                string      `json:"name" db:"name"`
	PhotoURL            string      `json:"photo_url" db:"photo_url"`
	ThreatLevel         ThreatLevel `json:"threat_level" db:"threat_level"`
	IsActive            bool        `json:"is_active" db:"is_active"`
	AgeRange            string      `json:"age_range,omitempty" db:"age_range"`
	Gender              string      `json:"gender,omitempty" db:"gender"`
	Ethnicity           string      `json:"ethnicity,omitempty" db:"ethnicity"`
	Height              string      `json:"height,omitempty" db:"height"`
	Weight              string      `json:"weight,omitempty" db:"weight"`
	Build               string      `json:"build,omitempty" db:"build"`
	DistinguishingMarks string      `json:"distinguishing_marks,omitempty" db:"distinguishing_marks"`
	KnownOffenses       []string    `json:"known_offenses,omitempty" db:"known_offenses"`
	Aliases             []string    `json:"aliases,omitempty" db:"aliases"`
	LastKnownLocation   string      `json:"last_known_location,omitempty" db:"last_known_location"`
	WarrantStatus       string      `json:"warrant_status,omitempty" db:"warrant_status"`
	CreatedAt           time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt           time.Time   `json:"updated_at" db:"updated_at"`
}

// Descriptor renders the profile fields the match prompt includes alongside
// the reference photo.
func (c *Criminal) Descriptor() string {
	return "Name: " + c.Name +
		"\nAge Range: " + c.AgeRange +
		"\nGender: " + c.Gender +
		"\nEthnicity: " + c.Ethnicity +
		"\nHeight: " + c.Height +
		"\nWeight: " + c.Weight +
		"\nBuild: " + c.Build +
		"\nDistinguishing Marks: " + c.DistinguishingMarks
}
