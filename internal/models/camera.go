package models

import (
	"time"

	"github.com/google/uuid"
)

type CameraStatus string

const (
	CameraStopped  CameraStatus = "stopped"
	CameraStarting CameraStatus = "starting"
	CameraRunning  CameraStatus = "running"
	CameraError    CameraStatus = "error"
)

// Camera is a registered still-image source (CCTV snapshot endpoint)
// sampled on a fixed interval while running.
type Camera struct {
	ID              uuid.UUID    `json:"id" db:"id"`
	Name            string       `json:"name" db:"name"`
	SnapshotURL     string       `json:"snapshot_url" db:"snapshot_url"`
	CaseID          *uuid.UUID   `json:"case_id,omitempty" db:"case_id"`
	Location        string       `json:"location,omitempty" db:"location"`
	IntervalSeconds int          `json:"interval_seconds" db:"interval_seconds"`
	Status          CameraStatus `json:"status" db:"status"`
	ErrorMessage    string       `json:"error_message,omitempty" db:"error_message"`
	CreatedAt       time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time    `json:"updated_at" db:"updated_at"`
}
