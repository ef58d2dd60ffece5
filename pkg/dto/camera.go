package dto

import "github.com/google/uuid"

type CreateCameraRequest struct {
	Name            string     `json:"name" binding:"required"`
	SnapshotURL     string     `json:"snapshot_url" binding:"required"`
	CaseID          *uuid.UUID `json:"case_id,omitempty"`
	Location        string     `json:"location,omitempty"`
	IntervalSeconds int        `json:"interval_seconds"`
}

type CameraResponse struct {
	ID              uuid.UUID  `json:"id"`
	Name            string     `json:"name"`
	SnapshotURL     string     `json:"snapshot_url"`
	CaseID          *uuid.UUID `json:"case_id,omitempty"`
	Location        string     `json:"location,omitempty"`
	IntervalSeconds int        `json:"interval_seconds"`
	Status          string     `json:"status"`
	ErrorMessage    string     `json:"error_message,omitempty"`
	CreatedAt       string     `json:"created_at"`
	UpdatedAt       string     `json:"updated_at"`
}

type CameraListResponse struct {
	Cameras []CameraResponse `json:"cameras"`
	Total   int              `json:"total"`
}
