package models

import (
	"time"

	"github.com/google/uuid"
)

type DetectionType string

const (
	DetectionRealtime DetectionType = "realtime"
	DetectionVideo    DetectionType = "video"
	DetectionEvidence DetectionType = "evidence"
)

// Detection is the persisted unit of work product: one candidate matched
// above threshold in one frame. Append-only; only the reviewed flag is
// mutated after creation.
type Detection struct {
	ID             uuid.UUID     `json:"id" db:"id"`
	DetectionType  DetectionType `json:"detection_type" db:"detection_type"`
	Confidence     int           `json:"confidence_score" db:"confidence_score"`
	CriminalID     *uuid.UUID    `json:"criminal_id,omitempty" db:"criminal_id"`
	CaseID         *uuid.UUID    `json:"case_id,omitempty" db:"case_id"`
	SuspectID      *uuid.UUID    `json:"suspect_id,omitempty" db:"suspect_id"`
	SnapshotURL    string        `json:"snapshot_url,omitempty" db:"snapshot_url"`
	VideoURL       string        `json:"video_url,omitempty" db:"video_url"`
	Location       string        `json:"location,omitempty" db:"location"`
	Notes          string        `json:"notes,omitempty" db:"notes"`
	Alerted        bool          `json:"alerted" db:"alerted"`
	Reviewed       bool          `json:"reviewed" db:"reviewed"`
	FrameTimestamp *time.Time    `json:"frame_timestamp,omitempty" db:"frame_timestamp"`
	CreatedAt      time.Time     `json:"created_at" db:"created_at"`
}

// FrameTask is the message published to NATS for worker processing.
// FrameRef is the MinIO object key of the captured still.
type FrameTask struct {
	CameraID  uuid.UUID  `json:"camera_id"`
	FrameID   uuid.UUID  `json:"frame_id"`
	Timestamp time.Time  `json:"timestamp"`
	FrameRef  string     `json:"frame_ref"`
	CaseID    *uuid.UUID `json:"case_id,omitempty"`
	Location  string     `json:"location,omitempty"`
}

// DetectionAlert is published after a run persists records, for live
// broadcast to connected clients.
type DetectionAlert struct {
	DetectionID  uuid.UUID     `json:"detection_id"`
	Type         DetectionType `json:"type"`
	Confidence   int           `json:"confidence"`
	CriminalID   *uuid.UUID    `json:"criminal_id,omitempty"`
	CriminalName string        `json:"criminal_name,omitempty"`
	ThreatLevel  ThreatLevel   `json:"threat_level,omitempty"`
	EvidenceID   *uuid.UUID    `json:"evidence_id,omitempty"`
	CaseID       *uuid.UUID    `json:"case_id,omitempty"`
	Location     string        `json:"location,omitempty"`
	Timestamp    time.Time     `json:"timestamp"`
}
