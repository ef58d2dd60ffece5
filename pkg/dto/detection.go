package dto

import "github.com/google/uuid"

// DetectRealtimeRequest carries one frame for synchronous analysis.
// Frame is a base64 data URI captured by the client.
type DetectRealtimeRequest struct {
	Frame    string     `json:"frame" binding:"required"`
	CaseID   *uuid.UUID `json:"case_id,omitempty"`
	Location string     `json:"location,omitempty"`
}

// DetectMediaRequest analyzes one uploaded image by its reference: either a
// data URI or an object key of previously uploaded media.
type DetectMediaRequest struct {
	MediaRef string     `json:"media_ref" binding:"required"`
	Filename string     `json:"filename,omitempty"`
	CaseID   *uuid.UUID `json:"case_id,omitempty"`
	Location string     `json:"location,omitempty"`
}

// MatchResponse is one candidate that scored at or above its threshold
// during a detection run.
type MatchResponse struct {
	Kind        string     `json:"kind"` // criminal, evidence
	CandidateID uuid.UUID  `json:"candidate_id"`
	Name        string     `json:"name"`
	Confidence  int        `json:"confidence"`
	Description string     `json:"description,omitempty"`
	Position    string     `json:"position,omitempty"`
	DetectionID *uuid.UUID `json:"detection_id,omitempty"`
}

type DetectResponse struct {
	FaceCount int             `json:"face_count"`
	Matches   []MatchResponse `json:"matches"`
}

type DetectionResponse struct {
	ID             uuid.UUID  `json:"id"`
	DetectionType  string     `json:"detection_type"`
	Confidence     int        `json:"confidence_score"`
	CriminalID     *uuid.UUID `json:"criminal_id,omitempty"`
	CaseID         *uuid.UUID `json:"case_id,omitempty"`
	SnapshotURL    string     `json:"snapshot_url,omitempty"`
	VideoURL       string     `json:"video_url,omitempty"`
	Location       string     `json:"location,omitempty"`
	Notes          string     `json:"notes,omitempty"`
	Alerted        bool       `json:"alerted"`
	Reviewed       bool       `json:"reviewed"`
	FrameTimestamp string     `json:"frame_timestamp,omitempty"`
	CreatedAt      string     `json:"created_at"`
}

type DetectionListResponse struct {
	Detections []DetectionResponse `json:"detections"`
	Total      int                 `json:"total"`
}

type DetectionQuery struct {
	Type       string `form:"type"`
	CriminalID string `form:"criminal_id"`
	CaseID     string `form:"case_id"`
	From       string `form:"from"`
	To         string `form:"to"`
	Limit      int    `form:"limit"`
	Offset     int    `form:"offset"`
}

type ReviewRequest struct {
	Reviewed bool `json:"reviewed"`
}
