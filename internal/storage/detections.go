package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/your-org/argus/internal/models"
)

// DetectionFilter narrows ListDetections. Zero-value fields are ignored.
type DetectionFilter struct {
	Type       *models.DetectionType
	CriminalID *uuid.UUID
	CaseID     *uuid.UUID
	From       *time.Time
	To         *time.Time
	Limit      int
	Offset     int
}

// CreateDetection appends one record. Detections are immutable apart from
// the reviewed flag.
func (s *PostgresStore) CreateDetection(ctx context.Context, d *models.Detection) error {
	d.ID = uuid.New()
	return s.pool.QueryRow(ctx,
		`INSERT INTO detections (id, detection_type, confidence_score, criminal_id, case_id, suspect_id,
		 snapshot_url, video_url, location, notes, alerted, reviewed, frame_timestamp)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13) RETURNING created_at`,
		d.ID, d.DetectionType, d.Confidence, d.CriminalID, d.CaseID, d.SuspectID,
		d.SnapshotURL, d.VideoURL, d.Location, d.Notes, d.Alerted, d.Reviewed, d.FrameTimestamp,
	).Scan(&d.CreatedAt)
}

func (s *PostgresStore) GetDetection(ctx context.Context, id uuid.UUID) (*models.Detection, error) {
	d := &models.Detection{}
	err := s.pool.QueryRow(ctx,
		`SELECT id, detection_type, confidence_score, criminal_id, case_id, suspect_id,
		 snapshot_url, video_url, location, notes, alerted, reviewed, frame_timestamp, created_at
		 FROM detections WHERE id = $1`, id,
	).Scan(&d.ID, &d.DetectionType, &d.Confidence, &d.CriminalID, &d.CaseID, &d.SuspectID,
		&d.SnapshotURL, &d.VideoURL, &d.Location, &d.Notes, &d.Alerted, &d.Reviewed,
		&d.FrameTimestamp, &d.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get detection: %w", err)
	}
	return d, nil
}

// ListDetections returns the newest records first, plus the total count for
// the filter.
func (s *PostgresStore) ListDetections(ctx context.Context, f DetectionFilter) ([]models.Detection, int, error) {
	if f.Limit <= 0 {
		f.Limit = 50
	}
	if f.Limit > 500 {
		f.Limit = 500
	}

	where := "WHERE true"
	var args []interface{}
	argIdx := 1

	if f.Type != nil {
		where += fmt.Sprintf(" AND detection_type = $%d", argIdx)
		args = append(args, *f.Type)
		argIdx++
	}
	if f.CriminalID != nil {
		where += fmt.Sprintf(" AND criminal_id = $%d", argIdx)
		args = append(args, *f.CriminalID)
		argIdx++
	}
	if f.CaseID != nil {
		where += fmt.Sprintf(" AND case_id = $%d", argIdx)
		args = append(args, *f.CaseID)
		argIdx++
	}
	if f.From != nil {
		where += fmt.Sprintf(" AND created_at >= $%d", argIdx)
		args = append(args, *f.From)
		argIdx++
	}
	if f.To != nil {
		where += fmt.Sprintf(" AND created_at <= $%d", argIdx)
		args = append(args, *f.To)
		argIdx++
	}

	var total int
	if err := s.pool.QueryRow(ctx, "SELECT COUNT(*) FROM detections "+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count detections: %w", err)
	}

	query := fmt.Sprintf(
		`SELECT id, detection_type, confidence_score, criminal_id, case_id, suspect_id,
		 snapshot_url, video_url, location, notes, alerted, reviewed, frame_timestamp, created_at
		 FROM detections %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		where, argIdx, argIdx+1)
	args = append(args, f.Limit, f.Offset)

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list detections: %w", err)
	}
	defer rows.Close()

	var detections []models.Detection
	for rows.Next() {
		var d models.Detection
		if err := rows.Scan(&d.ID, &d.DetectionType, &d.Confidence, &d.CriminalID, &d.CaseID,
			&d.SuspectID, &d.SnapshotURL, &d.VideoURL, &d.Location, &d.Notes, &d.Alerted,
			&d.Reviewed, &d.FrameTimestamp, &d.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("scan detection: %w", err)
		}
		detections = append(detections, d)
	}
	return detections, total, nil
}

// MarkReviewed flips the single mutable field on a detection record.
func (s *PostgresStore) MarkReviewed(ctx context.Context, id uuid.UUID, reviewed bool) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE detections SET reviewed = $1 WHERE id = $2`, reviewed, id)
	if err != nil {
		return fmt.Errorf("mark reviewed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("detection not found")
	}
	return nil
}
