package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/your-org/argus/internal/config"
	"github.com/your-org/argus/internal/models"
)

type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(cfg config.DatabaseConfig) (*PostgresStore, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}
	poolCfg.MaxConns = int32(cfg.MaxConns)

	pool, err := pgxpool.NewWithConfig(context.Background(), poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}

	if err := pool.Ping(context.Background()); err != nil {
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) Close() {
	s.pool.Close()
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// --- Criminals ---

const criminalColumns = `id, name, photo_url, threat_level, is_active, age_range, gender, ethnicity,
	height, weight, build, distinguishing_marks, known_offenses, aliases,
	last_known_location, warrant_status, created_at, updated_at`

func scanCriminal(row pgx.Row, c *models.Criminal) error {
	return row.Scan(&c.ID, &c.Name, &c.PhotoURL, &c.ThreatLevel, &c.IsActive,
		&c.AgeRange, &c.Gender, &c.Ethnicity, &c.Height, &c.Weight, &c.Build,
		&c.DistinguishingMarks, &c.KnownOffenses, &c.Aliases,
		&c.LastKnownLocation, &c.WarrantStatus, &c.CreatedAt, &c.UpdatedAt)
}

func (s *PostgresStore) CreateCriminal(ctx context.Context, c *models.Criminal) error {
	c.ID = uuid.New()
	if c.ThreatLevel == "" {
		c.ThreatLevel = models.ThreatMedium
	}
	return s.pool.QueryRow(ctx,
		`INSERT INTO criminals (id, name, photo_url, threat_level, is_active, age_range, gender, ethnicity,
		 height, weight, build, distinguishing_marks, known_offenses, aliases, last_known_location, warrant_status)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		 RETURNING created_at, updated_at`,
		c.ID, c.Name, c.PhotoURL, c.ThreatLevel, c.IsActive, c.AgeRange, c.Gender, c.Ethnicity,
		c.Height, c.Weight, c.Build, c.DistinguishingMarks, c.KnownOffenses, c.Aliases,
		c.LastKnownLocation, c.WarrantStatus,
	).Scan(&c.CreatedAt, &c.UpdatedAt)
}

func (s *PostgresStore) GetCriminal(ctx context.Context, id uuid.UUID) (*models.Criminal, error) {
	c := &models.Criminal{}
	err := scanCriminal(s.pool.QueryRow(ctx,
		`SELECT `+criminalColumns+` FROM criminals WHERE id = $1`, id), c)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get criminal: %w", err)
	}
	return c, nil
}

func (s *PostgresStore) ListCriminals(ctx context.Context) ([]models.Criminal, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+criminalColumns+` FROM criminals ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list criminals: %w", err)
	}
	defer rows.Close()

	var criminals []models.Criminal
	for rows.Next() {
		var c models.Criminal
		if err := scanCriminal(rows, &c); err != nil {
			return nil, fmt.Errorf("scan criminal: %w", err)
		}
		criminals = append(criminals, c)
	}
	return criminals, nil
}

// ActiveCriminals returns the watchlist snapshot a detection run compares
// against: active profiles with a reference photo.
func (s *PostgresStore) ActiveCriminals(ctx context.Context) ([]models.Criminal, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+criminalColumns+` FROM criminals WHERE is_active AND photo_url <> '' ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("active criminals: %w", err)
	}
	defer rows.Close()

	var criminals []models.Criminal
	for rows.Next() {
		var c models.Criminal
		if err := scanCriminal(rows, &c); err != nil {
			return nil, fmt.Errorf("scan criminal: %w", err)
		}
		criminals = append(criminals, c)
	}
	return criminals, nil
}

func (s *PostgresStore) UpdateCriminal(ctx context.Context, c *models.Criminal) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE criminals SET name = $1, photo_url = $2, threat_level = $3, is_active = $4,
		 age_range = $5, gender = $6, ethnicity = $7, height = $8, weight = $9, build = $10,
		 distinguishing_marks = $11, known_offenses = $12, aliases = $13,
		 last_known_location = $14, warrant_status = $15, updated_at = now()
		 WHERE id = $16`,
		c.Name, c.PhotoURL, c.ThreatLevel, c.IsActive, c.AgeRange, c.Gender, c.Ethnicity,
		c.Height, c.Weight, c.Build, c.DistinguishingMarks, c.KnownOffenses, c.Aliases,
		c.LastKnownLocation, c.WarrantStatus, c.ID)
	if err != nil {
		return fmt.Errorf("update criminal: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("criminal not found")
	}
	return nil
}

func (s *PostgresStore) DeleteCriminal(ctx context.Context, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM criminals WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete criminal: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("criminal not found")
	}
	return nil
}

// --- Cases ---

func (s *PostgresStore) CreateCase(ctx context.Context, c *models.Case) error {
	c.ID = uuid.New()
	if c.Status == "" {
		c.Status = models.CaseActive
	}
	return s.pool.QueryRow(ctx,
		`INSERT INTO cases (id, case_number, title, description, status, officer_name, officer_badge, incident_date, location)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9) RETURNING created_at, updated_at`,
		c.ID, c.CaseNumber, c.Title, c.Description, c.Status, c.OfficerName, c.OfficerBadge,
		c.IncidentDate, c.Location,
	).Scan(&c.CreatedAt, &c.UpdatedAt)
}

func (s *PostgresStore) GetCase(ctx context.Context, id uuid.UUID) (*models.Case, error) {
	c := &models.Case{}
	err := s.pool.QueryRow(ctx,
		`SELECT id, case_number, title, description, status, officer_name, officer_badge, incident_date, location, created_at, updated_at
		 FROM cases WHERE id = $1`, id,
	).Scan(&c.ID, &c.CaseNumber, &c.Title, &c.Description, &c.Status, &c.OfficerName,
		&c.OfficerBadge, &c.IncidentDate, &c.Location, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get case: %w", err)
	}
	return c, nil
}

func (s *PostgresStore) ListCases(ctx context.Context, status *models.CaseStatus) ([]models.Case, error) {
	query := `SELECT id, case_number, title, description, status, officer_name, officer_badge, incident_date, location, created_at, updated_at
		 FROM cases`
	var args []interface{}
	if status != nil {
		query += ` WHERE status = $1`
		args = append(args, *status)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list cases: %w", err)
	}
	defer rows.Close()

	var cases []models.Case
	for rows.Next() {
		var c models.Case
		if err := rows.Scan(&c.ID, &c.CaseNumber, &c.Title, &c.Description, &c.Status,
			&c.OfficerName, &c.OfficerBadge, &c.IncidentDate, &c.Location,
			&c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan case: %w", err)
		}
		cases = append(cases, c)
	}
	return cases, nil
}

func (s *PostgresStore) UpdateCaseStatus(ctx context.Context, id uuid.UUID, status models.CaseStatus) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE cases SET status = $1, updated_at = now() WHERE id = $2`, status, id)
	if err != nil {
		return fmt.Errorf("update case status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("case not found")
	}
	return nil
}

// --- Suspects ---

func (s *PostgresStore) CreateSuspect(ctx context.Context, sp *models.Suspect) error {
	sp.ID = uuid.New()
	if sp.ExtractedFeatures == nil {
		sp.ExtractedFeatures = json.RawMessage("{}")
	}
	return s.pool.QueryRow(ctx,
		`INSERT INTO suspects (id, case_id, name, age_range, gender, ethnicity, height, build, distinguishing_marks, extracted_features, is_wanted)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11) RETURNING created_at, updated_at`,
		sp.ID, sp.CaseID, sp.Name, sp.AgeRange, sp.Gender, sp.Ethnicity, sp.Height, sp.Build,
		sp.DistinguishingMarks, sp.ExtractedFeatures, sp.IsWanted,
	).Scan(&sp.CreatedAt, &sp.UpdatedAt)
}

func (s *PostgresStore) ListSuspects(ctx context.Context, caseID uuid.UUID) ([]models.Suspect, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, case_id, name, age_range, gender, ethnicity, height, build, distinguishing_marks, extracted_features, is_wanted, created_at, updated_at
		 FROM suspects WHERE case_id = $1 ORDER BY created_at DESC`, caseID)
	if err != nil {
		return nil, fmt.Errorf("list suspects: %w", err)
	}
	defer rows.Close()

	var suspects []models.Suspect
	for rows.Next() {
		var sp models.Suspect
		if err := rows.Scan(&sp.ID, &sp.CaseID, &sp.Name, &sp.AgeRange, &sp.Gender, &sp.Ethnicity,
			&sp.Height, &sp.Build, &sp.DistinguishingMarks, &sp.ExtractedFeatures, &sp.IsWanted,
			&sp.CreatedAt, &sp.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan suspect: %w", err)
		}
		suspects = append(suspects, sp)
	}
	return suspects, nil
}

// --- Evidence ---

func (s *PostgresStore) CreateEvidence(ctx context.Context, ev *models.Evidence) error {
	ev.ID = uuid.New()
	if ev.Metadata == nil {
		ev.Metadata = json.RawMessage("{}")
	}
	return s.pool.QueryRow(ctx,
		`INSERT INTO evidence (id, case_id, suspect_id, type, image_url, notes, metadata)
		 VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING created_at`,
		ev.ID, ev.CaseID, ev.SuspectID, ev.Type, ev.ImageURL, ev.Notes, ev.Metadata,
	).Scan(&ev.CreatedAt)
}

func (s *PostgresStore) GetEvidence(ctx context.Context, id uuid.UUID) (*models.Evidence, error) {
	ev := &models.Evidence{}
	err := s.pool.QueryRow(ctx,
		`SELECT id, case_id, suspect_id, type, image_url, notes, metadata, created_at
		 FROM evidence WHERE id = $1`, id,
	).Scan(&ev.ID, &ev.CaseID, &ev.SuspectID, &ev.Type, &ev.ImageURL, &ev.Notes, &ev.Metadata, &ev.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get evidence: %w", err)
	}
	return ev, nil
}

func (s *PostgresStore) CaseEvidence(ctx context.Context, caseID uuid.UUID) ([]models.Evidence, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, case_id, suspect_id, type, image_url, notes, metadata, created_at
		 FROM evidence WHERE case_id = $1 ORDER BY created_at DESC`, caseID)
	if err != nil {
		return nil, fmt.Errorf("case evidence: %w", err)
	}
	defer rows.Close()

	var items []models.Evidence
	for rows.Next() {
		var ev models.Evidence
		if err := rows.Scan(&ev.ID, &ev.CaseID, &ev.SuspectID, &ev.Type, &ev.ImageURL,
			&ev.Notes, &ev.Metadata, &ev.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan evidence: %w", err)
		}
		items = append(items, ev)
	}
	return items, nil
}

func (s *PostgresStore) DeleteEvidence(ctx context.Context, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM evidence WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete evidence: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("evidence not found")
	}
	return nil
}

// --- Cameras ---

func (s *PostgresStore) CreateCamera(ctx context.Context, cam *models.Camera) error {
	cam.ID = uuid.New()
	cam.Status = models.CameraStopped
	return s.pool.QueryRow(ctx,
		`INSERT INTO cameras (id, name, snapshot_url, case_id, location, interval_seconds, status)
		 VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING created_at, updated_at`,
		cam.ID, cam.Name, cam.SnapshotURL, cam.CaseID, cam.Location, cam.IntervalSeconds, cam.Status,
	).Scan(&cam.CreatedAt, &cam.UpdatedAt)
}

func (s *PostgresStore) GetCamera(ctx context.Context, id uuid.UUID) (*models.Camera, error) {
	cam := &models.Camera{}
	err := s.pool.QueryRow(ctx,
		`SELECT id, name, snapshot_url, case_id, location, interval_seconds, status, error_message, created_at, updated_at
		 FROM cameras WHERE id = $1`, id,
	).Scan(&cam.ID, &cam.Name, &cam.SnapshotURL, &cam.CaseID, &cam.Location,
		&cam.IntervalSeconds, &cam.Status, &cam.ErrorMessage, &cam.CreatedAt, &cam.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get camera: %w", err)
	}
	return cam, nil
}

func (s *PostgresStore) ListCameras(ctx context.Context) ([]models.Camera, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, name, snapshot_url, case_id, location, interval_seconds, status, error_message, created_at, updated_at
		 FROM cameras ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list cameras: %w", err)
	}
	defer rows.Close()

	var cameras []models.Camera
	for rows.Next() {
		var cam models.Camera
		if err := rows.Scan(&cam.ID, &cam.Name, &cam.SnapshotURL, &cam.CaseID, &cam.Location,
			&cam.IntervalSeconds, &cam.Status, &cam.ErrorMessage, &cam.CreatedAt, &cam.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan camera: %w", err)
		}
		cameras = append(cameras, cam)
	}
	return cameras, nil
}

func (s *PostgresStore) UpdateCameraStatus(ctx context.Context, id uuid.UUID, status models.CameraStatus, errMsg string) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE cameras SET status = $1, error_message = $2, updated_at = now() WHERE id = $3`,
		status, errMsg, id)
	return err
}

func (s *PostgresStore) DeleteCamera(ctx context.Context, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM cameras WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete camera: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("camera not found")
	}
	return nil
}
