package sampler

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/your-org/argus/internal/config"
	"github.com/your-org/argus/internal/models"
	"github.com/your-org/argus/internal/observability"
	"github.com/your-org/argus/internal/queue"
	"github.com/your-org/argus/internal/storage"
)

// CameraCommand represents a start/stop command from the API.
type CameraCommand struct {
	Action          string `json:"action"` // start, stop
	CameraID        string `json:"camera_id"`
	SnapshotURL     string `json:"snapshot_url"`
	IntervalSeconds int    `json:"interval_seconds"`
	CaseID          string `json:"case_id,omitempty"`
	Location        string `json:"location,omitempty"`
}

type activeCamera struct {
	cancel context.CancelFunc
}

// Manager owns the per-camera sampling loops: one goroutine per running
// camera, fetching a still every interval and publishing it as a frame task.
type Manager struct {
	producer *queue.Producer
	minio    *storage.MinIOStore
	db       *storage.PostgresStore
	source   *StillSource
	cfg      config.SamplerConfig

	mu      sync.RWMutex
	cameras map[string]*activeCamera
}

func NewManager(producer *queue.Producer, minio *storage.MinIOStore, db *storage.PostgresStore, cfg config.SamplerConfig) *Manager {
	return &Manager{
		producer: producer,
		minio:    minio,
		db:       db,
		source:   NewStillSource(time.Duration(cfg.CaptureTimeoutSeconds) * time.Second),
		cfg:      cfg,
		cameras:  make(map[string]*activeCamera),
	}
}

// HandleCommand processes a camera control command.
func (m *Manager) HandleCommand(ctx context.Context, cmd CameraCommand) error {
	switch cmd.Action {
	case "start":
		return m.startCamera(ctx, cmd)
	case "stop":
		return m.stopCamera(cmd.CameraID)
	default:
		return fmt.Errorf("unknown action: %s", cmd.Action)
	}
}

func (m *Manager) startCamera(ctx context.Context, cmd CameraCommand) error {
	interval := time.Duration(cmd.IntervalSeconds) * time.Second
	if interval <= 0 {
		interval = time.Duration(m.cfg.DefaultIntervalSeconds) * time.Second
	}

	// Check and insert under one lock so concurrent start commands for the
	// same camera cannot both launch a loop.
	m.mu.Lock()
	if _, exists := m.cameras[cmd.CameraID]; exists {
		m.mu.Unlock()
		return fmt.Errorf("camera %s already running", cmd.CameraID)
	}
	camCtx, cancel := context.WithCancel(ctx)
	m.cameras[cmd.CameraID] = &activeCamera{cancel: cancel}
	m.mu.Unlock()

	observability.ActiveCameras.Inc()
	m.updateStatus(cmd.CameraID, models.CameraRunning, "")

	slog.Info("starting camera sampling",
		"camera_id", cmd.CameraID, "interval", interval, "location", cmd.Location)

	go m.sampleLoop(camCtx, cmd, interval)
	return nil
}

// sampleLoop fetches one still per tick. Captures run inline, so a capture
// slower than the interval makes the ticker drop ticks instead of queueing
// a backlog. Consecutive failures mark the camera errored and end the loop.
func (m *Manager) sampleLoop(ctx context.Context, cmd CameraCommand, interval time.Duration) {
	defer func() {
		m.mu.Lock()
		delete(m.cameras, cmd.CameraID)
		m.mu.Unlock()
		observability.ActiveCameras.Dec()
		slog.Info("camera sampling stopped", "camera_id", cmd.CameraID)
	}()

	const maxConsecutiveFailures = 5
	failures := 0

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			m.updateStatus(cmd.CameraID, models.CameraStopped, "")
			return
		case <-ticker.C:
		}

		if err := m.captureOnce(ctx, cmd); err != nil {
			if ctx.Err() != nil {
				m.updateStatus(cmd.CameraID, models.CameraStopped, "")
				return
			}
			failures++
			slog.Warn("capture failed",
				"camera_id", cmd.CameraID, "failures", failures, "error", err)
			if failures >= maxConsecutiveFailures {
				m.updateStatus(cmd.CameraID, models.CameraError,
					fmt.Sprintf("sampling failed after %d attempts: %v", failures, err))
				return
			}
			continue
		}
		failures = 0
	}
}

func (m *Manager) captureOnce(ctx context.Context, cmd CameraCommand) error {
	data, contentType, err := m.source.Capture(cmd.SnapshotURL)
	if err != nil {
		return err
	}

	frameID := uuid.New()
	key := fmt.Sprintf("frames/%s/%s.jpg", cmd.CameraID, frameID)
	if err := m.minio.PutObject(ctx, key, data, contentType); err != nil {
		return fmt.Errorf("upload frame: %w", err)
	}

	cameraID, _ := uuid.Parse(cmd.CameraID)
	task := models.FrameTask{
		CameraID:  cameraID,
		FrameID:   frameID,
		Timestamp: time.Now().UTC(),
		FrameRef:  key,
		Location:  cmd.Location,
	}
	if cmd.CaseID != "" {
		if caseID, err := uuid.Parse(cmd.CaseID); err == nil {
			task.CaseID = &caseID
		}
	}

	if err := m.producer.PublishFrame(ctx, task); err != nil {
		return fmt.Errorf("publish frame task: %w", err)
	}
	return nil
}

func (m *Manager) stopCamera(cameraID string) error {
	m.mu.RLock()
	cam, exists := m.cameras[cameraID]
	m.mu.RUnlock()

	if !exists {
		return nil // already stopped
	}

	cam.cancel()
	slog.Info("stop command sent", "camera_id", cameraID)
	return nil
}

// ActiveCount returns the number of currently sampling cameras.
func (m *Manager) ActiveCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.cameras)
}

// StopAll stops all running cameras.
func (m *Manager) StopAll() {
	m.mu.RLock()
	ids := make([]string, 0, len(m.cameras))
	for id := range m.cameras {
		ids = append(ids, id)
	}
	m.mu.RUnlock()

	for _, id := range ids {
		_ = m.stopCamera(id)
	}
}

func (m *Manager) updateStatus(cameraID string, status models.CameraStatus, errMsg string) {
	id, err := uuid.Parse(cameraID)
	if err != nil {
		return
	}
	if err := m.db.UpdateCameraStatus(context.Background(), id, status, errMsg); err != nil {
		slog.Error("update camera status", "camera_id", cameraID, "error", err)
	}
}

// ParseCommand parses a NATS message into a CameraCommand.
func ParseCommand(data []byte) (CameraCommand, error) {
	var cmd CameraCommand
	if err := json.Unmarshal(data, &cmd); err != nil {
		return cmd, fmt.Errorf("parse command: %w", err)
	}
	return cmd, nil
}
