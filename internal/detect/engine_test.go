package detect

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"

	"github.com/your-org/argus/internal/config"
	"github.com/your-org/argus/internal/models"
	"github.com/your-org/argus/internal/vision"
)

type stubSource struct {
	criminals []models.Criminal
	evidence  []models.Evidence
	evErr     error
}

func (s *stubSource) ActiveCriminals(context.Context) ([]models.Criminal, error) {
	return s.criminals, nil
}

func (s *stubSource) CaseEvidence(context.Context, uuid.UUID) ([]models.Evidence, error) {
	return s.evidence, s.evErr
}

type stubRecorder struct {
	mu      sync.Mutex
	created []*models.Detection
	err     error
}

func (r *stubRecorder) CreateDetection(_ context.Context, d *models.Detection) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	d.ID = uuid.New()
	r.created = append(r.created, d)
	return nil
}

type stubSnapshots struct {
	keys []string
	err  error
}

func (s *stubSnapshots) PutObject(_ context.Context, key string, _ []byte, _ string) error {
	if s.err != nil {
		return s.err
	}
	s.keys = append(s.keys, key)
	return nil
}

// passthroughResolver leaves refs untouched, like data URIs and remote URLs.
type passthroughResolver struct{}

func (passthroughResolver) Resolve(_ context.Context, ref string) (string, error) {
	return ref, nil
}

type stubAlerts struct {
	mu     sync.Mutex
	alerts []models.DetectionAlert
}

func (a *stubAlerts) PublishAlert(_ context.Context, alert models.DetectionAlert) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.alerts = append(a.alerts, alert)
	return nil
}

func testDetectionConfig() config.DetectionConfig {
	return config.DetectionConfig{CriminalThreshold: 70, EvidenceThreshold: 75, Concurrency: 4}
}

const extractionHeader = "Detect and describe all faces"

// scriptClient answers the extraction prompt with facesJSON and scores each
// comparison by the candidate's image ref.
func scriptClient(facesJSON string, scores map[string]string, scoreErrs map[string]error) *stubClient {
	client := &stubClient{}
	client.complete = func(_ context.Context, instruction string, images ...string) (string, error) {
		if strings.HasPrefix(instruction, extractionHeader) {
			return facesJSON, nil
		}
		if len(images) < 2 {
			return "", fmt.Errorf("score call without candidate image")
		}
		ref := images[1]
		if err, ok := scoreErrs[ref]; ok {
			return "", err
		}
		if reply, ok := scores[ref]; ok {
			return reply, nil
		}
		return "0", nil
	}
	return client
}

func oneFace() string {
	return `{"faces":[{"description":"male, 30s","position":"center"}]}`
}

func newTestEngine(client vision.Client, source *stubSource, rec *stubRecorder, snaps *stubSnapshots, alerts AlertPublisher) *Engine {
	return NewEngine(client, source, rec, snaps, passthroughResolver{}, alerts, testDetectionConfig())
}

func TestRunThresholdBoundary(t *testing.T) {
	at := models.Criminal{ID: uuid.New(), Name: "At Threshold", PhotoURL: "mug-at", IsActive: true}
	below := models.Criminal{ID: uuid.New(), Name: "Below Threshold", PhotoURL: "mug-below", IsActive: true}

	client := scriptClient(oneFace(), map[string]string{
		"mug-at":    "70",
		"mug-below": "69",
	}, nil)
	rec := &stubRecorder{}
	engine := newTestEngine(client, &stubSource{criminals: []models.Criminal{at, below}}, rec, &stubSnapshots{}, nil)

	res, err := engine.Run(context.Background(), RunInput{
		Frame: Frame{Ref: "http://example.com/frame.jpg"},
		Mode:  models.DetectionRealtime,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Matches) != 1 {
		t.Fatalf("got %d matches, want 1", len(res.Matches))
	}
	if res.Matches[0].CandidateID != at.ID || res.Matches[0].Confidence != 70 {
		t.Fatalf("unexpected match: %+v", res.Matches[0])
	}
	if len(rec.created) != 1 {
		t.Fatalf("got %d records, want 1", len(rec.created))
	}
	if rec.created[0].CriminalID == nil || *rec.created[0].CriminalID != at.ID {
		t.Fatalf("record not linked to matched criminal: %+v", rec.created[0])
	}
}

func TestRunHighScorePersistsLowScoreDoesNot(t *testing.T) {
	jane := models.Criminal{ID: uuid.New(), Name: "Jane Roe", PhotoURL: "mug-jane", IsActive: true}

	for _, tt := range []struct {
		reply string
		want  int
	}{
		{"85", 1},
		{"55", 0},
	} {
		client := scriptClient(oneFace(), map[string]string{"mug-jane": tt.reply}, nil)
		rec := &stubRecorder{}
		engine := newTestEngine(client, &stubSource{criminals: []models.Criminal{jane}}, rec, &stubSnapshots{}, nil)

		res, err := engine.Run(context.Background(), RunInput{
			Frame: Frame{Ref: "frame"},
			Mode:  models.DetectionRealtime,
		})
		if err != nil {
			t.Fatal(err)
		}
		if len(rec.created) != tt.want {
			t.Fatalf("score %s: got %d records, want %d", tt.reply, len(rec.created), tt.want)
		}
		if len(res.Matches) != tt.want {
			t.Fatalf("score %s: got %d matches, want %d", tt.reply, len(res.Matches), tt.want)
		}
	}
}

func TestRunComparisonFailureIsolation(t *testing.T) {
	good := models.Criminal{ID: uuid.New(), Name: "Good", PhotoURL: "mug-good", IsActive: true}
	bad := models.Criminal{ID: uuid.New(), Name: "Bad", PhotoURL: "mug-bad", IsActive: true}
	caseID := uuid.New()
	ev := models.Evidence{ID: uuid.New(), CaseID: caseID, Type: models.EvidenceSketch, ImageURL: "sketch"}

	client := scriptClient(oneFace(),
		map[string]string{"mug-good": "90", "sketch": "80"},
		map[string]error{"mug-bad": &vision.UpstreamError{Kind: vision.KindUnavailable, Status: 500, Message: "boom"}},
	)
	rec := &stubRecorder{}
	engine := newTestEngine(client,
		&stubSource{criminals: []models.Criminal{good, bad}, evidence: []models.Evidence{ev}},
		rec, &stubSnapshots{}, nil)

	res, err := engine.Run(context.Background(), RunInput{
		Frame:  Frame{Ref: "frame"},
		Mode:   models.DetectionRealtime,
		CaseID: &caseID,
	})
	if err != nil {
		t.Fatalf("one failed comparison must not abort the run: %v", err)
	}
	if len(res.Matches) != 2 {
		t.Fatalf("got %d matches, want 2", len(res.Matches))
	}
	// Sorted by confidence, highest first.
	if res.Matches[0].CandidateID != good.ID || res.Matches[1].CandidateID != ev.ID {
		t.Fatalf("unexpected match order: %+v", res.Matches)
	}
	if len(rec.created) != 2 {
		t.Fatalf("got %d records, want 2", len(rec.created))
	}
}

func TestRunEvidenceMatchPersistsWithoutCriminalLink(t *testing.T) {
	caseID := uuid.New()
	ev := models.Evidence{ID: uuid.New(), CaseID: caseID, Type: models.EvidenceGenerated, ImageURL: "gen"}

	client := scriptClient(oneFace(), map[string]string{"gen": "80"}, nil)
	rec := &stubRecorder{}
	engine := newTestEngine(client, &stubSource{evidence: []models.Evidence{ev}}, rec, &stubSnapshots{}, nil)

	res, err := engine.Run(context.Background(), RunInput{
		Frame:  Frame{Ref: "frame"},
		Mode:   models.DetectionEvidence,
		CaseID: &caseID,
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Matches) != 1 || res.Matches[0].Kind != KindEvidence {
		t.Fatalf("unexpected matches: %+v", res.Matches)
	}
	d := rec.created[0]
	if d.CriminalID != nil {
		t.Fatal("evidence match must not carry a criminal link")
	}
	if !strings.Contains(d.Notes, ev.ID.String()) {
		t.Fatalf("notes missing evidence id: %q", d.Notes)
	}
	if d.CaseID == nil || *d.CaseID != caseID {
		t.Fatal("record not linked to case")
	}
}

func TestRunEvidenceBelowThresholdNotPersisted(t *testing.T) {
	caseID := uuid.New()
	ev := models.Evidence{ID: uuid.New(), CaseID: caseID, Type: models.EvidenceSketch, ImageURL: "sketch"}

	// 74 would pass the criminal threshold but not the stricter evidence one.
	client := scriptClient(oneFace(), map[string]string{"sketch": "74"}, nil)
	rec := &stubRecorder{}
	engine := newTestEngine(client, &stubSource{evidence: []models.Evidence{ev}}, rec, &stubSnapshots{}, nil)

	res, err := engine.Run(context.Background(), RunInput{
		Frame:  Frame{Ref: "frame"},
		Mode:   models.DetectionEvidence,
		CaseID: &caseID,
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Matches) != 0 || len(rec.created) != 0 {
		t.Fatalf("74 must not persist against evidence threshold 75: %+v", res.Matches)
	}
}

func TestRunRateLimitAbortsBeforeScoring(t *testing.T) {
	criminal := models.Criminal{ID: uuid.New(), Name: "X", PhotoURL: "mug", IsActive: true}

	scoreCalls := 0
	client := &stubClient{complete: func(_ context.Context, instruction string, _ ...string) (string, error) {
		if strings.HasPrefix(instruction, extractionHeader) {
			return "", &vision.UpstreamError{Kind: vision.KindRateLimited, Status: 429, Message: "rate limited"}
		}
		scoreCalls++
		return "0", nil
	}}
	rec := &stubRecorder{}
	engine := newTestEngine(client, &stubSource{criminals: []models.Criminal{criminal}}, rec, &stubSnapshots{}, nil)

	_, err := engine.Run(context.Background(), RunInput{Frame: Frame{Ref: "frame"}, Mode: models.DetectionRealtime})
	if !vision.IsRateLimited(err) {
		t.Fatalf("expected rate-limited error, got %v", err)
	}
	if scoreCalls != 0 {
		t.Fatalf("scored %d candidates after failed extraction, want 0", scoreCalls)
	}
	if len(rec.created) != 0 {
		t.Fatal("no records may persist after an aborted run")
	}
}

func TestRunZeroFacesSkipsScoring(t *testing.T) {
	criminal := models.Criminal{ID: uuid.New(), Name: "X", PhotoURL: "mug", IsActive: true}

	client := scriptClient(`{"faces":[]}`, nil, nil)
	rec := &stubRecorder{}
	engine := newTestEngine(client, &stubSource{criminals: []models.Criminal{criminal}}, rec, &stubSnapshots{}, nil)

	res, err := engine.Run(context.Background(), RunInput{Frame: Frame{Ref: "frame"}, Mode: models.DetectionRealtime})
	if err != nil {
		t.Fatal(err)
	}
	if res.FaceCount != 0 || len(res.Matches) != 0 {
		t.Fatalf("unexpected result: %+v", res)
	}
	if client.calls != 1 {
		t.Fatalf("made %d model calls, want 1 (extraction only)", client.calls)
	}
}

func TestRunCancellationStopsScheduling(t *testing.T) {
	criminals := make([]models.Criminal, 6)
	for i := range criminals {
		criminals[i] = models.Criminal{
			ID: uuid.New(), Name: fmt.Sprintf("Suspect %d", i),
			PhotoURL: fmt.Sprintf("mug-%d", i), IsActive: true,
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mu sync.Mutex
	scoreCalls := 0
	client := &stubClient{}
	client.complete = func(_ context.Context, instruction string, _ ...string) (string, error) {
		if strings.HasPrefix(instruction, extractionHeader) {
			return oneFace(), nil
		}
		mu.Lock()
		scoreCalls++
		mu.Unlock()
		cancel()
		return "", context.Canceled
	}

	rec := &stubRecorder{}
	engine := NewEngine(client, &stubSource{criminals: criminals}, rec, &stubSnapshots{},
		passthroughResolver{}, nil,
		config.DetectionConfig{CriminalThreshold: 70, EvidenceThreshold: 75, Concurrency: 1})

	res, err := engine.Run(ctx, RunInput{Frame: Frame{Ref: "frame"}, Mode: models.DetectionRealtime})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// With one comparison in flight at a time, at most one more can have been
	// handed off before the scheduling loop observes the cancelled context.
	// In-flight calls complete; the remaining candidates are never scored.
	if scoreCalls < 1 || scoreCalls > 2 {
		t.Fatalf("ran %d of %d comparisons after cancellation, want at most 2", scoreCalls, len(criminals))
	}
	if len(res.Matches) != 0 || len(rec.created) != 0 {
		t.Fatalf("cancelled run must not persist matches: %+v", res.Matches)
	}
}

func TestRunBestScorePerCandidate(t *testing.T) {
	criminal := models.Criminal{ID: uuid.New(), Name: "X", PhotoURL: "mug", IsActive: true}

	// Two faces against one candidate; the second face scores higher. Only
	// one record, carrying the best score.
	twoFaces := `{"faces":[{"description":"face one","position":"left"},{"description":"face two","position":"right"}]}`
	scores := []string{"60", "90"}
	var mu sync.Mutex
	client := &stubClient{}
	client.complete = func(_ context.Context, instruction string, _ ...string) (string, error) {
		if strings.HasPrefix(instruction, extractionHeader) {
			return twoFaces, nil
		}
		mu.Lock()
		defer mu.Unlock()
		reply := scores[0]
		scores = scores[1:]
		return reply, nil
	}

	rec := &stubRecorder{}
	engine := newTestEngine(client, &stubSource{criminals: []models.Criminal{criminal}}, rec, &stubSnapshots{}, nil)

	res, err := engine.Run(context.Background(), RunInput{Frame: Frame{Ref: "frame"}, Mode: models.DetectionRealtime})
	if err != nil {
		t.Fatal(err)
	}
	if res.FaceCount != 2 {
		t.Fatalf("face count = %d, want 2", res.FaceCount)
	}
	if len(rec.created) != 1 {
		t.Fatalf("got %d records, want 1 per candidate", len(rec.created))
	}
	if rec.created[0].Confidence != 90 {
		t.Fatalf("confidence = %d, want best score 90", rec.created[0].Confidence)
	}
}

func TestRunExcludesSourceEvidence(t *testing.T) {
	caseID := uuid.New()
	source := models.Evidence{ID: uuid.New(), CaseID: caseID, Type: models.EvidenceSketch, ImageURL: "source"}
	other := models.Evidence{ID: uuid.New(), CaseID: caseID, Type: models.EvidenceGenerated, ImageURL: "other"}

	client := scriptClient(oneFace(), map[string]string{"source": "99", "other": "80"}, nil)
	rec := &stubRecorder{}
	engine := newTestEngine(client, &stubSource{evidence: []models.Evidence{source, other}}, rec, &stubSnapshots{}, nil)

	res, err := engine.Run(context.Background(), RunInput{
		Frame:             Frame{Ref: "frame"},
		Mode:              models.DetectionEvidence,
		CaseID:            &caseID,
		ExcludeEvidenceID: &source.ID,
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Matches) != 1 || res.Matches[0].CandidateID != other.ID {
		t.Fatalf("source evidence must be excluded from its own run: %+v", res.Matches)
	}
}

func TestRunSnapshotUpload(t *testing.T) {
	criminal := models.Criminal{ID: uuid.New(), Name: "X", PhotoURL: "mug", IsActive: true}
	frameRef := "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString([]byte("jpegbytes"))

	t.Run("inline frame is stored under a snapshot key", func(t *testing.T) {
		client := scriptClient(oneFace(), map[string]string{"mug": "90"}, nil)
		rec := &stubRecorder{}
		snaps := &stubSnapshots{}
		engine := newTestEngine(client, &stubSource{criminals: []models.Criminal{criminal}}, rec, snaps, nil)

		if _, err := engine.Run(context.Background(), RunInput{Frame: Frame{Ref: frameRef}, Mode: models.DetectionRealtime}); err != nil {
			t.Fatal(err)
		}
		if len(snaps.keys) != 1 || !strings.HasPrefix(snaps.keys[0], "snapshots/cctv/") {
			t.Fatalf("unexpected snapshot keys: %v", snaps.keys)
		}
		if rec.created[0].SnapshotURL != snaps.keys[0] {
			t.Fatalf("record snapshot %q, want stored key %q", rec.created[0].SnapshotURL, snaps.keys[0])
		}
	})

	t.Run("upload failure falls back to the frame reference", func(t *testing.T) {
		client := scriptClient(oneFace(), map[string]string{"mug": "90"}, nil)
		rec := &stubRecorder{}
		snaps := &stubSnapshots{err: errors.New("bucket unavailable")}
		engine := newTestEngine(client, &stubSource{criminals: []models.Criminal{criminal}}, rec, snaps, nil)

		if _, err := engine.Run(context.Background(), RunInput{Frame: Frame{Ref: frameRef}, Mode: models.DetectionRealtime}); err != nil {
			t.Fatal(err)
		}
		if len(rec.created) != 1 {
			t.Fatal("record must still persist when the snapshot upload fails")
		}
		if rec.created[0].SnapshotURL != frameRef {
			t.Fatalf("snapshot url = %q, want frame ref fallback", rec.created[0].SnapshotURL)
		}
	})
}

func TestRunPublishesAlerts(t *testing.T) {
	criminal := models.Criminal{
		ID: uuid.New(), Name: "Armed Robber", PhotoURL: "mug",
		ThreatLevel: models.ThreatHigh, IsActive: true,
	}

	client := scriptClient(oneFace(), map[string]string{"mug": "88"}, nil)
	rec := &stubRecorder{}
	alerts := &stubAlerts{}
	engine := newTestEngine(client, &stubSource{criminals: []models.Criminal{criminal}}, rec, &stubSnapshots{}, alerts)

	if _, err := engine.Run(context.Background(), RunInput{
		Frame: Frame{Ref: "frame", Location: "Gate 4"},
		Mode:  models.DetectionRealtime,
	}); err != nil {
		t.Fatal(err)
	}
	if len(alerts.alerts) != 1 {
		t.Fatalf("got %d alerts, want 1", len(alerts.alerts))
	}
	a := alerts.alerts[0]
	if a.CriminalName != "Armed Robber" || a.ThreatLevel != models.ThreatHigh || a.Location != "Gate 4" {
		t.Fatalf("unexpected alert: %+v", a)
	}
	if a.DetectionID != rec.created[0].ID {
		t.Fatal("alert not linked to persisted record")
	}
}

func TestRunRecordFailureSkipsCandidate(t *testing.T) {
	criminal := models.Criminal{ID: uuid.New(), Name: "X", PhotoURL: "mug", IsActive: true}

	client := scriptClient(oneFace(), map[string]string{"mug": "90"}, nil)
	rec := &stubRecorder{err: errors.New("db down")}
	engine := newTestEngine(client, &stubSource{criminals: []models.Criminal{criminal}}, rec, &stubSnapshots{}, nil)

	res, err := engine.Run(context.Background(), RunInput{Frame: Frame{Ref: "frame"}, Mode: models.DetectionRealtime})
	if err != nil {
		t.Fatalf("persistence failure must not abort the run: %v", err)
	}
	if len(res.Matches) != 0 {
		t.Fatal("unpersisted candidate must not be reported as a match")
	}
}

func TestRunIdempotentAcrossRepeatedFrames(t *testing.T) {
	criminal := models.Criminal{ID: uuid.New(), Name: "X", PhotoURL: "mug", IsActive: true}

	client := scriptClient(oneFace(), map[string]string{"mug": "90"}, nil)
	rec := &stubRecorder{}
	engine := newTestEngine(client, &stubSource{criminals: []models.Criminal{criminal}}, rec, &stubSnapshots{}, nil)

	for i := 0; i < 3; i++ {
		res, err := engine.Run(context.Background(), RunInput{Frame: Frame{Ref: "frame"}, Mode: models.DetectionRealtime})
		if err != nil {
			t.Fatal(err)
		}
		if len(res.Matches) != 1 {
			t.Fatalf("run %d: got %d matches, want 1", i, len(res.Matches))
		}
	}
	// Each run records independently; there is no cross-run dedup.
	if len(rec.created) != 3 {
		t.Fatalf("got %d records over 3 runs, want 3", len(rec.created))
	}
}
