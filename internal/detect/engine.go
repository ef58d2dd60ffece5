package detect

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/your-org/argus/internal/config"
	"github.com/your-org/argus/internal/models"
	"github.com/your-org/argus/internal/observability"
	"github.com/your-org/argus/internal/vision"
)

// CandidateSource provides the snapshot of comparison targets for one run.
// Each run re-queries; no caching beyond that.
type CandidateSource interface {
	ActiveCriminals(ctx context.Context) ([]models.Criminal, error)
	CaseEvidence(ctx context.Context, caseID uuid.UUID) ([]models.Evidence, error)
}

// Recorder persists detection records. Append-only from the engine's side.
type Recorder interface {
	CreateDetection(ctx context.Context, d *models.Detection) error
}

// SnapshotStore stores frame snapshots for persisted detections.
type SnapshotStore interface {
	PutObject(ctx context.Context, key string, data []byte, contentType string) error
}

// ImageResolver turns a stored object key into a reference the model can
// consume (data URI); remote URLs and data URIs pass through unchanged.
type ImageResolver interface {
	Resolve(ctx context.Context, ref string) (string, error)
}

// AlertPublisher fans persisted detections out for live display.
type AlertPublisher interface {
	PublishAlert(ctx context.Context, alert models.DetectionAlert) error
}

// Frame is one still to analyze: a data URI, remote URL, or object key.
type Frame struct {
	Ref       string
	Timestamp time.Time
	Location  string
	// VideoURL carries the original media reference for video-mode records.
	VideoURL string
}

type RunInput struct {
	Frame  Frame
	Mode   models.DetectionType
	CaseID *uuid.UUID
	// ExcludeEvidenceID leaves the source image out of the candidate set
	// during evidence cross-matching.
	ExcludeEvidenceID *uuid.UUID
}

// Match is one candidate that scored at or above its threshold.
type Match struct {
	Kind        CandidateKind     `json:"kind"`
	CandidateID uuid.UUID         `json:"candidate_id"`
	Name        string            `json:"name"`
	Confidence  int               `json:"confidence"`
	Face        DetectedFace      `json:"face"`
	Detection   *models.Detection `json:"detection,omitempty"`
}

type Result struct {
	Matches   []Match
	FaceCount int
}

// Engine runs one detection pass per frame: extract faces, score every
// face against every candidate, persist matches at or above threshold.
// Stateless per invocation; safe for concurrent runs.
type Engine struct {
	extractor *FaceExtractor
	scorer    *MatchScorer
	source    CandidateSource
	sink      Recorder
	snapshots SnapshotStore
	resolver  ImageResolver
	alerts    AlertPublisher
	cfg       config.DetectionConfig
}

// NewEngine wires the pipeline. alerts may be nil when no live fan-out is
// wanted (evidence cross-match runs).
func NewEngine(
	client vision.Client,
	source CandidateSource,
	sink Recorder,
	snapshots SnapshotStore,
	resolver ImageResolver,
	alerts AlertPublisher,
	cfg config.DetectionConfig,
) *Engine {
	return &Engine{
		extractor: NewFaceExtractor(client),
		scorer:    NewMatchScorer(client),
		source:    source,
		sink:      sink,
		snapshots: snapshots,
		resolver:  resolver,
		alerts:    alerts,
		cfg:       cfg,
	}
}

// Run executes one detection pass. Face-extraction failure aborts the run
// with a classified upstream error; individual comparison failures are
// logged and treated as no-match. Zero faces or zero candidates is an
// empty success.
func (e *Engine) Run(ctx context.Context, in RunInput) (*Result, error) {
	frameRef, err := e.resolver.Resolve(ctx, in.Frame.Ref)
	if err != nil {
		return nil, fmt.Errorf("resolve frame: %w", err)
	}

	start := time.Now()
	faces, err := e.extractor.ExtractFaces(ctx, frameRef)
	if err != nil {
		return nil, fmt.Errorf("extract faces: %w", err)
	}
	observability.RunDuration.WithLabelValues("extract").Observe(time.Since(start).Seconds())
	observability.FramesProcessed.WithLabelValues(string(in.Mode)).Inc()

	if len(faces) == 0 {
		return &Result{FaceCount: 0}, nil
	}
	observability.FacesDetected.WithLabelValues(string(in.Mode)).Add(float64(len(faces)))

	candidates, err := e.loadCandidates(ctx, in)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return &Result{FaceCount: len(faces)}, nil
	}

	start = time.Now()
	best := e.scoreAll(ctx, frameRef, faces, candidates)
	observability.RunDuration.WithLabelValues("score").Observe(time.Since(start).Seconds())

	start = time.Now()
	matches := e.persistMatches(ctx, in, candidates, best)
	observability.RunDuration.WithLabelValues("persist").Observe(time.Since(start).Seconds())

	return &Result{Matches: matches, FaceCount: len(faces)}, nil
}

func (e *Engine) loadCandidates(ctx context.Context, in RunInput) ([]Candidate, error) {
	criminals, err := e.source.ActiveCriminals(ctx)
	if err != nil {
		return nil, fmt.Errorf("load criminals: %w", err)
	}

	candidates := make([]Candidate, 0, len(criminals))
	for i := range criminals {
		c := CriminalCandidate(&criminals[i], e.cfg.CriminalThreshold)
		if ref, err := e.resolver.Resolve(ctx, c.ImageRef); err != nil {
			slog.Warn("resolve criminal photo", "criminal", c.ID, "error", err)
		} else {
			c.ImageRef = ref
		}
		candidates = append(candidates, c)
	}

	if in.CaseID != nil {
		evidence, err := e.source.CaseEvidence(ctx, *in.CaseID)
		if err != nil {
			// Evidence is additive; the criminal sweep still runs.
			slog.Warn("load case evidence", "case", *in.CaseID, "error", err)
			evidence = nil
		}
		for i := range evidence {
			ev := &evidence[i]
			if in.ExcludeEvidenceID != nil && ev.ID == *in.ExcludeEvidenceID {
				continue
			}
			if ev.ImageURL == "" {
				continue
			}
			c := EvidenceCandidate(ev, e.cfg.EvidenceThreshold)
			if ref, err := e.resolver.Resolve(ctx, c.ImageRef); err != nil {
				slog.Warn("resolve evidence image", "evidence", c.ID, "error", err)
			} else {
				c.ImageRef = ref
			}
			candidates = append(candidates, c)
		}
	}

	return candidates, nil
}

type bestScore struct {
	score int
	face  *DetectedFace
}

// scoreAll fans out faces x candidates with bounded concurrency and keeps
// the best score per candidate. One comparison's failure never aborts the
// others; cancellation stops scheduling but lets in-flight calls finish.
func (e *Engine) scoreAll(ctx context.Context, frameRef string, faces []DetectedFace, candidates []Candidate) []bestScore {
	best := make([]bestScore, len(candidates))
	for i := range best {
		best[i].score = -1
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.cfg.Concurrency)

scheduling:
	for fi := range faces {
		for ci := range candidates {
			if ctx.Err() != nil {
				break scheduling
			}
			face := faces[fi]
			cand := candidates[ci]
			idx := ci
			g.Go(func() error {
				score, err := e.scorer.Score(gctx, frameRef, face, cand)
				if err != nil {
					slog.Warn("comparison failed",
						"kind", cand.Kind, "candidate", cand.ID, "error", err)
					observability.ComparisonsRun.WithLabelValues(string(cand.Kind), "error").Inc()
					return nil
				}
				observability.ComparisonsRun.WithLabelValues(string(cand.Kind), "ok").Inc()

				mu.Lock()
				if score > best[idx].score {
					best[idx] = bestScore{score: score, face: &face}
				}
				mu.Unlock()
				return nil
			})
		}
	}
	_ = g.Wait()

	return best
}

func (e *Engine) persistMatches(ctx context.Context, in RunInput, candidates []Candidate, best []bestScore) []Match {
	var matches []Match
	var snapshotURL string
	snapshotStored := false

	for i, cand := range candidates {
		b := best[i]
		if b.face == nil || b.score < cand.Threshold {
			continue
		}

		if !snapshotStored {
			snapshotURL = e.storeSnapshot(ctx, in)
			snapshotStored = true
		}

		det := &models.Detection{
			DetectionType: in.Mode,
			Confidence:    b.score,
			CaseID:        in.CaseID,
			SnapshotURL:   snapshotURL,
			VideoURL:      in.Frame.VideoURL,
			Location:      in.Frame.Location,
			Alerted:       true,
		}
		if !in.Frame.Timestamp.IsZero() {
			ts := in.Frame.Timestamp
			det.FrameTimestamp = &ts
		}
		if cand.Kind == KindCriminal {
			id := cand.ID
			det.CriminalID = &id
		} else {
			det.Notes = fmt.Sprintf("matched case evidence %s", cand.ID)
		}

		if err := e.sink.CreateDetection(ctx, det); err != nil {
			slog.Error("create detection", "kind", cand.Kind, "candidate", cand.ID, "error", err)
			continue
		}
		observability.DetectionsRecorded.WithLabelValues(string(in.Mode), string(cand.Kind)).Inc()
		slog.Info("detection recorded",
			"kind", cand.Kind, "name", cand.Name, "confidence", b.score, "detection", det.ID)

		matches = append(matches, Match{
			Kind:        cand.Kind,
			CandidateID: cand.ID,
			Name:        cand.Name,
			Confidence:  b.score,
			Face:        *b.face,
			Detection:   det,
		})

		if e.alerts != nil {
			alert := models.DetectionAlert{
				DetectionID: det.ID,
				Type:        in.Mode,
				Confidence:  b.score,
				CaseID:      in.CaseID,
				Location:    in.Frame.Location,
				Timestamp:   time.Now().UTC(),
			}
			if cand.Kind == KindCriminal {
				alert.CriminalID = det.CriminalID
				alert.CriminalName = cand.Name
				alert.ThreatLevel = cand.Threat
			} else {
				id := cand.ID
				alert.EvidenceID = &id
			}
			if err := e.alerts.PublishAlert(ctx, alert); err != nil {
				slog.Warn("publish alert", "detection", det.ID, "error", err)
			}
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Confidence > matches[j].Confidence
	})
	return matches
}

// storeSnapshot uploads an inline frame under a snapshot key and returns
// that key. Frames that already live elsewhere (object storage, remote URL)
// are referenced directly, and upload failures fall back to the frame's own
// reference so the record still persists.
func (e *Engine) storeSnapshot(ctx context.Context, in RunInput) string {
	data, contentType, ok := decodeDataURI(in.Frame.Ref)
	if !ok {
		return in.Frame.Ref
	}

	scope := "cctv"
	if in.CaseID != nil {
		scope = in.CaseID.String()
	}
	key := fmt.Sprintf("snapshots/%s/%d.jpg", scope, time.Now().UnixMilli())

	if err := e.snapshots.PutObject(ctx, key, data, contentType); err != nil {
		slog.Warn("store snapshot", "key", key, "error", err)
		return in.Frame.Ref
	}
	return key
}

func decodeDataURI(ref string) ([]byte, string, bool) {
	if !strings.HasPrefix(ref, "data:") {
		return nil, "", false
	}
	meta, b64, ok := strings.Cut(ref, ",")
	if !ok {
		return nil, "", false
	}
	data, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return nil, "", false
	}

	contentType := strings.TrimSuffix(strings.TrimPrefix(meta, "data:"), ";base64")
	if contentType == "" {
		contentType = "image/jpeg"
	}
	return data, contentType, true
}
