package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/your-org/argus/internal/config"
	"github.com/your-org/argus/internal/detect"
	"github.com/your-org/argus/internal/models"
	"github.com/your-org/argus/internal/vision"
)

type noFacesVision struct{}

func (noFacesVision) Complete(context.Context, string, ...string) (string, error) {
	return `{"faces":[]}`, nil
}

type emptySource struct{}

func (emptySource) ActiveCriminals(context.Context) ([]models.Criminal, error) { return nil, nil }
func (emptySource) CaseEvidence(context.Context, uuid.UUID) ([]models.Evidence, error) {
	return nil, nil
}

type nopRecorder struct{}

func (nopRecorder) CreateDetection(context.Context, *models.Detection) error { return nil }

type nopSnapshots struct{}

func (nopSnapshots) PutObject(context.Context, string, []byte, string) error { return nil }

type passResolver struct{}

func (passResolver) Resolve(_ context.Context, ref string) (string, error) { return ref, nil }

func noFacesEngine() *detect.Engine {
	return detect.NewEngine(noFacesVision{}, emptySource{}, nopRecorder{}, nopSnapshots{},
		passResolver{}, nil,
		config.DetectionConfig{CriminalThreshold: 70, EvidenceThreshold: 75, Concurrency: 1})
}

func TestDetectMediaRejectsVideoContainers(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewDetectionHandler(nil, nil, nil) // rejection happens before db or engine

	r := gin.New()
	r.POST("/detect/media", h.DetectMedia)

	for _, name := range []string{"clip.mp4", "footage.AVI", "cam.mov", "export.webm", "raw.mkv"} {
		w := httptest.NewRecorder()
		body := `{"media_ref":"uploads/` + name + `","filename":"` + name + `"}`
		req := httptest.NewRequest(http.MethodPost, "/detect/media", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		r.ServeHTTP(w, req)

		if w.Code != http.StatusUnsupportedMediaType {
			t.Fatalf("%s: status = %d, want 415", name, w.Code)
		}
	}
}

func TestDetectMediaAcceptsDataURIWithoutFilename(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewDetectionHandler(nil, nil, noFacesEngine())

	r := gin.New()
	r.POST("/detect/media", h.DetectMedia)

	w := httptest.NewRecorder()
	body := `{"media_ref":"data:image/jpeg;base64,/9j/AA=="}`
	req := httptest.NewRequest(http.MethodPost, "/detect/media", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}
	var resp struct {
		FaceCount int `json:"face_count"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.FaceCount != 0 {
		t.Fatalf("face count = %d, want 0", resp.FaceCount)
	}
}

func TestDetectErrorStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"rate limited maps to 429",
			&vision.UpstreamError{Kind: vision.KindRateLimited, Status: 429}, http.StatusTooManyRequests},
		{"quota maps to 402",
			&vision.UpstreamError{Kind: vision.KindQuotaExceeded, Status: 402}, http.StatusPaymentRequired},
		{"unavailable maps to 502",
			&vision.UpstreamError{Kind: vision.KindUnavailable, Status: 500}, http.StatusBadGateway},
		{"other errors map to 500",
			errors.New("resolve frame: object missing"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _ := detectErrorStatus(tt.err)
			if got != tt.want {
				t.Fatalf("status = %d, want %d", got, tt.want)
			}
		})
	}
}
