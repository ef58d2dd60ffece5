package detect

import (
	"context"
	"sync"
	"testing"

	"github.com/your-org/argus/internal/vision"
)

// stubClient scripts vision model replies for tests across this package.
type stubClient struct {
	complete func(ctx context.Context, instruction string, images ...string) (string, error)

	mu    sync.Mutex
	calls int
}

func (s *stubClient) Complete(ctx context.Context, instruction string, images ...string) (string, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	return s.complete(ctx, instruction, images...)
}

func TestExtractFaces(t *testing.T) {
	t.Run("parses reported faces", func(t *testing.T) {
		client := &stubClient{complete: func(context.Context, string, ...string) (string, error) {
			return `{"faces":[{"description":"male, 30s, beard","position":"center"},{"description":"female, 20s","position":"left edge"}]}`, nil
		}}
		faces, err := NewFaceExtractor(client).ExtractFaces(context.Background(), "data:image/jpeg;base64,xxx")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(faces) != 2 {
			t.Fatalf("got %d faces, want 2", len(faces))
		}
		if faces[0].Description != "male, 30s, beard" || faces[0].Position != "center" {
			t.Fatalf("unexpected first face: %+v", faces[0])
		}
	})

	t.Run("tolerates prose around the JSON", func(t *testing.T) {
		client := &stubClient{complete: func(context.Context, string, ...string) (string, error) {
			return "Sure! Here you go:\n```json\n{\"faces\":[{\"description\":\"one person\",\"position\":\"right\"}]}\n```", nil
		}}
		faces, err := NewFaceExtractor(client).ExtractFaces(context.Background(), "ref")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(faces) != 1 {
			t.Fatalf("got %d faces, want 1", len(faces))
		}
	})

	t.Run("malformed output degrades to zero faces", func(t *testing.T) {
		client := &stubClient{complete: func(context.Context, string, ...string) (string, error) {
			return "I see some people but cannot provide structured output.", nil
		}}
		faces, err := NewFaceExtractor(client).ExtractFaces(context.Background(), "ref")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(faces) != 0 {
			t.Fatalf("got %d faces, want 0", len(faces))
		}
	})

	t.Run("upstream error propagates", func(t *testing.T) {
		client := &stubClient{complete: func(context.Context, string, ...string) (string, error) {
			return "", &vision.UpstreamError{Kind: vision.KindRateLimited, Status: 429, Message: "slow down"}
		}}
		_, err := NewFaceExtractor(client).ExtractFaces(context.Background(), "ref")
		if !vision.IsRateLimited(err) {
			t.Fatalf("expected rate-limited error, got %v", err)
		}
	})

	t.Run("zero faces is a valid outcome", func(t *testing.T) {
		client := &stubClient{complete: func(context.Context, string, ...string) (string, error) {
			return `{"faces":[]}`, nil
		}}
		faces, err := NewFaceExtractor(client).ExtractFaces(context.Background(), "ref")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(faces) != 0 {
			t.Fatalf("got %d faces, want 0", len(faces))
		}
	})
}

func TestExtractFacesPassesFrame(t *testing.T) {
	var gotImages []string
	client := &stubClient{complete: func(_ context.Context, _ string, images ...string) (string, error) {
		gotImages = images
		return `{"faces":[]}`, nil
	}}
	if _, err := NewFaceExtractor(client).ExtractFaces(context.Background(), "frame-ref"); err != nil {
		t.Fatal(err)
	}
	if len(gotImages) != 1 || gotImages[0] != "frame-ref" {
		t.Fatalf("unexpected images: %v", gotImages)
	}
}
