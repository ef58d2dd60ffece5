package detect

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/your-org/argus/internal/models"
)

func TestScore(t *testing.T) {
	face := DetectedFace{Description: "male, 40s, scar on left cheek", Position: "center"}

	t.Run("criminal prompt carries profile and face description", func(t *testing.T) {
		var gotPrompt string
		var gotImages []string
		client := &stubClient{complete: func(_ context.Context, instruction string, images ...string) (string, error) {
			gotPrompt = instruction
			gotImages = images
			return "85", nil
		}}

		criminal := &models.Criminal{
			ID:                  uuid.New(),
			Name:                "John Doe",
			PhotoURL:            "mugshot-ref",
			AgeRange:            "40-50",
			DistinguishingMarks: "scar on left cheek",
		}
		cand := CriminalCandidate(criminal, 70)

		score, err := NewMatchScorer(client).Score(context.Background(), "frame-ref", face, cand)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if score != 85 {
			t.Fatalf("score = %d, want 85", score)
		}
		if !strings.Contains(gotPrompt, face.Description) {
			t.Fatal("prompt missing detected face description")
		}
		if !strings.Contains(gotPrompt, "John Doe") || !strings.Contains(gotPrompt, "scar on left cheek") {
			t.Fatal("prompt missing criminal profile fields")
		}
		if len(gotImages) != 2 || gotImages[0] != "frame-ref" || gotImages[1] != "mugshot-ref" {
			t.Fatalf("unexpected images: %v", gotImages)
		}
	})

	t.Run("evidence prompt is a bare two-image comparison", func(t *testing.T) {
		var gotPrompt string
		client := &stubClient{complete: func(_ context.Context, instruction string, _ ...string) (string, error) {
			gotPrompt = instruction
			return "80", nil
		}}

		ev := &models.Evidence{ID: uuid.New(), Type: models.EvidenceSketch, ImageURL: "sketch-ref"}
		cand := EvidenceCandidate(ev, 75)

		score, err := NewMatchScorer(client).Score(context.Background(), "frame-ref", face, cand)
		if err != nil {
			t.Fatal(err)
		}
		if score != 80 {
			t.Fatalf("score = %d, want 80", score)
		}
		if strings.Contains(gotPrompt, face.Description) {
			t.Fatal("evidence prompt should not embed the face description")
		}
	})

	t.Run("first integer wins over surrounding prose", func(t *testing.T) {
		client := &stubClient{complete: func(context.Context, string, ...string) (string, error) {
			return "I'd estimate the match probability at 67 percent.", nil
		}}
		score, err := NewMatchScorer(client).Score(context.Background(), "f", face, Candidate{Kind: KindCriminal})
		if err != nil {
			t.Fatal(err)
		}
		if score != 67 {
			t.Fatalf("score = %d, want 67", score)
		}
	})

	t.Run("reply without digits scores zero", func(t *testing.T) {
		client := &stubClient{complete: func(context.Context, string, ...string) (string, error) {
			return "Unable to compare these images.", nil
		}}
		score, err := NewMatchScorer(client).Score(context.Background(), "f", face, Candidate{Kind: KindCriminal})
		if err != nil {
			t.Fatal(err)
		}
		if score != 0 {
			t.Fatalf("score = %d, want 0", score)
		}
	})
}
