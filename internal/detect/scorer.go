package detect

import (
	"context"
	"fmt"

	"github.com/your-org/argus/internal/vision"
)

// MatchScorer asks the vision model for a 0-100 match estimate between one
// detected face and one candidate.
type MatchScorer struct {
	client vision.Client
}

func NewMatchScorer(client vision.Client) *MatchScorer {
	return &MatchScorer{client: client}
}

// Score compares the frame (and the detected face's description) against the
// candidate. The model is told to respond with only a number, but is not
// obligated to honor that, so the first integer in the reply wins and a
// reply with no digits scores 0.
func (s *MatchScorer) Score(ctx context.Context, frameRef string, face DetectedFace, cand Candidate) (int, error) {
	images := []string{frameRef}
	if cand.ImageRef != "" {
		images = append(images, cand.ImageRef)
	}

	content, err := s.client.Complete(ctx, matchPrompt(face, cand), images...)
	if err != nil {
		return 0, err
	}
	return FirstInt(content), nil
}

func matchPrompt(face DetectedFace, cand Candidate) string {
	if cand.Kind == KindEvidence {
		return "Compare these two faces and provide a match probability (0-100). Respond with just a number."
	}
	return fmt.Sprintf(`Compare this detected person with this criminal profile and provide a match probability (0-100):

Detected Person: %s

Criminal Profile:
%s

Respond with just a number 0-100 representing match probability.`, face.Description, cand.Context)
}
