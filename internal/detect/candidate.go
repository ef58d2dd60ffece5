package detect

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/your-org/argus/internal/models"
)

type CandidateKind string

const (
	KindCriminal CandidateKind = "criminal"
	KindEvidence CandidateKind = "evidence"
)

// Candidate unifies the two comparison targets (criminal profiles and case
// evidence images) behind one value: an image reference, the descriptor
// text the prompt includes, and the threshold that persists a match.
type Candidate struct {
	Kind      CandidateKind
	ID        uuid.UUID
	Name      string
	ImageRef  string
	Context   string
	Threshold int
	Threat    models.ThreatLevel
}

func CriminalCandidate(c *models.Criminal, threshold int) Candidate {
	return Candidate{
		Kind:      KindCriminal,
		ID:        c.ID,
		Name:      c.Name,
		ImageRef:  c.PhotoURL,
		Context:   c.Descriptor(),
		Threshold: threshold,
		Threat:    c.ThreatLevel,
	}
}

func EvidenceCandidate(e *models.Evidence, threshold int) Candidate {
	return Candidate{
		Kind:      KindEvidence,
		ID:        e.ID,
		Name:      fmt.Sprintf("evidence %s (%s)", e.ID, e.Type),
		ImageRef:  e.ImageURL,
		Threshold: threshold,
	}
}
