package detect

import (
	"context"
	"encoding/json"

	"github.com/your-org/argus/internal/vision"
)

const faceExtractionPrompt = `Detect and describe all faces in this image. For each face provide:
1. Detailed description (age, gender, ethnicity, distinguishing features)
2. Position in frame

Respond in JSON:
{
  "faces": [
    {
      "description": "detailed description",
      "position": "location in frame"
    }
  ]
}`

// DetectedFace is an ephemeral extraction result for one frame.
type DetectedFace struct {
	Description string `json:"description"`
	Position    string `json:"position"`
}

// FaceExtractor asks the vision model to enumerate faces in a frame.
type FaceExtractor struct {
	client vision.Client
}

func NewFaceExtractor(client vision.Client) *FaceExtractor {
	return &FaceExtractor{client: client}
}

// ExtractFaces returns the faces the model reports in the image. An upstream
// error aborts the run and is returned classified; unparseable model output
// degrades to an empty list, since detection is best-effort and a malformed
// response must never crash the pipeline. Zero faces is a valid outcome.
func (x *FaceExtractor) ExtractFaces(ctx context.Context, imageRef string) ([]DetectedFace, error) {
	content, err := x.client.Complete(ctx, faceExtractionPrompt, imageRef)
	if err != nil {
		return nil, err
	}
	return parseFaces(content), nil
}

func parseFaces(content string) []DetectedFace {
	obj, ok := ExtractJSONObject(content)
	if !ok {
		return nil
	}

	var payload struct {
		Faces []DetectedFace `json:"faces"`
	}
	if err := json.Unmarshal([]byte(obj), &payload); err != nil {
		return nil
	}
	return payload.Faces
}
