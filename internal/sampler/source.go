package sampler

import (
	"fmt"
	"io"
	"net/http"
	"time"
)

// StillSource fetches single JPEG stills from an IP camera's snapshot
// endpoint. One GET per tick; no streaming protocols involved.
type StillSource struct {
	client *http.Client
}

func NewStillSource(timeout time.Duration) *StillSource {
	return &StillSource{
		client: &http.Client{Timeout: timeout},
	}
}

// Capture fetches one still. The response body is size-capped so a
// misconfigured endpoint serving a video stream cannot wedge a capture.
func (s *StillSource) Capture(url string) ([]byte, string, error) {
	resp, err := s.client.Get(url)
	if err != nil {
		return nil, "", fmt.Errorf("fetch still: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("fetch still: unexpected status %d", resp.StatusCode)
	}

	const maxStillBytes = 16 << 20
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxStillBytes+1))
	if err != nil {
		return nil, "", fmt.Errorf("read still: %w", err)
	}
	if len(data) > maxStillBytes {
		return nil, "", fmt.Errorf("read still: body exceeds %d bytes", maxStillBytes)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "image/jpeg"
	}
	return data, contentType, nil
}
