package sampler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/your-org/argus/internal/config"
)

func TestParseCommand(t *testing.T) {
	cmd, err := ParseCommand([]byte(`{"action":"start","camera_id":"abc","snapshot_url":"http://cam/still.jpg","interval_seconds":3,"location":"Lobby"}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cmd.Action != "start" || cmd.CameraID != "abc" || cmd.IntervalSeconds != 3 {
		t.Fatalf("unexpected command: %+v", cmd)
	}

	if _, err := ParseCommand([]byte("not json")); err == nil {
		t.Fatal("expected error for malformed command")
	}
}

func TestStartCameraConcurrentDuplicates(t *testing.T) {
	m := NewManager(nil, nil, nil, config.SamplerConfig{DefaultIntervalSeconds: 3600, CaptureTimeoutSeconds: 1})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// The interval is long enough that no capture fires; nil deps are never
	// touched before StopAll.
	cmd := CameraCommand{
		Action:          "start",
		CameraID:        "cam-dup",
		SnapshotURL:     "http://cam/still.jpg",
		IntervalSeconds: 3600,
	}

	const attempts = 8
	var wg sync.WaitGroup
	var mu sync.Mutex
	started := 0
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := m.HandleCommand(ctx, cmd); err == nil {
				mu.Lock()
				started++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if started != 1 {
		t.Fatalf("%d of %d concurrent starts succeeded, want exactly 1", started, attempts)
	}
	if m.ActiveCount() != 1 {
		t.Fatalf("active cameras = %d, want 1", m.ActiveCount())
	}
	m.StopAll()
}

func TestStillSourceCapture(t *testing.T) {
	t.Run("returns body and content type", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "image/jpeg")
			_, _ = w.Write([]byte("jpegbytes"))
		}))
		defer srv.Close()

		data, contentType, err := NewStillSource(time.Second).Capture(srv.URL)
		if err != nil {
			t.Fatal(err)
		}
		if string(data) != "jpegbytes" || contentType != "image/jpeg" {
			t.Fatalf("got %q %q", data, contentType)
		}
	})

	t.Run("non-200 is an error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer srv.Close()

		if _, _, err := NewStillSource(time.Second).Capture(srv.URL); err == nil {
			t.Fatal("expected error for 502 response")
		}
	})

	t.Run("missing content type defaults to jpeg", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Header()["Content-Type"] = nil
			_, _ = w.Write([]byte{0xff, 0xd8})
		}))
		defer srv.Close()

		_, contentType, err := NewStillSource(time.Second).Capture(srv.URL)
		if err != nil {
			t.Fatal(err)
		}
		if contentType != "image/jpeg" {
			t.Fatalf("content type = %q, want image/jpeg", contentType)
		}
	})
}
