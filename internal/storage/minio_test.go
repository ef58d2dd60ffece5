package storage

import (
	"context"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/your-org/argus/internal/config"
)

func testMinIOStore(t *testing.T, handler http.HandlerFunc) *MinIOStore {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	store, err := NewMinIOStore(config.MinIOConfig{
		Endpoint:  strings.TrimPrefix(srv.URL, "http://"),
		AccessKey: "test",
		SecretKey: "test",
		Bucket:    "argus",
	})
	if err != nil {
		t.Fatal(err)
	}
	return store
}

func TestResolvePassthrough(t *testing.T) {
	store := testMinIOStore(t, func(http.ResponseWriter, *http.Request) {
		t.Error("no request expected for inline or remote references")
	})

	for _, ref := range []string{
		"data:image/png;base64,AAAA",
		"http://cams.example/still.jpg",
		"https://cams.example/still.jpg",
	} {
		got, err := store.Resolve(context.Background(), ref)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", ref, err)
		}
		if got != ref {
			t.Fatalf("%s: resolved to %q, want passthrough", ref, got)
		}
	}
}

func TestResolveObjectKey(t *testing.T) {
	payload := []byte{0xff, 0xd8, 0xff, 0xe0, 0x00, 0x10, 'J', 'F', 'I', 'F'}
	store := testMinIOStore(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		_, _ = w.Write(payload)
	})

	got, err := store.Resolve(context.Background(), "frames/cam-1/frame.jpg")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(payload)
	if got != want {
		t.Fatalf("resolved = %q, want %q", got, want)
	}
}

func TestDeleteObject(t *testing.T) {
	var mu sync.Mutex
	var deleted []string
	store := testMinIOStore(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodDelete {
			mu.Lock()
			deleted = append(deleted, r.URL.Path)
			mu.Unlock()
			w.WriteHeader(http.StatusNoContent)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	if err := store.DeleteObject(context.Background(), "evidence/case-1/img.jpg"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(deleted) != 1 || deleted[0] != "/argus/evidence/case-1/img.jpg" {
		t.Fatalf("deleted paths = %v, want the evidence object", deleted)
	}
}
