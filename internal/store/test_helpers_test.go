package store

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/roach88/docquery/pkg/querybuilder"
)

// createTestStore creates a new temp-dir store for testing.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestRecording starts session sessionID and begins a recording of
// query under key.
func createTestRecording(t *testing.T, s *Store, sessionID, key string, method Method) int64 {
	t.Helper()
	ctx := context.Background()
	if _, err := s.StartSession(ctx, sessionID, ""); err != nil {
		t.Fatalf("StartSession() failed: %v", err)
	}
	id, err := s.BeginRecording(ctx, Recording{
		SessionID:  sessionID,
		Key:        key,
		Method:     method,
		Query:      "SELECT\n  *\nFROM\n  c",
		Parameters: "[]",
	})
	if err != nil {
		t.Fatalf("BeginRecording() failed: %v", err)
	}
	return id
}

// testPage builds a response from raw JSON documents.
func testPage(docs ...string) querybuilder.FeedResponse {
	resources := make([]json.RawMessage, 0, len(docs))
	for _, d := range docs {
		resources = append(resources, json.RawMessage(d))
	}
	return querybuilder.FeedResponse{Resources: resources}
}
