package sync

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/alfredjeanlab/gate/internal/model"
	"github.com/alfredjeanlab/gate/internal/store/memory"
)

// failingStore fails every read.
type failingStore struct {
	*memory.Store
}

func (failingStore) AllEvents(context.Context) ([]*model.AccessEvent, error) {
	return nil, errors.New("db gone")
}

// seededStore returns a memory store holding the given kinds in order.
func seededStore(t *testing.T, kinds ...string) *memory.Store {
	t.Helper()
	ms := memory.New()
	for i, k := range kinds {
		e := &model.AccessEvent{ID: "ev-" + string(rune('a'+i)), Kind: k, RequestID: "op-1"}
		if err := ms.RecordEvent(context.Background(), e); err != nil {
			t.Fatal(err)
		}
	}
	return ms
}

func TestExportJSONL_Empty(t *testing.T) {
	var buf bytes.Buffer
	n, err := ExportJSONL(context.Background(), memory.New(), &buf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 0 {
		t.Errorf("n = %d, want 0", n)
	}

	lines := nonEmptyLines(buf.String())
	if len(lines) != 1 {
		t.Fatalf("expected 1 line (header only), got %d", len(lines))
	}

	var h header
	if err := json.Unmarshal([]byte(lines[0]), &h); err != nil {
		t.Fatalf("unmarshal header: %v", err)
	}
	if h.Version != "1" || h.Type != "header" || h.EventCount != 0 {
		t.Fatalf("unexpected header: %+v", h)
	}
}

func TestExportJSONL_WithEvents(t *testing.T) {
	ms := seededStore(t, model.EventOpenRequested, model.EventGateOpen)

	var buf bytes.Buffer
	n, err := ExportJSONL(context.Background(), ms, &buf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 2 {
		t.Errorf("n = %d, want 2", n)
	}

	lines := nonEmptyLines(buf.String())
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d:\n%s", len(lines), buf.String())
	}

	var h header
	if err := json.Unmarshal([]byte(lines[0]), &h); err != nil {
		t.Fatalf("unmarshal header: %v", err)
	}
	if h.EventCount != 2 {
		t.Fatalf("header event_count = %d, want 2", h.EventCount)
	}

	// Oldest first.
	for i, wantKind := range []string{model.EventOpenRequested, model.EventGateOpen} {
		var rec struct {
			Type string            `json:"type"`
			Data model.AccessEvent `json:"data"`
		}
		if err := json.Unmarshal([]byte(lines[i+1]), &rec); err != nil {
			t.Fatalf("unmarshal line %d: %v", i+1, err)
		}
		if rec.Type != "event" || rec.Data.Kind != wantKind {
			t.Errorf("line %d = %+v, want event %s", i+1, rec, wantKind)
		}
	}
}

func TestExportJSONL_StoreError(t *testing.T) {
	var buf bytes.Buffer
	if _, err := ExportJSONL(context.Background(), failingStore{memory.New()}, &buf); err == nil {
		t.Fatal("expected error")
	}
	if buf.Len() != 0 {
		t.Errorf("wrote %d bytes on failure, want 0", buf.Len())
	}
}

func nonEmptyLines(s string) []string {
	var result []string
	for _, line := range strings.Split(s, "\n") {
		if strings.TrimSpace(line) != "" {
			result = append(result, line)
		}
	}
	return result
}
