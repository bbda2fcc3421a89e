package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/alfredjeanlab/gate/internal/model"
)

// newMockDB creates a sqlmock database with automatic cleanup and expectation checking.
func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	t.Cleanup(func() {
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("unfulfilled expectations: %v", err)
		}
		db.Close()
	})
	return db, mock
}

var eventRowColumns = []string{"id", "kind", "request_id", "who", "payload", "created_at"}

func TestNullHelpers(t *testing.T) {
	if ns := nullString(""); ns.Valid {
		t.Error("nullString(\"\") should be invalid")
	}
	if ns := nullString("x"); !ns.Valid || ns.String != "x" {
		t.Errorf("nullString(\"x\") = %+v", ns)
	}
	if b := jsonbBytes(nil); b != nil {
		t.Errorf("jsonbBytes(nil) = %v, want nil", b)
	}
	if b := jsonbBytes(json.RawMessage(`{"a":1}`)); string(b) != `{"a":1}` {
		t.Errorf("jsonbBytes = %s", b)
	}
}

func TestQueryRecordEvent(t *testing.T) {
	db, mock := newMockDB(t)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery("INSERT INTO access_events").
		WithArgs("ev-1", model.EventOpenRequested, "op-1", "phone", []byte(`{"who":"phone"}`)).
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(now))

	e := &model.AccessEvent{
		ID:        "ev-1",
		Kind:      model.EventOpenRequested,
		RequestID: "op-1",
		Who:       "phone",
		Payload:   json.RawMessage(`{"who":"phone"}`),
	}
	if err := newWithDB(db).RecordEvent(context.Background(), e); err != nil {
		t.Fatalf("RecordEvent: %v", err)
	}
	if !e.CreatedAt.Equal(now) {
		t.Errorf("CreatedAt = %v, want %v", e.CreatedAt, now)
	}
}

func TestQueryRecordEvent_NullColumns(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery("INSERT INTO access_events").
		WithArgs("ev-2", model.EventGateOpen, nil, nil, nil).
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(time.Now()))

	e := &model.AccessEvent{ID: "ev-2", Kind: model.EventGateOpen}
	if err := newWithDB(db).RecordEvent(context.Background(), e); err != nil {
		t.Fatalf("RecordEvent: %v", err)
	}
}

func TestQueryRecordEvent_RequiresID(t *testing.T) {
	db, _ := newMockDB(t)

	err := newWithDB(db).RecordEvent(context.Background(), &model.AccessEvent{Kind: model.EventGateOpen})
	if err == nil {
		t.Fatal("expected error for missing id")
	}
}

func TestQueryRecordEvent_Error(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery("INSERT INTO access_events").
		WillReturnError(fmt.Errorf("connection reset"))

	err := newWithDB(db).RecordEvent(context.Background(), &model.AccessEvent{ID: "ev-3", Kind: model.EventGateOpen})
	if err == nil {
		t.Fatal("expected error")
	}
}

func TestQueryListEvents(t *testing.T) {
	db, mock := newMockDB(t)
	now := time.Now().UTC()

	mock.ExpectQuery("SELECT .+ FROM access_events\\s+ORDER BY seq DESC\\s+LIMIT \\$1").
		WithArgs(2).
		WillReturnRows(sqlmock.NewRows(eventRowColumns).
			AddRow("ev-2", model.EventGateOpen, "op-1", nil, nil, now).
			AddRow("ev-1", model.EventOpenRequested, "op-1", "phone", []byte(`{"who":"phone"}`), now.Add(-time.Second)))

	events, err := newWithDB(db).ListEvents(context.Background(), 2)
	if err != nil {
		t.Fatalf("ListEvents: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("len(events) = %d, want 2", len(events))
	}
	if events[0].ID != "ev-2" || events[0].Who != "" || events[0].Payload != nil {
		t.Errorf("events[0] = %+v", events[0])
	}
	if events[1].Who != "phone" || string(events[1].Payload) != `{"who":"phone"}` {
		t.Errorf("events[1] = %+v", events[1])
	}
}

func TestQueryAllEvents(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery("SELECT .+ FROM access_events\\s+ORDER BY seq ASC").
		WillReturnRows(sqlmock.NewRows(eventRowColumns))

	events, err := newWithDB(db).AllEvents(context.Background())
	if err != nil {
		t.Fatalf("AllEvents: %v", err)
	}
	if len(events) != 0 {
		t.Errorf("len(events) = %d, want 0", len(events))
	}
}

func TestQueryAllEvents_ScanError(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery("SELECT .+ FROM access_events").
		WillReturnRows(sqlmock.NewRows(eventRowColumns).
			AddRow("ev-1", model.EventGateOpen, nil, nil, nil, "not-a-time"))

	if _, err := newWithDB(db).AllEvents(context.Background()); err == nil {
		t.Fatal("expected scan error")
	}
}

func TestClose(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	mock.ExpectClose()
	if err := newWithDB(db).Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}
