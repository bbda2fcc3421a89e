package postgres

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/alfredjeanlab/gate/internal/model"
)

// scannable is the interface satisfied by both *sql.Row and *sql.Rows.
type scannable interface {
	Scan(dest ...any) error
}

func scanEvent(row scannable) (*model.AccessEvent, error) {
	var (
		e         model.AccessEvent
		requestID sql.NullString
		who       sql.NullString
		payload   []byte
	)
	if err := row.Scan(&e.ID, &e.Kind, &requestID, &who, &payload, &e.CreatedAt); err != nil {
		return nil, err
	}
	e.RequestID = requestID.String
	e.Who = who.String
	if len(payload) > 0 {
		e.Payload = json.RawMessage(payload)
	}
	e.CreatedAt = e.CreatedAt.UTC()
	return &e, nil
}

func scanEvents(rows *sql.Rows) ([]*model.AccessEvent, error) {
	var events []*model.AccessEvent
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return events, nil
}

// nullString maps "" to SQL NULL.
func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// jsonbBytes maps an empty payload to SQL NULL.
func jsonbBytes(raw json.RawMessage) []byte {
	if len(raw) == 0 {
		return nil
	}
	return []byte(raw)
}
