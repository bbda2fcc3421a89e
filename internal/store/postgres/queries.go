package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/alfredjeanlab/gate/internal/model"
)

// executor is the interface satisfied by both *sql.DB and *sql.Tx.
type executor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

const eventColumns = "id, kind, request_id, who, payload, created_at"

func queryRecordEvent(ctx context.Context, db executor, e *model.AccessEvent) error {
	if e.ID == "" {
		return fmt.Errorf("record event: id is required")
	}
	return db.QueryRowContext(ctx, `
		INSERT INTO access_events (id, kind, request_id, who, payload)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at`,
		e.ID, e.Kind, nullString(e.RequestID), nullString(e.Who), jsonbBytes(e.Payload),
	).Scan(&e.CreatedAt)
}

func queryListEvents(ctx context.Context, db executor, limit int) ([]*model.AccessEvent, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT `+eventColumns+`
		FROM access_events
		ORDER BY seq DESC
		LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanEvents(rows)
}

func queryAllEvents(ctx context.Context, db executor) ([]*model.AccessEvent, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT `+eventColumns+`
		FROM access_events
		ORDER BY seq ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanEvents(rows)
}
