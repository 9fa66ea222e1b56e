package calls

import (
	"context"
	"database/sql"
	"time"
)

// PostgresRepo persists the call log.
//
// Expected table (applied operationally, not by this service):
//
//	CREATE TABLE calls (
//	    id               UUID PRIMARY KEY,
//	    provider_call_id TEXT,
//	    from_number      TEXT NOT NULL,
//	    to_number        TEXT NOT NULL,
//	    status           TEXT NOT NULL,
//	    duration         INT NOT NULL DEFAULT 0,
//	    recording_url    TEXT,
//	    created_at       TIMESTAMPTZ NOT NULL
//	);
type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo { return &PostgresRepo{db: db} }

func (r *PostgresRepo) Record(ctx context.Context, c Call) error {
	c, err := Prepare(c, time.Now())
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO calls (id, provider_call_id, from_number, to_number, status, duration, recording_url, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		c.ID, c.ProviderCallID, c.From, c.To, string(c.Status), c.DurationSeconds, c.RecordingURL, c.CreatedAt,
	)
	return err
}

func (r *PostgresRepo) List(ctx context.Context, from, to time.Time) ([]Call, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, provider_call_id, from_number, to_number, status, duration, recording_url, created_at
		FROM calls
		WHERE created_at >= $1 AND created_at < $2
		ORDER BY created_at`,
		from, to,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Call, 0)
	for rows.Next() {
		var c Call
		var status string
		if err := rows.Scan(&c.ID, &c.ProviderCallID, &c.From, &c.To, &status, &c.DurationSeconds, &c.RecordingURL, &c.CreatedAt); err != nil {
			return nil, err
		}
		c.Status = CallStatus(status)
		out = append(out, c)
	}
	return out, rows.Err()
}
