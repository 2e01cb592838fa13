// Package audit keeps a per-process trail of extraction jobs. It is a
// side channel: audit failures are logged and never fail the request
// that triggered them.
package audit

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	_ "github.com/jackc/pgx/v5/stdlib" // postgres driver
	_ "modernc.org/sqlite"             // embedded default

	"github.com/majinstudio/labvitals/constants"
)

const schemaDDL = `
CREATE TABLE IF NOT EXISTS extraction_job (
	id            TEXT PRIMARY KEY,
	file_name     TEXT NOT NULL,
	format        TEXT NOT NULL,
	status        TEXT NOT NULL,
	fields_found  INTEGER NOT NULL DEFAULT 0,
	fields_json   TEXT NOT NULL DEFAULT '',
	error_message TEXT NOT NULL DEFAULT '',
	duration_ms   INTEGER NOT NULL DEFAULT 0,
	created_at    TIMESTAMP NOT NULL
)`

// Job is one extraction run as recorded in the trail.
type Job struct {
	ID           uuid.UUID
	FileName     string
	Format       string
	Status       constants.JobStatus
	FieldsFound  int
	FieldsJSON   string
	ErrorMessage string
	DurationMS   int64
	CreatedAt    time.Time
}

type Store struct {
	db       *sql.DB
	postgres bool
	logger   *slog.Logger
}

// Open connects to the audit database and ensures the schema. A DSN
// starting with postgres:// (or postgresql://) goes through pgx;
// anything else is treated as a sqlite file path or URI.
func Open(ctx context.Context, dsn string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	pg := strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://")
	driver := "sqlite"
	if pg {
		driver = "pgx"
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open audit db: %w", err)
	}

	s := &Store{db: db, postgres: pg, logger: logger}
	if err := s.Ping(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping audit db: %w", err)
	}
	if _, err := db.ExecContext(ctx, schemaDDL); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure audit schema: %w", err)
	}
	logger.Info("audit store ready", "driver", driver)
	return s, nil
}

func (s *Store) Close() error { return s.db.Close() }

// Ping checks connectivity with a short timeout to catch DSN issues
// early.
func (s *Store) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	return s.db.PingContext(ctx)
}

// ph renders the placeholder for argument i in the active dialect.
func (s *Store) ph(i int) string {
	if s.postgres {
		return "$" + strconv.Itoa(i)
	}
	return "?"
}

// Start records a new RUNNING job and returns its ID.
func (s *Store) Start(ctx context.Context, fileName, format string) (uuid.UUID, error) {
	id := uuid.New()
	q := fmt.Sprintf(
		`INSERT INTO extraction_job (id, file_name, format, status, created_at) VALUES (%s, %s, %s, %s, %s)`,
		s.ph(1), s.ph(2), s.ph(3), s.ph(4), s.ph(5))
	_, err := s.db.ExecContext(ctx, q,
		id.String(), fileName, format, string(constants.JobStatusRunning), time.Now().UTC())
	if err != nil {
		return uuid.Nil, fmt.Errorf("start job: %w", err)
	}
	return id, nil
}

// Outcome carries the terminal state of a job.
type Outcome struct {
	Status       constants.JobStatus
	FieldsFound  int
	FieldsJSON   string
	ErrorMessage string
	Duration     time.Duration
}

// Finish marks a job terminal.
func (s *Store) Finish(ctx context.Context, id uuid.UUID, out Outcome) error {
	q := fmt.Sprintf(
		`UPDATE extraction_job SET status = %s, fields_found = %s, fields_json = %s, error_message = %s, duration_ms = %s WHERE id = %s`,
		s.ph(1), s.ph(2), s.ph(3), s.ph(4), s.ph(5), s.ph(6))
	res, err := s.db.ExecContext(ctx, q,
		string(out.Status), out.FieldsFound, out.FieldsJSON, out.ErrorMessage,
		out.Duration.Milliseconds(), id.String())
	if err != nil {
		return fmt.Errorf("finish job: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("finish job: no row for %s", id)
	}
	return nil
}

// List returns jobs inside the optional [from, to] window, newest
// first.
func (s *Store) List(ctx context.Context, from, to *time.Time) ([]Job, error) {
	var (
		where []string
		args  []any
	)
	if from != nil {
		args = append(args, from.UTC())
		where = append(where, "created_at >= "+s.ph(len(args)))
	}
	if to != nil {
		args = append(args, to.UTC())
		where = append(where, "created_at <= "+s.ph(len(args)))
	}
	q := `SELECT id, file_name, format, status, fields_found, fields_json, error_message, duration_ms, created_at FROM extraction_job`
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY created_at DESC"

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	defer rows.Close()

	var jobs []Job
	for rows.Next() {
		var (
			j     Job
			idStr string
		)
		if err := rows.Scan(&idStr, &j.FileName, &j.Format, &j.Status,
			&j.FieldsFound, &j.FieldsJSON, &j.ErrorMessage, &j.DurationMS, &j.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan job: %w", err)
		}
		if id, err := uuid.Parse(idStr); err == nil {
			j.ID = id
		}
		jobs = append(jobs, j)
	}
	return jobs, rows.Err()
}
