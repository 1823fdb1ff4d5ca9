// Package audit keeps a Postgres log of hostel decisions made from the
// console.
package audit

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"

	"github.com/nonsonwune/hostel_admin/config"
	"github.com/nonsonwune/hostel_admin/migrations"
	"github.com/nonsonwune/hostel_admin/models"
)

const DefaultHistoryLimit = 20

type Store struct {
	db *sql.DB
}

// Open connects to Postgres, checks the connection and prepares the schema.
func Open(ctx context.Context, cfg config.Database) (*Store, error) {
	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("error connecting to database: %w", err)
	}
	db.SetMaxOpenConns(5)
	db.SetConnMaxIdleTime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("error pinging database: %w", err)
	}

	if err := migrations.InitSchema(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("error initializing schema: %w", err)
	}
	return NewStore(db), nil
}

// NewStore wraps an existing handle; the schema is assumed to exist.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Record(ctx context.Context, d models.Decision) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	if d.DecidedAt.IsZero() {
		d.DecidedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO hostel_decisions (id, student_id, action, succeeded, error, decided_at)
		VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := s.db.ExecContext(ctx, query,
		d.ID.String(), d.StudentID, string(d.Action), d.Succeeded, d.Error, d.DecidedAt)
	if err != nil {
		return fmt.Errorf("error recording decision for %s: %w", d.StudentID, err)
	}
	return nil
}

// Recent returns up to limit decisions, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]models.Decision, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}

	query := `
		SELECT id, student_id, action, succeeded, error, decided_at
		FROM hostel_decisions
		ORDER BY decided_at DESC
		LIMIT $1`
	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("error getting decision history: %w", err)
	}
	defer rows.Close()

	var decisions []models.Decision
	for rows.Next() {
		var d models.Decision
		var id, action string
		if err := rows.Scan(&id, &d.StudentID, &action, &d.Succeeded, &d.Error, &d.DecidedAt); err != nil {
			return nil, fmt.Errorf("error scanning decision: %w", err)
		}
		if d.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("error parsing decision id %q: %w", id, err)
		}
		d.Action = models.HostelAction(action)
		decisions = append(decisions, d)
	}
	return decisions, rows.Err()
}

func (s *Store) Close() error {
	return s.db.Close()
}
