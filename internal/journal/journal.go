// Package journal keeps a log of print jobs in SQLite
package journal

import (
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
)

//go:embed sql/schema.sql
var schema string

type Job struct {
	Id         int64
	Uuid       uuid.UUID
	Kind       string
	Summary    string
	BytesSent  int64
	StartedAt  time.Time
	FinishedAt time.Time
	// Empty when the job succeeded
	Error string
}

func (j Job) Duration() time.Duration {
	return j.FinishedAt.Sub(j.StartedAt)
}

type Journal struct {
	Db *sql.DB
}

// Open connects to the database at dsn, e.g. "file:ttlprint.db", and
// creates the tables if needed
func Open(dsn string) (*Journal, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("Couldn't open database:\n%w", err)
	}
	// one writer at a time, and in-memory databases aren't shared between
	// connections
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("Couldn't initialise database:\n%w", err)
	}
	return &Journal{Db: db}, nil
}

func (j *Journal) Close() error {
	return j.Db.Close()
}

// Record stores a finished job, giving it a UUID if it hasn't got one
func (j *Journal) Record(job Job) (Job, error) {
	if job.Uuid == uuid.Nil {
		job.Uuid = uuid.New()
	}
	err := j.Transact(func(tx *sql.Tx) error {
		res, err := tx.Exec(`
			INSERT INTO job (uuid, kind, summary, bytes_sent, started_at, finished_at, error)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			job.Uuid.String(), job.Kind, job.Summary, job.BytesSent,
			formatTime(job.StartedAt), formatTime(job.FinishedAt), job.Error)
		if err != nil {
			return fmt.Errorf("Couldn't insert job:\n%w", err)
		}
		job.Id, err = res.LastInsertId()
		return err
	})
	if err != nil {
		return job, err
	}
	return job, nil
}

// List returns the most recent jobs first
func (j *Journal) List(limit int) ([]Job, error) {
	rows, err := j.Db.Query(`
		SELECT id, uuid, kind, summary, bytes_sent, started_at, finished_at, error
		FROM job
		ORDER BY started_at DESC, id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("Query execution failed:\n%w", err)
	}
	defer rows.Close()

	jobs := []Job{}
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("Row scanning failed:\n%w", err)
		}
		jobs = append(jobs, *job)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("Error iterating rows:\n%w", err)
	}
	return jobs, nil
}

// Get returns nil if there's no job with that UUID
func (j *Journal) Get(u uuid.UUID) (*Job, error) {
	row := j.Db.QueryRow(`
		SELECT id, uuid, kind, summary, bytes_sent, started_at, finished_at, error
		FROM job
		WHERE uuid = ?`, u.String())
	job, err := scanJob(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("Failed to read job:\n%w", err)
	}
	return job, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanJob(s scanner) (*Job, error) {
	var job Job
	var uuidString, started, finished string
	if err := s.Scan(&job.Id, &uuidString, &job.Kind, &job.Summary, &job.BytesSent, &started, &finished, &job.Error); err != nil {
		return nil, err
	}

	var err error
	if job.Uuid, err = uuid.Parse(uuidString); err != nil {
		return nil, fmt.Errorf("Bad job UUID %q:\n%w", uuidString, err)
	}
	if job.StartedAt, err = time.Parse(time.RFC3339Nano, started); err != nil {
		return nil, fmt.Errorf("Bad start time %q:\n%w", started, err)
	}
	if job.FinishedAt, err = time.Parse(time.RFC3339Nano, finished); err != nil {
		return nil, fmt.Errorf("Bad finish time %q:\n%w", finished, err)
	}
	return &job, nil
}

// Fixed width so the text sorts in time order
func formatTime(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000000000Z07:00")
}

// Run operations in a transaction, committing afterward, or rolling back if the
// passed function returns an error
func (j *Journal) Transact(f func(*sql.Tx) error) error {
	tx, err := j.Db.Begin()
	if err != nil {
		return err
	}
	if err := f(tx); err != nil {
		if err2 := tx.Rollback(); err2 != nil {
			return fmt.Errorf("Failed to roll back transaction: %w\n\nAfter handling: %v", err2, err)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("Failed to commit transaction:\n%w", err)
	}
	return nil
}
