package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/example/squash-scheduler/internal/db"
)

// Job is one scheduled booking: which court and hour to grab, and the
// window during which the scheduler keeps trying. Scheduling state only;
// per-identity attempt details are returned to the caller and logged,
// never stored.
type Job struct {
	ID       int64
	Name     string
	Court    int
	Hour     int
	PlayDate time.Time
	Duration int // minutes

	WindowStartAt time.Time
	WindowEndAt   time.Time
	IntervalSec   int

	Status        string // active | booked | failed | expired
	LastAttemptAt *time.Time
	BookedAt      *time.Time
	BookedBy      *string
	LastError     *string

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (j Job) Validate() error {
	if j.Name == "" {
		return fmt.Errorf("name required")
	}
	if j.Court < 1 {
		return fmt.Errorf("court required")
	}
	if j.Hour < 0 || j.Hour > 23 {
		return fmt.Errorf("hour must be 0-23")
	}
	if j.PlayDate.IsZero() {
		return fmt.Errorf("play_date required")
	}
	if !j.WindowEndAt.After(j.WindowStartAt) {
		return fmt.Errorf("attempt window must end after it starts")
	}
	return nil
}

// NextAttemptAt is the earliest time the scheduler should try this job
// again.
func (j Job) NextAttemptAt(now time.Time) time.Time {
	if j.LastAttemptAt == nil {
		return j.WindowStartAt
	}
	return j.LastAttemptAt.Add(time.Duration(j.IntervalSec) * time.Second)
}

type Repo struct{ db *db.DB }

func NewRepo(d *db.DB) *Repo { return &Repo{db: d} }

const jobColumns = `id,name,court,hour,play_date,duration_min,window_start_at,window_end_at,interval_seconds,status,last_attempt_at,booked_at,booked_by,last_error,created_at,updated_at`

func (r *Repo) Create(ctx context.Context, j Job) (int64, error) {
	if j.Duration < 1 {
		j.Duration = 60
	}
	if j.IntervalSec < 1 {
		j.IntervalSec = 30
	}
	var id int64
	err := r.db.QueryRow(ctx, `
INSERT INTO jobs(name,court,hour,play_date,duration_min,window_start_at,window_end_at,interval_seconds,status)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,'active')
RETURNING id`,
		j.Name, j.Court, j.Hour, j.PlayDate, j.Duration, j.WindowStartAt, j.WindowEndAt, j.IntervalSec,
	).Scan(&id)
	return id, db.WrapNotFound(err)
}

func (r *Repo) List(ctx context.Context) ([]Job, error) {
	rows, err := r.db.Query(ctx, `SELECT `+jobColumns+` FROM jobs ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanJobs(rows)
}

// DueJobs returns active jobs whose attempt window contains now.
func (r *Repo) DueJobs(ctx context.Context, limit int) ([]Job, error) {
	rows, err := r.db.Query(ctx, `
SELECT `+jobColumns+`
FROM jobs
WHERE status='active'
  AND now() >= window_start_at
  AND now() <= window_end_at
ORDER BY window_start_at ASC
LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanJobs(rows)
}

// MarkBooked records the winning identity and closes the job.
func (r *Repo) MarkBooked(ctx context.Context, jobID int64, username string) error {
	return r.db.Exec(ctx, `
UPDATE jobs
SET last_attempt_at=now(), booked_at=now(), booked_by=$2, status='booked', last_error=NULL, updated_at=now()
WHERE id=$1`, jobID, username)
}

// MarkAttemptFailed keeps the job active but remembers why the last round
// of identities came up empty.
func (r *Repo) MarkAttemptFailed(ctx context.Context, jobID int64, reason string) error {
	return r.db.Exec(ctx, `
UPDATE jobs SET last_attempt_at=now(), last_error=$2, updated_at=now() WHERE id=$1`, jobID, reason)
}

func (r *Repo) SetStatus(ctx context.Context, jobID int64, status string, lastErr *string) error {
	return r.db.Exec(ctx, `UPDATE jobs SET status=$2, last_error=$3, updated_at=now() WHERE id=$1`, jobID, status, lastErr)
}

// ExpireOverdue flips active jobs whose window has passed to expired.
func (r *Repo) ExpireOverdue(ctx context.Context) error {
	return r.db.Exec(ctx, `
UPDATE jobs SET status='expired', updated_at=now()
WHERE status='active' AND now() > window_end_at`)
}

func scanJobs(rows db.Rows) ([]Job, error) {
	var out []Job
	for rows.Next() {
		var j Job
		if err := rows.Scan(
			&j.ID, &j.Name, &j.Court, &j.Hour, &j.PlayDate, &j.Duration,
			&j.WindowStartAt, &j.WindowEndAt, &j.IntervalSec, &j.Status,
			&j.LastAttemptAt, &j.BookedAt, &j.BookedBy, &j.LastError,
			&j.CreatedAt, &j.UpdatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, j)
	}
	return out, rows.Err()
}
