package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/employsmart/employsmart/internal/domain"
)

const jobColumns = `id, recruiter_id, title, description, ai_generated_description,
	status, created_at, updated_at`

func scanJob(row interface{ Scan(...interface{}) error }) (*domain.JobPosting, error) {
	var j domain.JobPosting
	err := row.Scan(
		&j.ID,
		&j.RecruiterID,
		&j.Title,
		&j.Description,
		&j.AIGeneratedDescription,
		&j.Status,
		&j.CreatedAt,
		&j.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &j, nil
}

// CreateJob inserts a job posting.
func (q *Queries) CreateJob(ctx context.Context, j *domain.JobPosting) (*domain.JobPosting, error) {
	row := q.db.QueryRowContext(ctx, `
		INSERT INTO job_postings (id, recruiter_id, title, description, ai_generated_description, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+jobColumns,
		j.ID, j.RecruiterID, j.Title, j.Description, j.AIGeneratedDescription, j.Status,
	)
	return scanJob(row)
}

// GetJob fetches a posting by ID.
func (q *Queries) GetJob(ctx context.Context, id uuid.UUID) (*domain.JobPosting, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT `+jobColumns+` FROM job_postings WHERE id = $1`, id)
	return scanJob(row)
}

// ListJobsByRecruiter returns all postings owned by a recruiter, newest first.
func (q *Queries) ListJobsByRecruiter(ctx context.Context, recruiterID uuid.UUID) ([]*domain.JobPosting, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+jobColumns+` FROM job_postings WHERE recruiter_id = $1 ORDER BY created_at DESC`,
		recruiterID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var jobs []*domain.JobPosting
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, j)
	}
	return jobs, rows.Err()
}

// CountActiveJobsByRecruiter counts postings that consume quota.
func (q *Queries) CountActiveJobsByRecruiter(ctx context.Context, recruiterID uuid.UUID) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx,
		`SELECT count(*) FROM job_postings WHERE recruiter_id = $1 AND status = 'active'`,
		recruiterID,
	).Scan(&count)
	return count, err
}

// UpdateJob replaces the editable fields of a posting.
func (q *Queries) UpdateJob(ctx context.Context, j *domain.JobPosting) (*domain.JobPosting, error) {
	row := q.db.QueryRowContext(ctx, `
		UPDATE job_postings
		SET title = $2,
		    description = $3,
		    ai_generated_description = $4,
		    updated_at = now()
		WHERE id = $1
		RETURNING `+jobColumns,
		j.ID, j.Title, j.Description, j.AIGeneratedDescription,
	)
	return scanJob(row)
}

// CloseJob marks a posting closed, releasing its quota slot.
func (q *Queries) CloseJob(ctx context.Context, id uuid.UUID) error {
	_, err := q.db.ExecContext(ctx, `
		UPDATE job_postings SET status = 'closed', updated_at = now() WHERE id = $1`, id)
	return err
}
