package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/sqlc-dev/pqtype"

	"github.com/employsmart/employsmart/internal/domain"
)

// CreateExtraction records an OCR run. Shard names land in a TEXT[] column
// and the first shard's raw payload in a nullable jsonb column.
func (q *Queries) CreateExtraction(ctx context.Context, e *domain.Extraction) error {
	raw := pqtype.NullRawMessage{}
	if len(e.RawResponse) > 0 {
		raw = pqtype.NullRawMessage{RawMessage: e.RawResponse, Valid: true}
	}

	_, err := q.db.ExecContext(ctx, `
		INSERT INTO extractions (id, recruiter_id, filename, bucket_name, archive_key, shard_names, raw_response, text_length)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		e.ID, e.RecruiterID, e.Filename, e.BucketName, e.ArchiveKey,
		pq.Array(e.ShardNames), raw, e.TextLength,
	)
	return err
}

// ListExtractionsByRecruiter returns a recruiter's OCR history, newest first.
func (q *Queries) ListExtractionsByRecruiter(ctx context.Context, recruiterID uuid.UUID, limit int32) ([]*domain.Extraction, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT id, recruiter_id, filename, bucket_name, archive_key, shard_names, text_length, created_at
		FROM extractions
		WHERE recruiter_id = $1
		ORDER BY created_at DESC
		LIMIT $2`,
		recruiterID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Extraction
	for rows.Next() {
		var e domain.Extraction
		var shards pq.StringArray
		if err := rows.Scan(&e.ID, &e.RecruiterID, &e.Filename, &e.BucketName,
			&e.ArchiveKey, &shards, &e.TextLength, &e.CreatedAt); err != nil {
			return nil, err
		}
		e.ShardNames = shards
		out = append(out, &e)
	}
	return out, rows.Err()
}
