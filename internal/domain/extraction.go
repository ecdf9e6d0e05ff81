package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Extraction is the audit record for one OCR run: which file was uploaded,
// where its archive copy lives, and which result shards were concatenated.
type Extraction struct {
	ID          uuid.UUID       `json:"id"`
	RecruiterID uuid.NullUUID   `json:"recruiterId,omitempty"`
	Filename    string          `json:"filename"`
	BucketName  string          `json:"bucketName"`
	ArchiveKey  string          `json:"archiveKey,omitempty"`
	ShardNames  []string        `json:"shardNames"`
	RawResponse json.RawMessage `json:"-"`
	TextLength  int             `json:"textLength"`
	CreatedAt   time.Time       `json:"createdAt"`
}
