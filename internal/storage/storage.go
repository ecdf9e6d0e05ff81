// Package storage provides the CV archive abstraction.
//
// Uploaded CVs are archived after text extraction so recruiters can
// re-download the original document. Two implementations exist:
// LocalStorage for development and R2Storage (S3-compatible) for
// production.
package storage

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// Storage defines the archive operations. All methods are context-aware.
type Storage interface {
	// Put stores data at the specified key. Returns ErrKeyExists when the
	// key is taken and opts.Overwrite is false.
	Put(ctx context.Context, key string, data io.Reader, opts PutOptions) error

	// Get retrieves the object at the specified key. The caller must close
	// the reader. Returns ErrNotFound if the key doesn't exist.
	Get(ctx context.Context, key string) (io.ReadCloser, ObjectInfo, error)

	// Delete removes the object at the specified key. Idempotent.
	Delete(ctx context.Context, key string) error

	// URL returns an access URL for the object, presigned for the given
	// duration when the store is private.
	URL(ctx context.Context, key string, expires time.Duration) (string, error)

	// Exists reports whether an object exists at the specified key.
	Exists(ctx context.Context, key string) (bool, error)
}

// PutOptions configures how an object is stored.
type PutOptions struct {
	// ContentType is the MIME type. Detected from the key when empty.
	ContentType string

	// MaxSize caps the object size in bytes. 0 means no limit.
	MaxSize int64

	// Overwrite allows replacing an existing object at the same key.
	Overwrite bool
}

// ObjectInfo contains metadata about a stored object.
type ObjectInfo struct {
	Key          string
	Size         int64
	ContentType  string
	LastModified time.Time
	ETag         string
}

// LocalConfig holds configuration for local filesystem storage.
type LocalConfig struct {
	// BasePath is the root directory where files are stored.
	BasePath string

	// BaseURL is the public URL prefix for accessing files.
	BaseURL string
}

// R2Config holds configuration for Cloudflare R2 storage.
type R2Config struct {
	AccountID       string
	AccessKeyID     string
	SecretAccessKey string
	BucketName      string

	// PublicURL is the bucket's public URL when served via a custom
	// domain. If empty, presigned URLs are used for all access.
	PublicURL string

	// Region is accepted by the SDK but arbitrary for R2. Default "auto".
	Region string
}

const (
	ProviderLocal = "local"
	ProviderR2    = "r2"
)

// CVKey generates an archive key for an uploaded CV.
// Format: cvs/{recruiterID|anonymous}/{uuid}{ext}
func CVKey(recruiterID uuid.NullUUID, filename string) string {
	owner := "anonymous"
	if recruiterID.Valid {
		owner = recruiterID.UUID.String()
	}
	return fmt.Sprintf("cvs/%s/%s%s", owner, uuid.New(), filepath.Ext(filename))
}
