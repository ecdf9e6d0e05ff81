package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/employsmart/employsmart/internal/domain"
	ocrmock "github.com/employsmart/employsmart/internal/ocr/mock"
	"github.com/employsmart/employsmart/internal/storage"
)

type fakeExtractionStore struct {
	records []*domain.Extraction
	err     error
}

func (f *fakeExtractionStore) CreateExtraction(ctx context.Context, e *domain.Extraction) error {
	if f.err != nil {
		return f.err
	}
	f.records = append(f.records, e)
	return nil
}

func (f *fakeExtractionStore) ListExtractionsByRecruiter(ctx context.Context, recruiterID uuid.UUID, limit int32) ([]*domain.Extraction, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []*domain.Extraction
	for _, e := range f.records {
		if e.RecruiterID.Valid && e.RecruiterID.UUID == recruiterID {
			out = append(out, e)
		}
	}
	return out, nil
}

// memArchive is an in-memory Storage recording puts.
type memArchive struct {
	objects map[string][]byte
}

func newMemArchive() *memArchive {
	return &memArchive{objects: make(map[string][]byte)}
}

func (m *memArchive) Put(ctx context.Context, key string, data io.Reader, opts storage.PutOptions) error {
	b, err := io.ReadAll(data)
	if err != nil {
		return err
	}
	m.objects[key] = b
	return nil
}

func (m *memArchive) Get(ctx context.Context, key string) (io.ReadCloser, storage.ObjectInfo, error) {
	b, ok := m.objects[key]
	if !ok {
		return nil, storage.ObjectInfo{}, storage.ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(b)), storage.ObjectInfo{Key: key, Size: int64(len(b))}, nil
}

func (m *memArchive) Delete(ctx context.Context, key string) error {
	delete(m.objects, key)
	return nil
}

func (m *memArchive) URL(ctx context.Context, key string, expires time.Duration) (string, error) {
	return "mem://" + key, nil
}

func (m *memArchive) Exists(ctx context.Context, key string) (bool, error) {
	_, ok := m.objects[key]
	return ok, nil
}

func TestExtractionService(t *testing.T) {
	ctx := context.Background()
	doc := strings.NewReader("%PDF-1.4 fake document")

	t.Run("successful run archives and records", func(t *testing.T) {
		provider := ocrmock.New()
		provider.Text = "Extracted CV text\n"
		archive := newMemArchive()
		store := &fakeExtractionStore{}
		svc := NewExtractionService(provider, archive, store, testLogger())

		recruiterID := uuid.NullUUID{UUID: uuid.New(), Valid: true}
		result, err := svc.Extract(ctx, recruiterID, "cv.pdf", "application/pdf", doc)
		require.NoError(t, err)
		assert.Equal(t, "Extracted CV text\n", result.Text)

		require.Len(t, store.records, 1)
		rec := store.records[0]
		assert.Equal(t, "cv.pdf", rec.Filename)
		assert.Equal(t, recruiterID, rec.RecruiterID)
		assert.Equal(t, len(result.Text), rec.TextLength)
		assert.NotEmpty(t, rec.ArchiveKey)

		_, ok := archive.objects[rec.ArchiveKey]
		assert.True(t, ok, "document should be archived under the recorded key")
	})

	t.Run("provider failure fails the extraction", func(t *testing.T) {
		provider := ocrmock.New()
		provider.Err = errors.New("annotation failed")
		store := &fakeExtractionStore{}
		svc := NewExtractionService(provider, newMemArchive(), store, testLogger())

		_, err := svc.Extract(ctx, uuid.NullUUID{}, "cv.pdf", "application/pdf", strings.NewReader("x"))
		require.Error(t, err)
		assert.Empty(t, store.records)
	})

	t.Run("audit failure does not fail the extraction", func(t *testing.T) {
		provider := ocrmock.New()
		store := &fakeExtractionStore{err: errors.New("db down")}
		svc := NewExtractionService(provider, nil, store, testLogger())

		result, err := svc.Extract(ctx, uuid.NullUUID{}, "cv.pdf", "application/pdf", strings.NewReader("x"))
		require.NoError(t, err)
		assert.NotEmpty(t, result.Text)
	})

	t.Run("nil archive skips archiving", func(t *testing.T) {
		provider := ocrmock.New()
		store := &fakeExtractionStore{}
		svc := NewExtractionService(provider, nil, store, testLogger())

		_, err := svc.Extract(ctx, uuid.NullUUID{}, "cv.pdf", "application/pdf", strings.NewReader("x"))
		require.NoError(t, err)
		require.Len(t, store.records, 1)
		assert.Empty(t, store.records[0].ArchiveKey)
	})
}
