// Package mock provides a canned OCR provider for development and tests.
package mock

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/employsmart/employsmart/internal/ocr"
)

// DefaultText is returned when no custom text is configured.
const DefaultText = "Jane Doe\nSoftware Engineer\n5 years of experience building web services.\n"

// Provider implements ocr.Provider with canned output. Safe for
// concurrent use.
type Provider struct {
	mu sync.Mutex

	// Text overrides the canned output when non-empty.
	Text string

	// Err, when set, is returned from every Extract call.
	Err error

	calls     int
	lastName  string
	lastBytes int64
}

// New creates a mock provider returning DefaultText.
func New() *Provider {
	return &Provider{}
}

// Extract consumes the document and returns the canned text.
func (p *Provider) Extract(ctx context.Context, filename, contentType string, data io.Reader) (*ocr.Result, error) {
	n, err := io.Copy(io.Discard, data)
	if err != nil {
		return nil, fmt.Errorf("mock ocr: read upload: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	p.lastName = filename
	p.lastBytes = n

	if p.Err != nil {
		return nil, p.Err
	}

	text := p.Text
	if text == "" {
		text = DefaultText
	}

	return &ocr.Result{
		Text:          text,
		ShardNames:    []string{"ocr_results/output-1-to-1.json"},
		RawFirstShard: []byte(`{"responses":[{"fullTextAnnotation":{"text":"mock"}}]}`),
		Bucket:        "mock",
		ObjectName:    filename,
	}, nil
}

// Calls returns how many times Extract was invoked.
func (p *Provider) Calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

// LastUpload returns the filename and byte count of the last extraction.
func (p *Provider) LastUpload() (string, int64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastName, p.lastBytes
}
