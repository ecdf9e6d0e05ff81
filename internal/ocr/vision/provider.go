// Package vision implements document text extraction with the Google
// Vision API over a GCS staging bucket.
package vision

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	gcs "cloud.google.com/go/storage"
	vision "cloud.google.com/go/vision/v2/apiv1"
	"cloud.google.com/go/vision/v2/apiv1/visionpb"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"github.com/employsmart/employsmart/internal/ocr"
)

// Config holds the provider settings.
type Config struct {
	// BucketName is the staging bucket for uploads and annotation output.
	BucketName string

	// OutputPrefix is where the annotation shards land. Must end with "/".
	OutputPrefix string

	// CredentialsJSON is the service account key, passed as a JSON blob.
	CredentialsJSON []byte

	// CleanupEnabled removes the uploaded document and result shards from
	// the bucket after a successful run. Off by default; the bucket keeps
	// prior runs and shard names collide across runs.
	CleanupEnabled bool
}

// Provider runs async DOCUMENT_TEXT_DETECTION against the staging bucket.
type Provider struct {
	storage *gcs.Client
	vision  *vision.ImageAnnotatorClient
	bucket  string
	prefix  string
	cleanup bool
	logger  *slog.Logger
}

// New creates the provider, validating credentials by constructing both
// clients up front.
func New(ctx context.Context, cfg Config, logger *slog.Logger) (*Provider, error) {
	if cfg.BucketName == "" {
		return nil, fmt.Errorf("vision: bucket name is required")
	}
	prefix := cfg.OutputPrefix
	if prefix == "" {
		prefix = "ocr_results/"
	}
	if !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}

	var opts []option.ClientOption
	if len(cfg.CredentialsJSON) > 0 {
		opts = append(opts, option.WithCredentialsJSON(cfg.CredentialsJSON))
	}

	storageClient, err := gcs.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("vision: create storage client: %w", err)
	}
	visionClient, err := vision.NewImageAnnotatorClient(ctx, opts...)
	if err != nil {
		storageClient.Close()
		return nil, fmt.Errorf("vision: create annotator client: %w", err)
	}

	logger.Info("initialized vision OCR provider",
		"bucket", cfg.BucketName,
		"output_prefix", prefix,
		"cleanup", cfg.CleanupEnabled,
	)

	return &Provider{
		storage: storageClient,
		vision:  visionClient,
		bucket:  cfg.BucketName,
		prefix:  prefix,
		cleanup: cfg.CleanupEnabled,
		logger:  logger,
	}, nil
}

// Close releases both API clients.
func (p *Provider) Close() error {
	verr := p.vision.Close()
	serr := p.storage.Close()
	if verr != nil {
		return verr
	}
	return serr
}

// Extract uploads the document under its original filename, runs the
// async annotation job, and concatenates the text of every result shard
// under the output prefix.
func (p *Provider) Extract(ctx context.Context, filename, contentType string, data io.Reader) (*ocr.Result, error) {
	if err := p.upload(ctx, filename, contentType, data); err != nil {
		return nil, err
	}

	gcsURI := fmt.Sprintf("gs://%s/%s", p.bucket, filename)
	p.logger.Info("starting document text detection", "uri", gcsURI)

	op, err := p.vision.AsyncBatchAnnotateFiles(ctx, &visionpb.AsyncBatchAnnotateFilesRequest{
		Requests: []*visionpb.AsyncAnnotateFileRequest{
			{
				InputConfig: &visionpb.InputConfig{
					GcsSource: &visionpb.GcsSource{Uri: gcsURI},
					MimeType:  "application/pdf",
				},
				Features: []*visionpb.Feature{
					{Type: visionpb.Feature_DOCUMENT_TEXT_DETECTION},
				},
				OutputConfig: &visionpb.OutputConfig{
					GcsDestination: &visionpb.GcsDestination{
						Uri: fmt.Sprintf("gs://%s/%s", p.bucket, p.prefix),
					},
				},
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("vision: start annotation: %w", err)
	}

	if _, err := op.Wait(ctx); err != nil {
		return nil, fmt.Errorf("vision: annotation failed: %w", err)
	}

	result, err := p.collect(ctx)
	if err != nil {
		return nil, err
	}
	result.Bucket = p.bucket
	result.ObjectName = filename

	if p.cleanup {
		p.cleanupBucket(ctx, filename, result.ShardNames)
	}

	p.logger.Info("document text detection finished",
		"uri", gcsURI,
		"shards", len(result.ShardNames),
		"text_length", len(result.Text),
	)
	return result, nil
}

// upload streams the document into the staging bucket, overwriting any
// previous object with the same name.
func (p *Provider) upload(ctx context.Context, filename, contentType string, data io.Reader) error {
	w := p.storage.Bucket(p.bucket).Object(filename).NewWriter(ctx)
	w.ContentType = contentType
	if _, err := io.Copy(w, data); err != nil {
		w.Close()
		return fmt.Errorf("vision: upload %q: %w", filename, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("vision: upload %q: %w", filename, err)
	}
	return nil
}

// collect lists the output prefix, orders the shards by page range, and
// concatenates their text. A shard that fails to download or parse is
// logged and skipped rather than failing the run.
func (p *Provider) collect(ctx context.Context) (*ocr.Result, error) {
	bucket := p.storage.Bucket(p.bucket)

	var names []string
	it := bucket.Objects(ctx, &gcs.Query{Prefix: p.prefix})
	for {
		attrs, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("vision: list results: %w", err)
		}
		if strings.HasSuffix(attrs.Name, ".json") {
			names = append(names, attrs.Name)
		}
	}
	ocr.SortShards(names)

	result := &ocr.Result{}
	var text strings.Builder
	for _, name := range names {
		data, err := p.download(ctx, bucket, name)
		if err != nil {
			p.logger.Error("failed to download result shard", "shard", name, "error", err)
			continue
		}
		shardText, ok := ocr.ShardText(data)
		if !ok {
			p.logger.Warn("result shard carried no text", "shard", name)
			continue
		}
		if result.RawFirstShard == nil {
			result.RawFirstShard = data
		}
		text.WriteString(shardText)
		text.WriteString("\n")
		result.ShardNames = append(result.ShardNames, name)
	}
	result.Text = text.String()
	return result, nil
}

func (p *Provider) download(ctx context.Context, bucket *gcs.BucketHandle, name string) ([]byte, error) {
	r, err := bucket.Object(name).NewReader(ctx)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}

// cleanupBucket removes the uploaded document and the result shards.
// Failures are logged only; the extraction already succeeded.
func (p *Provider) cleanupBucket(ctx context.Context, filename string, shards []string) {
	bucket := p.storage.Bucket(p.bucket)
	if err := bucket.Object(filename).Delete(ctx); err != nil {
		p.logger.Warn("failed to delete uploaded document", "object", filename, "error", err)
	}
	for _, name := range shards {
		if err := bucket.Object(name).Delete(ctx); err != nil {
			p.logger.Warn("failed to delete result shard", "object", name, "error", err)
		}
	}
}
