// Package ocr defines the document text extraction provider interface and
// the shared result-shard handling used by implementations.
//
// Providers take an uploaded CV and return its concatenated text. The
// production implementation runs Google Vision document text detection
// against a GCS bucket; the mock implementation returns canned text for
// development and tests.
package ocr

import (
	"context"
	"encoding/json"
	"io"
	"path"
	"sort"
	"strconv"
	"strings"
)

// Result is the outcome of one extraction run.
type Result struct {
	// Text is the concatenated document text, one trailing newline per
	// result shard.
	Text string

	// ShardNames are the result objects that contributed text, in the
	// order they were concatenated.
	ShardNames []string

	// RawFirstShard is the unparsed payload of the first shard, kept for
	// the audit record.
	RawFirstShard json.RawMessage

	// Bucket and ObjectName identify where the uploaded document landed.
	Bucket     string
	ObjectName string
}

// Provider extracts text from an uploaded document.
type Provider interface {
	// Extract uploads the document under its original filename and returns
	// the recognized text. Implementations must not retain data after
	// returning.
	Extract(ctx context.Context, filename, contentType string, data io.Reader) (*Result, error)
}

// shardEnvelope is the narrow slice of the annotation output we consume:
// responses[0].fullTextAnnotation.text.
type shardEnvelope struct {
	Responses []struct {
		FullTextAnnotation struct {
			Text string `json:"text"`
		} `json:"fullTextAnnotation"`
	} `json:"responses"`
}

// ShardText extracts the document text from one result shard. The second
// return is false when the shard carries no text (empty pages, or a shape
// we don't recognize).
func ShardText(data []byte) (string, bool) {
	var env shardEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return "", false
	}
	if len(env.Responses) == 0 {
		return "", false
	}
	text := env.Responses[0].FullTextAnnotation.Text
	if text == "" {
		return "", false
	}
	return text, true
}

// SortShards orders result shard names by the page range encoded in the
// filename (output-<first>-to-<last>.json). Names that don't carry a page
// range sort after those that do, lexicographically.
func SortShards(names []string) {
	sort.SliceStable(names, func(i, j int) bool {
		pi, iok := firstPage(names[i])
		pj, jok := firstPage(names[j])
		switch {
		case iok && jok:
			if pi != pj {
				return pi < pj
			}
			return names[i] < names[j]
		case iok:
			return true
		case jok:
			return false
		default:
			return names[i] < names[j]
		}
	})
}

// firstPage parses the leading page number out of a shard filename like
// "ocr_results/output-3-to-4.json".
func firstPage(name string) (int, bool) {
	base := strings.TrimSuffix(path.Base(name), ".json")
	idx := strings.LastIndex(base, "output-")
	if idx < 0 {
		return 0, false
	}
	rangePart := base[idx+len("output-"):]
	firstStr, _, found := strings.Cut(rangePart, "-to-")
	if !found {
		return 0, false
	}
	first, err := strconv.Atoi(firstStr)
	if err != nil {
		return 0, false
	}
	return first, true
}
