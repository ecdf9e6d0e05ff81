package ocr

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestShardText(t *testing.T) {
	t.Run("well-formed shard", func(t *testing.T) {
		data := []byte(`{"responses":[{"fullTextAnnotation":{"text":"Curriculum Vitae\nJane Doe"}}]}`)
		text, ok := ShardText(data)
		assert.True(t, ok)
		assert.Equal(t, "Curriculum Vitae\nJane Doe", text)
	})

	t.Run("only first response is read", func(t *testing.T) {
		data := []byte(`{"responses":[{"fullTextAnnotation":{"text":"first"}},{"fullTextAnnotation":{"text":"second"}}]}`)
		text, ok := ShardText(data)
		assert.True(t, ok)
		assert.Equal(t, "first", text)
	})

	t.Run("empty text", func(t *testing.T) {
		_, ok := ShardText([]byte(`{"responses":[{"fullTextAnnotation":{"text":""}}]}`))
		assert.False(t, ok)
	})

	t.Run("no responses", func(t *testing.T) {
		_, ok := ShardText([]byte(`{"responses":[]}`))
		assert.False(t, ok)
	})

	t.Run("malformed json", func(t *testing.T) {
		_, ok := ShardText([]byte(`{"responses":`))
		assert.False(t, ok)
	})
}

func TestSortShards(t *testing.T) {
	t.Run("page ranges beat lexicographic order", func(t *testing.T) {
		names := []string{
			"ocr_results/output-10-to-11.json",
			"ocr_results/output-2-to-3.json",
			"ocr_results/output-1-to-1.json",
		}
		SortShards(names)
		assert.Equal(t, []string{
			"ocr_results/output-1-to-1.json",
			"ocr_results/output-2-to-3.json",
			"ocr_results/output-10-to-11.json",
		}, names)
	})

	t.Run("unparseable names sort last", func(t *testing.T) {
		names := []string{
			"ocr_results/summary.json",
			"ocr_results/output-2-to-2.json",
			"ocr_results/archive.json",
		}
		SortShards(names)
		assert.Equal(t, []string{
			"ocr_results/output-2-to-2.json",
			"ocr_results/archive.json",
			"ocr_results/summary.json",
		}, names)
	})
}
