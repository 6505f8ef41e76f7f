package domain

import (
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocumentJSONFieldNames(t *testing.T) {
	summary := DocumentSummary{ID: "a", BucketKey: "佛教经典/金刚经.pdf"}

	payload, err := json.Marshal(summary)
	require.NoError(t, err)

	var fields map[string]any
	require.NoError(t, json.Unmarshal(payload, &fields))
	assert.Equal(t, "佛教经典/金刚经.pdf", fields["r2_key"])
	assert.Contains(t, fields, "audio_series_id")
	assert.Contains(t, fields, "audio_episode_num")
	assert.NotContains(t, fields, "bucket_key")

	payload, err = json.Marshal(CatalogDocument{BucketKey: "k"})
	require.NoError(t, err)
	assert.Contains(t, string(payload), `"r2_key":"k"`)
	assert.Contains(t, string(payload), `"audio_series_id":null`)
}
