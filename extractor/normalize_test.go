package extractor

import (
	"encoding/json"
	"testing"

	"image-extractor/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	image := "https://cdn.x/p.png"
	var nilString *string
	var nilResult *types.ExtractionResult

	tests := []struct {
		name     string
		raw      interface{}
		expected types.ExtractionResult
	}{
		{"nil", nil, types.ExtractionResult{ImageList: []string{}}},
		{"bare string", "X", types.ExtractionResult{Image: "X", ImageList: []string{}}},
		{"string pointer", &image, types.ExtractionResult{Image: image, ImageList: []string{}}},
		{"nil string pointer", nilString, types.ExtractionResult{ImageList: []string{}}},
		{"nil result pointer", nilResult, types.ExtractionResult{ImageList: []string{}}},
		{
			"gallery only",
			types.ExtractionResult{ImageList: []string{"A", "B"}},
			types.ExtractionResult{Image: "A", ImageList: []string{"A", "B"}},
		},
		{
			"explicit image wins",
			types.ExtractionResult{Image: "Z", ImageList: []string{"A"}},
			types.ExtractionResult{Image: "Z", ImageList: []string{"A"}},
		},
		{
			"result pointer",
			&types.ExtractionResult{ImageList: []string{"A"}},
			types.ExtractionResult{Image: "A", ImageList: []string{"A"}},
		},
		{
			"nil gallery",
			types.ExtractionResult{Image: "Z"},
			types.ExtractionResult{Image: "Z", ImageList: []string{}},
		},
		{"unknown type", 42, types.ExtractionResult{ImageList: []string{}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Normalize(tt.raw))
		})
	}
}

func TestNormalize_DecodedObject(t *testing.T) {
	tests := []struct {
		body     string
		expected types.ExtractionResult
	}{
		{`{"imageList":["A","B"]}`, types.ExtractionResult{Image: "A", ImageList: []string{"A", "B"}}},
		{`{"image":"Z","imageList":["A"]}`, types.ExtractionResult{Image: "Z", ImageList: []string{"A"}}},
		{`{"image":null,"imageList":"not-a-list"}`, types.ExtractionResult{ImageList: []string{}}},
		{`{}`, types.ExtractionResult{ImageList: []string{}}},
	}

	for _, tt := range tests {
		t.Run(tt.body, func(t *testing.T) {
			var raw map[string]interface{}
			require.NoError(t, json.Unmarshal([]byte(tt.body), &raw))
			assert.Equal(t, tt.expected, Normalize(raw))
		})
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []interface{}{
		nil,
		"X",
		types.ExtractionResult{ImageList: []string{"A", "B"}},
		types.ExtractionResult{Image: "Z", ImageList: []string{"A"}},
	}

	for _, raw := range inputs {
		once := Normalize(raw)
		assert.Equal(t, once, Normalize(once))
	}
}

func TestNormalize_DoesNotAliasInput(t *testing.T) {
	list := []string{"A", "B"}
	result := Normalize(types.ExtractionResult{ImageList: list})

	list[0] = "changed"
	assert.Equal(t, "A", result.ImageList[0])
}
