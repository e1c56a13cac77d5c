package extractor

import (
	"image-extractor/internal/types"
)

// Normalize folds any adapter return value into an ExtractionResult.
//
// A bare string becomes the primary image with an empty gallery. A result
// without a primary image falls back to the first gallery entry; an explicit
// primary image is never replaced. Everything unrecognized is "not found".
func Normalize(raw interface{}) types.ExtractionResult {
	switch v := raw.(type) {
	case nil:
		return types.Empty()
	case string:
		return types.ExtractionResult{Image: v, ImageList: []string{}}
	case *string:
		if v == nil {
			return types.Empty()
		}
		return types.ExtractionResult{Image: *v, ImageList: []string{}}
	case types.ExtractionResult:
		return normalizeResult(v.Image, v.ImageList)
	case *types.ExtractionResult:
		if v == nil {
			return types.Empty()
		}
		return normalizeResult(v.Image, v.ImageList)
	case map[string]interface{}:
		return normalizeMap(v)
	default:
		return types.Empty()
	}
}

func normalizeResult(image string, imageList []string) types.ExtractionResult {
	list := append(make([]string, 0, len(imageList)), imageList...)

	if image == "" && len(list) > 0 {
		image = list[0]
	}
	return types.ExtractionResult{Image: image, ImageList: list}
}

// normalizeMap handles a decoded JSON object carrying image and imageList keys
func normalizeMap(m map[string]interface{}) types.ExtractionResult {
	image, _ := m["image"].(string)

	var list []string
	switch entries := m["imageList"].(type) {
	case []string:
		list = entries
	case []interface{}:
		for _, entry := range entries {
			if src, ok := entry.(string); ok {
				list = append(list, src)
			}
		}
	}
	return normalizeResult(image, list)
}
