package adapters

import (
	"context"

	"image-extractor/internal/types"
)

// AmazonAdapter handles extraction for the Amazon storefronts
type AmazonAdapter struct {
	*BaseAdapter
}

// NewAmazonAdapter creates a new Amazon adapter
func NewAmazonAdapter(base *BaseAdapter) *AmazonAdapter {
	return &AmazonAdapter{BaseAdapter: base}
}

// Name returns the store name
func (a *AmazonAdapter) Name() string {
	return "Amazon"
}

// Domains returns the registry keys served by the adapter
func (a *AmazonAdapter) Domains() []string {
	return []string{"amazon.in", "amazon.com", "amazon.co.uk", "amazon.com.au"}
}

// RequiresRendering reports that Amazon is read from the rendered page
func (a *AmazonAdapter) RequiresRendering() bool {
	return true
}

// Extract reads the hovered main image and the thumbnail strip
func (a *AmazonAdapter) Extract(ctx context.Context, page types.Page, productURL string) interface{} {
	doc, origin, err := a.Document(ctx, page, productURL)
	if err != nil {
		a.logger.Warnf("Error extracting Amazon image from %s: %v", productURL, err)
		return types.Empty()
	}

	imageBlock := doc.Find(`[data-csa-c-action="image-block-main-image-hover"]`).First()
	image := a.ImageSource(imageBlock.Find("img").First(), origin, basicAttrs)
	imageList := a.ImageSources(doc.Find(".imageThumbnail img"), origin, basicAttrs)

	a.logger.Debugf("Amazon: main image found=%t, %d thumbnails", image != "", len(imageList))
	return types.ExtractionResult{Image: image, ImageList: imageList}
}
