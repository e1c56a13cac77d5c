package adapters

import (
	"context"

	"image-extractor/internal/types"
)

// SouledStoreAdapter handles extraction for thesouledstore.com
type SouledStoreAdapter struct {
	*BaseAdapter
}

// NewSouledStoreAdapter creates a new Souled Store adapter
func NewSouledStoreAdapter(base *BaseAdapter) *SouledStoreAdapter {
	return &SouledStoreAdapter{BaseAdapter: base}
}

// Name returns the store name
func (s *SouledStoreAdapter) Name() string {
	return "The Souled Store"
}

// Domains returns the registry keys served by the adapter
func (s *SouledStoreAdapter) Domains() []string {
	return []string{"thesouledstore.com"}
}

// RequiresRendering reports that the Souled Store is read from the rendered page
func (s *SouledStoreAdapter) RequiresRendering() bool {
	return true
}

// Extract reads every image nested under the .mdproduct block; the first one is the primary image
func (s *SouledStoreAdapter) Extract(ctx context.Context, page types.Page, productURL string) interface{} {
	doc, origin, err := s.Document(ctx, page, productURL)
	if err != nil {
		s.logger.Warnf("Error extracting Souled Store image from %s: %v", productURL, err)
		return types.Empty()
	}

	product := doc.Find(".mdproduct").First()
	image := s.ImageSource(product.Find("img").First(), origin, imageAttrs)
	imageList := s.ImageSources(product.Find("img"), origin, galleryAttrs)

	s.logger.Debugf("Souled Store: primary found=%t, %d gallery images", image != "", len(imageList))
	return types.ExtractionResult{Image: image, ImageList: imageList}
}
