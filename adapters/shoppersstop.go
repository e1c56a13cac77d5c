package adapters

import (
	"context"

	"image-extractor/internal/types"

	"github.com/PuerkitoBio/goquery"
)

// ShoppersStopAdapter handles extraction for shoppersstop.com
type ShoppersStopAdapter struct {
	*BaseAdapter
}

// NewShoppersStopAdapter creates a new Shoppers Stop adapter
func NewShoppersStopAdapter(base *BaseAdapter) *ShoppersStopAdapter {
	return &ShoppersStopAdapter{BaseAdapter: base}
}

// Name returns the store name
func (s *ShoppersStopAdapter) Name() string {
	return "Shoppers Stop"
}

// Domains returns the registry keys served by the adapter
func (s *ShoppersStopAdapter) Domains() []string {
	return []string{"shoppersstop.com"}
}

// RequiresRendering reports that Shoppers Stop is read from the rendered page
func (s *ShoppersStopAdapter) RequiresRendering() bool {
	return true
}

// Extract returns the first resolvable lazy product image as a bare URL.
// Shoppers Stop does not expose a usable gallery.
func (s *ShoppersStopAdapter) Extract(ctx context.Context, page types.Page, productURL string) interface{} {
	doc, origin, err := s.Document(ctx, page, productURL)
	if err != nil {
		s.logger.Warnf("Error extracting Shoppers Stop image from %s: %v", productURL, err)
		return nil
	}

	var image string
	doc.Find(`img[loading="lazy"].size-full.object-contain`).EachWithBreak(func(i int, img *goquery.Selection) bool {
		image = s.ImageSource(img, origin, imageAttrs)
		return image == ""
	})

	if image == "" {
		s.logger.Debugf("Shoppers Stop: no product image on %s", productURL)
		return nil
	}
	return image
}
