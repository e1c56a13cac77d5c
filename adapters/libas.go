package adapters

import (
	"context"

	"image-extractor/internal/types"

	"github.com/PuerkitoBio/goquery"
)

// LibasAdapter handles extraction for libas.in
type LibasAdapter struct {
	*BaseAdapter
}

// NewLibasAdapter creates a new Libas adapter
func NewLibasAdapter(base *BaseAdapter) *LibasAdapter {
	return &LibasAdapter{BaseAdapter: base}
}

// Name returns the store name
func (l *LibasAdapter) Name() string {
	return "Libas"
}

// Domains returns the registry keys served by the adapter
func (l *LibasAdapter) Domains() []string {
	return []string{"libas.in"}
}

// RequiresRendering reports that Libas is read from the rendered page
func (l *LibasAdapter) RequiresRendering() bool {
	return true
}

// Extract walks the <image-element> custom elements inside every main product image block
func (l *LibasAdapter) Extract(ctx context.Context, page types.Page, productURL string) interface{} {
	doc, origin, err := l.Document(ctx, page, productURL)
	if err != nil {
		l.logger.Warnf("Error extracting Libas image from %s: %v", productURL, err)
		return types.Empty()
	}

	mains := doc.Find("[data-product-image-main]")
	image := l.ImageSource(mains.First().Find("image-element").First().Find("img").First(), origin, imageAttrs)

	imageList := []string{}
	mains.Each(func(i int, main *goquery.Selection) {
		main.Find("image-element").Each(func(j int, element *goquery.Selection) {
			if src := l.ImageSource(element.Find("img").First(), origin, galleryAttrs); src != "" {
				imageList = append(imageList, src)
			}
		})
	})

	l.logger.Debugf("Libas: primary found=%t, %d gallery images", image != "", len(imageList))
	return types.ExtractionResult{Image: image, ImageList: imageList}
}
