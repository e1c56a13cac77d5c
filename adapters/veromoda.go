package adapters

import (
	"context"

	"image-extractor/internal/types"

	"github.com/PuerkitoBio/goquery"
)

// VeroModaAdapter handles extraction for veromoda.in
type VeroModaAdapter struct {
	*BaseAdapter
}

// NewVeroModaAdapter creates a new Vero Moda adapter
func NewVeroModaAdapter(base *BaseAdapter) *VeroModaAdapter {
	return &VeroModaAdapter{BaseAdapter: base}
}

// Name returns the store name
func (v *VeroModaAdapter) Name() string {
	return "Vero Moda"
}

// Domains returns the registry keys served by the adapter
func (v *VeroModaAdapter) Domains() []string {
	return []string{"veromoda.in"}
}

// RequiresRendering reports that Vero Moda is read from the rendered page
func (v *VeroModaAdapter) RequiresRendering() bool {
	return true
}

// Extract reads the first image media block and the gallery thumbnails
func (v *VeroModaAdapter) Extract(ctx context.Context, page types.Page, productURL string) interface{} {
	doc, origin, err := v.Document(ctx, page, productURL)
	if err != nil {
		v.logger.Warnf("Error extracting Vero Moda image from %s: %v", productURL, err)
		return types.Empty()
	}

	media := doc.Find(`[data-media-type="image"]`).First()
	image := v.ImageSource(media.Find("img").First(), origin, imageAttrs)

	imageList := []string{}
	doc.Find(".product-gallery__thumbnail").Each(func(i int, thumbnail *goquery.Selection) {
		if src := v.ImageSource(thumbnail.Find("img").First(), origin, galleryAttrs); src != "" {
			imageList = append(imageList, src)
		}
	})

	v.logger.Debugf("Vero Moda: primary found=%t, %d thumbnails", image != "", len(imageList))
	return types.ExtractionResult{Image: image, ImageList: imageList}
}
