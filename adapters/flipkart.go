package adapters

import (
	"context"
	"strings"

	"image-extractor/internal/types"

	"github.com/PuerkitoBio/goquery"
)

// flipkartThumbnailPrefix identifies the 128x128 gallery thumbnails on the Flipkart CDN
const flipkartThumbnailPrefix = "https://rukminim2.flixcart.com/image/128/128/"

// FlipkartAdapter handles extraction for flipkart.com
type FlipkartAdapter struct {
	*BaseAdapter
}

// NewFlipkartAdapter creates a new Flipkart adapter
func NewFlipkartAdapter(base *BaseAdapter) *FlipkartAdapter {
	return &FlipkartAdapter{BaseAdapter: base}
}

// Name returns the store name
func (f *FlipkartAdapter) Name() string {
	return "Flipkart"
}

// Domains returns the registry keys served by the adapter
func (f *FlipkartAdapter) Domains() []string {
	return []string{"flipkart.com"}
}

// RequiresRendering reports that Flipkart is read from the rendered page
func (f *FlipkartAdapter) RequiresRendering() bool {
	return true
}

// Extract reads the high priority hero image and every CDN thumbnail
func (f *FlipkartAdapter) Extract(ctx context.Context, page types.Page, productURL string) interface{} {
	doc, origin, err := f.Document(ctx, page, productURL)
	if err != nil {
		f.logger.Warnf("Error extracting Flipkart image from %s: %v", productURL, err)
		return types.Empty()
	}

	image := f.ImageSource(doc.Find(`img[fetchpriority="high"]`).First(), origin, []string{"src"})

	imageList := []string{}
	doc.Find("img").Each(func(i int, img *goquery.Selection) {
		src := f.ImageSource(img, origin, basicAttrs)
		if strings.HasPrefix(src, flipkartThumbnailPrefix) {
			imageList = append(imageList, src)
		}
	})

	f.logger.Debugf("Flipkart: hero image found=%t, %d thumbnails", image != "", len(imageList))
	return types.ExtractionResult{Image: image, ImageList: imageList}
}
