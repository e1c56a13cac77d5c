package adapters

import (
	"context"
	"net/url"

	"image-extractor/internal/types"
)

// storefrontFormat selects which public product endpoint a storefront exposes
type storefrontFormat int

const (
	// productJSON is {product URL}.json, answering {"product": {"image": {"src"}, "images": [...]}}
	productJSON storefrontFormat = iota
	// productJS is {product URL}.js, answering {"featured_image", "images": [...]}
	productJS
)

func (f storefrontFormat) suffix() string {
	if f == productJS {
		return ".js"
	}
	return ".json"
}

// StorefrontAdapter handles stores that expose their catalog through the
// public Shopify product endpoints
type StorefrontAdapter struct {
	*BaseAdapter
	name    string
	domains []string
	format  storefrontFormat
	gallery bool
}

// NewStorefrontAdapter creates an adapter for one storefront.
// Without a gallery the primary image is returned as a bare string.
func NewStorefrontAdapter(base *BaseAdapter, name string, domains []string, format storefrontFormat, gallery bool) *StorefrontAdapter {
	return &StorefrontAdapter{
		BaseAdapter: base,
		name:        name,
		domains:     domains,
		format:      format,
		gallery:     gallery,
	}
}

// Name returns the store name
func (s *StorefrontAdapter) Name() string {
	return s.name
}

// Domains returns the registry keys served by the adapter
func (s *StorefrontAdapter) Domains() []string {
	return s.domains
}

// RequiresRendering reports that storefront endpoints never need a page
func (s *StorefrontAdapter) RequiresRendering() bool {
	return false
}

type storefrontProduct struct {
	FeaturedImage jsonString `json:"featured_image"`
	Images        imageRefs  `json:"images"`
	Product       struct {
		Image struct {
			Src jsonString `json:"src"`
		} `json:"image"`
		Images imageRefs `json:"images"`
	} `json:"product"`
}

// endpoint returns the product URL without query and fragment, plus the format suffix
func (s *StorefrontAdapter) endpoint(productURL string) (string, error) {
	parsed, err := url.Parse(productURL)
	if err != nil {
		return "", err
	}
	parsed.RawQuery = ""
	parsed.Fragment = ""
	parsed.RawFragment = ""
	return parsed.String() + s.format.suffix(), nil
}

// Extract fetches the product endpoint and reads the primary and gallery images
func (s *StorefrontAdapter) Extract(ctx context.Context, page types.Page, productURL string) interface{} {
	apiURL, err := s.endpoint(productURL)
	if err != nil {
		s.logger.Warnf("Invalid %s product URL %s: %v", s.name, productURL, err)
		return s.notFound()
	}
	s.logger.Debugf("Fetching %s product from %s", s.name, apiURL)

	var resp storefrontProduct
	if err := s.FetchJSON(ctx, apiURL, &resp); err != nil {
		s.logger.Warnf("Error fetching %s product from %s: %v", s.name, apiURL, err)
		return s.notFound()
	}

	origin := pageOrigin(page, productURL)

	var image string
	var images imageRefs
	switch s.format {
	case productJS:
		image = resp.FeaturedImage.resolve(origin)
		images = resp.Images
	default:
		image = resp.Product.Image.Src.resolve(origin)
		images = resp.Product.Images
	}

	if !s.gallery {
		if image == "" {
			return nil
		}
		return image
	}

	imageList := images.Absolute(origin)
	s.logger.Debugf("%s: primary found=%t, %d gallery images", s.name, image != "", len(imageList))
	return types.ExtractionResult{Image: image, ImageList: imageList}
}

func (s *StorefrontAdapter) notFound() interface{} {
	if !s.gallery {
		return nil
	}
	return types.Empty()
}
