package adapters

import (
	"context"
	"fmt"
	"net/url"
	"regexp"

	"image-extractor/internal/types"
)

const ajioAPIBase = "https://www.ajio.com/api"

var ajioProductIDPattern = regexp.MustCompile(`/p/([^/]+)`)

// AjioAdapter resolves Ajio product images through the product API
type AjioAdapter struct {
	*BaseAdapter
	apiBase string
}

// NewAjioAdapter creates a new Ajio adapter
func NewAjioAdapter(base *BaseAdapter) *AjioAdapter {
	return &AjioAdapter{BaseAdapter: base, apiBase: ajioAPIBase}
}

// Name returns the store name
func (a *AjioAdapter) Name() string {
	return "Ajio"
}

// Domains returns the registry keys served by the adapter
func (a *AjioAdapter) Domains() []string {
	return []string{"ajio.com"}
}

// RequiresRendering reports that Ajio never needs a page
func (a *AjioAdapter) RequiresRendering() bool {
	return false
}

type ajioProductResponse struct {
	BaseOptions []struct {
		Options []struct {
			ModelImage struct {
				URL jsonString `json:"url"`
			} `json:"modelImage"`
		} `json:"options"`
	} `json:"baseOptions"`
}

// productID returns the path segment that follows /p/
func (a *AjioAdapter) productID(productURL string) (string, error) {
	parsed, err := url.Parse(productURL)
	if err != nil {
		return "", err
	}

	match := ajioProductIDPattern.FindStringSubmatch(parsed.Path)
	if match == nil {
		return "", fmt.Errorf("no product id in %s", parsed.Path)
	}
	return match[1], nil
}

// Extract returns the model image of the first option as a bare string, or nil
func (a *AjioAdapter) Extract(ctx context.Context, page types.Page, productURL string) interface{} {
	id, err := a.productID(productURL)
	if err != nil {
		a.logger.Warnf("Could not extract Ajio product ID from %s: %v", productURL, err)
		return nil
	}
	a.logger.Debugf("Ajio: product ID %s", id)

	var resp ajioProductResponse
	if err := a.FetchJSON(ctx, fmt.Sprintf("%s/p/%s", a.apiBase, url.PathEscape(id)), &resp); err != nil {
		a.logger.Warnf("Error fetching Ajio product %s: %v", id, err)
		return nil
	}

	if len(resp.BaseOptions) == 0 || len(resp.BaseOptions[0].Options) == 0 {
		return nil
	}
	if image := resp.BaseOptions[0].Options[0].ModelImage.URL.resolve(pageOrigin(page, productURL)); image != "" {
		return image
	}
	return nil
}
