package adapters

import (
	"context"
	"fmt"
	"net/url"
	"regexp"

	"image-extractor/internal/types"
)

const (
	hmAPIBase     = "https://api.hm.com/search-services/v1"
	hmDefaultLang = "en_in"
)

var (
	hmProductIDPattern = regexp.MustCompile(`productpage\.(\d+)\.html`)
	hmLocalePattern    = regexp.MustCompile(`/([a-z]{2}_[a-z]{2})/`)
)

// HMAdapter resolves H&M product images through the search services API
type HMAdapter struct {
	*BaseAdapter
	apiBase string
}

// NewHMAdapter creates a new H&M adapter
func NewHMAdapter(base *BaseAdapter) *HMAdapter {
	return &HMAdapter{BaseAdapter: base, apiBase: hmAPIBase}
}

// Name returns the store name
func (h *HMAdapter) Name() string {
	return "H&M"
}

// Domains returns the registry keys served by the adapter
func (h *HMAdapter) Domains() []string {
	return []string{"hm.com", "hm.co.in"}
}

// RequiresRendering reports that H&M never needs a page
func (h *HMAdapter) RequiresRendering() bool {
	return false
}

type hmSearchResponse struct {
	Articles struct {
		ProductList []struct {
			ProductImage jsonString `json:"productImage"`
		} `json:"productList"`
	} `json:"articles"`
}

// productID returns the numeric article id and the locale of a product page URL
func (h *HMAdapter) productID(productURL string) (string, string, error) {
	parsed, err := url.Parse(productURL)
	if err != nil {
		return "", "", err
	}

	match := hmProductIDPattern.FindStringSubmatch(parsed.Path)
	if match == nil {
		return "", "", fmt.Errorf("no product id in %s", parsed.Path)
	}

	locale := hmDefaultLang
	if m := hmLocalePattern.FindStringSubmatch(parsed.Path); m != nil {
		locale = m[1]
	}
	return match[1], locale, nil
}

// Extract returns the first product image as a bare string, or nil
func (h *HMAdapter) Extract(ctx context.Context, page types.Page, productURL string) interface{} {
	id, locale, err := h.productID(productURL)
	if err != nil {
		h.logger.Warnf("Could not extract H&M product ID from %s: %v", productURL, err)
		return nil
	}
	h.logger.Debugf("H&M: product ID %s, locale %s", id, locale)

	query := url.Values{}
	query.Set("ids", id)
	query.Set("touchPoint", "DESKTOP")
	query.Set("pageSource", "pdp-shopthelook")
	apiURL := fmt.Sprintf("%s/%s/search/byids?%s", h.apiBase, locale, query.Encode())

	var resp hmSearchResponse
	if err := h.FetchJSON(ctx, apiURL, &resp); err != nil {
		h.logger.Warnf("Error fetching H&M product %s: %v", id, err)
		return nil
	}

	if len(resp.Articles.ProductList) == 0 {
		return nil
	}
	if image := resp.Articles.ProductList[0].ProductImage.resolve(pageOrigin(page, productURL)); image != "" {
		return image
	}
	return nil
}
