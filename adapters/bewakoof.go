package adapters

import (
	"context"
	"fmt"
	"net/url"
	"regexp"

	"image-extractor/internal/types"
)

const (
	bewakoofDataBase  = "https://www.bewakoof.com/_next/data"
	bewakoofImageBase = "https://images.bewakoof.com/original/"
)

var (
	bewakoofHandlePattern  = regexp.MustCompile(`/p/(.+)`)
	bewakoofBuildIDPattern = regexp.MustCompile(`/static/([^/]+)/.*?buildManifest\.js`)
)

// BewakoofAdapter reads the Next.js build id from the rendered page and then
// fetches the product from the matching data route
type BewakoofAdapter struct {
	*BaseAdapter
	dataBase  string
	imageBase string
}

// NewBewakoofAdapter creates a new Bewakoof adapter
func NewBewakoofAdapter(base *BaseAdapter) *BewakoofAdapter {
	return &BewakoofAdapter{
		BaseAdapter: base,
		dataBase:    bewakoofDataBase,
		imageBase:   bewakoofImageBase,
	}
}

// Name returns the store name
func (b *BewakoofAdapter) Name() string {
	return "Bewakoof"
}

// Domains returns the registry keys served by the adapter
func (b *BewakoofAdapter) Domains() []string {
	return []string{"bewakoof.com"}
}

// RequiresRendering reports that the build id is only available on the rendered page
func (b *BewakoofAdapter) RequiresRendering() bool {
	return true
}

type bewakoofPageData struct {
	PageProps struct {
		ProductDetails struct {
			MetaImage jsonString `json:"meta_image"`
			Images    struct {
				Additional []struct {
					Name jsonString `json:"name"`
				} `json:"additional"`
			} `json:"images"`
		} `json:"productDetails"`
	} `json:"pageProps"`
}

// handle returns everything after /p/ in the product path
func (b *BewakoofAdapter) handle(productURL string) (string, error) {
	parsed, err := url.Parse(productURL)
	if err != nil {
		return "", err
	}

	match := bewakoofHandlePattern.FindStringSubmatch(parsed.Path)
	if match == nil {
		return "", fmt.Errorf("no product handle in %s", parsed.Path)
	}
	return match[1], nil
}

// buildID reads the id out of the first buildManifest.js script tag
func (b *BewakoofAdapter) buildID(ctx context.Context, page types.Page, productURL string) (string, error) {
	doc, _, err := b.Document(ctx, page, productURL)
	if err != nil {
		return "", err
	}

	src, _ := doc.Find(`script[src*="buildManifest.js"]`).First().Attr("src")
	match := bewakoofBuildIDPattern.FindStringSubmatch(src)
	if match == nil {
		return "", fmt.Errorf("no build manifest script on page")
	}
	return match[1], nil
}

// Extract returns the meta image and the additional gallery images
func (b *BewakoofAdapter) Extract(ctx context.Context, page types.Page, productURL string) interface{} {
	handle, err := b.handle(productURL)
	if err != nil {
		b.logger.Warnf("Could not extract Bewakoof product handle from %s: %v", productURL, err)
		return types.Empty()
	}

	build, err := b.buildID(ctx, page, productURL)
	if err != nil {
		b.logger.Warnf("Could not extract Bewakoof build ID from %s: %v", productURL, err)
		return types.Empty()
	}
	b.logger.Debugf("Bewakoof: handle %s, build %s", handle, build)

	apiURL := fmt.Sprintf("%s/%s/p/%s.json?product_handle=%s", b.dataBase, build, handle, handle)

	var data bewakoofPageData
	if err := b.FetchJSON(ctx, apiURL, &data); err != nil {
		b.logger.Warnf("Error fetching Bewakoof product %s: %v", handle, err)
		return types.Empty()
	}

	details := data.PageProps.ProductDetails
	image := details.MetaImage.resolve(pageOrigin(page, productURL))

	imageList := []string{}
	for _, item := range details.Images.Additional {
		if item.Name != "" {
			imageList = append(imageList, b.imageBase+string(item.Name))
		}
	}

	return types.ExtractionResult{Image: image, ImageList: imageList}
}
