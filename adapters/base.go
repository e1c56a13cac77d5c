package adapters

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"image-extractor/internal/types"
	"image-extractor/utils"

	"github.com/PuerkitoBio/goquery"
)

// Attribute lists consulted when resolving an <img> source, in order of preference
var (
	basicAttrs   = []string{"src", "data-src", "data-lazy-src"}
	imageAttrs   = []string{"src", "data-src", "data-lazy-src", "data-original"}
	galleryAttrs = []string{"src", "data-src", "data-lazy-src", "data-original", "data-url"}
)

// BaseAdapter provides common functionality for site adapters.
// Store-specific adapters embed it and only encode their own selectors
// or JSON layout.
type BaseAdapter struct {
	config     *types.Config
	logger     types.Logger
	httpClient *utils.HTTPClient
}

// NewBaseAdapter creates a new base adapter sharing the given vendor HTTP client
func NewBaseAdapter(config *types.Config, logger types.Logger, httpClient *utils.HTTPClient) *BaseAdapter {
	return &BaseAdapter{
		config:     config,
		logger:     logger,
		httpClient: httpClient,
	}
}

// Document parses the rendered page into a goquery document and returns
// the origin that relative image references resolve against
func (b *BaseAdapter) Document(ctx context.Context, page types.Page, productURL string) (*goquery.Document, string, error) {
	if page == nil {
		return nil, "", fmt.Errorf("no page available")
	}

	html, err := page.HTML(ctx)
	if err != nil {
		return nil, "", err
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	return doc, pageOrigin(page, productURL), nil
}

// pageOrigin prefers the location the browser ended up on over the requested URL
func pageOrigin(page types.Page, productURL string) string {
	if page != nil {
		if origin := utils.Origin(page.URL()); origin != "" {
			return origin
		}
	}
	return utils.Origin(productURL)
}

// ImageSource resolves the source of an <img>, trying attrs in order.
// Returns "" when nothing resolves to an absolute http(s) URL.
func (b *BaseAdapter) ImageSource(img *goquery.Selection, origin string, attrs []string) string {
	if img.Length() == 0 {
		return ""
	}

	for _, attr := range attrs {
		value, exists := img.Attr(attr)
		if !exists {
			continue
		}
		if src := utils.Absolutize(origin, value); utils.IsHTTP(src) {
			return src
		}
	}
	return ""
}

// ImageSources resolves every <img> in the selection, skipping the unresolvable ones
func (b *BaseAdapter) ImageSources(imgs *goquery.Selection, origin string, attrs []string) []string {
	list := []string{}
	imgs.Each(func(i int, img *goquery.Selection) {
		if src := b.ImageSource(img, origin, attrs); src != "" {
			list = append(list, src)
		}
	})
	return list
}

// FetchJSON performs the single vendor API call of an adapter and decodes the body into v.
// Fields whose JSON type does not match are left empty instead of failing the call.
func (b *BaseAdapter) FetchJSON(ctx context.Context, apiURL string, v interface{}) error {
	err := b.httpClient.GetJSON(ctx, apiURL, v)

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		b.logger.Debugf("Ignoring mismatched field %q in response from %s", typeErr.Field, apiURL)
		return nil
	}
	return err
}

// Config returns the config field of the BaseAdapter
func (b *BaseAdapter) Config() *types.Config {
	return b.config
}

// imageRef is a gallery entry that vendors encode either as a bare string
// or as an object exposing url or src. Unknown shapes decode to "".
type imageRef string

func (r *imageRef) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*r = imageRef(s)
		return nil
	}

	var obj struct {
		URL json.RawMessage `json:"url"`
		Src json.RawMessage `json:"src"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		*r = ""
		return nil
	}

	for _, raw := range []json.RawMessage{obj.URL, obj.Src} {
		var v string
		if len(raw) > 0 && json.Unmarshal(raw, &v) == nil && v != "" {
			*r = imageRef(v)
			return nil
		}
	}
	*r = ""
	return nil
}

// imageRefs tolerates a missing or non-array gallery field
type imageRefs []imageRef

func (rs *imageRefs) UnmarshalJSON(data []byte) error {
	if !bytes.HasPrefix(bytes.TrimSpace(data), []byte("[")) {
		*rs = nil
		return nil
	}

	var list []imageRef
	if err := json.Unmarshal(data, &list); err != nil {
		*rs = nil
		return nil
	}
	*rs = list
	return nil
}

// Absolute resolves every entry against origin, dropping the unresolvable ones
func (rs imageRefs) Absolute(origin string) []string {
	list := []string{}
	for _, r := range rs {
		if src := utils.Absolutize(origin, string(r)); utils.IsHTTP(src) {
			list = append(list, src)
		}
	}
	return list
}

// jsonString tolerates non-string values for fields documented as strings
type jsonString string

func (s *jsonString) UnmarshalJSON(data []byte) error {
	var v string
	if err := json.Unmarshal(data, &v); err != nil {
		*s = ""
		return nil
	}
	*s = jsonString(v)
	return nil
}

// resolve absolutizes a single vendor image value against origin
func (s jsonString) resolve(origin string) string {
	if src := utils.Absolutize(origin, string(s)); utils.IsHTTP(src) {
		return src
	}
	return ""
}
