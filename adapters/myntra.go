package adapters

import (
	"context"
	"regexp"
	"time"

	"image-extractor/internal/types"
	"image-extractor/utils"

	"github.com/PuerkitoBio/goquery"
)

// backgroundURLPattern pulls the target out of url("..."), url('...') or url(...)
var backgroundURLPattern = regexp.MustCompile(`url\(['"]?([^'"]+)['"]?\)`)

const (
	myntraLazyWait     = 2 * time.Second
	myntraPollInterval = 100 * time.Millisecond
)

// myntraBackgroundsScript returns the computed background-image of the first
// grid tile on the page and of every tile inside the grid container
const myntraBackgroundsScript = `(() => {
	const bg = (el) => window.getComputedStyle(el).backgroundImage || el.style.backgroundImage || '';
	const first = document.querySelector('.image-grid-image');
	const container = document.querySelector('.image-grid-container');
	const tiles = container ? Array.from(container.querySelectorAll('.image-grid-image')) : [];
	return { first: first ? bg(first) : '', gallery: tiles.map(bg) };
})()`

// myntraScrollScript scrolls every lazy placeholder into view so the real tiles mount
const myntraScrollScript = `(async () => {
	const container = document.querySelector('.image-grid-container');
	if (!container) {
		return 0;
	}
	const placeholders = Array.from(container.querySelectorAll('.lazyload-placeholder'));
	for (const placeholder of placeholders) {
		placeholder.scrollIntoView({ block: 'center' });
		await new Promise(resolve => setTimeout(resolve, 200));
	}
	return placeholders.length;
})()`

// myntraPendingScript counts placeholders that have not been swapped yet
const myntraPendingScript = `(() => {
	const container = document.querySelector('.image-grid-container');
	return container ? container.querySelectorAll('.lazyload-placeholder').length : 0;
})()`

// MyntraAdapter handles extraction for myntra.com, whose gallery is a grid of
// background-image tiles that only mount once scrolled into view
type MyntraAdapter struct {
	*BaseAdapter
}

// NewMyntraAdapter creates a new Myntra adapter
func NewMyntraAdapter(base *BaseAdapter) *MyntraAdapter {
	return &MyntraAdapter{BaseAdapter: base}
}

// Name returns the store name
func (m *MyntraAdapter) Name() string {
	return "Myntra"
}

// Domains returns the registry keys served by the adapter
func (m *MyntraAdapter) Domains() []string {
	return []string{"myntra.com"}
}

// RequiresRendering reports that Myntra is read from the rendered page
func (m *MyntraAdapter) RequiresRendering() bool {
	return true
}

type myntraBackgrounds struct {
	First   string   `json:"first"`
	Gallery []string `json:"gallery"`
}

// Extract reads the tile backgrounds from computed styles, falling back to
// inline style attributes of the HTML snapshot when evaluation fails
func (m *MyntraAdapter) Extract(ctx context.Context, page types.Page, productURL string) interface{} {
	if page == nil {
		m.logger.Warnf("Error extracting Myntra image from %s: no page available", productURL)
		return types.Empty()
	}
	origin := pageOrigin(page, productURL)

	m.ensureGalleryLoaded(ctx, page)

	var backgrounds myntraBackgrounds
	if err := page.Evaluate(ctx, myntraBackgroundsScript, &backgrounds); err != nil {
		m.logger.Debugf("Myntra: computed styles unavailable (%v), reading inline styles", err)

		fallback, err := m.inlineBackgrounds(ctx, page, productURL)
		if err != nil {
			m.logger.Warnf("Error extracting Myntra image from %s: %v", productURL, err)
			return types.Empty()
		}
		backgrounds = fallback
	}

	image := backgroundImageURL(backgrounds.First, origin)

	imageList := []string{}
	for _, bg := range backgrounds.Gallery {
		if src := backgroundImageURL(bg, origin); src != "" {
			imageList = append(imageList, src)
		}
	}

	m.logger.Debugf("Myntra: primary found=%t, %d gallery tiles", image != "", len(imageList))
	return types.ExtractionResult{Image: image, ImageList: imageList}
}

// ensureGalleryLoaded triggers lazy loading and polls until the placeholders are
// gone or the bounded wait expires. Failures here are not fatal.
func (m *MyntraAdapter) ensureGalleryLoaded(ctx context.Context, page types.Page) {
	var scrolled int
	if err := page.Evaluate(ctx, myntraScrollScript, &scrolled); err != nil {
		m.logger.Debugf("Myntra: could not scroll gallery placeholders: %v", err)
		return
	}
	if scrolled == 0 {
		return
	}

	deadline := time.NewTimer(myntraLazyWait)
	defer deadline.Stop()
	ticker := time.NewTicker(myntraPollInterval)
	defer ticker.Stop()

	for {
		var pending int
		if err := page.Evaluate(ctx, myntraPendingScript, &pending); err != nil || pending == 0 {
			return
		}

		select {
		case <-ticker.C:
		case <-deadline.C:
			m.logger.Debugf("Myntra: %d placeholders still pending, continuing", pending)
			return
		case <-ctx.Done():
			return
		}
	}
}

// inlineBackgrounds reads style="background-image: ..." from the HTML snapshot
func (m *MyntraAdapter) inlineBackgrounds(ctx context.Context, page types.Page, productURL string) (myntraBackgrounds, error) {
	doc, _, err := m.Document(ctx, page, productURL)
	if err != nil {
		return myntraBackgrounds{}, err
	}

	backgrounds := myntraBackgrounds{Gallery: []string{}}
	backgrounds.First, _ = doc.Find(".image-grid-image").First().Attr("style")
	doc.Find(".image-grid-container").First().Find(".image-grid-image").Each(func(i int, tile *goquery.Selection) {
		style, _ := tile.Attr("style")
		backgrounds.Gallery = append(backgrounds.Gallery, style)
	})
	return backgrounds, nil
}

// backgroundImageURL extracts and absolutizes the url(...) token of a CSS value
func backgroundImageURL(css, origin string) string {
	if css == "" || css == "none" {
		return ""
	}

	match := backgroundURLPattern.FindStringSubmatch(css)
	if len(match) < 2 {
		return ""
	}

	if src := utils.Absolutize(origin, match[1]); utils.IsHTTP(src) {
		return src
	}
	return ""
}
