package adapters

import (
	"strings"

	"image-extractor/internal/types"
	"image-extractor/utils"
)

type registryEntry struct {
	domain  string
	adapter types.SiteAdapter
}

// Registry maps normalized domains to site adapters.
// Lookups fall back to a loose match in table order when no key matches exactly.
type Registry struct {
	entries []registryEntry
	exact   map[string]types.SiteAdapter
}

// NewRegistry builds every adapter up front and indexes them by domain
func NewRegistry(config *types.Config, logger types.Logger, httpClient *utils.HTTPClient) *Registry {
	base := NewBaseAdapter(config, logger, httpClient)

	amazon := NewAmazonAdapter(base)
	hm := NewHMAdapter(base)
	wforwoman := NewStorefrontAdapter(base, "W for Woman", []string{"wforwomen.com", "wforwoman.com"}, productJSON, true)

	// Order matters for loose matching
	table := []registryEntry{
		{"amazon.in", amazon},
		{"amazon.com", amazon},
		{"amazon.co.uk", amazon},
		{"amazon.com.au", amazon},
		{"flipkart.com", NewFlipkartAdapter(base)},
		{"myntra.com", NewMyntraAdapter(base)},
		{"thesouledstore.com", NewSouledStoreAdapter(base)},
		{"ajio.com", NewAjioAdapter(base)},
		{"hm.com", hm},
		{"hm.co.in", hm},
		{"thehouseofrare.com", NewStorefrontAdapter(base, "The House of Rare", []string{"thehouseofrare.com"}, productJSON, true)},
		{"aachho.com", NewStorefrontAdapter(base, "Aachho", []string{"aachho.com"}, productJS, true)},
		{"saadaa.in", NewStorefrontAdapter(base, "Saadaa", []string{"saadaa.in"}, productJSON, true)},
		{"houseofchikankari.in", NewStorefrontAdapter(base, "House of Chikankari", []string{"houseofchikankari.in"}, productJSON, true)},
		{"offduty.in", NewStorefrontAdapter(base, "Offduty", []string{"offduty.in"}, productJS, false)},
		{"freakins.com", NewStorefrontAdapter(base, "Freakins", []string{"freakins.com"}, productJS, true)},
		{"libas.in", NewLibasAdapter(base)},
		{"bewakoof.com", NewBewakoofAdapter(base)},
		{"wforwomen.com", wforwoman},
		{"wforwoman.com", wforwoman},
		{"shoppersstop.com", NewShoppersStopAdapter(base)},
		{"veromoda.in", NewVeroModaAdapter(base)},
	}

	return newRegistry(table)
}

func newRegistry(table []registryEntry) *Registry {
	r := &Registry{
		entries: table,
		exact:   make(map[string]types.SiteAdapter, len(table)),
	}
	for _, e := range table {
		r.exact[e.domain] = e.adapter
	}
	return r
}

// Lookup returns the adapter for a normalized domain, or nil
func (r *Registry) Lookup(domain string) types.SiteAdapter {
	if domain == "" {
		return nil
	}
	if adapter, ok := r.exact[domain]; ok {
		return adapter
	}

	for _, e := range r.entries {
		if strings.Contains(domain, e.domain) || strings.HasSuffix(domain, "."+e.domain) {
			return e.adapter
		}
	}
	return nil
}

// RequiresRendering reports whether the adapter for domain needs a browser page.
// Unknown domains report false.
func (r *Registry) RequiresRendering(domain string) bool {
	adapter := r.Lookup(domain)
	return adapter != nil && adapter.RequiresRendering()
}

// Domains lists the registered keys in table order
func (r *Registry) Domains() []string {
	domains := make([]string, 0, len(r.entries))
	for _, e := range r.entries {
		domains = append(domains, e.domain)
	}
	return domains
}
