package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeDomain(t *testing.T) {
	tests := []struct {
		in     string
		domain string
		ok     bool
	}{
		{"https://www.Myntra.com/dresses/123", "myntra.com", true},
		{"https://www2.hm.com/en_in/productpage.0863595006.html", "www2.hm.com", true},
		{"http://amazon.in/dp/B0", "amazon.in", true},
		{"https://www.www.example.com/", "www.example.com", true},
		{"https://shop.example.com:8443/x", "shop.example.com", true},
		{"not a url", "", false},
		{"://broken", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			domain, ok := NormalizeDomain(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.domain, domain)
		})
	}
}

func TestAbsolutize(t *testing.T) {
	origin := "https://example.com"

	assert.Equal(t, "https://cdn.x/img.png", Absolutize(origin, "//cdn.x/img.png"))
	assert.Equal(t, "https://example.com/img.png", Absolutize(origin, "/img.png"))
	assert.Equal(t, "https://example.com/img.png", Absolutize(origin, "img.png"))
	assert.Equal(t, "https://cdn.x/img.png", Absolutize(origin, "https://cdn.x/img.png"))
	assert.Equal(t, "http://cdn.x/img.png", Absolutize(origin, "http://cdn.x/img.png"))
	assert.Empty(t, Absolutize(origin, ""))
	assert.Empty(t, Absolutize(origin, "  "))
	assert.Empty(t, Absolutize(origin, "data:image/gif;base64,R0lGOD"))
}

func TestOrigin(t *testing.T) {
	assert.Equal(t, "https://www.libas.in", Origin("https://www.libas.in/products/kurta?variant=1"))
	assert.Equal(t, "http://127.0.0.1:5000", Origin("http://127.0.0.1:5000/a/b"))
	assert.Empty(t, Origin("/relative/only"))
}

func TestStripQuery(t *testing.T) {
	out, err := StripQuery("https://aachho.com/products/rose-kurta?variant=42#reviews")
	require.NoError(t, err)
	assert.Equal(t, "https://aachho.com/products/rose-kurta", out)

	out, err = StripQuery("https://offduty.in/products/tee")
	require.NoError(t, err)
	assert.Equal(t, "https://offduty.in/products/tee", out)
}
