package extractor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"image-extractor/internal/types"
	"image-extractor/utils"
)

// Registry resolves a normalized domain to its site adapter
type Registry interface {
	Lookup(domain string) types.SiteAdapter
}

// Extractor is the entry point for turning a product URL into images.
// It owns navigation and its single retry; adapters only read the page.
type Extractor struct {
	config   *types.Config
	logger   types.Logger
	registry Registry
	browser  types.Browser
}

// NewExtractor creates a new extractor over a registry and a shared browser
func NewExtractor(config *types.Config, logger types.Logger, registry Registry, browser types.Browser) *Extractor {
	return &Extractor{
		config:   config,
		logger:   logger,
		registry: registry,
		browser:  browser,
	}
}

// Extract resolves the adapter for productURL, renders the page when the
// adapter needs it, and returns the normalized result
func (e *Extractor) Extract(ctx context.Context, productURL string) (*types.ExtractionResult, error) {
	startTime := time.Now()

	domain, ok := utils.NormalizeDomain(productURL)
	if !ok {
		return nil, fmt.Errorf("%w: %q", types.ErrInvalidURL, productURL)
	}

	adapter := e.registry.Lookup(domain)
	if adapter == nil {
		return nil, fmt.Errorf("%w: %s", types.ErrUnsupportedDomain, domain)
	}

	e.logger.Infof("Extracting images from %s using %s adapter", productURL, adapter.Name())

	if !adapter.RequiresRendering() {
		result := Normalize(adapter.Extract(ctx, nil, productURL))
		e.logger.Infof("Extraction for %s completed in %v (%d gallery images)", domain, time.Since(startTime), len(result.ImageList))
		return &result, nil
	}

	result, err := e.extractRendered(ctx, adapter, productURL)
	if err != nil {
		return nil, err
	}

	e.logger.Infof("Extraction for %s completed in %v (%d gallery images)", domain, time.Since(startTime), len(result.ImageList))
	return result, nil
}

// extractRendered opens a tab, navigates, waits for client rendering and runs the adapter.
// The tab is always closed; the shared browser stays up.
func (e *Extractor) extractRendered(ctx context.Context, adapter types.SiteAdapter, productURL string) (*types.ExtractionResult, error) {
	page, err := e.browser.NewPage(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open page: %v", types.ErrExtractionFailed, err)
	}
	defer func() {
		if err := page.Close(); err != nil {
			e.logger.Warnf("Failed to close page for %s: %v", productURL, err)
		}
	}()

	if err := e.navigate(ctx, page, productURL); err != nil {
		return nil, err
	}

	if err := e.settle(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrExtractionFailed, err)
	}

	result := Normalize(adapter.Extract(ctx, page, productURL))
	return &result, nil
}

// navigate loads productURL, retrying once with a network idle wait after a connection reset
func (e *Extractor) navigate(ctx context.Context, page types.Page, productURL string) error {
	err := page.Navigate(ctx, productURL, types.WaitLoad, e.config.NavigationTimeout)
	if err == nil {
		return nil
	}

	if !utils.IsTransientNavigationError(err) {
		return fmt.Errorf("%w: %v", types.ErrExtractionFailed, err)
	}

	e.logger.Warnf("Navigation to %s failed (%v), retrying with %s", productURL, err, types.WaitNetworkIdle)

	if retryErr := page.Navigate(ctx, productURL, types.WaitNetworkIdle, e.config.NavigationTimeout); retryErr != nil {
		return fmt.Errorf("%w: %w: %v", types.ErrExtractionFailed, types.ErrTransientNavigation, retryErr)
	}
	return nil
}

// settle gives client-side rendering time to populate the DOM
func (e *Extractor) settle(ctx context.Context) error {
	if e.config.SettleDelay <= 0 {
		return nil
	}

	timer := time.NewTimer(e.config.SettleDelay)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// IsClientError reports whether err is caused by the caller's input
func IsClientError(err error) bool {
	return errors.Is(err, types.ErrInvalidURL) || errors.Is(err, types.ErrUnsupportedDomain)
}
