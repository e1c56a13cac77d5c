package utils

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"image-extractor/internal/types"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBrowserClient_IsLazy(t *testing.T) {
	config := types.DefaultConfig()
	client := NewBrowserClient(config, logrus.New())

	assert.NotNil(t, client)
	assert.Equal(t, config.MaxTabs, cap(client.tabs))

	_, ok := client.alive()
	assert.False(t, ok, "no browser process should be started before the first page")

	// closing a client that never launched is a no-op
	client.Close()
	client.Close()
}

func TestNewBrowserClient_MinimumOneTab(t *testing.T) {
	config := types.DefaultConfig()
	config.MaxTabs = 0

	client := NewBrowserClient(config, logrus.New())
	assert.Equal(t, 1, cap(client.tabs))
}

func TestBrowserClient_NewPage_ContextDone(t *testing.T) {
	config := types.DefaultConfig()
	config.MaxTabs = 1
	client := NewBrowserClient(config, logrus.New())

	// occupy the only tab slot
	client.tabs <- struct{}{}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	page, err := client.NewPage(ctx)
	assert.Nil(t, page)
	assert.ErrorIs(t, err, context.Canceled)
}

func newFakeBrowserClient(t *testing.T, maxTabs int) (*BrowserClient, *devToolsServer) {
	t.Helper()

	devTools := newDevToolsServer(t)

	config := types.DefaultConfig()
	config.BrowserPath = devTools.fakeChrome(t)
	config.NavigationTimeout = 5 * time.Second
	config.MaxTabs = maxTabs

	client := NewBrowserClient(config, logrus.New())
	t.Cleanup(client.Close)
	return client, devTools
}

func TestBrowserClient_PageUsableAfterNewPage(t *testing.T) {
	client, _ := newFakeBrowserClient(t, 2)

	page, err := client.NewPage(context.Background())
	require.NoError(t, err)
	defer page.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	var sum int
	require.NoError(t, page.Evaluate(ctx, "1+1", &sum))
	assert.Equal(t, 2, sum)

	html, err := page.HTML(ctx)
	require.NoError(t, err)
	assert.Equal(t, devToolsHTML, html)
}

func TestBrowserClient_ConcurrentFirstLaunch(t *testing.T) {
	client, devTools := newFakeBrowserClient(t, 8)

	var wg sync.WaitGroup
	errs := make([]error, 8)
	sums := make([]int, 8)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()

			page, err := client.NewPage(context.Background())
			if err != nil {
				errs[i] = err
				return
			}
			defer page.Close()
			errs[i] = page.Evaluate(context.Background(), "1+1", &sums[i])
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		assert.NoError(t, err)
		assert.Equal(t, 2, sums[i])
	}
	assert.Equal(t, int32(1), devTools.connections.Load(), "all pages should share one browser")
}

func TestBrowserClient_ClosedPageFreesSlot(t *testing.T) {
	client, devTools := newFakeBrowserClient(t, 1)

	first, err := client.NewPage(context.Background())
	require.NoError(t, err)
	require.NoError(t, first.Close())
	require.NoError(t, first.Close())

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	second, err := client.NewPage(ctx)
	require.NoError(t, err)
	defer second.Close()

	var sum int
	require.NoError(t, second.Evaluate(ctx, "1+1", &sum))
	assert.Equal(t, 2, sum)
	assert.Equal(t, int32(1), devTools.connections.Load())
}

func TestBrowserPage_Navigate(t *testing.T) {
	client, _ := newFakeBrowserClient(t, 2)

	tests := []struct {
		name     string
		url      string
		strategy types.WaitStrategy
	}{
		{"load event", "https://shop.test/p/1", types.WaitLoad},
		{"network idle", "https://shop.test/p/2", types.WaitNetworkIdle},
		{"network idle without load event", "https://shop.test/idle-only/p/3", types.WaitNetworkIdle},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, err := client.NewPage(context.Background())
			require.NoError(t, err)
			defer page.Close()

			require.NoError(t, page.Navigate(context.Background(), tt.url, tt.strategy, 3*time.Second))
			assert.Equal(t, tt.url, page.URL())
		})
	}
}

func TestBrowserPage_NavigateConnectionReset(t *testing.T) {
	client, _ := newFakeBrowserClient(t, 1)

	page, err := client.NewPage(context.Background())
	require.NoError(t, err)
	defer page.Close()

	err = page.Navigate(context.Background(), "https://shop.test/reset", types.WaitLoad, 3*time.Second)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ERR_CONNECTION_RESET")
	assert.True(t, IsTransientNavigationError(err))
	assert.Empty(t, page.URL())
}

func TestIsTransientNavigationError(t *testing.T) {
	tests := []struct {
		err       error
		transient bool
	}{
		{errors.New("socket hang up"), true},
		{errors.New("read: socket closed"), true},
		{fmt.Errorf("navigation failed: %w", errors.New("Client network socket disconnected")), true},
		{errors.New("page load error net::ERR_CONNECTION_RESET"), true},
		{errors.New("upstream hang up"), true},
		{errors.New("page load error net::ERR_NAME_NOT_RESOLVED"), false},
		{context.DeadlineExceeded, false},
		{context.Canceled, false},
		{nil, false},
	}

	for _, tt := range tests {
		name := "nil"
		if tt.err != nil {
			name = tt.err.Error()
		}
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tt.transient, IsTransientNavigationError(tt.err))
		})
	}
}
