package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"strings"

	"image-extractor/internal/config"
	"image-extractor/internal/types"
	"image-extractor/utils"

	"github.com/PuerkitoBio/goquery"
	"github.com/sirupsen/logrus"
)

// inspect renders a product page and prints the image candidates an adapter
// could select, as a starting point for writing selectors for a new store.
func main() {
	urlFlag := flag.String("url", "", "Product page URL to inspect")
	limit := flag.Int("limit", 20, "Maximum number of images to print")
	verbose := flag.Bool("verbose", false, "Enable verbose logging")
	flag.Parse()

	if *urlFlag == "" {
		log.Fatal("-url flag is required")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := utils.NewLogger(cfg.LogLevel)
	if *verbose {
		logger.SetLevel(logrus.DebugLevel)
	}

	browser := utils.NewBrowserClient(cfg, logger)
	defer browser.Close()

	ctx := context.Background()
	page, err := browser.NewPage(ctx)
	if err != nil {
		log.Fatalf("Failed to open page: %v", err)
	}
	defer page.Close()

	if err := page.Navigate(ctx, *urlFlag, types.WaitLoad, cfg.NavigationTimeout); err != nil {
		log.Fatalf("Failed to navigate: %v", err)
	}

	html, err := page.HTML(ctx)
	if err != nil {
		log.Fatalf("Failed to get page content: %v", err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		log.Fatalf("Failed to parse HTML: %v", err)
	}

	origin := utils.Origin(page.URL())
	fmt.Printf("=== %s ===\n", page.URL())

	images := doc.Find("img")
	fmt.Printf("Total images found: %d\n", images.Length())

	count := 0
	images.EachWithBreak(func(i int, img *goquery.Selection) bool {
		var attrs []string
		for _, attr := range []string{"src", "data-src", "data-lazy-src", "data-original", "data-url"} {
			if value, ok := img.Attr(attr); ok {
				if resolved := utils.Absolutize(origin, value); resolved != "" {
					attrs = append(attrs, fmt.Sprintf("%s='%s'", attr, resolved))
				}
			}
		}
		if len(attrs) == 0 {
			return true
		}

		class, _ := img.Attr("class")
		parentClass, _ := img.Parent().Attr("class")
		fmt.Printf("  %d: %s class='%s' parent='%s'\n", i+1, strings.Join(attrs, " "), class, parentClass)

		count++
		return count < *limit
	})

	tiles := doc.Find("[style*='background-image']")
	fmt.Printf("Elements with inline background-image: %d\n", tiles.Length())

	manifests := doc.Find(`script[src*="buildManifest.js"]`)
	fmt.Printf("Next.js build manifests: %d\n", manifests.Length())
	manifests.Each(func(i int, s *goquery.Selection) {
		src, _ := s.Attr("src")
		fmt.Printf("  %d: %s\n", i+1, src)
	})
}
