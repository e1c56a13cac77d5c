package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"image-extractor/adapters"
	"image-extractor/extractor"
	"image-extractor/internal/config"
	"image-extractor/utils"

	"github.com/sirupsen/logrus"
)

// urlResult is the CLI output for one product URL
type urlResult struct {
	URL       string   `json:"url"`
	Image     *string  `json:"image"`
	ImageList []string `json:"imageList"`
	Error     string   `json:"error,omitempty"`
}

func main() {
	// Parse command line flags
	var (
		urlFlag    = flag.String("url", "", "Single product URL to extract")
		urlsFlag   = flag.String("urls", "", "Comma-separated list of product URLs")
		outputFlag = flag.String("output", "", "Output file path (default: stdout)")
		timeout    = flag.Duration("timeout", 5*time.Minute, "Overall timeout")
		verbose    = flag.Bool("verbose", false, "Enable verbose logging")
		list       = flag.Bool("list", false, "List supported domains and exit")
	)
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := utils.NewLogger(cfg.LogLevel)
	if *verbose {
		logger.SetLevel(logrus.DebugLevel)
	}
	// Keep stdout clean for the JSON output
	logger.SetOutput(os.Stderr)

	httpClient := utils.NewHTTPClient(cfg, logger)
	defer httpClient.Close()

	registry := adapters.NewRegistry(cfg, logger, httpClient)

	if *list {
		for _, domain := range registry.Domains() {
			adapter := registry.Lookup(domain)
			fmt.Printf("%-22s %-20s rendering=%t\n", domain, adapter.Name(), adapter.RequiresRendering())
		}
		return
	}

	// Validate flags - either -url or -urls must be provided
	if *urlFlag == "" && *urlsFlag == "" {
		log.Fatal("Either -url or -urls flag is required")
	}
	if *urlFlag != "" && *urlsFlag != "" {
		log.Fatal("Cannot use both -url and -urls flags")
	}

	var urls []string
	if *urlFlag != "" {
		urls = []string{strings.TrimSpace(*urlFlag)}
	} else {
		for _, u := range strings.Split(*urlsFlag, ",") {
			if u = strings.TrimSpace(u); u != "" {
				urls = append(urls, u)
			}
		}
	}

	browser := utils.NewBrowserClient(cfg, logger)
	defer browser.Close()

	ext := extractor.NewExtractor(cfg, logger, registry, browser)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	startTime := time.Now()
	logger.Infof("Starting extraction for %d URLs", len(urls))

	results := make([]urlResult, 0, len(urls))
	found := 0
	for _, productURL := range urls {
		entry := urlResult{URL: productURL, ImageList: []string{}}

		result, err := ext.Extract(ctx, productURL)
		if err != nil {
			logger.Warnf("Failed to extract %s: %v", productURL, err)
			entry.Error = err.Error()
			results = append(results, entry)
			continue
		}

		if result.Image != "" {
			image := result.Image
			entry.Image = &image
			found++
		}
		entry.ImageList = result.ImageList
		results = append(results, entry)
	}

	logger.Infof("Extraction completed in %v", time.Since(startTime))

	// Marshal results to JSON
	jsonData, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		logger.Fatalf("Failed to marshal results: %v", err)
	}

	// Output results
	if *outputFlag != "" {
		if err := os.WriteFile(*outputFlag, jsonData, 0644); err != nil {
			logger.Fatalf("Failed to write output file: %v", err)
		}
		logger.Infof("Results written to: %s", *outputFlag)
	} else {
		fmt.Println(string(jsonData))
	}

	logger.Infof("Total URLs processed: %d", len(urls))
	logger.Infof("URLs with a product image: %d", found)
}
