package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/denisAlshanov/ytgrab/internal/config"
	"github.com/denisAlshanov/ytgrab/internal/services/downloader"
	"github.com/denisAlshanov/ytgrab/internal/services/youtube"
)

func main() {
	fmt.Println("Extractor Probe")
	fmt.Println("===============")

	if len(os.Args) < 2 {
		log.Fatalf("usage: %s <video-url>", os.Args[0])
	}
	videoURL := os.Args[1]

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if cfg.Extractor.HTTPTimeout == 0 {
		fmt.Println("EXTRACTOR_HTTP_TIMEOUT not set - requests are unbounded")
	} else {
		fmt.Printf("Extractor timeout: %s\n", cfg.Extractor.HTTPTimeout)
	}
	fmt.Println()

	client := youtube.NewClient(&cfg.Extractor)
	if !client.IsRecognizedURL(videoURL) {
		log.Fatalf("Not a recognized video URL: %s", videoURL)
	}

	d, err := downloader.NewDownloader(client, &cfg.Download)
	if err != nil {
		log.Fatalf("Failed to create downloader: %v", err)
	}

	fmt.Println("Fetching video details...")
	details, err := d.Resolve(context.Background(), videoURL)
	if err != nil {
		log.Fatalf("Resolve failed: %v", err)
	}

	fmt.Printf("Title:     %s\n", details.Title)
	fmt.Printf("Author:    %s\n", details.Author)
	fmt.Printf("Length:    %ds\n", details.Length)
	fmt.Printf("Thumbnail: %s\n", details.Thumbnail)
	fmt.Printf("File path: %s\n", details.FilePath)

	fmt.Printf("\n%d downloadable qualities:\n", len(details.AvailableQualities))
	for _, f := range details.AvailableQualities {
		fmt.Printf("  itag=%-4d %-8s %-40s %d bytes\n", f.Itag, f.Quality, f.MimeType, f.ContentLength)
	}
}
