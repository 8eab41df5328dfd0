package downloader

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/denisAlshanov/ytgrab/internal/config"
	"github.com/denisAlshanov/ytgrab/internal/models"
	"github.com/denisAlshanov/ytgrab/internal/services/youtube"
	"github.com/denisAlshanov/ytgrab/internal/utils"
)

// Downloader resolves video details and relays streams. It holds no per-request state.
type Downloader struct {
	extractor youtube.Extractor
	config    *config.DownloadConfig
	workDir   string
}

func NewDownloader(extractor youtube.Extractor, cfg *config.DownloadConfig) (*Downloader, error) {
	workDir, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve working directory: %w", err)
	}

	return &Downloader{
		extractor: extractor,
		config:    cfg,
		workDir:   workDir,
	}, nil
}

// Resolve fetches metadata for videoURL and returns the deduplicated format list.
// Unrecognized URLs fail before any network call.
func (d *Downloader) Resolve(ctx context.Context, videoURL string) (*models.VideoDetails, error) {
	if !d.extractor.IsRecognizedURL(videoURL) {
		return nil, utils.NewInvalidVideoURLError(videoURL)
	}

	info, err := d.extractor.FetchInfo(ctx, videoURL)
	if err != nil {
		return nil, utils.NewFetchDetailsError(err)
	}
	if info == nil {
		return nil, utils.NewFetchDetailsError(fmt.Errorf("extractor returned no details for %s", videoURL))
	}

	if info.ID != "" {
		ctx = utils.WithVideoID(ctx, info.ID)
	}

	details := &models.VideoDetails{
		Title:              info.Title,
		Author:             info.Author,
		Length:             max(info.LengthSeconds, 0),
		AvailableQualities: SelectFormats(info.Formats),
		FilePath:           d.SuggestedPath(info.Title),
	}
	if len(info.Thumbnails) > 0 {
		details.Thumbnail = info.Thumbnails[0]
	}

	utils.LogDebug(ctx, "Resolved video details", utils.Fields{
		"video_url":       videoURL,
		"raw_formats":     len(info.Formats),
		"offered_formats": len(details.AvailableQualities),
	})

	return details, nil
}

// SuggestedPath is where a download of title would be saved. Nothing is created on disk.
func (d *Downloader) SuggestedPath(title string) string {
	dir := d.config.Dir
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(d.workDir, dir)
	}
	return filepath.Join(dir, d.Filename(title))
}

// Filename is the attachment name used for title.
func (d *Downloader) Filename(title string) string {
	return utils.DownloadFilename(title, d.config.Extension)
}
