package youtube

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/kkdai/youtube/v2"

	"github.com/denisAlshanov/ytgrab/internal/config"
)

// ErrFormatNotFound is returned by OpenStream when no audio+video encoding matches the selector.
var ErrFormatNotFound = errors.New("no such format found")

var (
	validQueryDomains = map[string]bool{
		"youtube.com":        true,
		"www.youtube.com":    true,
		"m.youtube.com":      true,
		"music.youtube.com":  true,
		"gaming.youtube.com": true,
	}
	validPathDomains = regexp.MustCompile(`^https?://(youtu\.be/|(www\.)?youtube\.com/(embed|v|shorts|live)/)`)
	videoIDPattern   = regexp.MustCompile(`^[a-zA-Z0-9_-]{11}$`)
)

type Client struct {
	client *youtube.Client
}

// NewClient creates a new YouTube extractor
func NewClient(cfg *config.ExtractorConfig) *Client {
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	return &Client{
		client: &youtube.Client{
			HTTPClient: httpClient,
		},
	}
}

// IsRecognizedURL checks if the provided URL is a YouTube video URL
func (c *Client) IsRecognizedURL(rawURL string) bool {
	_, err := ParseVideoID(rawURL)
	return err == nil
}

// ParseVideoID extracts the 11 character video ID from a watch, short, embed or youtu.be URL.
func ParseVideoID(rawURL string) (string, error) {
	link := strings.TrimSpace(rawURL)
	parsed, err := url.Parse(link)
	if err != nil {
		return "", fmt.Errorf("malformed URL: %w", err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return "", fmt.Errorf("not an absolute URL: %q", rawURL)
	}

	id := parsed.Query().Get("v")
	if validPathDomains.MatchString(link) && id == "" {
		paths := strings.Split(parsed.Path, "/")
		if parsed.Host == "youtu.be" && len(paths) > 1 {
			id = paths[1]
		} else if len(paths) > 2 {
			id = paths[2]
		}
	} else if !validQueryDomains[parsed.Hostname()] {
		return "", fmt.Errorf("not a YouTube domain: %q", parsed.Hostname())
	}

	if id == "" {
		return "", fmt.Errorf("no video id found: %q", rawURL)
	}
	if len(id) > 11 {
		id = id[:11]
	}
	if !videoIDPattern.MatchString(id) {
		return "", fmt.Errorf("video id %q does not match expected format", id)
	}
	return id, nil
}

// FetchInfo retrieves video metadata and every encoding the platform advertises
func (c *Client) FetchInfo(ctx context.Context, rawURL string) (*VideoInfo, error) {
	videoID, err := ParseVideoID(rawURL)
	if err != nil {
		return nil, err
	}

	video, err := c.client.GetVideoContext(ctx, videoID)
	if err != nil {
		return nil, fmt.Errorf("failed to get video info: %w", err)
	}

	info := &VideoInfo{
		ID:            video.ID,
		Title:         video.Title,
		Author:        video.Author,
		LengthSeconds: int(video.Duration.Seconds()),
		Formats:       make([]RawFormat, 0, len(video.Formats)),
	}

	for _, thumbnail := range video.Thumbnails {
		info.Thumbnails = append(info.Thumbnails, thumbnail.URL)
	}

	for _, format := range video.Formats {
		info.Formats = append(info.Formats, toRawFormat(format))
	}

	return info, nil
}

// OpenStream resolves the video, picks the combined encoding for opts and opens its byte stream.
// The stream stops when ctx is cancelled.
func (c *Client) OpenStream(ctx context.Context, rawURL string, opts StreamOptions) (io.ReadCloser, error) {
	videoID, err := ParseVideoID(rawURL)
	if err != nil {
		return nil, err
	}

	video, err := c.client.GetVideoContext(ctx, videoID)
	if err != nil {
		return nil, fmt.Errorf("failed to get video: %w", err)
	}

	format, err := chooseFormat(video.Formats, opts)
	if err != nil {
		return nil, err
	}

	stream, _, err := c.client.GetStreamContext(ctx, video, format)
	if err != nil {
		return nil, fmt.Errorf("failed to get stream for itag %d: %w", format.ItagNo, err)
	}

	return stream, nil
}

func toRawFormat(format youtube.Format) RawFormat {
	return RawFormat{
		Itag:          format.ItagNo,
		QualityLabel:  format.QualityLabel,
		Quality:       format.Quality,
		MimeType:      format.MimeType,
		ContentLength: format.ContentLength,
		HasVideo:      format.QualityLabel != "",
		HasAudio:      format.AudioChannels > 0,
	}
}

// chooseFormat applies the video-and-audio filter and then the selector.
func chooseFormat(formats youtube.FormatList, opts StreamOptions) (*youtube.Format, error) {
	var candidates []*youtube.Format
	for i := range formats {
		if formats[i].QualityLabel != "" && formats[i].AudioChannels > 0 {
			candidates = append(candidates, &formats[i])
		}
	}
	if len(candidates) == 0 {
		return nil, ErrFormatNotFound
	}

	if opts.Itag > 0 {
		return findItag(candidates, opts.Itag)
	}

	quality := strings.TrimSpace(opts.Quality)
	switch quality {
	case "", QualityHighest:
		best := candidates[0]
		for _, f := range candidates[1:] {
			if betterFormat(f, best) {
				best = f
			}
		}
		return best, nil
	case QualityLowest:
		worst := candidates[0]
		for _, f := range candidates[1:] {
			if betterFormat(worst, f) {
				worst = f
			}
		}
		return worst, nil
	}

	if itag, err := strconv.Atoi(quality); err == nil {
		return findItag(candidates, itag)
	}

	for _, f := range candidates {
		if f.QualityLabel == quality || f.Quality == quality {
			return f, nil
		}
	}
	return nil, fmt.Errorf("%w: quality %q", ErrFormatNotFound, quality)
}

func findItag(candidates []*youtube.Format, itag int) (*youtube.Format, error) {
	for _, f := range candidates {
		if f.ItagNo == itag {
			return f, nil
		}
	}
	return nil, fmt.Errorf("%w: itag %d", ErrFormatNotFound, itag)
}

// betterFormat orders by frame height, then bitrate.
func betterFormat(candidate, current *youtube.Format) bool {
	if candidate.Height != current.Height {
		return candidate.Height > current.Height
	}
	return candidate.Bitrate > current.Bitrate
}
