package youtube

import (
	"context"
	"io"
)

// QualityHighest and QualityLowest are the selector sentinels understood by OpenStream.
const (
	QualityHighest = "highest"
	QualityLowest  = "lowest"
)

// Extractor is everything the service needs from a video platform.
type Extractor interface {
	// IsRecognizedURL reports whether the URL points at a video this extractor can handle. It never does I/O.
	IsRecognizedURL(url string) bool

	// FetchInfo retrieves video metadata and the raw list of encodings.
	FetchInfo(ctx context.Context, url string) (*VideoInfo, error)

	// OpenStream opens a combined audio+video byte stream matching opts.
	OpenStream(ctx context.Context, url string, opts StreamOptions) (io.ReadCloser, error)
}

// VideoInfo contains video metadata as reported by the platform
type VideoInfo struct {
	ID            string
	Title         string
	Author        string
	Thumbnails    []string
	LengthSeconds int
	Formats       []RawFormat
}

// RawFormat is one encoding before any filtering.
type RawFormat struct {
	Itag          int
	QualityLabel  string
	Quality       string
	MimeType      string
	ContentLength int64
	HasVideo      bool
	HasAudio      bool
}

// StreamOptions selects the encoding to stream. A positive Itag wins over Quality.
// Quality is QualityHighest, QualityLowest, an itag number or a quality label.
type StreamOptions struct {
	Quality string
	Itag    int
}
