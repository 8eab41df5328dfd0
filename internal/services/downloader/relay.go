package downloader

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/denisAlshanov/ytgrab/internal/models"
	"github.com/denisAlshanov/ytgrab/internal/services/youtube"
	"github.com/denisAlshanov/ytgrab/internal/utils"
)

// ResponseWriter is the subset of gin.ResponseWriter the relay needs.
type ResponseWriter interface {
	http.ResponseWriter
	http.Flusher

	// Written reports whether the status line and headers have gone out.
	Written() bool
}

// RelayState tracks one relay from request to outcome.
type RelayState int

const (
	StateIdle RelayState = iota
	StateHeadersPending
	StateStreaming
	StateCompleted
	StateAborted
)

func (s RelayState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateHeadersPending:
		return "headers_pending"
	case StateStreaming:
		return "streaming"
	case StateCompleted:
		return "completed"
	case StateAborted:
		return "aborted"
	default:
		return fmt.Sprintf("RelayState(%d)", int(s))
	}
}

// StreamError reports a relay failure. Once HeadersSent is true the response cannot carry an error
// document anymore and the connection has to be dropped.
type StreamError struct {
	Err          error
	HeadersSent  bool
	BytesWritten int64
	State        RelayState
}

func (e *StreamError) Error() string {
	return fmt.Sprintf("relay %s after %d bytes: %v", e.State, e.BytesWritten, e.Err)
}

func (e *StreamError) Unwrap() error {
	return e.Err
}

// Relay streams the encoding selected by req into w as an attachment.
//
// Bytes pass through a buffer of RelayBufferSize, so the upstream is read only as fast as the client
// drains the response. Headers are committed with the first flush of that buffer, not with the first
// upstream byte: a video smaller than RelayBufferSize is held entirely in memory and its headers go out
// only once the upstream reaches EOF. A failure before that first flush leaves w untouched apart from
// its header map, so the caller can still answer with an error document.
func (d *Downloader) Relay(ctx context.Context, w ResponseWriter, req *models.DownloadRequest) (int64, error) {
	if !d.extractor.IsRecognizedURL(req.VideoURL) {
		return 0, utils.NewInvalidVideoURLError(req.VideoURL)
	}

	state := StateHeadersPending
	header := w.Header()
	header.Set("Content-Type", "application/octet-stream")
	header.Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", d.Filename(req.FileTitle())))

	stream, err := d.extractor.OpenStream(ctx, req.VideoURL, StreamOptionsFor(req))
	if err != nil {
		return 0, &StreamError{Err: err, HeadersSent: w.Written(), State: StateAborted}
	}
	defer stream.Close()

	out := bufio.NewWriterSize(flushWriter{w}, d.config.RelayBufferSize)
	buf := make([]byte, d.config.RelayBufferSize)
	var written int64

	fail := func(err error) (int64, error) {
		utils.LogDebug(ctx, "Relay aborted", utils.Fields{
			"state":         state.String(),
			"bytes_written": written,
		})
		return written, &StreamError{Err: err, HeadersSent: w.Written(), BytesWritten: written, State: StateAborted}
	}

	for {
		n, readErr := stream.Read(buf)
		if n > 0 {
			state = StateStreaming
			if _, err := out.Write(buf[:n]); err != nil {
				return fail(err)
			}
			written += int64(n)
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return fail(readErr)
		}
		if err := ctx.Err(); err != nil {
			return fail(err)
		}
	}

	if err := out.Flush(); err != nil {
		return fail(err)
	}

	state = StateCompleted
	utils.LogDebug(ctx, "Relay finished", utils.Fields{
		"state":         state.String(),
		"bytes_written": written,
	})
	return written, nil
}

// StreamOptionsFor maps a download request to extractor selector options.
func StreamOptionsFor(req *models.DownloadRequest) youtube.StreamOptions {
	opts := youtube.StreamOptions{
		Quality: youtube.QualityHighest,
		Itag:    req.Itag,
	}
	if req.Quality != nil && *req.Quality != "" {
		opts.Quality = *req.Quality
	}
	return opts
}

// IsClientGone reports whether err came from the caller hanging up.
func IsClientGone(err error) bool {
	return errors.Is(err, context.Canceled)
}

// flushWriter pushes every buffered chunk to the client as soon as the relay buffer spills.
type flushWriter struct {
	w ResponseWriter
}

func (f flushWriter) Write(p []byte) (int, error) {
	n, err := f.w.Write(p)
	if err != nil {
		return n, err
	}
	f.w.Flush()
	return n, nil
}
