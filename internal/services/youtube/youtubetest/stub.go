// Package youtubetest provides an in-memory youtube.Extractor for tests.
package youtubetest

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"

	"github.com/denisAlshanov/ytgrab/internal/services/youtube"
)

// Stub is a scripted Extractor that records how it was called.
type Stub struct {
	// Recognize decides URL validity. Nil accepts anything starting with "https://".
	Recognize func(url string) bool

	Info    *youtube.VideoInfo
	InfoErr error

	// Chunks are emitted in order by every opened stream, followed by StreamErr (or EOF if nil).
	Chunks    [][]byte
	StreamErr error
	OpenErr   error

	mu         sync.Mutex
	infoCalls  int
	openCalls  int
	lastOpts   youtube.StreamOptions
	lastStream *Stream
}

func (s *Stub) IsRecognizedURL(url string) bool {
	if s.Recognize != nil {
		return s.Recognize(url)
	}
	return strings.HasPrefix(url, "https://")
}

func (s *Stub) FetchInfo(ctx context.Context, url string) (*youtube.VideoInfo, error) {
	s.mu.Lock()
	s.infoCalls++
	s.mu.Unlock()

	if s.InfoErr != nil {
		return nil, s.InfoErr
	}
	return s.Info, nil
}

func (s *Stub) OpenStream(ctx context.Context, url string, opts youtube.StreamOptions) (io.ReadCloser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.openCalls++
	s.lastOpts = opts

	if s.OpenErr != nil {
		return nil, s.OpenErr
	}
	chunks := append([][]byte(nil), s.Chunks...)
	s.lastStream = &Stream{ctx: ctx, chunks: chunks, err: s.StreamErr}
	return s.lastStream, nil
}

// InfoCalls is the number of FetchInfo invocations so far.
func (s *Stub) InfoCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.infoCalls
}

// OpenCalls is the number of OpenStream invocations so far.
func (s *Stub) OpenCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.openCalls
}

// LastOptions returns the options of the most recent OpenStream call.
func (s *Stub) LastOptions() youtube.StreamOptions {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastOpts
}

// LastStream returns the most recently opened stream, or nil.
func (s *Stub) LastStream() *Stream {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastStream
}

// Stream hands out one scripted chunk per Read.
type Stream struct {
	ctx    context.Context
	chunks [][]byte
	err    error

	mu     sync.Mutex
	closed bool
}

func (r *Stream) Read(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return 0, errors.New("read on closed stream")
	}
	if err := r.ctx.Err(); err != nil {
		return 0, err
	}
	if len(r.chunks) == 0 {
		if r.err != nil {
			return 0, r.err
		}
		return 0, io.EOF
	}

	n := copy(p, r.chunks[0])
	if n < len(r.chunks[0]) {
		r.chunks[0] = r.chunks[0][n:]
	} else {
		r.chunks = r.chunks[1:]
	}
	return n, nil
}

func (r *Stream) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	return nil
}

// Closed reports whether Close was called.
func (r *Stream) Closed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.closed
}
