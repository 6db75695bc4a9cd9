package geolocation

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/jengzang/taste-records-go/internal/spatial"
)

// ReaderSource replays newline-delimited JSON from a reader as a position feed.
//
// Each line is either a position
//
//	{"coords":{"latitude":37.5665,"longitude":126.978},"timestamp":1700000000000}
//
// or a recorded error
//
//	{"error":{"code":1,"message":"User denied Geolocation"}}
//
// Malformed lines, including lines longer than MaxLineBytes, are delivered as
// ErrPositionUnavailable. A read error is delivered the same way and ends
// the feed. When no line
// arrives within WatchOptions.Timeout an ErrTimeout update is delivered and
// the watch continues.
type ReaderSource struct {
	r io.Reader

	mu      sync.Mutex
	watched bool
}

// NewReaderSource creates a source over r. A ReaderSource can be watched once.
func NewReaderSource(r io.Reader) *ReaderSource {
	return &ReaderSource{r: r}
}

// MaxLineBytes bounds a single feed line
const MaxLineBytes = 64 * 1024

var errLineTooLong = errors.New("position line too long")

type feedItem struct {
	line []byte
	err  *PositionError
}

type feedLine struct {
	Coords    *Coords `json:"coords"`
	Timestamp int64   `json:"timestamp"`
	Error     *struct {
		Code    ErrorCode `json:"code"`
		Message string    `json:"message"`
	} `json:"error"`
}

// Watch implements Source
func (s *ReaderSource) Watch(ctx context.Context, opts WatchOptions) (<-chan Update, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.watched {
		return nil, errors.New("reader source can only be watched once")
	}
	s.watched = true

	lines := make(chan feedItem)
	go readFeed(ctx, bufio.NewReader(s.r), lines)

	out := make(chan Update)
	go func() {
		defer close(out)
		for {
			var timeout <-chan time.Time
			var timer *time.Timer
			if opts.Timeout > 0 {
				timer = time.NewTimer(opts.Timeout)
				timeout = timer.C
			}

			var u Update
			select {
			case <-ctx.Done():
				stopTimer(timer)
				return
			case line, ok := <-lines:
				stopTimer(timer)
				if !ok {
					return
				}
				u = ParseLine(line)
			case <-timeout:
				u = Update{Err: &PositionError{Code: Timeout, Message: fmt.Sprintf("no position within %s", opts.Timeout)}}
			}

			select {
			case out <- u:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out, nil
}

func readFeed(ctx context.Context, br *bufio.Reader, lines chan<- feedItem) {
	defer close(lines)
	for {
		line, err := readLine(br, MaxLineBytes)

		var it feedItem
		fatal := false
		switch {
		case errors.Is(err, io.EOF):
			return
		case errors.Is(err, errLineTooLong):
			it.err = &PositionError{Code: PositionUnavailable, Message: fmt.Sprintf("position line exceeds %d bytes", MaxLineBytes)}
		case err != nil:
			it.err = &PositionError{Code: PositionUnavailable, Message: "read position feed: " + err.Error()}
			fatal = true
		default:
			if line = bytes.TrimSpace(line); len(line) == 0 {
				continue
			}
			it.line = line
		}

		select {
		case lines <- it:
		case <-ctx.Done():
			return
		}
		if fatal {
			return
		}
	}
}

// readLine returns the next line without copying more than limit bytes.
// An oversized line is consumed up to its newline and reported as
// errLineTooLong so the next line can still be read.
func readLine(br *bufio.Reader, limit int) ([]byte, error) {
	var buf []byte
	tooLong := false
	for {
		chunk, err := br.ReadSlice('\n')
		if !tooLong {
			if len(buf)+len(chunk) > limit {
				tooLong = true
				buf = nil
			} else {
				buf = append(buf, chunk...)
			}
		}

		switch {
		case errors.Is(err, bufio.ErrBufferFull):
			continue
		case err != nil && !errors.Is(err, io.EOF):
			return nil, err
		}

		if tooLong {
			return nil, errLineTooLong
		}
		if err != nil && len(buf) == 0 {
			return nil, io.EOF
		}
		return buf, nil
	}
}

func stopTimer(t *time.Timer) {
	if t != nil {
		t.Stop()
	}
}

// ParseLine decodes one feed line into an update
func ParseLine(line []byte) Update {
	var fl feedLine
	if err := json.Unmarshal(line, &fl); err != nil {
		return Update{Err: &PositionError{Code: PositionUnavailable, Message: "malformed position: " + err.Error()}}
	}

	if fl.Error != nil {
		code := fl.Error.Code
		if code < PermissionDenied || code > Timeout {
			code = PositionUnavailable
		}
		return Update{Err: &PositionError{Code: code, Message: fl.Error.Message}}
	}

	if fl.Coords == nil || fl.Timestamp <= 0 {
		return Update{Err: &PositionError{Code: PositionUnavailable, Message: "position without coords or timestamp"}}
	}
	if !spatial.ValidCoordinate(fl.Coords.Latitude, fl.Coords.Longitude) {
		return Update{Err: &PositionError{Code: PositionUnavailable, Message: "coordinates out of range"}}
	}

	return Update{Position: Position{Coords: *fl.Coords, Timestamp: fl.Timestamp}}
}
