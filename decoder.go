package graphstream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"

	"go.uber.org/zap"
)

// defaultReadSize is the size of one read from the underlying stream.
const defaultReadSize = 4096

// Decoder turns a raw byte stream into a forward-only sequence of decoded
// StreamEvents, one per newline-terminated line, in arrival order.
//
// The decoder buffers bytes rather than text and only ever cuts the buffer
// at '\n', so a multi-byte UTF-8 sequence split across network reads is
// reassembled before the line is parsed. The produced event sequence is
// therefore identical regardless of how the bytes were chunked.
//
// A Decoder is single-pass and not safe for concurrent use.
type Decoder struct {
	r       io.Reader
	buf     []byte
	readBuf []byte
	eof     bool
	flushed bool
	skipped int
	logger  *zap.Logger
}

// DecoderOption is a function for configuring the Decoder
type DecoderOption func(*Decoder)

// WithDecoderLogger sets the logger used for skipped-line reporting
func WithDecoderLogger(logger *zap.Logger) DecoderOption {
	return func(d *Decoder) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// NewDecoder creates a decoder reading from r.
func NewDecoder(r io.Reader, opts ...DecoderOption) *Decoder {
	d := &Decoder{
		r:       r,
		readBuf: make([]byte, defaultReadSize),
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Next returns the next decoded event, or io.EOF once the stream is
// exhausted. Lines that are empty, whitespace-only, or malformed JSON
// produce nothing: blank lines are silently dropped, malformed lines are
// logged and skipped, and the sequence continues either way. At
// end-of-stream a non-empty trailing fragment gets exactly one parse
// attempt under the same policy.
//
// Any non-EOF error from the underlying reader is returned as-is and
// terminates the sequence.
func (d *Decoder) Next() (*StreamEvent, error) {
	for {
		// Drain complete lines already buffered.
		for {
			i := bytes.IndexByte(d.buf, '\n')
			if i < 0 {
				break
			}
			line := d.buf[:i]
			d.buf = d.buf[i+1:]
			if ev, ok := d.parseLine(line); ok {
				return ev, nil
			}
		}

		if d.eof {
			if ev, ok := d.flush(); ok {
				return ev, nil
			}
			return nil, io.EOF
		}

		n, err := d.r.Read(d.readBuf)
		if n > 0 {
			d.buf = append(d.buf, d.readBuf[:n]...)
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				d.eof = true
				continue
			}
			return nil, err
		}
	}
}

// parseLine trims and parses one complete line. Returns false for lines
// that produce no event.
func (d *Decoder) parseLine(line []byte) (*StreamEvent, bool) {
	line = bytes.TrimSpace(line)
	if len(line) == 0 {
		return nil, false
	}

	var ev StreamEvent
	if err := json.Unmarshal(line, &ev); err != nil {
		d.skipped++
		decErr := &DecodeError{Line: string(line), Err: err}
		d.logger.Warn("skipping malformed stream line", zap.Error(decErr))
		return nil, false
	}
	return &ev, true
}

// flush attempts the single end-of-stream parse of the trailing buffer.
func (d *Decoder) flush() (*StreamEvent, bool) {
	if d.flushed {
		return nil, false
	}
	d.flushed = true

	line := d.buf
	d.buf = nil
	return d.parseLine(line)
}

// Skipped returns how many malformed lines were dropped so far.
func (d *Decoder) Skipped() int {
	return d.skipped
}

// Events consumes the remaining stream into a buffered channel.
// The channel is closed when the stream ends, the context is cancelled,
// or the underlying reader fails; read failures are logged, not surfaced.
func (d *Decoder) Events(ctx context.Context) <-chan StreamEvent {
	events := make(chan StreamEvent, 10) // Buffered to prevent blocking

	go func() {
		defer close(events)

		for {
			ev, err := d.Next()
			if err != nil {
				if !errors.Is(err, io.EOF) && !errors.Is(err, context.Canceled) {
					d.logger.Warn("stream read failed", zap.Error(err))
				}
				return
			}

			select {
			case <-ctx.Done():
				return
			case events <- *ev:
			}
		}
	}()

	return events
}
