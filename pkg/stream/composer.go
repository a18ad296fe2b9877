// Package stream composes a progressive response body from a static prefix,
// incrementally produced markup and a static suffix.
package stream

import (
	"context"
	"errors"
	"io"
	"sync"
)

// ErrClosed returned by emit after the consumer closed the stream
var ErrClosed = errors.New("stream closed by consumer")

// Source produces chunks in order, passing each one to emit as soon as it is ready.
// Source should stop and return when emit fails or ctx is done.
type Source func(ctx context.Context, emit func(chunk string) error) error

// Stream is a lazy, single-pass reader over the composed chunks.
// Nothing is produced ahead of the reader: each emit blocks until the chunk is consumed.
type Stream struct {
	pr     *io.PipeReader
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

// Compose starts a stream emitting prefix, every chunk of src and then suffix.
// If src fails, the error is returned by Read after the chunks emitted so far, and suffix is not written.
// The caller must Close the stream, closing early cancels src and waits for it to finish.
func Compose(ctx context.Context, prefix string, src Source, suffix string) *Stream {
	ctx, cancel := context.WithCancel(ctx)
	pr, pw := io.Pipe()
	res := &Stream{pr: pr, cancel: cancel, done: make(chan struct{})}

	emit := func(chunk string) error {
		if chunk == "" {
			return nil
		}
		if _, err := io.WriteString(pw, chunk); err != nil {
			if errors.Is(err, io.ErrClosedPipe) {
				return ErrClosed
			}
			return err
		}
		return nil
	}

	go func() {
		defer close(res.done)
		defer cancel()
		if err := emit(prefix); err != nil {
			_ = pw.CloseWithError(err)
			return
		}
		if err := src(ctx, emit); err != nil {
			_ = pw.CloseWithError(err)
			return
		}
		_ = pw.CloseWithError(emit(suffix)) // nil closes with io.EOF
	}()

	return res
}

// Read reads composed bytes, each read returns data from a single chunk at most
func (s *Stream) Read(p []byte) (int, error) {
	return s.pr.Read(p)
}

// Close stops the stream, cancels the source and waits for the producer to exit.
// Safe to call multiple times.
func (s *Stream) Close() error {
	s.once.Do(func() {
		s.cancel()
		_ = s.pr.Close()
		<-s.done
	})
	return nil
}

// CopyTo copies the stream to w chunk by chunk, calling flush after each write.
// Returns the number of bytes written. Reaching the end of the stream is not an error.
func (s *Stream) CopyTo(w io.Writer, flush func()) (int64, error) {
	buf := make([]byte, 32*1024)
	var total int64
	for {
		n, rerr := s.Read(buf)
		if n > 0 {
			wn, werr := w.Write(buf[:n])
			total += int64(wn)
			if werr != nil {
				return total, werr
			}
			if flush != nil {
				flush()
			}
		}
		if errors.Is(rerr, io.EOF) {
			return total, nil
		}
		if rerr != nil {
			return total, rerr
		}
	}
}
