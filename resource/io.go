package resource

import (
	"context"
	"io"
)

// RateLimitedWriter wraps w so that writes respect the controller's I/O
// limit. Without a configured limit, w is returned unchanged.
func (c *Controller) RateLimitedWriter(ctx context.Context, w io.Writer) io.Writer {
	if c == nil || c.ioLimiter == nil {
		return w
	}
	return &rateLimitedWriter{ctx: ctx, c: c, w: w}
}

// RateLimitedReader wraps r so that reads respect the controller's I/O
// limit. Without a configured limit, r is returned unchanged.
func (c *Controller) RateLimitedReader(ctx context.Context, r io.Reader) io.Reader {
	if c == nil || c.ioLimiter == nil {
		return r
	}
	return &rateLimitedReader{ctx: ctx, c: c, r: r}
}

type rateLimitedWriter struct {
	ctx context.Context
	c   *Controller
	w   io.Writer
}

func (w *rateLimitedWriter) Write(p []byte) (int, error) {
	if err := w.c.AcquireIO(w.ctx, len(p)); err != nil {
		return 0, err
	}
	return w.w.Write(p)
}

type rateLimitedReader struct {
	ctx context.Context
	c   *Controller
	r   io.Reader
}

// Read caps each read at the burst size so the wait matches what was
// actually read.
func (r *rateLimitedReader) Read(p []byte) (int, error) {
	if len(p) > r.c.ioBurst {
		p = p[:r.c.ioBurst]
	}
	n, err := r.r.Read(p)
	if n > 0 {
		if aerr := r.c.AcquireIO(r.ctx, n); aerr != nil {
			return n, aerr
		}
	}
	return n, err
}
