package icon

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"ico-builder-go/internal/platform/logging"
)

// Source yields the bytes of one submitted image.
type Source struct {
	Name string
	// MediaType is the declared type. Empty means sniff from content.
	MediaType string
	Open      func(ctx context.Context) (io.ReadCloser, error)
}

// FileSource reads path from disk, declaring a type from its extension.
func FileSource(path string) Source {
	return Source{
		Name:      filepath.Base(path),
		MediaType: MediaTypeFromName(path),
		Open: func(context.Context) (io.ReadCloser, error) {
			return os.Open(path)
		},
	}
}

// BytesSource wraps an in-memory payload.
func BytesSource(name, mediaType string, data []byte) Source {
	return Source{
		Name:      name,
		MediaType: mediaType,
		Open: func(context.Context) (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(data)), nil
		},
	}
}

// Loader reads and probes sources concurrently.
type Loader struct {
	maxFileSize int64
	concurrency int
	logger      *logging.Logger
}

func NewLoader(maxFileSize int64, concurrency int, logger *logging.Logger) *Loader {
	if concurrency <= 0 {
		concurrency = 1
	}
	if logger == nil {
		logger = logging.Default
	}
	return &Loader{maxFileSize: maxFileSize, concurrency: concurrency, logger: logger}
}

// Load returns one unvalidated candidate per source, in source order. A
// source that fails to open, read or decode yields a candidate with Err set;
// siblings are unaffected. After ctx is done, remaining sources are not read.
func (l *Loader) Load(ctx context.Context, sources []Source) []Candidate {
	out := make([]Candidate, len(sources))

	var g errgroup.Group
	g.SetLimit(l.concurrency)
	for i, src := range sources {
		i, src := i, src
		g.Go(func() error {
			out[i] = l.loadOne(ctx, src)
			return nil
		})
	}
	_ = g.Wait()
	return out
}

func (l *Loader) loadOne(ctx context.Context, src Source) Candidate {
	c := NewCandidate(src.Name, nil, src.MediaType, 0, 0)
	if err := ctx.Err(); err != nil {
		c.Err = err
		return c
	}
	if src.Open == nil {
		c.Err = fmt.Errorf("source %q has no reader", src.Name)
		return c
	}

	rc, err := src.Open(ctx)
	if err != nil {
		c.Err = fmt.Errorf("open %s: %w", src.Name, err)
		l.logger.WarnTag("Icon", "open %s failed: %v", src.Name, err)
		return c
	}
	defer rc.Close()

	var r io.Reader = rc
	if l.maxFileSize > 0 {
		// One extra byte is enough to tell the payload is over the limit.
		r = io.LimitReader(rc, l.maxFileSize+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		c.Err = fmt.Errorf("read %s: %w", src.Name, err)
		l.logger.WarnTag("Icon", "read %s failed: %v", src.Name, err)
		return c
	}
	c.Payload = data
	if len(data) == 0 || (l.maxFileSize > 0 && int64(len(data)) > l.maxFileSize) {
		return c
	}

	res, err := Probe(data, src.MediaType)
	c.MediaType = res.MediaType
	c.Width, c.Height = res.Width, res.Height
	if err != nil && isPNG(res.MediaType) {
		// A PNG we cannot decode is unreadable; other formats are rejected by type.
		c.Err = err
	}
	return c
}
