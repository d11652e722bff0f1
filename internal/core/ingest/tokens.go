package ingest

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/lectern-ai/lectern/internal/core"
)

// TokenStream adapts a WordExtractor into the page stream the segmenter
// consumes, dropping the first PageOffset pages (cover and index pages
// carry no body content worth indexing).
type TokenStream struct {
	extractor core.WordExtractor
	offset    int
}

func NewTokenStream(extractor core.WordExtractor, pageOffset int) *TokenStream {
	if pageOffset < 0 {
		pageOffset = 0
	}
	return &TokenStream{extractor: extractor, offset: pageOffset}
}

// Pages starts extraction for the file at path and returns the filtered
// page stream. Page numbers are zero-based; the channel closes when the
// extractor finishes.
func (t *TokenStream) Pages(ctx context.Context, g *errgroup.Group, path string) (<-chan core.PageWords, error) {
	in, err := t.extractor.ExtractWords(ctx, g, path)
	if err != nil {
		return nil, err
	}

	out := make(chan core.PageWords, 4)
	g.Go(func() error {
		defer close(out)
		for page := range in {
			if page.Number < t.offset {
				continue
			}
			select {
			case out <- page:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		return nil
	})
	return out, nil
}
