package ingest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/lectern-ai/lectern/internal/core"
)

// stubExtractor replays a fixed page sequence regardless of path.
type stubExtractor struct {
	pages []core.PageWords
}

func (s *stubExtractor) ExtractWords(ctx context.Context, g *errgroup.Group, _ string) (<-chan core.PageWords, error) {
	out := make(chan core.PageWords, len(s.pages))
	g.Go(func() error {
		defer close(out)
		for _, p := range s.pages {
			select {
			case out <- p:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		return nil
	})
	return out, nil
}

func TestTokenStreamSkipsOffsetPages(t *testing.T) {
	extractor := &stubExtractor{pages: []core.PageWords{
		{Number: 0, Words: body("cover")},
		{Number: 1, Words: body("index")},
		{Number: 2, Words: body("content")},
		{Number: 3, Words: body("more")},
	}}

	g, gctx := errgroup.WithContext(context.Background())
	pages, err := NewTokenStream(extractor, 2).Pages(gctx, g, "ignored.pdf")
	require.NoError(t, err)

	var got []core.PageWords
	for p := range pages {
		got = append(got, p)
	}
	require.NoError(t, g.Wait())

	require.Len(t, got, 2)
	assert.Equal(t, 2, got[0].Number)
	assert.Equal(t, 3, got[1].Number)
}

func TestTokenStreamZeroOffsetPassesEverything(t *testing.T) {
	extractor := &stubExtractor{pages: []core.PageWords{
		{Number: 0, Words: body("first")},
	}}

	g, gctx := errgroup.WithContext(context.Background())
	pages, err := NewTokenStream(extractor, 0).Pages(gctx, g, "ignored.pdf")
	require.NoError(t, err)

	var count int
	for range pages {
		count++
	}
	require.NoError(t, g.Wait())
	assert.Equal(t, 1, count)
}
