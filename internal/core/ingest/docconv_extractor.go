package ingest

import (
	"context"
	"fmt"
	"os"
	"strings"

	"code.sajari.com/docconv"
	"golang.org/x/sync/errgroup"

	"github.com/lectern-ai/lectern/internal/core"
)

var _ core.WordExtractor = (*DocconvExtractor)(nil)

// DocconvExtractor implements core.WordExtractor using sajari/docconv.
// docconv flattens a PDF to plain text with form-feed page breaks and
// carries no typography, so every word reports font size 0: documents
// processed through it segment as untitled body text. Deployments that
// need title detection plug a font-aware extractor behind the same
// interface.
type DocconvExtractor struct {
	useReadability bool
}

func NewDocconvExtractor(useReadability bool) *DocconvExtractor {
	return &DocconvExtractor{useReadability: useReadability}
}

// ExtractWords converts the PDF at path and streams one PageWords per
// form-feed-delimited page.
func (e *DocconvExtractor) ExtractWords(ctx context.Context, g *errgroup.Group, path string) (<-chan core.PageWords, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	out := make(chan core.PageWords, 8)
	g.Go(func() error {
		defer close(out)
		defer f.Close()

		res, err := docconv.Convert(f, "application/pdf", e.useReadability)
		if err != nil {
			return fmt.Errorf("docconv convert: %w", err)
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		for num, pageText := range strings.Split(res.Body, "\f") {
			fields := strings.Fields(pageText)
			words := make([]core.Word, 0, len(fields))
			for _, fld := range fields {
				words = append(words, core.Word{Text: fld})
			}
			select {
			case out <- core.PageWords{Number: num, Words: words}:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		return nil
	})
	return out, nil
}
