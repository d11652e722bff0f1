package ingest

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/lectern-ai/lectern/internal/core"
	"github.com/lectern-ai/lectern/internal/models"
)

// untitledTitle labels body text that appears before the first detected
// title when a title shows up later in the stream.
const untitledTitle = "Untitled"

// SegmentConfig tunes title detection.
//
// TitleFontThreshold: a word whose font size strictly exceeds this is a
// title word. Tune per document-template class; guides produced from the
// standard CMS template sit at 12.
// MinChars: words shorter than this after trimming are dropped as noise
// (stray punctuation, page numbers).
type SegmentConfig struct {
	TitleFontThreshold float64
	MinChars           int
}

// Segmenter folds a per-page word stream into title-bounded sections.
type Segmenter struct {
	cfg SegmentConfig
}

func NewSegmenter(cfg SegmentConfig) *Segmenter {
	if cfg.MinChars <= 0 {
		cfg.MinChars = 3
	}
	return &Segmenter{cfg: cfg}
}

// openSection is a section still accumulating body text.
type openSection struct {
	title   string
	content strings.Builder
}

// Segment consumes pages until the channel closes and returns the ordered
// section list. Consecutive title words join into one multi-word title; the
// next body word closes the title and opens a new section. Body text seen
// before any title collects in an untitled buffer: it becomes an "Untitled"
// section if a title appears later, or a single empty-title section if the
// document never produces one.
func (s *Segmenter) Segment(ctx context.Context, pages <-chan core.PageWords) ([]models.Section, error) {
	var (
		sections  []models.Section
		current   *openSection
		tempTitle string
		untitled  strings.Builder
	)

	for page := range pages {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		if len(page.Words) == 0 {
			continue
		}

		for _, w := range page.Words {
			text := strings.TrimSpace(w.Text)
			if utf8.RuneCountInString(text) < s.cfg.MinChars {
				continue
			}

			if w.FontSize > s.cfg.TitleFontThreshold {
				// Leading body text gets closed out before the first title.
				if untitled.Len() > 0 && current == nil {
					sections = append(sections, models.Section{Title: untitledTitle, Content: untitled.String()})
					untitled.Reset()
				}
				if tempTitle != "" {
					tempTitle += " " + text
				} else {
					tempTitle = text
				}
				continue
			}

			// First body word after a title run: the accumulated title
			// starts a new section, flushing the previous one.
			if tempTitle != "" {
				if current != nil {
					sections = append(sections, models.Section{Title: current.title, Content: current.content.String()})
				}
				current = &openSection{title: strings.TrimSpace(tempTitle)}
				tempTitle = ""
			}

			if current != nil {
				current.content.WriteString(text)
				current.content.WriteString(" ")
			} else {
				untitled.WriteString(text)
				untitled.WriteString(" ")
			}
		}

		// Preserve paragraph structure across page boundaries.
		if current != nil {
			current.content.WriteString("\n")
		} else if untitled.Len() > 0 {
			untitled.WriteString("\n")
		}
	}

	if current != nil {
		sections = append(sections, models.Section{Title: current.title, Content: current.content.String()})
	} else if untitled.Len() > 0 {
		sections = append(sections, models.Section{Title: "", Content: untitled.String()})
	}

	return sections, nil
}
