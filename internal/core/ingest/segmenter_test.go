package ingest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lectern-ai/lectern/internal/core"
	"github.com/lectern-ai/lectern/internal/models"
)

func segment(t *testing.T, cfg SegmentConfig, pages ...core.PageWords) []models.Section {
	t.Helper()
	ch := make(chan core.PageWords, len(pages))
	for _, p := range pages {
		ch <- p
	}
	close(ch)

	sections, err := NewSegmenter(cfg).Segment(context.Background(), ch)
	require.NoError(t, err)
	return sections
}

func body(texts ...string) []core.Word {
	words := make([]core.Word, len(texts))
	for i, txt := range texts {
		words[i] = core.Word{Text: txt, FontSize: 10}
	}
	return words
}

func title(texts ...string) []core.Word {
	words := make([]core.Word, len(texts))
	for i, txt := range texts {
		words[i] = core.Word{Text: txt, FontSize: 16}
	}
	return words
}

func TestSegmentEmptyStream(t *testing.T) {
	sections := segment(t, SegmentConfig{TitleFontThreshold: 12})
	assert.Empty(t, sections)
}

func TestSegmentNoTitlesYieldsSingleUntitledSection(t *testing.T) {
	sections := segment(t, SegmentConfig{TitleFontThreshold: 12},
		core.PageWords{Number: 0, Words: body("alpha", "bravo")},
		core.PageWords{Number: 1, Words: body("charlie")},
	)

	require.Len(t, sections, 1)
	assert.Equal(t, "", sections[0].Title)
	assert.Equal(t, "alpha bravo \ncharlie \n", sections[0].Content)
}

func TestSegmentTitleOpensSection(t *testing.T) {
	words := append(title("Enrolment", "Guide"), body("step", "one")...)
	sections := segment(t, SegmentConfig{TitleFontThreshold: 12},
		core.PageWords{Number: 0, Words: words},
	)

	require.Len(t, sections, 1)
	assert.Equal(t, "Enrolment Guide", sections[0].Title)
	assert.Equal(t, "step one \n", sections[0].Content)
}

func TestSegmentSecondTitleFlushesFirstSection(t *testing.T) {
	words := append(title("First"), body("aaa")...)
	words = append(words, title("Second")...)
	words = append(words, body("bbb", "ccc")...)

	sections := segment(t, SegmentConfig{TitleFontThreshold: 12},
		core.PageWords{Number: 0, Words: words},
	)

	require.Len(t, sections, 2)
	assert.Equal(t, "First", sections[0].Title)
	assert.Equal(t, "aaa ", sections[0].Content)
	assert.Equal(t, "Second", sections[1].Title)
	assert.Equal(t, "bbb ccc \n", sections[1].Content)
}

func TestSegmentLeadingBodyClosedOutAsUntitled(t *testing.T) {
	words := append(body("intro", "text"), title("Chapter")...)
	words = append(words, body("content")...)

	sections := segment(t, SegmentConfig{TitleFontThreshold: 12},
		core.PageWords{Number: 0, Words: words},
	)

	require.Len(t, sections, 2)
	assert.Equal(t, "Untitled", sections[0].Title)
	assert.Equal(t, "intro text ", sections[0].Content)
	assert.Equal(t, "Chapter", sections[1].Title)
	assert.Equal(t, "content \n", sections[1].Content)
}

func TestSegmentThresholdIsStrict(t *testing.T) {
	// A word exactly at the threshold is body text, not a title.
	sections := segment(t, SegmentConfig{TitleFontThreshold: 12},
		core.PageWords{Number: 0, Words: []core.Word{{Text: "heading", FontSize: 12}}},
	)

	require.Len(t, sections, 1)
	assert.Equal(t, "", sections[0].Title)
}

func TestSegmentShortWordsDropped(t *testing.T) {
	words := []core.Word{
		{Text: "ok", FontSize: 10},
		{Text: "·", FontSize: 16},
		{Text: "keep", FontSize: 10},
	}
	sections := segment(t, SegmentConfig{TitleFontThreshold: 12, MinChars: 3},
		core.PageWords{Number: 0, Words: words},
	)

	require.Len(t, sections, 1)
	assert.Equal(t, "keep \n", sections[0].Content)
}

func TestSegmentPagesWithoutWordsAddNoNewline(t *testing.T) {
	sections := segment(t, SegmentConfig{TitleFontThreshold: 12},
		core.PageWords{Number: 0, Words: body("first")},
		core.PageWords{Number: 1},
		core.PageWords{Number: 2, Words: body("second")},
	)

	require.Len(t, sections, 1)
	assert.Equal(t, "first \nsecond \n", sections[0].Content)
}

func TestSegmentTrailingTitleWithoutBodyIsDropped(t *testing.T) {
	// A title accumulated at stream end never opens a section, matching
	// the body-word boundary rule.
	words := append(body("text"), title("Dangling")...)
	sections := segment(t, SegmentConfig{TitleFontThreshold: 12},
		core.PageWords{Number: 0, Words: words},
	)

	require.Len(t, sections, 1)
	assert.Equal(t, "Untitled", sections[0].Title)
	assert.Equal(t, "text ", sections[0].Content)
}
