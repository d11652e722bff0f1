package ingest

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/lectern-ai/lectern/internal/models"
)

// ChunkConfig tunes length-based splitting.
//
// MaxLen: window size in characters (runes).
// Overlap: characters re-read from the previous window's tail. The window
// advance itself ignores the overlap, so only windows after the first
// carry a back-reference.
// MinChars: trimmed fragments shorter than this are dropped.
type ChunkConfig struct {
	MaxLen   int
	Overlap  int
	MinChars int
}

// SplitSections turns sections into finished chunk texts carrying the
// "<document> - <title>: <text>" prefix. Sections within MaxLen become one
// chunk; longer ones are windowed with Overlap characters of look-back so
// downstream similarity search keeps continuity across boundaries.
func SplitSections(docName string, sections []models.Section, cfg ChunkConfig) []string {
	if cfg.MinChars <= 0 {
		cfg.MinChars = 3
	}
	if cfg.MaxLen <= 0 {
		cfg.MaxLen = 2000
	}

	var out []string
	for _, sec := range sections {
		content := strings.TrimSpace(sec.Content)
		runes := []rune(content)
		if len(runes) < cfg.MinChars {
			continue
		}

		if len(runes) <= cfg.MaxLen {
			out = append(out, fmt.Sprintf("%s - %s: %s", docName, sec.Title, content))
			continue
		}

		for start := 0; start < len(runes); start += cfg.MaxLen {
			end := start + cfg.MaxLen
			if end > len(runes) {
				end = len(runes)
			}
			from := start
			if start > 0 {
				from = start - cfg.Overlap
				if from < 0 {
					from = 0
				}
			}
			frag := strings.TrimSpace(string(runes[from:end]))
			if utf8.RuneCountInString(frag) < cfg.MinChars {
				continue
			}
			out = append(out, fmt.Sprintf("%s - %s: %s", docName, sec.Title, frag))
		}
	}
	return out
}
