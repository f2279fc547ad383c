package resume

import (
	"fmt"
	"strings"

	"github.com/jonathan/talenttrek/internal/skills"
)

// SummaryLength is the number of characters of normalized text kept as the summary.
const SummaryLength = 300

// Parsed is what a resume yields.
type Parsed struct {
	Text      string
	Skills    []string
	Summary   string
	WordCount int
}

// Parser turns resume files into Parsed data.
type Parser struct {
	extractor *skills.Extractor
}

// NewParser creates a Parser. A nil extractor uses the default vocabulary.
func NewParser(extractor *skills.Extractor) *Parser {
	if extractor == nil {
		extractor = skills.NewExtractor(nil)
	}
	return &Parser{extractor: extractor}
}

// Parse extracts text from data and derives skills, summary and word count.
func (p *Parser) Parse(ext string, data []byte) (*Parsed, error) {
	text, err := ExtractText(ext, data)
	if err != nil {
		return nil, fmt.Errorf("failed to extract resume text: %w", err)
	}
	return p.ParseText(text), nil
}

// ParseText derives resume data from already extracted text.
func (p *Parser) ParseText(text string) *Parsed {
	words := strings.Fields(text)
	normalized := strings.Join(words, " ")

	return &Parsed{
		Text:      normalized,
		Skills:    p.extractor.Extract(normalized).Strings(),
		Summary:   truncateRunes(normalized, SummaryLength),
		WordCount: len(words),
	}
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return strings.TrimSpace(string(runes[:n]))
}
