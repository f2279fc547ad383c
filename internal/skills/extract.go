package skills

import "strings"

// Extractor finds vocabulary skills mentioned in free text.
//
// Matching is a case-insensitive substring test, so an entry contained in a longer word
// also matches ("Java" is found in "JavaScript"). Callers rely on this behavior; word
// boundaries are deliberately not checked.
type Extractor struct {
	vocab *Vocabulary
}

// NewExtractor creates an Extractor over vocab. A nil vocab selects DefaultVocabulary.
func NewExtractor(vocab *Vocabulary) *Extractor {
	if vocab == nil {
		vocab = DefaultVocabulary()
	}
	return &Extractor{vocab: vocab}
}

// Vocabulary returns the vocabulary the extractor matches against.
func (e *Extractor) Vocabulary() *Vocabulary {
	return e.vocab
}

// Extract returns the vocabulary entries found in text, in vocabulary order.
// Empty text yields an empty set.
func (e *Extractor) Extract(text string) Set {
	found := Set{}
	if strings.TrimSpace(text) == "" {
		return found
	}

	haystack := strings.ToLower(text)
	for i, needle := range e.vocab.lower {
		if strings.Contains(haystack, needle) {
			found = append(found, e.vocab.entries[i])
		}
	}
	return found
}

// ExtractFields joins parts with a single space and extracts from the result.
// Posting creation passes requirements and description this way.
func (e *Extractor) ExtractFields(parts ...string) Set {
	return e.Extract(strings.Join(parts, " "))
}
