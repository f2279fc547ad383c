// Package skills provides the skill vocabulary, keyword extraction and overlap scoring
// used to match candidates with job postings.
package skills

import (
	"fmt"
	"strings"
)

// defaultEntries is the curated catalog of recognized skills, in declaration order.
var defaultEntries = []string{
	"JavaScript", "Python", "Java", "React", "Node.js", "MongoDB", "SQL",
	"AWS", "Docker", "Kubernetes", "Git", "HTML", "CSS", "TypeScript",
	"Angular", "Vue.js", "Express", "Django", "Flask", "Spring Boot",
	"PostgreSQL", "MySQL", "Redis", "GraphQL", "REST API", "Machine Learning",
	"Data Science", "DevOps", "CI/CD", "Agile", "Scrum", "Project Management",
}

// Vocabulary is an immutable, ordered set of canonical skill names.
// Entries are unique when compared case-insensitively.
type Vocabulary struct {
	entries []string
	lower   []string
	index   map[string]int // lower-cased entry -> position
}

// NewVocabulary builds a vocabulary from the given entries, keeping their order.
// It fails on blank entries and on case-insensitive duplicates.
func NewVocabulary(entries ...string) (*Vocabulary, error) {
	v := &Vocabulary{
		entries: make([]string, 0, len(entries)),
		lower:   make([]string, 0, len(entries)),
		index:   make(map[string]int, len(entries)),
	}

	for i, entry := range entries {
		name := strings.TrimSpace(entry)
		if name == "" {
			return nil, fmt.Errorf("vocabulary entry %d is blank", i)
		}
		key := strings.ToLower(name)
		if prev, dup := v.index[key]; dup {
			return nil, fmt.Errorf("duplicate vocabulary entry %q (already defined as %q)", name, v.entries[prev])
		}
		v.index[key] = len(v.entries)
		v.entries = append(v.entries, name)
		v.lower = append(v.lower, key)
	}

	return v, nil
}

// MustVocabulary is like NewVocabulary but panics on invalid input.
// Intended for static configuration and tests.
func MustVocabulary(entries ...string) *Vocabulary {
	v, err := NewVocabulary(entries...)
	if err != nil {
		panic(err)
	}
	return v
}

// DefaultVocabulary returns the built-in skill catalog.
func DefaultVocabulary() *Vocabulary {
	return MustVocabulary(defaultEntries...)
}

// Len returns the number of entries.
func (v *Vocabulary) Len() int {
	return len(v.entries)
}

// Entries returns a copy of the canonical entries in declaration order.
func (v *Vocabulary) Entries() []string {
	out := make([]string, len(v.entries))
	copy(out, v.entries)
	return out
}

// Canonical returns the canonical casing of skill if it is part of the vocabulary.
func (v *Vocabulary) Canonical(skill string) (string, bool) {
	i, ok := v.index[strings.ToLower(strings.TrimSpace(skill))]
	if !ok {
		return "", false
	}
	return v.entries[i], true
}

// Contains reports whether skill is part of the vocabulary (case-insensitive).
func (v *Vocabulary) Contains(skill string) bool {
	_, ok := v.Canonical(skill)
	return ok
}
