package skills

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultVocabulary(t *testing.T) {
	v := DefaultVocabulary()

	assert.Equal(t, 32, v.Len())
	entries := v.Entries()
	assert.Equal(t, "JavaScript", entries[0])
	assert.Equal(t, "Project Management", entries[len(entries)-1])

	// Entries returns a copy.
	entries[0] = "mutated"
	assert.Equal(t, "JavaScript", v.Entries()[0])
}

func TestNewVocabulary_RejectsDuplicates(t *testing.T) {
	_, err := NewVocabulary("Go", "Rust", "go")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate")
}

func TestNewVocabulary_RejectsBlank(t *testing.T) {
	_, err := NewVocabulary("Go", "  ")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "blank")
}

func TestMustVocabulary_Panics(t *testing.T) {
	assert.Panics(t, func() { MustVocabulary("SQL", "sql") })
}

func TestVocabulary_Canonical(t *testing.T) {
	v := DefaultVocabulary()

	name, ok := v.Canonical("  node.JS ")
	assert.True(t, ok)
	assert.Equal(t, "Node.js", name)

	_, ok = v.Canonical("COBOL")
	assert.False(t, ok)
	assert.True(t, v.Contains("ci/cd"))
}

func TestNewSet(t *testing.T) {
	s := NewSet("React", " react ", "", "Node.js", "NODE.JS", "Go")
	assert.Equal(t, Set{"React", "Node.js", "Go"}, s)
	assert.True(t, s.Contains("go"))
	assert.False(t, s.Contains("Rust"))
	assert.Equal(t, 3, s.Len())

	assert.True(t, NewSet().IsEmpty())
	assert.Equal(t, []string{}, Set(nil).Strings())
}
