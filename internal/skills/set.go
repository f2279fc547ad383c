package skills

import "strings"

// Set is a collection of skill names attributed to a candidate or a posting.
// Values built with NewSet are trimmed, non-blank and unique case-insensitively;
// the first-seen casing is kept for display.
type Set []string

// NewSet normalizes values into a Set.
func NewSet(values ...string) Set {
	if len(values) == 0 {
		return Set{}
	}

	seen := make(map[string]struct{}, len(values))
	out := make(Set, 0, len(values))
	for _, value := range values {
		name := strings.TrimSpace(value)
		if name == "" {
			continue
		}
		key := strings.ToLower(name)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, name)
	}
	return out
}

// Len returns the number of skills.
func (s Set) Len() int {
	return len(s)
}

// IsEmpty reports whether the set has no skills.
func (s Set) IsEmpty() bool {
	return len(s) == 0
}

// Contains reports whether skill is in the set (case-insensitive).
func (s Set) Contains(skill string) bool {
	key := strings.ToLower(strings.TrimSpace(skill))
	for _, existing := range s {
		if strings.ToLower(existing) == key {
			return true
		}
	}
	return false
}

// Strings returns the skills as a plain slice, never nil.
func (s Set) Strings() []string {
	if s == nil {
		return []string{}
	}
	return []string(s)
}

// lowerKeys returns the lower-cased members as a lookup table.
func (s Set) lowerKeys() map[string]struct{} {
	keys := make(map[string]struct{}, len(s))
	for _, skill := range s {
		keys[strings.ToLower(skill)] = struct{}{}
	}
	return keys
}
