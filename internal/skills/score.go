package skills

import "strings"

// Score returns the overlap between a candidate's and a job's skills:
// the number of shared skills divided by the size of the larger set.
//
// Both inputs are normalized with NewSet first, so blanks and case-insensitive
// duplicates do not count. The result is 0 when either set is empty and is always
// within [0, 1]. Swapping the arguments does not change the result.
func Score(candidate, job []string) float64 {
	c := NewSet(candidate...)
	j := NewSet(job...)
	if c.IsEmpty() || j.IsEmpty() {
		return 0
	}

	jobKeys := j.lowerKeys()
	shared := 0
	for key := range c.lowerKeys() {
		if _, ok := jobKeys[key]; ok {
			shared++
		}
	}

	return float64(shared) / float64(max(len(c), len(j)))
}

// Shared returns the candidate skills that also appear in job, in candidate order.
func Shared(candidate, job []string) Set {
	jobKeys := NewSet(job...).lowerKeys()
	out := Set{}
	for _, skill := range NewSet(candidate...) {
		if _, ok := jobKeys[strings.ToLower(skill)]; ok {
			out = append(out, skill)
		}
	}
	return out
}
