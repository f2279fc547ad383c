// Package recommend ranks job postings against a candidate's skills.
package recommend

import "github.com/jonathan/talenttrek/internal/skills"

// Source tells where a candidate's skills came from.
type Source string

// Skill sources in resolution priority order.
const (
	SourceExplicit Source = "explicit"
	SourceResume   Source = "resume"
	SourceNone     Source = "none"
)

// Candidate carries the two skill lists a job seeker can have.
type Candidate struct {
	// ExplicitSkills are the skills the user entered on their profile.
	ExplicitSkills []string
	// ResumeSkills are the skills extracted from the last uploaded resume.
	ResumeSkills []string
}

// Resolution is the skill set used for matching, tagged with its origin.
type Resolution struct {
	Skills skills.Set
	Source Source
}

// Empty reports whether there is nothing to match on.
func (r Resolution) Empty() bool {
	return r.Skills.IsEmpty()
}

// Resolve picks the explicit skills when there are any, the resume skills otherwise. The
// two lists are never merged.
func Resolve(c Candidate) Resolution {
	if explicit := skills.NewSet(c.ExplicitSkills...); !explicit.IsEmpty() {
		return Resolution{Skills: explicit, Source: SourceExplicit}
	}
	if parsed := skills.NewSet(c.ResumeSkills...); !parsed.IsEmpty() {
		return Resolution{Skills: parsed, Source: SourceResume}
	}
	return Resolution{Skills: skills.Set{}, Source: SourceNone}
}
