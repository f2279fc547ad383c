// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/talenttrek/internal/db"
	"github.com/jonathan/talenttrek/internal/resume"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, clip(line, boxWidth-4))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// clip shortens s to n runes, marking the cut with "...".
func clip(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-3]) + "..."
}

// PrintParsedResume outputs the skills and summary extracted from a resume.
func (p *Printer) PrintParsedResume(source string, parsed *resume.Parsed) {
	if parsed == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Source:   %s\n", source))
	sb.WriteString(fmt.Sprintf("Words:    %d\n", parsed.WordCount))
	sb.WriteString("\n")

	if len(parsed.Skills) == 0 {
		sb.WriteString("No vocabulary skills found\n")
	} else {
		sb.WriteString(fmt.Sprintf("Skills (%d):\n", len(parsed.Skills)))
		for _, skill := range parsed.Skills {
			sb.WriteString(fmt.Sprintf("  • %s\n", skill))
		}
	}

	if parsed.Summary != "" {
		sb.WriteString("\nSummary:\n")
		sb.WriteString("  " + clip(parsed.Summary, 2*boxWidth) + "\n")
	}

	p.printBox("PARSED RESUME", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintSeededPostings outputs the postings a seed run inserted, with their extracted skills.
func (p *Printer) PrintSeededPostings(postings []db.JobPosting, deleted int64) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Inserted: %d\n", len(postings)))
	sb.WriteString(fmt.Sprintf("Deleted:  %d\n", deleted))

	count := min(len(postings), maxItemsToShow)
	for i := 0; i < count; i++ {
		job := postings[i]
		sb.WriteString(fmt.Sprintf("\n#%d  %s at %s\n", i+1, job.Title, job.Company))
		if len(job.Skills) > 0 {
			sb.WriteString(fmt.Sprintf("    Skills: %s\n", strings.Join(job.Skills, ", ")))
		}
	}

	if len(postings) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("\n... and %d more postings", len(postings)-maxItemsToShow))
	}

	p.printBox("SEEDED POSTINGS", strings.TrimSuffix(sb.String(), "\n"))
}
