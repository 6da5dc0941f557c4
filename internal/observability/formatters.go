// Package observability provides formatted output utilities for the interactive CLI and verbose mode.
package observability

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/jonathan/screeniq/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for the terminal
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content. Long lines are wrapped.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	inner := boxWidth - 4
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	for _, line := range wrap(title, inner) {
		fmt.Fprintf(p.out, "│ %s │\n", pad(line, inner))
	}
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, raw := range strings.Split(strings.TrimRight(content, "\n"), "\n") {
		for _, line := range wrap(raw, inner) {
			fmt.Fprintf(p.out, "│ %s │\n", pad(line, inner))
		}
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintJob outputs a summary of the role being assessed.
func (p *Printer) PrintJob(job *types.Job) {
	if job == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Company:  %s\n", job.Company))
	if job.Department != "" {
		sb.WriteString(fmt.Sprintf("Team:     %s\n", job.Department))
	}
	sb.WriteString(fmt.Sprintf("Cutoff:   %d\n", job.Cutoff()))
	if len(job.Skills) > 0 {
		sb.WriteString("\nSkills:\n")
		count := min(len(job.Skills), maxItemsToShow)
		for _, s := range job.Skills[:count] {
			sb.WriteString(fmt.Sprintf("  • %s\n", s))
		}
		if len(job.Skills) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(job.Skills)-maxItemsToShow))
		}
	}

	p.printBox(job.Title, sb.String())
}

// PrintBriefing outputs the pre-assessment briefing.
func (p *Printer) PrintBriefing(briefing string) {
	p.printBox("Briefing", briefing)
}

// PrintQuestion outputs one question with numbered options and the time left.
func (p *Printer) PrintQuestion(index, total int, q types.Question, remaining time.Duration) {
	var sb strings.Builder
	sb.WriteString(q.Text)
	sb.WriteString("\n")
	if len(q.Options) > 0 {
		sb.WriteString("\n")
		for i, opt := range q.Options {
			sb.WriteString(fmt.Sprintf("  %d) %s\n", i+1, opt))
		}
	}
	if q.Skill != "" {
		sb.WriteString(fmt.Sprintf("\nSkill: %s", q.Skill))
		if q.Difficulty != "" {
			sb.WriteString(fmt.Sprintf(" · %s", q.Difficulty))
		}
		sb.WriteString("\n")
	}

	title := fmt.Sprintf("Question %d of %d   ⏱ %s", index+1, total, formatClock(remaining))
	p.printBox(title, sb.String())
}

// PrintOutcome outputs the result of a finished session.
func (p *Printer) PrintOutcome(outcome *types.SessionOutcome) {
	if outcome == nil {
		return
	}
	ev := outcome.Evaluation

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Status:       %s\n", outcome.Status))
	sb.WriteString(fmt.Sprintf("Score:        %.0f\n", ev.Score))
	sb.WriteString(fmt.Sprintf("Suitability:  %.0f\n", ev.Suitability))
	sb.WriteString(fmt.Sprintf("Integrity:    %d (%d tab switches)\n", outcome.IntegrityScore, outcome.TabSwitches))
	sb.WriteString(fmt.Sprintf("Answered:     %d\n", len(outcome.Answers)))
	if outcome.SubmitReason == types.SubmitTimer {
		sb.WriteString("Submitted automatically when time ran out.\n")
	}

	if ev.OneSentenceVerdict != "" {
		sb.WriteString("\n")
		sb.WriteString(ev.OneSentenceVerdict)
		sb.WriteString("\n")
	}

	if len(ev.SkillBreakdown) > 0 {
		sb.WriteString("\nSkills:\n")
		skills := make([]string, 0, len(ev.SkillBreakdown))
		for s := range ev.SkillBreakdown {
			skills = append(skills, s)
		}
		sort.Strings(skills)
		for _, s := range skills {
			sb.WriteString(fmt.Sprintf("  %-20s %5.0f\n", s, ev.SkillBreakdown[s]))
		}
	}

	if len(ev.StudySuggestions) > 0 {
		sb.WriteString("\nStudy next:\n")
		for _, s := range ev.StudySuggestions {
			sb.WriteString(fmt.Sprintf("  • %s\n", s))
		}
	}

	p.printBox("Assessment Result", sb.String())
}

// PrintInterviewScript outputs a generated interview script.
func (p *Printer) PrintInterviewScript(candidate string, script string) {
	p.printBox("Interview Script: "+candidate, script)
}

// PrintNotice outputs a short status line.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintNotice(format string, args ...any) {
	fmt.Fprintf(p.out, "» "+format+"\n", args...)
}

func formatClock(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	s := int(d.Seconds())
	return fmt.Sprintf("%02d:%02d", s/60, s%60)
}

// wrap breaks s into lines of at most width runes, splitting on spaces where possible.
// Lines that already fit are returned untouched so indentation survives.
func wrap(s string, width int) []string {
	if len([]rune(s)) <= width {
		return []string{s}
	}
	indent := s[:len(s)-len(strings.TrimLeft(s, " "))]
	if len(indent) >= width/2 {
		indent = ""
	}
	width -= len(indent)
	words := strings.Fields(s)
	if len(words) == 0 {
		return []string{""}
	}
	var lines []string
	var cur []rune
	for _, w := range words {
		word := []rune(w)
		for len(word) > width {
			if len(cur) > 0 {
				lines = append(lines, string(cur))
				cur = nil
			}
			lines = append(lines, string(word[:width]))
			word = word[width:]
		}
		switch {
		case len(cur) == 0:
			cur = word
		case len(cur)+1+len(word) <= width:
			cur = append(append(cur, ' '), word...)
		default:
			lines = append(lines, string(cur))
			cur = word
		}
	}
	if len(cur) > 0 {
		lines = append(lines, string(cur))
	}
	for i := range lines {
		lines[i] = indent + lines[i]
	}
	return lines
}

func pad(s string, width int) string {
	if n := len([]rune(s)); n < width {
		return s + strings.Repeat(" ", width-n)
	}
	return s
}
