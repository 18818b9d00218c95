package extract

import "strings"

// Lines renders the section as output lines: a "# <title>" heading, then
// rule lines, with each subsection heading set off by blank lines.
func (s *SectionResult) Lines() []string {
	var lines []string
	if s.Title != "" {
		lines = append(lines, "# "+s.Title, "")
	}
	for _, entry := range s.Entries {
		switch {
		case entry.Subsection != nil:
			lines = append(lines, "", "## "+entry.Subsection.String(), "")
		case entry.Rule != nil:
			lines = append(lines, entry.Rule.String())
		}
	}
	return lines
}

// Markdown renders the section as a newline-terminated document.
func (s *SectionResult) Markdown() string {
	lines := s.Lines()
	if len(lines) == 0 {
		return ""
	}
	return strings.Join(lines, "\n") + "\n"
}

// SectionStatistics summarises a numbered section.
type SectionStatistics struct {
	Rules         int `json:"rules"`
	NumberedRules int `json:"numbered_rules"`
	IntroLines    int `json:"intro_lines"`
	Subsections   int `json:"subsections"`
	CrossRefs     int `json:"cross_refs"`
	MaxDepth      int `json:"max_depth"`
}

// Stats calculates statistics about a numbered section.
func (s *SectionResult) Stats() SectionStatistics {
	stats := SectionStatistics{}

	for _, entry := range s.Entries {
		if entry.Subsection != nil {
			stats.Subsections++
			continue
		}
		if entry.Rule == nil {
			continue
		}

		stats.Rules++
		stats.CrossRefs += len(entry.Rule.CrossRefs)
		if entry.Rule.Intro {
			stats.IntroLines++
		}
		if entry.Rule.Number != nil {
			stats.NumberedRules++
			if depth := entry.Rule.Number.Depth(); depth > stats.MaxDepth {
				stats.MaxDepth = depth
			}
		}
	}

	return stats
}
