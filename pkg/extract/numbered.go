package extract

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
)

// NumberedEntry is a line read back from rendered output.
type NumberedEntry struct {
	// Number is the dotted rule number, or "" for unnumbered intro text.
	Number string `json:"number,omitempty"`

	// Subsection is the enclosing subsection number, e.g. "1.02".
	Subsection string `json:"subsection,omitempty"`

	// Text is the rule text including any cross-reference suffix.
	Text string `json:"text"`

	// Line is the 1-based source line.
	Line int `json:"line"`
}

// NumberedDocument is rendered section output parsed back into entries.
type NumberedDocument struct {
	Title       string               `json:"title"`
	Subsections []*SubsectionHeading `json:"subsections,omitempty"`
	Entries     []NumberedEntry      `json:"entries"`
}

var (
	numberedTitlePattern      = regexp.MustCompile(`^#\s+(.*)$`)
	numberedSubsectionPattern = regexp.MustCompile(`^##\s+(\d+)\.(\d+)(?:\s+(.*))?$`)
	numberedRulePattern       = regexp.MustCompile(`^(\d+(?:\.\d{2,})+)(?:\s+(.*))?$`)
)

// ParseNumbered reads rendered section output.
func ParseNumbered(r io.Reader) (*NumberedDocument, error) {
	doc := &NumberedDocument{}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	subsection := ""
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if m := numberedSubsectionPattern.FindStringSubmatch(line); m != nil {
			heading := &SubsectionHeading{Section: m[1], Subsection: m[2], Title: m[3]}
			doc.Subsections = append(doc.Subsections, heading)
			subsection = m[1] + "." + m[2]
			continue
		}
		if m := numberedTitlePattern.FindStringSubmatch(line); m != nil {
			if doc.Title == "" {
				doc.Title = m[1]
			}
			continue
		}
		if m := numberedRulePattern.FindStringSubmatch(line); m != nil {
			doc.Entries = append(doc.Entries, NumberedEntry{Number: m[1], Subsection: subsection, Text: m[2], Line: lineNo})
			continue
		}
		doc.Entries = append(doc.Entries, NumberedEntry{Subsection: subsection, Text: line, Line: lineNo})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading numbered rules: %w", err)
	}

	return doc, nil
}

// Numbered returns the entries that carry a rule number.
func (d *NumberedDocument) Numbered() []NumberedEntry {
	var out []NumberedEntry
	for _, entry := range d.Entries {
		if entry.Number != "" {
			out = append(out, entry)
		}
	}
	return out
}

// CompareRuleNumbers orders dotted rule numbers component by component.
func CompareRuleNumbers(a, b string) int {
	pa := strings.Split(a, ".")
	pb := strings.Split(b, ".")
	for i := 0; i < len(pa) && i < len(pb); i++ {
		na, errA := strconv.Atoi(pa[i])
		nb, errB := strconv.Atoi(pb[i])
		if errA != nil || errB != nil {
			if c := strings.Compare(pa[i], pb[i]); c != 0 {
				return c
			}
			continue
		}
		if na != nb {
			if na < nb {
				return -1
			}
			return 1
		}
	}
	switch {
	case len(pa) < len(pb):
		return -1
	case len(pa) > len(pb):
		return 1
	default:
		return 0
	}
}
