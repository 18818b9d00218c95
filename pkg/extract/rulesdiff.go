package extract

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// ChangeType represents the type of change between two versions.
type ChangeType int

const (
	// ChangeAdded indicates a rule was added in the target version.
	ChangeAdded ChangeType = iota
	// ChangeRemoved indicates a rule was removed in the target version.
	ChangeRemoved
	// ChangeModified indicates a rule was modified between versions.
	ChangeModified
	// ChangeUnchanged indicates no change.
	ChangeUnchanged
)

// String returns the string representation of a ChangeType.
func (c ChangeType) String() string {
	switch c {
	case ChangeAdded:
		return "ADDED"
	case ChangeRemoved:
		return "REMOVED"
	case ChangeModified:
		return "MODIFIED"
	case ChangeUnchanged:
		return "UNCHANGED"
	default:
		return "UNKNOWN"
	}
}

// MarshalJSON implements json.Marshaler for ChangeType.
func (c ChangeType) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

// RuleChange represents a change to a single numbered rule.
type RuleChange struct {
	// Type is the kind of change.
	Type ChangeType `json:"type"`

	// Number is the dotted rule number.
	Number string `json:"number"`

	// BaseText is the text from the base version (empty for added rules).
	BaseText string `json:"base_text,omitempty"`

	// TargetText is the text from the target version (empty for removed rules).
	TargetText string `json:"target_text,omitempty"`

	// Summary describes what changed.
	Summary string `json:"summary,omitempty"`

	// SimilarityScore is the text similarity (0-100) for modified rules.
	SimilarityScore int `json:"similarity_score,omitempty"`
}

// SectionChange groups rule changes by section numeral.
type SectionChange struct {
	// Section is the canonical section numeral.
	Section string `json:"section"`

	// RuleChanges lists the changed rules in number order.
	RuleChanges []RuleChange `json:"rule_changes,omitempty"`

	RulesAdded     int `json:"rules_added"`
	RulesRemoved   int `json:"rules_removed"`
	RulesModified  int `json:"rules_modified"`
	RulesUnchanged int `json:"rules_unchanged"`
}

// RulesDiffReport represents the full diff between two numbered rulebooks.
type RulesDiffReport struct {
	// BaseVersion labels the base version (usually its path).
	BaseVersion string `json:"base_version"`

	// TargetVersion labels the target version.
	TargetVersion string `json:"target_version"`

	// SectionChanges contains changes organized by section.
	SectionChanges []SectionChange `json:"section_changes"`

	// Summary statistics
	TotalRulesAdded    int `json:"total_rules_added"`
	TotalRulesRemoved  int `json:"total_rules_removed"`
	TotalRulesModified int `json:"total_rules_modified"`
}

// unchangedThreshold is the similarity at or above which rules count as unchanged.
const unchangedThreshold = 95

// RulesDiffer compares two versions of numbered rule output.
type RulesDiffer struct {
	base   map[string]NumberedEntry
	target map[string]NumberedEntry
}

// NewRulesDiffer creates a differ over two parsed documents. When a number
// repeats, the first occurrence is kept.
func NewRulesDiffer(base, target *NumberedDocument) *RulesDiffer {
	return &RulesDiffer{
		base:   buildRuleMap(base),
		target: buildRuleMap(target),
	}
}

func buildRuleMap(doc *NumberedDocument) map[string]NumberedEntry {
	m := make(map[string]NumberedEntry)
	if doc == nil {
		return m
	}
	for _, entry := range doc.Numbered() {
		if _, ok := m[entry.Number]; !ok {
			m[entry.Number] = entry
		}
	}
	return m
}

// Compare performs the diff between base and target versions.
func (d *RulesDiffer) Compare(baseVersion, targetVersion string) *RulesDiffReport {
	report := &RulesDiffReport{
		BaseVersion:    baseVersion,
		TargetVersion:  targetVersion,
		SectionChanges: []SectionChange{},
	}

	allNumbers := make(map[string]bool)
	for number := range d.base {
		allNumbers[number] = true
	}
	for number := range d.target {
		allNumbers[number] = true
	}

	numbers := make([]string, 0, len(allNumbers))
	for number := range allNumbers {
		numbers = append(numbers, number)
	}
	sort.Slice(numbers, func(i, j int) bool {
		return CompareRuleNumbers(numbers[i], numbers[j]) < 0
	})

	var current *SectionChange
	for _, number := range numbers {
		section := sectionOf(number)
		if current == nil || current.Section != section {
			if current != nil {
				report.addSection(*current)
			}
			current = &SectionChange{Section: section}
		}

		change, ok := d.compareRule(number)
		switch {
		case !ok:
			current.RulesUnchanged++
			continue
		case change.Type == ChangeAdded:
			current.RulesAdded++
		case change.Type == ChangeRemoved:
			current.RulesRemoved++
		default:
			current.RulesModified++
		}
		current.RuleChanges = append(current.RuleChanges, change)
	}
	if current != nil {
		report.addSection(*current)
	}

	return report
}

func (r *RulesDiffReport) addSection(section SectionChange) {
	if len(section.RuleChanges) == 0 {
		return
	}
	r.SectionChanges = append(r.SectionChanges, section)
	r.TotalRulesAdded += section.RulesAdded
	r.TotalRulesRemoved += section.RulesRemoved
	r.TotalRulesModified += section.RulesModified
}

// compareRule compares one rule number; ok is false when it is unchanged.
func (d *RulesDiffer) compareRule(number string) (RuleChange, bool) {
	baseEntry, inBase := d.base[number]
	targetEntry, inTarget := d.target[number]

	change := RuleChange{Number: number}
	switch {
	case !inBase && inTarget:
		change.Type = ChangeAdded
		change.TargetText = targetEntry.Text
		change.Summary = "New rule added"
	case inBase && !inTarget:
		change.Type = ChangeRemoved
		change.BaseText = baseEntry.Text
		change.Summary = "Rule removed"
	default:
		similarity := calculateSimilarity(baseEntry.Text, targetEntry.Text)
		if similarity >= unchangedThreshold {
			return RuleChange{}, false
		}
		change.Type = ChangeModified
		change.SimilarityScore = similarity
		change.BaseText = baseEntry.Text
		change.TargetText = targetEntry.Text
		change.Summary = generateChangeSummary(baseEntry.Text, targetEntry.Text, similarity)
	}
	return change, true
}

func sectionOf(number string) string {
	if i := strings.IndexByte(number, '.'); i >= 0 {
		return number[:i]
	}
	return number
}

// calculateSimilarity calculates text similarity as a percentage (0-100).
func calculateSimilarity(text1, text2 string) int {
	t1 := normalizeForComparison(text1)
	t2 := normalizeForComparison(text2)

	if t1 == t2 {
		return 100
	}

	// Word-based Jaccard similarity
	set1 := make(map[string]bool)
	for _, w := range strings.Fields(t1) {
		set1[w] = true
	}
	set2 := make(map[string]bool)
	for _, w := range strings.Fields(t2) {
		set2[w] = true
	}

	intersection := 0
	for w := range set1 {
		if set2[w] {
			intersection++
		}
	}

	union := len(set1) + len(set2) - intersection
	if union == 0 {
		return 100
	}

	return (intersection * 100) / union
}

// normalizeForComparison lower-cases and collapses whitespace.
func normalizeForComparison(text string) string {
	return strings.Join(strings.Fields(strings.ToLower(text)), " ")
}

// generateChangeSummary creates a human-readable summary of changes.
func generateChangeSummary(baseText, targetText string, similarity int) string {
	baseLen := len(strings.Fields(baseText))
	targetLen := len(strings.Fields(targetText))

	switch {
	case similarity >= 80:
		return "Minor text updates"
	case similarity >= 60:
		return "Moderate revisions"
	case similarity >= 40:
		return "Substantial changes"
	case targetLen > baseLen*2:
		return "Significantly expanded"
	case baseLen > targetLen*2:
		return "Significantly condensed"
	default:
		return "Major rewrite"
	}
}

// String returns a formatted string representation of the diff report.
func (r *RulesDiffReport) String() string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Rules Diff: %s -> %s\n", r.BaseVersion, r.TargetVersion))
	sb.WriteString(strings.Repeat("=", 50) + "\n\n")

	sb.WriteString("Summary:\n")
	sb.WriteString(fmt.Sprintf("  Sections changed: %d\n", len(r.SectionChanges)))
	sb.WriteString(fmt.Sprintf("  Rules added: %d\n", r.TotalRulesAdded))
	sb.WriteString(fmt.Sprintf("  Rules removed: %d\n", r.TotalRulesRemoved))
	sb.WriteString(fmt.Sprintf("  Rules modified: %d\n", r.TotalRulesModified))

	for _, section := range r.SectionChanges {
		sb.WriteString(fmt.Sprintf("\nSection %s:\n", section.Section))
		for _, change := range section.RuleChanges {
			sb.WriteString(fmt.Sprintf("  %s: %s", change.Number, change.Type))
			switch change.Type {
			case ChangeModified:
				sb.WriteString(fmt.Sprintf(" - %s (%d%% similar)", change.Summary, change.SimilarityScore))
			case ChangeAdded:
				sb.WriteString(" - " + truncate(change.TargetText, 60))
			case ChangeRemoved:
				sb.WriteString(" - " + truncate(change.BaseText, 60))
			}
			sb.WriteString("\n")
		}
	}

	return sb.String()
}

// truncate shortens text to the specified length.
func truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen-3]) + "..."
}

// ToJSON returns the report as JSON.
func (r *RulesDiffReport) ToJSON() ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}

// GetSignificantChanges returns added and removed rules plus modified rules
// at or below maxSimilarity.
func (r *RulesDiffReport) GetSignificantChanges(maxSimilarity int) []RuleChange {
	var significant []RuleChange
	for _, section := range r.SectionChanges {
		for _, change := range section.RuleChanges {
			if change.Type == ChangeAdded || change.Type == ChangeRemoved ||
				(change.Type == ChangeModified && change.SimilarityScore <= maxSimilarity) {
				significant = append(significant, change)
			}
		}
	}
	return significant
}
