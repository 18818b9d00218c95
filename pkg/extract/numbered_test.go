package extract

import (
	"strings"
	"testing"
)

const renderedPhases = `# Phases


## 1.02 Storm Phase

1.02.00 The storm moves.
1.02.01 Storm one -1.07
Unnumbered lead-in.

## 1.03
1.03.01 Blow one
`

func TestParseNumbered(t *testing.T) {
	doc, err := ParseNumbered(strings.NewReader(renderedPhases))
	if err != nil {
		t.Fatalf("ParseNumbered failed: %v", err)
	}

	if doc.Title != "Phases" {
		t.Errorf("Expected title 'Phases', got %q", doc.Title)
	}
	if len(doc.Subsections) != 2 {
		t.Fatalf("Expected 2 subsections, got %d", len(doc.Subsections))
	}
	if got := doc.Subsections[0].String(); got != "1.02 Storm Phase" {
		t.Errorf("First subsection = %q", got)
	}
	if got := doc.Subsections[1].String(); got != "1.03" {
		t.Errorf("Untitled subsection = %q", got)
	}

	if len(doc.Entries) != 4 {
		t.Fatalf("Expected 4 entries, got %d", len(doc.Entries))
	}
	storm := doc.Entries[1]
	if storm.Number != "1.02.01" || storm.Text != "Storm one -1.07" || storm.Subsection != "1.02" {
		t.Errorf("Unexpected entry %+v", storm)
	}
	if storm.Line != 7 {
		t.Errorf("Expected line 7, got %d", storm.Line)
	}
	if doc.Entries[2].Number != "" || doc.Entries[2].Text != "Unnumbered lead-in." {
		t.Errorf("Expected unnumbered entry, got %+v", doc.Entries[2])
	}
	if doc.Entries[3].Subsection != "1.03" {
		t.Errorf("Expected entry in 1.03, got %q", doc.Entries[3].Subsection)
	}

	if numbered := doc.Numbered(); len(numbered) != 3 {
		t.Errorf("Expected 3 numbered entries, got %d", len(numbered))
	}
}

func TestParseNumbered_RoundTripsRenderedSection(t *testing.T) {
	result := processSectionHTML(t, "2", `<section><h2>Factions</h2><ol>
  <li class="intro">Each faction has advantages.</li>
  <li>Atreides<ol><li>Prescience</li></ol></li>
</ol></section>`)

	doc, err := ParseNumbered(strings.NewReader(result.Markdown()))
	if err != nil {
		t.Fatalf("ParseNumbered failed: %v", err)
	}

	var numbers []string
	for _, entry := range doc.Numbered() {
		numbers = append(numbers, entry.Number)
	}
	assertLines(t, numbers, []string{"2.01", "2.01.01"})
	if len(doc.Entries) != 3 {
		t.Errorf("Expected the intro as an unnumbered entry, got %d entries", len(doc.Entries))
	}
}

func TestParseNumbered_IntroStartingWithNumeral(t *testing.T) {
	result := processSectionHTML(t, "2", `<section><h2>Factions</h2><ol>
  <li class="intro">2.5 spice is paid to the bank.</li>
  <li>Atreides</li>
</ol></section>`)

	doc, err := ParseNumbered(strings.NewReader(result.Markdown()))
	if err != nil {
		t.Fatalf("ParseNumbered failed: %v", err)
	}

	numbered := doc.Numbered()
	if len(numbered) != 1 || numbered[0].Number != "2.01" {
		t.Fatalf("Expected only 2.01 numbered, got %+v", numbered)
	}
	if doc.Entries[0].Number != "" || doc.Entries[0].Text != "2.5 spice is paid to the bank." {
		t.Errorf("Expected the intro as unnumbered text, got %+v", doc.Entries[0])
	}
}

func TestCompareRuleNumbers(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"1.02", "1.02", 0},
		{"1.02", "1.10", -1},
		{"1.9", "1.10", -1},
		{"2.01", "1.99", 1},
		{"1.02", "1.02.01", -1},
		{"1.02.00", "1.02", 1},
		{"1.00.00", "1.01", -1},
	}

	for _, tc := range tests {
		if got := CompareRuleNumbers(tc.a, tc.b); got != tc.want {
			t.Errorf("CompareRuleNumbers(%q, %q) = %d, want %d", tc.a, tc.b, got, tc.want)
		}
	}
}
