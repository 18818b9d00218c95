package extract

import (
	"strings"
	"testing"

	"github.com/coolbeans/rulebook/pkg/markup"
)

func parseDoc(t *testing.T, html string) *markup.Node {
	t.Helper()
	doc, err := markup.ParseString(html)
	if err != nil {
		t.Fatalf("Failed to parse HTML: %v", err)
	}
	return doc
}

// processList wraps list items in a section and returns the rendered rule lines.
func processList(t *testing.T, numeral, items string) []string {
	t.Helper()
	result := processSectionHTML(t, numeral, "<section><h2>Title</h2><ol>"+items+"</ol></section>")
	var lines []string
	for _, rule := range result.Rules() {
		lines = append(lines, rule.String())
	}
	return lines
}

func processSectionHTML(t *testing.T, numeral, html string) *SectionResult {
	t.Helper()
	doc := parseDoc(t, html)
	section := doc.Find("section")
	if section == nil {
		t.Fatal("Test document has no section")
	}
	return NewExtractor().ProcessSection(section, numeral)
}

func assertLines(t *testing.T, got, want []string) {
	t.Helper()
	if len(got) != len(want) {
		t.Errorf("Expected %d lines, got %d:\n  got:  %s\n  want: %s",
			len(want), len(got), strings.Join(got, " | "), strings.Join(want, " | "))
		return
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Line %d: expected %q, got %q", i, want[i], got[i])
		}
	}
}

// byID returns the element whose id attribute equals id.
func byID(t *testing.T, doc *markup.Node, id string) *markup.Node {
	t.Helper()
	n := doc.FindFunc(func(n *markup.Node) bool {
		v, ok := n.Attr("id")
		return ok && v == id
	})
	if n == nil {
		t.Fatalf("No element with id %q", id)
	}
	return n
}
