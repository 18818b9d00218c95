package markup

import (
	"strings"
	"testing"
)

const sampleDoc = `<!DOCTYPE html>
<html><body>
<!-- generated -->
<section id="setupgame" class="page-break intro-section" data-listindex="0">
  <h2>Setup</h2>
  <script>var x = 1;</script>
  <ol start="3">
    <li class="intro first">One <a href="rules#1" name="r1">link</a></li>
    <li style="display: none">Two</li>
  </ol>
</section>
<section id="phases" class="page-break"><h2>Phases</h2></section>
<section id="other"><h2>Other</h2></section>
</body></html>`

func mustParse(t *testing.T, s string) *Node {
	t.Helper()
	doc, err := ParseString(s)
	if err != nil {
		t.Fatalf("ParseString failed: %v", err)
	}
	return doc
}

func TestParse_BuildsTree(t *testing.T) {
	doc := mustParse(t, sampleDoc)

	if doc.Type() != DocumentNode {
		t.Fatalf("Expected document root, got %s", doc.Type())
	}

	section := doc.Find("section")
	if section == nil {
		t.Fatal("Expected a section element")
	}
	if got, _ := section.Attr("id"); got != "setupgame" {
		t.Errorf("Expected id 'setupgame', got %q", got)
	}
	if !section.HasClass("page-break") || !section.HasClass("intro-section") {
		t.Errorf("Expected both classes, got %v", section.Classes())
	}
	if section.HasClass("page") {
		t.Error("HasClass must match whole class names")
	}

	attrs := section.Attrs()
	if len(attrs) != 3 || attrs[0].Key != "id" || attrs[2].Key != "data-listindex" || attrs[2].Val != "0" {
		t.Errorf("Expected attributes in source order, got %+v", attrs)
	}

	ol := section.Find("ol")
	if ol == nil {
		t.Fatal("Expected an ol element")
	}
	if ol.AttrOr("start", "") != "3" {
		t.Errorf("Expected start=3, got %q", ol.AttrOr("start", ""))
	}

	items := ol.ChildElements("li")
	if len(items) != 2 {
		t.Fatalf("Expected 2 list items, got %d", len(items))
	}
	if items[1].Style() != "display: none" {
		t.Errorf("Expected inline style, got %q", items[1].Style())
	}
	if items[0].Parent() != ol {
		t.Error("Expected li parent to be the ol")
	}
	if items[0].Root() != doc {
		t.Error("Expected Root to return the document")
	}
}

func TestParse_DropsScriptsAndComments(t *testing.T) {
	doc := mustParse(t, sampleDoc)

	if doc.Find("script") != nil {
		t.Error("Expected script elements to be dropped")
	}
	if strings.Contains(doc.InnerText(), "generated") {
		t.Error("Expected comments to be dropped")
	}
	if strings.Contains(doc.InnerText(), "var x") {
		t.Error("Expected script text to be dropped")
	}
}

func TestNode_Descendants(t *testing.T) {
	doc := mustParse(t, sampleDoc)

	sections := doc.Descendants("section")
	if len(sections) != 3 {
		t.Fatalf("Expected 3 sections, got %d", len(sections))
	}

	anchor := doc.FindFunc(func(n *Node) bool { return n.IsElement("a") && n.HasAttr("name") })
	if anchor == nil {
		t.Fatal("Expected a named anchor")
	}
	if anchor.InnerText() != "link" {
		t.Errorf("Expected anchor text 'link', got %q", anchor.InnerText())
	}
}

func TestSelect_SectionsByClass(t *testing.T) {
	doc := mustParse(t, sampleDoc)

	nodes, err := Select(doc, `//section[contains(concat(' ', normalize-space(@class), ' '), ' page-break ')]`)
	if err != nil {
		t.Fatalf("Select failed: %v", err)
	}
	if len(nodes) != 2 {
		t.Fatalf("Expected 2 page-break sections, got %d", len(nodes))
	}
	if id, _ := nodes[1].Attr("id"); id != "phases" {
		t.Errorf("Expected document order, second id %q", id)
	}
}

func TestSelect_AttributeAndRelative(t *testing.T) {
	doc := mustParse(t, sampleDoc)

	first, err := SelectFirst(doc, `//section[@data-listindex="0"]//li[1]`)
	if err != nil {
		t.Fatalf("SelectFirst failed: %v", err)
	}
	if first == nil || !first.HasClass("intro") {
		t.Fatalf("Expected the first list item, got %v", first)
	}

	q, err := Compile(`.//h2`)
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	section := doc.Find("section")
	h2 := q.First(section)
	if h2 == nil || h2.InnerText() != "Setup" {
		t.Errorf("Expected relative query to find the section title")
	}
}

func TestCompile_Invalid(t *testing.T) {
	if _, err := Compile(`//section[`); err == nil {
		t.Error("Expected an error for an invalid expression")
	}
}
