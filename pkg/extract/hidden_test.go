package extract

import "testing"

const visibilityDoc = `<div id="outer" style="color: red; DISPLAY :  None">
  <ol><li id="deep"><span id="leaf">x</span></li></ol>
</div>
<div id="shown" style="display:block">
  <p id="plain">y</p>
  <p id="marked" class="rule notclassic">z</p>
  <div class="notclassic"><p id="under-marked">w</p></div>
  <p id="tight" style="display:none">v</p>
</div>`

func TestIsHidden(t *testing.T) {
	doc := parseDoc(t, visibilityDoc)

	tests := []struct {
		id   string
		want bool
	}{
		{"outer", true},
		{"deep", true},
		{"leaf", true},
		{"shown", false},
		{"plain", false},
		{"marked", false},
		{"under-marked", false},
		{"tight", true},
	}

	for _, tc := range tests {
		t.Run(tc.id, func(t *testing.T) {
			if got := IsHidden(byID(t, doc, tc.id)); got != tc.want {
				t.Errorf("IsHidden(%s) = %v, want %v", tc.id, got, tc.want)
			}
		})
	}
}

func TestIsHidden_Nil(t *testing.T) {
	if IsHidden(nil) {
		t.Error("Expected nil node to be visible")
	}
}

func TestIsExcluded(t *testing.T) {
	doc := parseDoc(t, visibilityDoc)
	e := NewExtractor()

	tests := []struct {
		id   string
		want bool
	}{
		{"deep", true},
		{"plain", false},
		{"marked", true},
		// The marker applies to the marked node itself; the subtree is pruned
		// by the traversal, not by the predicate.
		{"under-marked", false},
	}

	for _, tc := range tests {
		if got := e.IsExcluded(byID(t, doc, tc.id)); got != tc.want {
			t.Errorf("IsExcluded(%s) = %v, want %v", tc.id, got, tc.want)
		}
	}
}

func TestIsExcluded_CustomVocabulary(t *testing.T) {
	doc := parseDoc(t, `<p id="a" class="hidden-edition">a</p><p id="b" class="notclassic">b</p>`)

	vocab := DefaultVocabulary()
	vocab.ExcludeClass = "hidden-edition"
	e := NewExtractorWithVocabulary(vocab, DefaultIntroPhrases())

	if !e.IsExcluded(byID(t, doc, "a")) {
		t.Error("Expected custom exclusion class to exclude")
	}
	if e.IsExcluded(byID(t, doc, "b")) {
		t.Error("Expected default class to be ignored with a custom vocabulary")
	}
}
