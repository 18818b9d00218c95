// Package extract numbers the nested rule lists of a rulebook document and
// flattens them into dotted, plain-text rule lines.
package extract

import (
	"regexp"

	"github.com/coolbeans/rulebook/pkg/markup"
)

// Vocabulary names the classes and markers the source document uses to
// encode numbering and visibility.
type Vocabulary struct {
	// ExcludeClass marks an element (and its subtree) as not part of this edition.
	ExcludeClass string `yaml:"exclude" json:"exclude"`

	// IntroClass marks an editorial lead-in item.
	IntroClass string `yaml:"intro" json:"intro"`

	// SuppressNumberClass marks a container whose own number is not emitted.
	SuppressNumberClass string `yaml:"suppress_number" json:"suppress_number"`

	// SubsectionHeaderClass marks an item holding a subsection heading.
	SubsectionHeaderClass string `yaml:"subsection_header" json:"subsection_header"`

	// ExampleClass marks paragraphs that carry illustrative examples.
	ExampleClass string `yaml:"example" json:"example"`

	// AddendumClass marks links that annotate an addendum reference (+).
	AddendumClass string `yaml:"addendum" json:"addendum"`

	// SupersedeClass marks links that annotate a superseded reference (-).
	SupersedeClass string `yaml:"supersede" json:"supersede"`

	// RulesHrefMarker is the substring of an href pointing into the rules namespace.
	RulesHrefMarker string `yaml:"rules_href_marker" json:"rules_href_marker"`
}

// DefaultVocabulary returns the class names used by the published rulebook.
func DefaultVocabulary() Vocabulary {
	return Vocabulary{
		ExcludeClass:          "notclassic",
		IntroClass:            "intro",
		SuppressNumberClass:   "supress_number",
		SubsectionHeaderClass: "subsection_header",
		ExampleClass:          "example",
		AddendumClass:         "addendum_link",
		SupersedeClass:        "supersede_link",
		RulesHrefMarker:       "rules#",
	}
}

// ForcedPrefaceSection is the canonical section whose suppressed-numbering
// lists are renumbered as <section>.00.<nn>.
const ForcedPrefaceSection = "1"

// Extractor holds the vocabulary and heuristics used to number a document.
// An Extractor is immutable after construction and safe for concurrent use.
type Extractor struct {
	vocab        Vocabulary
	introPhrases []IntroPhrase
	refPattern   *regexp.Regexp
}

// NewExtractor creates an Extractor with the default vocabulary and intro phrases.
func NewExtractor() *Extractor {
	return NewExtractorWithVocabulary(DefaultVocabulary(), DefaultIntroPhrases())
}

// NewExtractorWithVocabulary creates an Extractor with a custom vocabulary
// and intro phrase list.
func NewExtractorWithVocabulary(vocab Vocabulary, phrases []IntroPhrase) *Extractor {
	return &Extractor{
		vocab:        vocab,
		introPhrases: phrases,
		refPattern:   defaultRefPattern,
	}
}

// Vocabulary returns the extractor's class vocabulary.
func (e *Extractor) Vocabulary() Vocabulary {
	return e.vocab
}

// nestedList returns the list directly owned by item, preferring <ol>.
func nestedList(item *markup.Node) *markup.Node {
	if ol := item.FirstChildElement("ol"); ol != nil {
		return ol
	}
	return item.FirstChildElement("ul")
}
