package extract

import (
	"strings"

	"github.com/coolbeans/rulebook/pkg/markup"
)

// IntroPhrase is a named predicate over lower-cased, link-stripped item text
// that recognises an editorial lead-in.
type IntroPhrase struct {
	Name  string
	Match func(text string) bool
}

// ContainsPhrase builds an IntroPhrase matching any text containing phrase.
func ContainsPhrase(phrase string) IntroPhrase {
	phrase = strings.ToLower(phrase)
	return IntroPhrase{
		Name:  "contains:" + phrase,
		Match: func(text string) bool { return strings.Contains(text, phrase) },
	}
}

// DefaultIntroPhrases returns the lead-in phrasings used by the rulebook.
func DefaultIntroPhrases() []IntroPhrase {
	return []IntroPhrase{
		ContainsPhrase("this section"),
		ContainsPhrase("lists all"),
		{
			Name: "play-at-anytime-options",
			Match: func(text string) bool {
				return strings.Contains(text, "play at") &&
					strings.Contains(text, "anytime") &&
					(strings.Contains(text, "options") || strings.Contains(text, "one of these"))
			},
		},
		{
			Name: "adhere-on-your-action",
			Match: func(text string) bool {
				return strings.Contains(text, "on your") &&
					strings.Contains(text, "action") &&
					strings.Contains(text, "adhere")
			},
		},
		{
			Name:  "starts-play-at-anytime",
			Match: func(text string) bool { return strings.HasPrefix(text, "play at anytime") },
		},
	}
}

// LooksLikeIntro reports whether text matches any of phrases, and which one.
func LooksLikeIntro(text string, phrases []IntroPhrase) (string, bool) {
	text = strings.ToLower(text)
	for _, p := range phrases {
		if p.Match(text) {
			return p.Name, true
		}
	}
	return "", false
}

// isHeuristicIntro reports whether item reads like an unanchored lead-in.
func (e *Extractor) isHeuristicIntro(item *markup.Node) bool {
	anchor := item.FindFunc(func(n *markup.Node) bool {
		return n.IsElement("a") && n.HasAttr("name")
	})
	if anchor != nil {
		return false
	}
	text := e.ExtractText(item, TextOptions{SkipLinks: true, ExcludeNestedLists: true})
	_, ok := LooksLikeIntro(text, e.introPhrases)
	return ok
}
