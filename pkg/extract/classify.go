package extract

import "github.com/coolbeans/rulebook/pkg/markup"

// ItemKind is the numbering treatment of a list item.
type ItemKind int

const (
	// ItemExcluded items are pruned with their subtree and take no counter slot.
	ItemExcluded ItemKind = iota
	// ItemIntro items are editorial lead-ins numbered with the 00 sentinel.
	ItemIntro
	// ItemRegular items take the next counter value.
	ItemRegular
	// ItemSuppressed containers unpack their nested list into the parent list.
	ItemSuppressed
	// ItemSubsectionHeader containers open a subsection with a fresh counter.
	ItemSubsectionHeader
)

// String returns the string representation of an ItemKind.
func (k ItemKind) String() string {
	switch k {
	case ItemExcluded:
		return "excluded"
	case ItemIntro:
		return "intro"
	case ItemRegular:
		return "regular"
	case ItemSuppressed:
		return "suppressed"
	case ItemSubsectionHeader:
		return "subsection_header"
	default:
		return "unknown"
	}
}

// ItemContext describes where a list item sits.
type ItemContext struct {
	// TopLevel is set for items of a section's main list. Only top-level
	// items can be containers.
	TopLevel bool

	// FirstInList is set for the first item of a nested list, where the
	// intro phrasing heuristic applies.
	FirstInList bool
}

// Classify decides how item is numbered. Precedence: excluded, explicit
// intro class, containers, heuristic intro, regular.
func (e *Extractor) Classify(item *markup.Node, ctx ItemContext) ItemKind {
	if e.IsExcluded(item) {
		return ItemExcluded
	}
	if e.vocab.IntroClass != "" && item.HasClass(e.vocab.IntroClass) {
		return ItemIntro
	}
	if ctx.TopLevel {
		if e.vocab.SuppressNumberClass != "" && item.HasClass(e.vocab.SuppressNumberClass) {
			return ItemSuppressed
		}
		if e.vocab.SubsectionHeaderClass != "" && item.HasClass(e.vocab.SubsectionHeaderClass) && item.Find("h3") != nil {
			return ItemSubsectionHeader
		}
	}
	if ctx.FirstInList && !ctx.TopLevel && e.isHeuristicIntro(item) {
		return ItemIntro
	}
	return ItemRegular
}
