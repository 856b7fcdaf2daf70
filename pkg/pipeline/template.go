package pipeline

import (
	"regexp"
	"strings"
)

var placeholderRe = regexp.MustCompile(`\{([A-Za-z_][A-Za-z0-9_]*)\}`)

type segment struct {
	text string
	slot string
}

// Template is an instruction with {slot} placeholders.
//
// Braces that do not enclose an identifier are kept verbatim.
type Template struct {
	raw      string
	segments []segment
	slots    []string
}

// ParseTemplate parses an instruction.
func ParseTemplate(text string) *Template {
	tpl := &Template{raw: text}
	seen := make(map[string]struct{})
	last := 0

	for _, loc := range placeholderRe.FindAllStringSubmatchIndex(text, -1) {
		if loc[0] > last {
			tpl.segments = append(tpl.segments, segment{text: text[last:loc[0]]})
		}
		name := text[loc[2]:loc[3]]
		tpl.segments = append(tpl.segments, segment{slot: name})
		if _, ok := seen[name]; !ok {
			seen[name] = struct{}{}
			tpl.slots = append(tpl.slots, name)
		}
		last = loc[1]
	}
	if last < len(text) {
		tpl.segments = append(tpl.segments, segment{text: text[last:]})
	}

	return tpl
}

// Slots returns the referenced slot names in order of first appearance.
func (t *Template) Slots() []string {
	out := make([]string, len(t.slots))
	copy(out, t.slots)

	return out
}

// String returns the unresolved instruction.
func (t *Template) String() string {
	return t.raw
}

// Resolve substitutes every placeholder with the current value of its slot.
// Unwritten or unknown slots resolve to AbsentMarker.
func (t *Template) Resolve(state State) string {
	var b strings.Builder
	for _, seg := range t.segments {
		if seg.slot == "" {
			b.WriteString(seg.text)

			continue
		}
		value, ok := lookupSlot(state, seg.slot)
		if !ok {
			value = AbsentMarker
		}
		b.WriteString(value)
	}

	return b.String()
}
