package dnet

import (
	"regexp"
	"strings"
)

// ruleCategory orders rules; lower categories are tried first
type ruleCategory int

const (
	categorySkip ruleCategory = iota
	categoryHeader
	categorySection
	categoryMessage
	categoryBlock
	categoryField
)

// line is one input line in raw and trimmed form
type line struct {
	raw  string
	text string
}

// rule recognizes one kind of line for one or more dialects. match reports
// whether the rule consumes the line; apply receives the captured groups,
// which may be nil for a consumed line that carried no usable value.
type rule struct {
	name     string
	dialect  Dialect
	category ruleCategory
	match    func(st *scanState, ln line) ([]string, bool)
	apply    func(st *scanState, groups []string)
}

const identPattern = `[A-Za-z_][A-Za-z0-9_]*`

var (
	legacyMessageRe  = regexp.MustCompile(`^\d+\.([A-Za-z0-9_]+)\.(.+)$`)
	legacyFieldRe    = regexp.MustCompile(`^(` + identPattern + `)\.([^.]+)\.(.+)$`)
	currentMessageRe = regexp.MustCompile(`^(\d+):(` + identPattern + `):(.+)$`)
	currentFieldRe   = regexp.MustCompile(`^(` + identPattern + `),([^,]+),(.+)$`)
	forListRe        = regexp.MustCompile(`^forlist(\s+.*)?$`)
)

// listMemberIndent marks a line nested inside a forlist block
const listMemberIndent = "\t\t\t"

// defaultRules is the rule table in priority order. Adding a dialect means
// appending rules here.
var defaultRules = []rule{
	skipRule("blank", DialectCurrent, func(ln line) bool { return ln.text == "" }),
	skipRule("comment", DialectCurrent, func(ln line) bool { return strings.HasPrefix(ln.text, "#") }),
	{
		name:     "forlist-member",
		dialect:  DialectCurrent,
		category: categorySkip,
		match: func(st *scanState, ln line) ([]string, bool) {
			return nil, st.inList && strings.HasPrefix(ln.raw, listMemberIndent)
		},
		apply: func(*scanState, []string) {},
	},

	headerRule("C2SMODULE", DialectLegacy, func(f *File, v string) { f.ClientModule = v }),
	headerRule("S2CMODULE", DialectLegacy, func(f *File, v string) { f.ServerModule = v }),
	headerRule("VERSION", DialectCurrent, func(f *File, v string) { f.Version = v }),
	headerRule("CMODULE", DialectCurrent, func(f *File, v string) { f.ClientModule = v }),
	headerRule("SMODULE", DialectCurrent, func(f *File, v string) { f.ServerModule = v }),
	headerRule("DESC", DialectAll, func(f *File, v string) { f.Description = v }),

	sectionRule("C2S.", DialectLegacy, DirectionClientToServer),
	sectionRule("S2C.", DialectLegacy, DirectionServerToClient),
	sectionRule("C2GS:", DialectCurrent, DirectionClientToServer),
	sectionRule("GS2C:", DialectCurrent, DirectionServerToClient),

	messageRule("legacy-message", DialectLegacy, legacyMessageRe),
	messageRule("current-message", DialectCurrent, currentMessageRe),

	{
		name:     "forlist",
		dialect:  DialectCurrent,
		category: categoryBlock,
		match: func(_ *scanState, ln line) ([]string, bool) {
			return nil, forListRe.MatchString(ln.text)
		},
		apply: func(st *scanState, _ []string) { st.inList = true },
	},

	fieldRule("legacy-field", DialectLegacy, legacyFieldRe),
	fieldRule("current-field", DialectCurrent, currentFieldRe),
}

func skipRule(name string, d Dialect, pred func(line) bool) rule {
	return rule{
		name:     name,
		dialect:  d,
		category: categorySkip,
		match: func(_ *scanState, ln line) ([]string, bool) {
			return nil, pred(ln)
		},
		apply: func(*scanState, []string) {},
	}
}

// headerRule consumes any line starting with key. The value is taken only
// when the key is followed by an ASCII or full-width colon.
func headerRule(key string, d Dialect, set func(*File, string)) rule {
	re := regexp.MustCompile(`^` + regexp.QuoteMeta(key) + `[：:]\s*(.+)$`)
	return rule{
		name:     "header-" + strings.ToLower(key),
		dialect:  d,
		category: categoryHeader,
		match: func(_ *scanState, ln line) ([]string, bool) {
			if !strings.HasPrefix(ln.text, key) {
				return nil, false
			}
			return re.FindStringSubmatch(ln.text), true
		},
		apply: func(st *scanState, groups []string) {
			if groups == nil {
				return
			}
			if v := strings.TrimSpace(groups[1]); v != "" {
				set(st.file, v)
			}
		},
	}
}

func sectionRule(prefix string, d Dialect, dir Direction) rule {
	return rule{
		name:     "section-" + strings.TrimRight(strings.ToLower(prefix), ".:"),
		dialect:  d,
		category: categorySection,
		match: func(_ *scanState, ln line) ([]string, bool) {
			return nil, strings.HasPrefix(ln.text, prefix)
		},
		apply: func(st *scanState, _ []string) {
			st.direction = dir
			st.message = nil
			st.inList = false
		},
	}
}

// messageRule only matches inside a section.
func messageRule(name string, d Dialect, re *regexp.Regexp) rule {
	return rule{
		name:     name,
		dialect:  d,
		category: categoryMessage,
		match: func(st *scanState, ln line) ([]string, bool) {
			if st.direction == DirectionNone {
				return nil, false
			}
			m := re.FindStringSubmatch(ln.text)
			return m, m != nil
		},
		apply: func(st *scanState, groups []string) {
			// Both message patterns capture name and description last.
			n := len(groups)
			st.openMessage(&Message{Name: groups[n-2], Description: groups[n-1]})
		},
	}
}

// fieldRule consumes matching lines; with no open message the field is dropped.
func fieldRule(name string, d Dialect, re *regexp.Regexp) rule {
	return rule{
		name:     name,
		dialect:  d,
		category: categoryField,
		match: func(_ *scanState, ln line) ([]string, bool) {
			m := re.FindStringSubmatch(ln.text)
			return m, m != nil
		},
		apply: func(st *scanState, groups []string) {
			if st.message == nil {
				return
			}
			st.message.Fields = append(st.message.Fields, Field{
				Name:        groups[1],
				TypeInfo:    groups[2],
				Description: groups[3],
			})
		},
	}
}

// rulesFor returns the rules enabled for a dialect set, keeping table order
func rulesFor(d Dialect) []rule {
	out := make([]rule, 0, len(defaultRules))
	for _, r := range defaultRules {
		if r.dialect&d != 0 {
			out = append(out, r)
		}
	}
	return out
}
