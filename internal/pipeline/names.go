package pipeline

import (
	"regexp"
	"strings"

	"trainnames/internal"
	"trainnames/internal/util"
)

var (
	reTz       = regexp.MustCompile(`(?i)Tz\s*(\d+[a-z]*)`)
	reTzMarker = regexp.MustCompile(`(?i)^Tz\s*\d+`)
	reTzStrip  = regexp.MustCompile(`(?i)Tz\s*\d+[a-z]*`)
	reRange    = regexp.MustCompile(`\(([^)]+)\)`)
	reVonBis   = regexp.MustCompile(`(?i)von\s+(.+?)\s+bis\s+(.+)`)
	reSeit     = regexp.MustCompile(`(?i)seit\s+(.+)`)
	reEdgePipe = regexp.MustCompile(`^\||\|$`)
)

// ExtractTz returns the unit number from a Tz/name cell, "" if there is none.
func ExtractTz(value string) string {
	m := reTz.FindStringSubmatch(value)
	if m == nil {
		return ""
	}
	return m[1]
}

type lineKind int

const (
	lineTz lineKind = iota
	lineRange
	linePlain
)

type classifiedLine struct {
	kind  lineKind
	text  string
	since *string
	until *string
	// dated is false for range lines whose parenthetical holds no
	// von/bis or seit clause.
	dated bool
}

func classifyLine(line string) classifiedLine {
	if reTzMarker.MatchString(line) {
		return classifiedLine{kind: lineTz, text: line}
	}
	m := reRange.FindStringSubmatch(line)
	if m == nil {
		return classifiedLine{kind: linePlain, text: line}
	}

	cl := classifiedLine{kind: lineRange, text: line}
	span := m[1]
	if vb := reVonBis.FindStringSubmatch(span); vb != nil {
		cl.since = dateOrRaw(vb[1])
		cl.until = dateOrRaw(vb[2])
		cl.dated = true
	} else if s := reSeit.FindStringSubmatch(span); s != nil {
		cl.since = dateOrRaw(s[1])
		cl.dated = true
	}
	return cl
}

// dateOrRaw keeps the raw fragment when it cannot be normalized.
func dateOrRaw(fragment string) *string {
	fragment = strings.TrimSpace(fragment)
	if date, ok := NormalizeDate(fragment); ok {
		return util.StringPtr(date)
	}
	return util.StringPtr(fragment)
}

// nameFold carries the name line still waiting for its date range.
type nameFold struct {
	pending *string
}

// step consumes one line and returns the next state plus completed tuples.
// prev is the line before cur, nil for the first line.
func (f nameFold) step(prev *classifiedLine, cur classifiedLine) (nameFold, []internal.NameWithDates) {
	switch cur.kind {
	case lineTz:
		return f, nil
	case lineRange:
		if !cur.dated {
			return f, nil
		}
		if f.pending != nil {
			return nameFold{}, []internal.NameWithDates{withRange(*f.pending, cur)}
		}
		if prev != nil && prev.kind != lineTz && !strings.Contains(prev.text, "(") {
			return f, []internal.NameWithDates{withRange(prev.text, cur)}
		}
		return f, nil
	default:
		var out []internal.NameWithDates
		if f.pending != nil {
			out = append(out, internal.NameWithDates{Name: *f.pending})
		}
		next := nameFold{}
		if cleaned := strings.TrimSpace(util.StripParentheticals(cur.text)); cleaned != "" {
			next.pending = &cleaned
		}
		return next, out
	}
}

func (f nameFold) flush() []internal.NameWithDates {
	if f.pending == nil {
		return nil
	}
	return []internal.NameWithDates{{Name: *f.pending}}
}

func withRange(name string, cl classifiedLine) internal.NameWithDates {
	return internal.NameWithDates{Name: name, Since: cl.since, Until: cl.until}
}

// ExtractNamesWithDates reads every name of a multi-line Tz/name cell with
// the date range given for it. Cells without a Tz yield nothing; cells with a
// Tz but no recognizable name lines yield a single fallback name.
func ExtractNamesWithDates(value string) []internal.NameWithDates {
	tz := ExtractTz(value)
	if tz == "" {
		return nil
	}

	lines := util.SplitLines(value)
	names := []internal.NameWithDates{}
	state := nameFold{}
	var prev *classifiedLine
	for _, line := range lines {
		cur := classifyLine(line)
		var done []internal.NameWithDates
		state, done = state.step(prev, cur)
		names = append(names, done...)
		prev = &cur
	}
	names = append(names, state.flush()...)

	if len(names) > 0 {
		return names
	}
	return []internal.NameWithDates{{Name: fallbackName(value, tz)}}
}

func fallbackName(value, tz string) string {
	name := value
	if loc := reTzStrip.FindStringIndex(name); loc != nil {
		name = name[:loc[0]] + name[loc[1]:]
	}
	name = strings.TrimSpace(util.StripParentheticals(name))
	name = strings.TrimSpace(reEdgePipe.ReplaceAllString(name, ""))
	name = util.NormalizeSpaces(name)
	if name != "" {
		return name
	}
	return "Tz " + tz
}
