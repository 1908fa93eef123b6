package pipeline

import (
	"regexp"
	"strings"

	"trainnames/internal/util"
)

var monthNumbers = map[string]string{
	"januar": "01", "january": "01",
	"februar": "02", "february": "02",
	"märz": "03", "march": "03", "mär": "03",
	"april": "04",
	"mai": "05", "may": "05",
	"juni": "06", "june": "06",
	"juli": "07", "july": "07",
	"august": "08",
	"september": "09", "sep": "09",
	"oktober": "10", "october": "10", "okt": "10",
	"november": "11", "nov": "11",
	"dezember": "12", "december": "12", "dez": "12",
}

var (
	reNumericDatePrefix = regexp.MustCompile(`^(\d{1,2})\.(\d{1,2})\.(\d{4})`)
	reMonthNameDate     = regexp.MustCompile(`(\d{1,2})\.\s*(\p{L}+)\s+(\d{4})`)

	reFindNumericDate   = regexp.MustCompile(`(\d{1,2}\.\d{2}\.\d{4})`)
	reFindMonthNameDate = regexp.MustCompile(`(\d{1,2}\.\s*\p{L}+\s+\d{4})`)
	reFindDecommission  = regexp.MustCompile(`(?i)(?:ausgemustert|verschrottet|außerbetrieb)\s+(\d{1,2}\.\s*\p{L}+\s+\d{4})`)
)

var decommissionKeywords = []string{"ausmusterung", "verschrottung", "außerbetriebnahme", "außerbetriebsetzung"}

// NormalizeDate converts "5.3.1999" or "15. März 2005" to DD.MM.YYYY. The
// second result is false when the fragment holds no recognizable date.
func NormalizeDate(value string) (string, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", false
	}

	if m := reNumericDatePrefix.FindStringSubmatch(value); m != nil {
		return pad2(m[1]) + "." + pad2(m[2]) + "." + m[3], true
	}

	if m := reMonthNameDate.FindStringSubmatch(value); m != nil {
		if month, ok := monthNumbers[strings.ToLower(m[2])]; ok {
			return pad2(m[1]) + "." + month + "." + m[3], true
		}
	}

	return "", false
}

func pad2(digits string) string {
	if len(digits) < 2 {
		return "0" + digits
	}
	return digits
}

// DateMode selects which end of a date column cell is relevant.
type DateMode int

const (
	SinceMode DateMode = iota
	UntilMode
)

// dateStrategy is one attempt at pulling a normalized date out of a cell.
type dateStrategy func(lines []string, text string) (string, bool)

func firstLine(lines []string, _ string) (string, bool) {
	if len(lines) == 0 {
		return "", false
	}
	return NormalizeDate(lines[0])
}

func lastLine(lines []string, _ string) (string, bool) {
	if len(lines) == 0 {
		return "", false
	}
	return NormalizeDate(lines[len(lines)-1])
}

func search(re *regexp.Regexp) dateStrategy {
	return func(_ []string, text string) (string, bool) {
		m := re.FindStringSubmatch(text)
		if m == nil {
			return "", false
		}
		return NormalizeDate(m[1])
	}
}

// whenDecommissioned runs the nested strategies only for cells that mention
// a decommissioning event.
func whenDecommissioned(strategies ...dateStrategy) dateStrategy {
	return func(lines []string, text string) (string, bool) {
		if !util.ContainsAny(strings.ToLower(text), decommissionKeywords) {
			return "", false
		}
		return firstMatch(strategies, lines, text)
	}
}

func firstMatch(strategies []dateStrategy, lines []string, text string) (string, bool) {
	for _, s := range strategies {
		if date, ok := s(lines, text); ok {
			return date, true
		}
	}
	return "", false
}

var mainDateStrategies = map[DateMode][]dateStrategy{
	SinceMode: {
		firstLine,
		search(reFindNumericDate),
		search(reFindMonthNameDate),
	},
	UntilMode: {
		lastLine,
		whenDecommissioned(
			search(reFindDecommission),
			search(reFindNumericDate),
			search(reFindMonthNameDate),
		),
	},
}

// ExtractMainDate picks the fallback date from a since or until column cell.
func ExtractMainDate(value string, mode DateMode) *string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	date, ok := firstMatch(mainDateStrategies[mode], util.SplitLines(value), value)
	if !ok {
		return nil
	}
	return &date
}
