package scrape

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	yearRe  = regexp.MustCompile(`(\d+)\s*(?:year|yr)s?`)
	monthRe = regexp.MustCompile(`(\d+)\s*(?:month|mo)s?`)
)

// ParseAge converts free-text ages like "2 years", "6 months",
// "1 year 3 months", "2 yrs" or "6mo" into years. It returns nil when
// the text contains no recognizable year or month token, so an
// unparseable age stays distinguishable from a puppy.
func ParseAge(text string) *float64 {
	text = strings.ToLower(strings.TrimSpace(text))
	if text == "" {
		return nil
	}

	total := 0.0
	matched := false
	if m := yearRe.FindStringSubmatch(text); m != nil {
		n, _ := strconv.Atoi(m[1])
		total += float64(n)
		matched = true
	}
	if m := monthRe.FindStringSubmatch(text); m != nil {
		n, _ := strconv.Atoi(m[1])
		total += float64(n) / 12
		matched = true
	}
	if !matched {
		return nil
	}
	return &total
}
