package autosize

import (
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// VariablesLabel is the table cell text preceding the variable count on an
// instance detail page.
const VariablesLabel = "Variables"

// ExtractVariableCount returns the variable count reported by an instance
// detail page.
func ExtractVariableCount(document string) (int, bool) {
	return ExtractCount(document, VariablesLabel)
}

// ExtractCount scans the table cells of document in order and parses the
// cell right after the first cell whose content equals label. Only that one
// cell is considered: if it is not a non-negative integer the result is
// absent, even when label appears again further down.
func ExtractCount(document, label string) (int, bool) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(document))
	if err != nil {
		return 0, false
	}

	var (
		labelSeen bool
		value     int
		found     bool
	)

	doc.Find("td").EachWithBreak(func(_ int, cell *goquery.Selection) bool {
		inner, err := cell.Html()
		if err != nil {
			inner = ""
		}

		if labelSeen {
			value, found = parseCount(inner)
			return false
		}

		if inner == label {
			labelSeen = true
		}
		return true
	})

	return value, found
}

// parseCount accepts decimal digits with an optional leading "+".
func parseCount(s string) (int, bool) {
	s = strings.TrimPrefix(s, "+")
	n, err := strconv.ParseUint(s, 10, strconv.IntSize-1)
	if err != nil {
		return 0, false
	}
	return int(n), true
}
