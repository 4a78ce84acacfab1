package importer

import (
	"strings"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// parseAmount parses a formatted amount into cents. Spaces and dots may
// group thousands; the last comma or dot followed by one or two digits
// is the decimal separator.
// Examples: "1 234,56" -> 123456, "1.234,56" -> 123456, "98000" -> 9800000.
func parseAmount(s string) (int64, error) {
	clean := strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\u00a0', '\u202f', '\'':
			return -1
		}
		return r
	}, s)

	sep := strings.LastIndexAny(clean, ".,")
	if sep >= 0 && len(clean)-sep-1 <= 2 {
		clean = strings.NewReplacer(".", "", ",", "").Replace(clean[:sep]) + "." + clean[sep+1:]
	} else {
		clean = strings.NewReplacer(".", "", ",", "").Replace(clean)
	}

	d, err := decimal.NewFromString(clean)
	if err != nil {
		return 0, err
	}

	return d.Mul(hundred).Round(0).IntPart(), nil
}
