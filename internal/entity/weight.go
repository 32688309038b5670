package entity

import (
	"strconv"
	"strings"

	"intrastat-assistant/constants"
)

// Weight is a tagged variant: either a number of kilograms or one of the
// sentinel tags from constants. The zero value renders as an empty cell.
type Weight struct {
	Tag constants.WeightTag
	Kg  float64
	set bool
}

// Kilograms wraps a plain numeric weight.
func Kilograms(kg float64) Weight {
	return Weight{Kg: kg, set: true}
}

// Tagged wraps a sentinel tag.
func Tagged(tag constants.WeightTag) Weight {
	return Weight{Tag: tag}
}

// Valid reports whether the weight carries a usable number.
func (w Weight) Valid() bool {
	return w.set && w.Tag == constants.TagNone
}

// IsZeroValue reports whether the weight was never assigned at all.
func (w Weight) IsZeroValue() bool {
	return !w.set && w.Tag == constants.TagNone
}

// String renders the weight for CSV output: three decimal places with a
// comma decimal separator, the tag string for sentinels, or "" when unset.
// Only this boundary rounds; all arithmetic upstream keeps full precision.
func (w Weight) String() string {
	if w.Tag != constants.TagNone {
		return string(w.Tag)
	}
	if !w.set {
		return ""
	}
	return strings.Replace(strconv.FormatFloat(w.Kg, 'f', 3, 64), ".", ",", 1)
}

// ParseWeightCell reads a detail-CSV weight cell back: a number (comma or
// dot decimals), a known sentinel tag, or empty. ok is false for tags,
// blanks and anything unparseable.
func ParseWeightCell(s string) (kg float64, ok bool) {
	s = strings.TrimSpace(s)
	if s == "" || constants.IsKnownTag(s) || strings.HasPrefix(s, constants.PageFailedPrefix) {
		return 0, false
	}
	f, err := strconv.ParseFloat(strings.Replace(s, ",", ".", 1), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}
