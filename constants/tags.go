package constants

// WeightTag marks a weight cell that carries no usable number.
// Tags propagate into the output CSV verbatim so that a bad value is
// visibly wrong in the report instead of silently absorbed into a sum.
type WeightTag string

// Stable values (these exact strings appear in the CSVs).
const (
	TagNone           WeightTag = ""                   // a real number is present
	TagNotApplicable  WeightTag = "N/A"                // non-product row, no lookup performed
	TagNotFound       WeightTag = "NOT_FOUND"          // item code missing from the weight table
	TagQuantityError  WeightTag = "QUANTITY_ERROR"     // quantity failed to parse
	TagConvert        WeightTag = "ERR_CONVERT"        // proposal value unparseable
	TagGrossLTNet     WeightTag = "ERR_GROSS_LT_NET"   // proposal violated gross >= net beyond repair
	TagNegative       WeightTag = "ERR_NEGATIVE"       // proposal weight not a finite non-negative number
	TagMissingAPIKey  WeightTag = "ERR_AI_KEY_MISSING" // proposal step had no API key configured
	TagNotInProposal  WeightTag = "NOT_IN_PROPOSAL"    // item absent from the phase-1 output
	TagAIException    WeightTag = "AI_EXCEPTION"       // proposal call failed outright
	TagAIDecodeError  WeightTag = "AI_JSON_DECODE_ERR" // proposal returned undecodable JSON
	TagAIBadFormat    WeightTag = "AI_BAD_FORMAT_NON_LIST"
	TagSkippedNoItems WeightTag = "SKIPPED_NO_VALID_ITEMS"
)

// allTags is every tag a weight cell can carry, used when reading a
// detail CSV back for aggregation: a cell matching one of these is an
// expected placeholder, anything else non-numeric gets a warning.
var allTags = []WeightTag{
	TagNotApplicable, TagNotFound, TagQuantityError, TagConvert,
	TagGrossLTNet, TagNegative, TagMissingAPIKey, TagNotInProposal,
	TagAIException, TagAIDecodeError, TagAIBadFormat, TagSkippedNoItems,
}

// IsKnownTag reports whether s is one of the weight sentinel strings.
func IsKnownTag(s string) bool {
	for _, t := range allTags {
		if s == string(t) {
			return true
		}
	}
	return false
}

// Tariff code sentinels and synthetic group keys.
const (
	TariffUndetermined = "UNDETERMINED" // model could not pick an 8-digit code
	TariffDiscount     = "DISCOUNT"     // synthetic group for discount rows
	CountryUnspecified = "UNSPECIFIED"  // blank or missing country of origin
	GrandTotalKey      = "TOTAL"        // key column of the grand-total row
)

// PageFailedPrefix marks the sentinel row substituted for a page whose
// extraction call failed; the rest of the row stays blank.
const PageFailedPrefix = "PAGE ANALYSIS FAILED"
