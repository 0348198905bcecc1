package model

import "strings"

// EmptyClaimMessage is shown when a check is requested without any claim text
const EmptyClaimMessage = "Please enter a news claim to check."

// NormalizeClaim trims surrounding whitespace from a raw claim.
// The second return value is false when nothing is left to check.
func NormalizeClaim(raw string) (string, bool) {
	claim := strings.TrimSpace(raw)
	return claim, claim != ""
}
