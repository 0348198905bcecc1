package model

// Verdict is the binary classification derived from the generated text.
// It is a keyword heuristic, not a statement about truth.
type Verdict string

const (
	VerdictYes Verdict = "Yes"
	VerdictNo  Verdict = "No"
)

func (v Verdict) String() string {
	return string(v)
}

// ParseVerdict maps a history Status column back to a Verdict
func ParseVerdict(s string) (Verdict, bool) {
	switch Verdict(s) {
	case VerdictYes:
		return VerdictYes, true
	case VerdictNo:
		return VerdictNo, true
	default:
		return "", false
	}
}

// Citation is a web source the model grounded its answer on
type Citation struct {
	URI       string        `json:"uri"`                 // Source URL (often a search redirect)
	Title     string        `json:"title,omitempty"`     // Page title as reported by the API
	Domain    string        `json:"domain,omitempty"`    // Registrable domain of the source
	Authority AuthorityTier `json:"authority,omitempty"` // Source authority classification
}

// AuthorityTier represents the classification of source authority
type AuthorityTier int

const (
	TierUnknown   AuthorityTier = 0 // Not classified (e.g. only a search redirect is known)
	TierPrimary   AuthorityTier = 1 // Government, intergovernmental and academic sources
	TierSecondary AuthorityTier = 2 // Wire services, reference works, established media
	TierTertiary  AuthorityTier = 3 // Everything else
)

func (t AuthorityTier) String() string {
	switch t {
	case TierPrimary:
		return "primary"
	case TierSecondary:
		return "secondary"
	case TierTertiary:
		return "tertiary"
	default:
		return "unknown"
	}
}

// LinkStatus is the outcome of probing a cited URI
type LinkStatus struct {
	URI        string `json:"uri"`
	FinalURL   string `json:"final_url,omitempty"`   // After redirects; grounding redirects resolve to the real source
	StatusCode int    `json:"status_code,omitempty"` // Last HTTP status seen
	Accessible bool   `json:"accessible"`            // 2xx or 3xx
	Dead       bool   `json:"dead,omitempty"`        // 404/410 or unreachable
	Disallowed bool   `json:"disallowed,omitempty"`  // robots.txt forbids the probe; nothing was sent
	Error      string `json:"error,omitempty"`
}
