// Package sources grades the web sources a verdict cites.
package sources

import (
	"net/url"
	"strings"

	"github.com/ppiankov/groundcheck/internal/model"
)

// groundingRedirectHost hides the real source behind a redirect
const groundingRedirectHost = "vertexaisearch.cloud.google.com"

// AuthorityClassifier classifies citations into authority tiers
type AuthorityClassifier struct {
	primary   map[string]bool
	secondary map[string]bool
}

// NewAuthorityClassifier creates a classifier from config.
// A nil config uses the default domain lists.
func NewAuthorityClassifier(config *model.SourcesConfig) *AuthorityClassifier {
	if config == nil {
		config = &model.DefaultConfig().Sources
	}

	classifier := &AuthorityClassifier{
		primary:   make(map[string]bool, len(config.PrimaryDomains)),
		secondary: make(map[string]bool, len(config.SecondaryDomains)),
	}
	for _, domain := range config.PrimaryDomains {
		classifier.primary[normalizeHost(domain)] = true
	}
	for _, domain := range config.SecondaryDomains {
		classifier.secondary[normalizeHost(domain)] = true
	}
	return classifier
}

// Classify grades one citation. The reported domain is preferred; the URI
// host is used when the domain is missing.
func (a *AuthorityClassifier) Classify(c model.Citation) model.AuthorityTier {
	host := normalizeHost(c.Domain)
	if host == "" {
		host = hostOf(c.URI)
	}
	if host == "" || host == groundingRedirectHost {
		return model.TierUnknown
	}

	if matchesAny(host, a.primary) {
		return model.TierPrimary
	}
	if matchesAny(host, a.secondary) {
		return model.TierSecondary
	}

	// Government and academic TLDs
	if strings.HasSuffix(host, ".gov") || strings.HasSuffix(host, ".edu") || strings.HasSuffix(host, ".mil") {
		return model.TierPrimary
	}
	if strings.Contains(host, ".gov.") || strings.Contains(host, ".ac.") || strings.Contains(host, ".edu.") {
		return model.TierPrimary
	}

	return model.TierTertiary
}

// Annotate returns a copy of citations with Authority set
func (a *AuthorityClassifier) Annotate(citations []model.Citation) []model.Citation {
	if len(citations) == 0 {
		return citations
	}
	out := make([]model.Citation, len(citations))
	for i, c := range citations {
		c.Authority = a.Classify(c)
		out[i] = c
	}
	return out
}

// Summary counts citations per tier
func Summary(citations []model.Citation) map[model.AuthorityTier]int {
	counts := make(map[model.AuthorityTier]int)
	for _, c := range citations {
		counts[c.Authority]++
	}
	return counts
}

// matchesAny reports whether host equals or is a subdomain of a listed domain
func matchesAny(host string, domains map[string]bool) bool {
	if domains[host] {
		return true
	}
	for domain := range domains {
		if strings.HasSuffix(host, "."+domain) {
			return true
		}
	}
	return false
}

func hostOf(rawURI string) string {
	parsed, err := url.Parse(rawURI)
	if err != nil {
		return ""
	}
	return normalizeHost(parsed.Hostname())
}

func normalizeHost(host string) string {
	host = strings.ToLower(strings.TrimSpace(host))
	host = strings.TrimPrefix(host, "www.")
	return strings.TrimSuffix(host, ".")
}
