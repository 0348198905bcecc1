package sources

import (
	"testing"

	"github.com/ppiankov/groundcheck/internal/model"
)

func TestAuthorityClassifier_Domains(t *testing.T) {
	classifier := NewAuthorityClassifier(&model.SourcesConfig{
		PrimaryDomains:   []string{"who.int", "doi.org"},
		SecondaryDomains: []string{"reuters.com", "wikipedia.org"},
	})

	tests := []struct {
		citation model.Citation
		expected model.AuthorityTier
		desc     string
	}{
		{model.Citation{Domain: "who.int"}, model.TierPrimary, "primary domain"},
		{model.Citation{URI: "https://www.who.int/news/item/1"}, model.TierPrimary, "primary from URI with www"},
		{model.Citation{Domain: "reuters.com"}, model.TierSecondary, "secondary domain"},
		{model.Citation{URI: "https://en.wikipedia.org/wiki/Moon"}, model.TierSecondary, "secondary subdomain"},
		{model.Citation{Domain: "cdc.gov"}, model.TierPrimary, ".gov TLD"},
		{model.Citation{Domain: "ox.ac.uk"}, model.TierPrimary, "academic second level"},
		{model.Citation{Domain: "someblog.net"}, model.TierTertiary, "unlisted domain"},
		{model.Citation{Domain: "notreuters.com"}, model.TierTertiary, "suffix without dot boundary"},
		{model.Citation{URI: "https://vertexaisearch.cloud.google.com/grounding-api-redirect/abc"}, model.TierUnknown, "redirect only"},
		{model.Citation{}, model.TierUnknown, "empty citation"},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			if got := classifier.Classify(tt.citation); got != tt.expected {
				t.Errorf("Classify(%+v) = %v, expected %v", tt.citation, got, tt.expected)
			}
		})
	}
}

func TestAuthorityClassifier_DomainPreferredOverURI(t *testing.T) {
	classifier := NewAuthorityClassifier(nil)

	c := model.Citation{
		URI:    "https://vertexaisearch.cloud.google.com/grounding-api-redirect/abc",
		Domain: "apnews.com",
	}
	if got := classifier.Classify(c); got != model.TierSecondary {
		t.Errorf("Expected secondary, got %v", got)
	}
}

func TestAnnotate(t *testing.T) {
	classifier := NewAuthorityClassifier(nil)
	in := []model.Citation{
		{URI: "https://www.bbc.co.uk/news/1", Domain: "bbc.co.uk"},
		{URI: "https://example.blog/post"},
	}

	out := classifier.Annotate(in)

	if out[0].Authority != model.TierSecondary {
		t.Errorf("Expected secondary for bbc.co.uk, got %v", out[0].Authority)
	}
	if out[1].Authority != model.TierTertiary {
		t.Errorf("Expected tertiary for blog, got %v", out[1].Authority)
	}
	if in[0].Authority != model.TierUnknown {
		t.Error("Annotate must not modify its input")
	}

	counts := Summary(out)
	if counts[model.TierSecondary] != 1 || counts[model.TierTertiary] != 1 {
		t.Errorf("Unexpected summary: %v", counts)
	}

	if got := classifier.Annotate(nil); got != nil {
		t.Errorf("Expected nil for no citations, got %v", got)
	}
}

func TestAuthorityTier_String(t *testing.T) {
	tests := map[model.AuthorityTier]string{
		model.TierPrimary:   "primary",
		model.TierSecondary: "secondary",
		model.TierTertiary:  "tertiary",
		model.TierUnknown:   "unknown",
	}
	for tier, want := range tests {
		if tier.String() != want {
			t.Errorf("Expected %s, got %s", want, tier.String())
		}
	}
}
