package verdict

import (
	"errors"
	"net/url"
	"strings"

	"golang.org/x/net/publicsuffix"

	"github.com/ppiankov/groundcheck/internal/llm"
	"github.com/ppiankov/groundcheck/internal/model"
)

// MissingTextPlaceholder stands in for an answer that carried no text
const MissingTextPlaceholder = "No response text found."

// ErrNoCandidates means the API answered without any candidate
var ErrNoCandidates = errors.New("response contains no candidates")

// groundingRedirectHost serves the redirect URIs used in grounding metadata;
// its domain says nothing about the actual source.
const groundingRedirectHost = "vertexaisearch.cloud.google.com"

// Interpretation is the parsed form of a response
type Interpretation struct {
	Verdict       model.Verdict
	Text          string
	Citations     []model.Citation
	FullResponse  string   // Text plus the citation list
	Markdown      string   // FullResponse prefixed with the verdict
	MissingText   bool     // Text is the placeholder
	SearchQueries []string // Queries the model ran, when reported
}

// Interpret reads the first candidate of resp.
// Only a response without candidates is an error; a candidate without text
// degrades to MissingTextPlaceholder.
func Interpret(resp *llm.Response) (*Interpretation, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return nil, ErrNoCandidates
	}
	candidate := resp.Candidates[0]

	text, ok := candidateText(candidate)
	if !ok {
		text = MissingTextPlaceholder
	}

	citations := ExtractCitations(candidate.GroundingMetadata)
	full := text + RenderCitations(citations)
	v := Classify(text)

	out := &Interpretation{
		Verdict:      v,
		Text:         text,
		Citations:    citations,
		FullResponse: full,
		Markdown:     RenderMarkdown(v, full),
		MissingText:  !ok,
	}
	if candidate.GroundingMetadata != nil {
		out.SearchQueries = candidate.GroundingMetadata.WebSearchQueries
	}
	return out, nil
}

// candidateText joins the text parts of a candidate
func candidateText(c llm.Candidate) (string, bool) {
	if c.Content == nil {
		return "", false
	}

	var b strings.Builder
	for _, part := range c.Content.Parts {
		b.WriteString(part.Text)
	}
	if b.Len() == 0 {
		return "", false
	}
	return b.String(), true
}

// ExtractCitations maps grounding sources to citations in API order.
// groundingAttributions is preferred; groundingChunks is used when it is absent.
func ExtractCitations(gm *llm.GroundingMetadata) []model.Citation {
	if gm == nil {
		return nil
	}

	var sources []*llm.WebSource
	if len(gm.GroundingAttributions) > 0 {
		for _, attr := range gm.GroundingAttributions {
			sources = append(sources, attr.Web)
		}
	} else {
		for _, chunk := range gm.GroundingChunks {
			sources = append(sources, chunk.Web)
		}
	}

	var citations []model.Citation
	for _, web := range sources {
		if web == nil {
			// Keep numbering aligned with the API's list
			citations = append(citations, model.Citation{})
			continue
		}
		domain := web.Domain
		if domain == "" {
			domain = domainOf(web.URI)
		}
		citations = append(citations, model.Citation{
			URI:    web.URI,
			Title:  web.Title,
			Domain: domain,
		})
	}
	return citations
}

// domainOf returns the registrable domain (eTLD+1) of a URI
func domainOf(rawURI string) string {
	parsed, err := url.Parse(rawURI)
	if err != nil || parsed.Hostname() == "" {
		return ""
	}

	host := strings.ToLower(parsed.Hostname())
	if host == groundingRedirectHost {
		return ""
	}

	domain, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil {
		return host
	}
	return domain
}
