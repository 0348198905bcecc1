package llm

// Gemini generateContent wire format. Only the fields groundcheck sends or reads are modelled.

// Part is a single piece of content; groundcheck only uses text parts
type Part struct {
	Text string `json:"text,omitempty"`
}

// Content is one conversational turn
type Content struct {
	Role  string `json:"role,omitempty"`
	Parts []Part `json:"parts"`
}

// GoogleSearch enables live web search grounding. It has no options.
type GoogleSearch struct{}

// Tool is a tool declaration attached to a request
type Tool struct {
	GoogleSearch *GoogleSearch `json:"google_search,omitempty"`
}

// Request is the generateContent payload
type Request struct {
	SystemInstruction *Content  `json:"systemInstruction,omitempty"`
	Contents          []Content `json:"contents"`
	Tools             []Tool    `json:"tools,omitempty"`
}

// BuildRequest wraps a claim into a request payload.
// The caller must pass a non-empty claim; the payload is built fresh each call.
func BuildRequest(instruction, claim string, search bool) *Request {
	req := &Request{
		Contents: []Content{
			{
				Role:  "user",
				Parts: []Part{{Text: claim}},
			},
		},
	}

	if instruction != "" {
		req.SystemInstruction = &Content{
			Parts: []Part{{Text: instruction}},
		}
	}

	if search {
		req.Tools = []Tool{{GoogleSearch: &GoogleSearch{}}}
	}

	return req
}

// Claim returns the user text of the first turn
func (r *Request) Claim() string {
	if len(r.Contents) == 0 || len(r.Contents[0].Parts) == 0 {
		return ""
	}
	return r.Contents[0].Parts[0].Text
}

// Instruction returns the system instruction text
func (r *Request) Instruction() string {
	if r.SystemInstruction == nil || len(r.SystemInstruction.Parts) == 0 {
		return ""
	}
	return r.SystemInstruction.Parts[0].Text
}

// Response is the generateContent response envelope
type Response struct {
	Candidates    []Candidate    `json:"candidates"`
	UsageMetadata *UsageMetadata `json:"usageMetadata,omitempty"`
	ModelVersion  string         `json:"modelVersion,omitempty"`
}

// Candidate is one generated answer
type Candidate struct {
	Content           *Content           `json:"content,omitempty"`
	FinishReason      string             `json:"finishReason,omitempty"`
	GroundingMetadata *GroundingMetadata `json:"groundingMetadata,omitempty"`
}

// GroundingMetadata lists the web sources backing a candidate
type GroundingMetadata struct {
	GroundingAttributions []GroundingAttribution `json:"groundingAttributions,omitempty"`
	GroundingChunks       []GroundingChunk       `json:"groundingChunks,omitempty"`
	WebSearchQueries      []string               `json:"webSearchQueries,omitempty"`
}

// GroundingAttribution is the attribution form of a grounding source
type GroundingAttribution struct {
	Web *WebSource `json:"web,omitempty"`
}

// GroundingChunk is the chunk form of a grounding source
type GroundingChunk struct {
	Web *WebSource `json:"web,omitempty"`
}

// WebSource identifies a web page
type WebSource struct {
	URI    string `json:"uri,omitempty"`
	Title  string `json:"title,omitempty"`
	Domain string `json:"domain,omitempty"`
}

// UsageMetadata reports token consumption
type UsageMetadata struct {
	PromptTokenCount     int `json:"promptTokenCount,omitempty"`
	CandidatesTokenCount int `json:"candidatesTokenCount,omitempty"`
	TotalTokenCount      int `json:"totalTokenCount,omitempty"`
}

// apiErrorEnvelope is the Google API error body
type apiErrorEnvelope struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}
