package gemini

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Result is the decoded outcome of one request. Either Text holds the first
// candidate's response and Meta its formatted diagnostics, or (OK false) Text
// holds the decode-failure message and Meta the captured stderr. Decoding
// never fails past this boundary.
type Result struct {
	Text string
	Meta string
	OK   bool
}

const noResponseText = "No response text found."

// na is the placeholder for any metadata field missing from the response.
const na = "N/A"

type response struct {
	Candidates   []candidate `json:"candidates"`
	ModelVersion string      `json:"modelVersion"`
	Usage        *usage      `json:"usageMetadata"`
}

type candidate struct {
	Content      content `json:"content"`
	FinishReason string  `json:"finishReason"`
}

type content struct {
	Parts []Part `json:"parts"`
}

type usage struct {
	PromptTokenCount     *int `json:"promptTokenCount"`
	CandidatesTokenCount *int `json:"candidatesTokenCount"`
	TotalTokenCount      *int `json:"totalTokenCount"`
}

// Decode turns the buffered process output into a Result. stdout lines are
// joined with newlines and parsed as a generateContent response; any parse
// failure or missing candidates degrades to a diagnostic Result that carries
// the raw payload and the captured stderr instead of an error.
func Decode(stdout, stderr []string) Result {
	raw := strings.Join(stdout, "\n")

	var resp response
	if err := json.Unmarshal([]byte(raw), &resp); err != nil || len(resp.Candidates) == 0 {
		return Result{
			Text: "Failed to decode response: " + raw,
			Meta: "Request failed.\nstderr: " + strings.Join(stderr, "\n"),
		}
	}

	first := resp.Candidates[0]
	text := noResponseText
	if len(first.Content.Parts) > 0 && first.Content.Parts[0].Text != "" {
		text = first.Content.Parts[0].Text
	}

	return Result{
		Text: text,
		Meta: formatMeta(first.FinishReason, resp.ModelVersion, resp.Usage),
		OK:   true,
	}
}

// formatMeta renders the fixed two-line diagnostic string. Every field
// degrades to "N/A" independently.
func formatMeta(finishReason, modelVersion string, u *usage) string {
	if finishReason == "" {
		finishReason = na
	}
	if modelVersion == "" {
		modelVersion = na
	}
	prompt, candidates, total := na, na, na
	if u != nil {
		prompt = count(u.PromptTokenCount)
		candidates = count(u.CandidatesTokenCount)
		total = count(u.TotalTokenCount)
	}
	return fmt.Sprintf("Finish reason: %s | Model: %s\nTokens: prompt %s, response %s, total %s",
		finishReason, modelVersion, prompt, candidates, total)
}

func count(n *int) string {
	if n == nil {
		return na
	}
	return fmt.Sprintf("%d", *n)
}
