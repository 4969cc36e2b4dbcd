package gemini

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
)

// Payload is the generateContent request body. Each request carries exactly
// one text part; the value is built fresh per invocation and never mutated.
type Payload struct {
	Contents []Content `json:"contents"`
}

// Content is one conversational turn.
type Content struct {
	Parts []Part `json:"parts"`
}

// Part is a single text fragment.
type Part struct {
	Text string `json:"text"`
}

// NewPayload wraps the prompt text in the single-part request shape.
func NewPayload(text string) Payload {
	return Payload{Contents: []Content{{Parts: []Part{{Text: text}}}}}
}

// Marshal returns the JSON body for the request.
func (p Payload) Marshal() ([]byte, error) {
	body, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}
	return body, nil
}

// Endpoint builds the generateContent URL for the given host, model and key.
func Endpoint(host, model, apiKey string) string {
	u := url.URL{
		Scheme:   "https",
		Host:     host,
		Path:     "/v1beta/models/" + model + ":generateContent",
		RawQuery: "key=" + url.QueryEscape(apiKey),
	}
	return u.String()
}

// CurlArgs returns the argv (after the binary itself) for a curl invocation
// that POSTs the payload read from stdin. -sS keeps progress noise off the
// streams while still reporting transport errors on stderr, where the
// decoder's failure path picks them up.
func CurlArgs(endpoint string, timeoutSecs int) []string {
	args := []string{
		"-sS",
		"-X", "POST",
		"-H", "Content-Type: application/json",
		"-d", "@-",
	}
	if timeoutSecs > 0 {
		args = append(args, "--max-time", strconv.Itoa(timeoutSecs))
	}
	return append(args, endpoint)
}
