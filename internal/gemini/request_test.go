package gemini

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestPayloadRoundTrip(t *testing.T) {
	inputs := []string{
		"what is a monad",
		"",
		"multi\nline\nprompt with \"quotes\" and unicode ✓",
	}
	for _, input := range inputs {
		body, err := NewPayload(input).Marshal()
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		var decoded Payload
		if err := json.Unmarshal(body, &decoded); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if len(decoded.Contents) != 1 || len(decoded.Contents[0].Parts) != 1 {
			t.Fatalf("payload for %q must carry exactly one part", input)
		}
		if got := decoded.Contents[0].Parts[0].Text; got != input {
			t.Errorf("round-trip text = %q, want %q", got, input)
		}
	}
}

func TestEndpoint(t *testing.T) {
	got := Endpoint("generativelanguage.googleapis.com", "gemini-2.0-flash", "abc123")
	want := "https://generativelanguage.googleapis.com/v1beta/models/gemini-2.0-flash:generateContent?key=abc123"
	if got != want {
		t.Errorf("endpoint = %q, want %q", got, want)
	}
}

func TestEndpointEscapesKey(t *testing.T) {
	got := Endpoint("example.com", "m", "a&b=c")
	if strings.Contains(got, "a&b=c") {
		t.Errorf("endpoint %q must query-escape the key", got)
	}
}

func TestCurlArgs(t *testing.T) {
	args := CurlArgs("https://example.com/x", 30)
	if args[len(args)-1] != "https://example.com/x" {
		t.Errorf("last arg = %q, want the endpoint", args[len(args)-1])
	}
	joined := strings.Join(args, " ")
	for _, want := range []string{"-X POST", "Content-Type: application/json", "-d @-", "--max-time 30"} {
		if !strings.Contains(joined, want) {
			t.Errorf("args %q missing %q", joined, want)
		}
	}
	if joined := strings.Join(CurlArgs("u", 0), " "); strings.Contains(joined, "--max-time") {
		t.Errorf("args %q: zero timeout must omit --max-time", joined)
	}
}
