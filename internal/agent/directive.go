package agent

import (
	"encoding/json"
	"regexp"
	"strings"
)

// Directive is a tool invocation requested by the model, parsed from
// its generated text.
type Directive struct {
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments"`
}

// thinkPattern matches one reasoning block plus its trailing whitespace.
// Non-greedy, single pass: nested or stray tags are left as-is.
var thinkPattern = regexp.MustCompile(`(?s)<think>.*?</think>\s*`)

// stripThink removes reasoning blocks from generated text.
func stripThink(text string) string {
	return strings.TrimSpace(thinkPattern.ReplaceAllString(text, ""))
}

// parseDirective extracts a tool directive from generated text. The text
// must be a JSON object whose "tool_call" member carries both a name and
// arguments; anything else is not a directive.
func parseDirective(text string) (Directive, bool) {
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal([]byte(text), &envelope); err != nil {
		return Directive{}, false
	}
	raw, ok := envelope["tool_call"]
	if !ok {
		return Directive{}, false
	}

	var d Directive
	if err := json.Unmarshal(raw, &d); err != nil {
		return Directive{}, false
	}
	if d.Name == "" || d.Arguments == nil {
		return Directive{}, false
	}
	return d, true
}

// wantsTool reports whether generated text should route to tool
// execution. Valid JSON is judged by the presence of a tool_call member;
// invalid JSON falls back to a raw substring check, which catches
// directives the model wrapped in prose but can also false-positive on
// text that merely mentions tool_call. The turn's round bound keeps a
// false positive from looping.
func wantsTool(text string) bool {
	if json.Valid([]byte(text)) {
		var envelope map[string]json.RawMessage
		if err := json.Unmarshal([]byte(text), &envelope); err != nil {
			return false
		}
		_, ok := envelope["tool_call"]
		return ok
	}
	return strings.Contains(text, "tool_call")
}
