// Package sanitize strips prompt-injection indicators from untrusted text
// before it is persisted into drafts or forwarded to an LLM.
package sanitize

import (
	"regexp"
	"strings"
)

// injectionPatterns match lines that try to steer the model: overriding
// prior instructions, referencing the system or developer prompt, or
// asking for exfiltration. Matching is case-insensitive per line.
var injectionPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)ignore (all|any|previous) instructions`),
	regexp.MustCompile(`(?i)disregard (all|any|previous|prior) instructions`),
	regexp.MustCompile(`(?i)system prompt`),
	regexp.MustCompile(`(?i)developer (message|prompt)`),
	regexp.MustCompile(`(?i)exfiltrat`),
}

// truncationMarker is appended on its own line when input is cut.
const truncationMarker = "…[truncated]"

// Text trims, truncates to maxChars characters, and removes any line that
// matches an injection pattern. It never fails; empty input yields "".
func Text(s string, maxChars int) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if maxChars > 0 {
		runes := []rune(s)
		if len(runes) > maxChars {
			s = string(runes[:maxChars]) + "\n" + truncationMarker
		}
	}
	var out []string
	for _, line := range strings.Split(s, "\n") {
		if matchesInjection(line) {
			continue
		}
		out = append(out, line)
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}

func matchesInjection(line string) bool {
	for _, p := range injectionPatterns {
		if p.MatchString(line) {
			return true
		}
	}
	return false
}
