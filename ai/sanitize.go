package ai

import (
	"regexp"
	"strings"
)

// Best-effort cleanup of reasoning leakage in raw model output. Some models
// (and many self-hosted ones) emit <think> blocks, step-by-step planning
// preambles, or wrap the whole answer in a code fence. This is a heuristic
// text transform, not a parser.

var (
	thinkBlockRe   = regexp.MustCompile(`(?is)<think>.*?</think>`)
	strayThinkRe   = regexp.MustCompile(`(?i)</think>`)
	firstHeadingRe = regexp.MustCompile(`#{1,6}\s`)
	leadingFenceRe = regexp.MustCompile("(?i)^```(?:markdown)?[ \t]*\n")
	trailingFence  = regexp.MustCompile("(?i)\n```[ \t]*$")

	// Lines that look like reasoning rather than content: numbered action
	// verbs, bulleted analysis steps, first-person planning, and
	// label:value scaffolding.
	reasoningMarkers = []*regexp.Regexp{
		regexp.MustCompile(`(?i)^\d+\.\s+(analyze|review|draft|construct|refin|self-correct|format|check|let'?s|generat)`),
		regexp.MustCompile(`(?i)^\s*-\s+(analyze|review|draft|construct|refin|self-correct|format|check)`),
		regexp.MustCompile(`(?i)^\s*(analyze|review|draft|construct|refin|self-correct|format|check|let me|i need to|i will|first,|next,|finally,|now,)`),
		regexp.MustCompile(`(?i)^\s*(input|output|role|goal|action|constraint|result)\s*:`),
	}
)

// SanitizeModelOutput strips thinking/reasoning tokens from model output:
// paired or unpaired <think> blocks, a reasoning-like preamble before the
// first markdown heading, and a whole-output code fence wrapper.
// Preambles without reasoning markers are preserved unchanged.
func SanitizeModelOutput(text string) string {
	result := thinkBlockRe.ReplaceAllString(text, "")
	// truncated thinking may leave a closing tag with no opener
	result = strayThinkRe.ReplaceAllString(result, "")

	if loc := firstHeadingRe.FindStringIndex(result); loc != nil && loc[0] > 0 {
		preamble := result[:loc[0]]
		if hasReasoningPreamble(preamble) {
			result = result[loc[0]:]
		}
	}

	result = leadingFenceRe.ReplaceAllString(result, "")
	result = trailingFence.ReplaceAllString(result, "")

	return strings.TrimSpace(result)
}

func hasReasoningPreamble(preamble string) bool {
	for _, line := range strings.Split(strings.TrimSpace(preamble), "\n") {
		line = strings.TrimSpace(line)
		for _, marker := range reasoningMarkers {
			if marker.MatchString(line) {
				return true
			}
		}
	}
	return false
}
