package ai_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"tube-brief/ai"
)

func TestSanitizeRemovesThinkBlocks(t *testing.T) {
	in := "<think>let me plan this out\nstep by step</think># Title\n\nContent here"
	out := ai.SanitizeModelOutput(in)
	assert.Equal(t, "# Title\n\nContent here", out)
}

func TestSanitizeRemovesStrayClosingTag(t *testing.T) {
	// truncated thinking can leave an unmatched closing tag
	in := "some leaked reasoning</think>\n# Title\n\nContent"
	out := ai.SanitizeModelOutput(in)
	assert.NotContains(t, out, "</think>")
	assert.Contains(t, out, "# Title")
}

func TestSanitizeStripsReasoningPreamble(t *testing.T) {
	in := "Let me analyze the transcript first.\n1. Analyze the structure\n2. Draft the summary\n\n# 🎬 Video Title\n\n- point"
	out := ai.SanitizeModelOutput(in)
	assert.Equal(t, "# 🎬 Video Title\n\n- point", out)
}

func TestSanitizeKeepsHarmlessPreamble(t *testing.T) {
	in := "A short introduction paragraph.\n\n# Title\n\nContent"
	out := ai.SanitizeModelOutput(in)
	assert.Equal(t, in, out)
}

func TestSanitizeUnwrapsMarkdownFence(t *testing.T) {
	in := "```markdown\n# Title\n\nContent\n```"
	out := ai.SanitizeModelOutput(in)
	assert.Equal(t, "# Title\n\nContent", out)
}

func TestSanitizeUnwrapsBareFence(t *testing.T) {
	in := "```\n# Title\n```"
	out := ai.SanitizeModelOutput(in)
	assert.Equal(t, "# Title", out)
}

func TestSanitizeTrimsWhitespace(t *testing.T) {
	out := ai.SanitizeModelOutput("\n\n  # Title  \n\n")
	assert.Equal(t, "# Title", out)
}

func TestSanitizeLabelValuePreamble(t *testing.T) {
	in := "Input: video transcript\nGoal: produce a summary\n\n## Summary\nbody"
	out := ai.SanitizeModelOutput(in)
	assert.Equal(t, "## Summary\nbody", out)
}
