package prompts_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"tube-brief/prompts"
)

func TestIsValidCategory(t *testing.T) {
	assert.True(t, prompts.IsValidCategory("gaming"))
	assert.True(t, prompts.IsValidCategory("programming_tutorial"))
	assert.False(t, prompts.IsValidCategory("general"))
	assert.False(t, prompts.IsValidCategory("cooking"))
	assert.False(t, prompts.IsValidCategory(""))
}

func TestStructuralAnalysisPrompt(t *testing.T) {
	p := prompts.StructuralAnalysis("[0:00] hello world")
	assert.Contains(t, p, "[0:00] hello world")
	assert.Contains(t, p, "valid JSON")
	assert.Contains(t, p, "programming_tutorial")
	assert.Contains(t, p, "Output ONLY the final result")
}

func TestDeepSummaryCategoryInstructions(t *testing.T) {
	programming := prompts.DeepSummary("transcript", "analysis", "programming_tutorial")
	assert.Contains(t, programming, "### Code Examples")
	assert.Contains(t, programming, "VIDEO CATEGORY: programming_tutorial")

	review := prompts.DeepSummary("transcript", "analysis", "product_review")
	assert.Contains(t, review, "### Pros & Cons")

	general := prompts.DeepSummary("transcript", "analysis", "general")
	assert.Contains(t, general, "### Additional Insights")

	// unknown categories fall back to the general instructions
	unknown := prompts.DeepSummary("transcript", "analysis", "not_a_category")
	assert.Contains(t, unknown, "### Additional Insights")
}

func TestDeepSummaryTimestampRules(t *testing.T) {
	p := prompts.DeepSummary("t", "a", "general")
	assert.Contains(t, p, "[M:SS](yt:SECONDS)")
	assert.Contains(t, p, "[2:15](yt:135)")
}

func TestCategoryDetectionPrompt(t *testing.T) {
	p := prompts.CategoryDetection("sample text")
	assert.Contains(t, p, "sample text")
	assert.Contains(t, p, "ONLY the category name")
	assert.Contains(t, p, "gaming")
}

func TestTranslationPromptLanguage(t *testing.T) {
	tr := prompts.Translation("# Summary", "tr")
	assert.Contains(t, tr, "Turkish (Türkçe)")
	assert.Contains(t, tr, "# Summary")
	assert.Contains(t, tr, "PRESERVE all timestamps exactly")

	de := prompts.Translation("# Summary", "de")
	assert.Contains(t, de, "into de.")
	assert.False(t, strings.Contains(de, "Turkish"))
}

func TestSuggestedQuestionsPrompt(t *testing.T) {
	p := prompts.SuggestedQuestions("summary sample")
	assert.Contains(t, p, "summary sample")
	assert.Contains(t, p, "JSON array of strings")
}
