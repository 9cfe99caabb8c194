package persona

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPersona() *Persona {
	return New("Ada Lovelace", &Documents{
		Summary: "Pioneer of computing.",
		Profile: "Analyst, metaphysician, and founder of scientific computing.",
	})
}

func TestSystemPrompt(t *testing.T) {
	prompt := testPersona().SystemPrompt(nil)

	assert.Contains(t, prompt, "You are acting as Ada Lovelace.")
	assert.Contains(t, prompt, "## Summary:\nPioneer of computing.")
	assert.Contains(t, prompt, "## LinkedIn Profile:\nAnalyst, metaphysician")
	assert.Contains(t, prompt, "record_unknown_question")
	assert.Contains(t, prompt, "record_user_details")
	assert.Contains(t, prompt, "always staying in character as Ada Lovelace.")
	assert.NotContains(t, prompt, "## Previous answer rejected")
}

func TestSystemPromptDeterministic(t *testing.T) {
	p := testPersona()
	assert.Equal(t, p.SystemPrompt(nil), p.SystemPrompt(nil))
}

func TestSystemPromptWithRejection(t *testing.T) {
	rejection := &Rejection{
		Reply:  "I think pineapple belongs on pizza.",
		Reason: "Reply is off-topic and breaks professional character.",
	}
	prompt := testPersona().SystemPrompt(rejection)

	// Feedback must round-trip verbatim into the rebuilt prompt.
	assert.Contains(t, prompt, "## Previous answer rejected")
	assert.Contains(t, prompt, "Response: I think pineapple belongs on pizza.")
	assert.Contains(t, prompt, "Reason: Reply is off-topic and breaks professional character.")

	// And after the grounding context, not before.
	require.True(t, strings.Index(prompt, "## Summary:") < strings.Index(prompt, "## Previous answer rejected"))
}
