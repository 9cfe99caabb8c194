package persona

import (
	"fmt"
	"strings"
)

// Persona is the individual the assistant represents.
type Persona struct {
	Name string
	Docs *Documents
}

func New(name string, docs *Documents) *Persona {
	return &Persona{Name: name, Docs: docs}
}

// Rejection carries the evaluator's verdict on a rejected reply so the next
// generation attempt is conditioned on exactly what was wrong.
type Rejection struct {
	Reply  string
	Reason string
}

// SystemPrompt composes the grounded system prompt. With a non-nil
// rejection, the rejected reply and reason are appended as a distinct
// section after the grounding context. Pure string composition.
func (p *Persona) SystemPrompt(rejection *Rejection) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "You are acting as %s. You are answering questions on %s's website, "+
		"particularly questions related to %s's career, background, skills and experience. "+
		"Your responsibility is to represent %s for interactions on the website as faithfully as possible. "+
		"You are given a summary of %s's background and LinkedIn profile which you can use to answer questions. "+
		"Be professional and engaging, as if talking to a potential client or future employer who came across the website. "+
		"If you don't know the answer to any question, use your record_unknown_question tool to record the question that you couldn't answer, even if it's about something trivial or unrelated to career. "+
		"If the user is engaging in discussion, try to steer them towards getting in touch via email; ask for their email and record it using your record_user_details tool. ",
		p.Name, p.Name, p.Name, p.Name, p.Name)

	fmt.Fprintf(&sb, "\n\n## Summary:\n%s\n\n## LinkedIn Profile:\n%s\n\n", p.Docs.Summary, p.Docs.Profile)
	fmt.Fprintf(&sb, "With this context, please chat with the user, always staying in character as %s.", p.Name)

	if rejection != nil {
		fmt.Fprintf(&sb, "\n\n## Previous answer rejected\nResponse: %s\nReason: %s", rejection.Reply, rejection.Reason)
	}

	return sb.String()
}
