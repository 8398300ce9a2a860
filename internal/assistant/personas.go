package assistant

import (
	"fmt"

	"github.com/jonathan/resume-builder/internal/types"
)

// DefaultPersona is used when a request names no persona.
const DefaultPersona = "career_coach"

var personas = []types.Persona{
	{
		ID:          "career_coach",
		Name:        "Career Coach",
		Description: "Plans your search and helps you position your experience.",
		Greeting:    "Hi! What role are you aiming for next?",
	},
	{
		ID:          "recruiter",
		Name:        "Recruiter",
		Description: "Gives candid screening feedback on how your resume reads.",
		Greeting:    "Send me your resume and the role, and I'll tell you how it lands in a quick screen.",
	},
	{
		ID:          "interviewer",
		Name:        "Interviewer",
		Description: "Runs a mock interview one question at a time.",
		Greeting:    "Let's practise. Tell me which role you're interviewing for.",
	},
	{
		ID:          "resume_writer",
		Name:        "Resume Writer",
		Description: "Rewrites bullets and sections in LaTeX.",
		Greeting:    "Paste a section and I'll suggest a sharper version.",
	},
}

// UnknownPersonaError is returned for a persona ID not in the table.
type UnknownPersonaError struct {
	Persona string
}

func (e *UnknownPersonaError) Error() string {
	return fmt.Sprintf("unknown persona %q", e.Persona)
}

// Personas lists the available personas in display order.
func Personas() []types.Persona {
	return append([]types.Persona(nil), personas...)
}

// LookupPersona finds a persona by ID. An empty ID selects DefaultPersona.
func LookupPersona(id string) (types.Persona, error) {
	if id == "" {
		id = DefaultPersona
	}
	for _, p := range personas {
		if p.ID == id {
			return p, nil
		}
	}
	return types.Persona{}, &UnknownPersonaError{Persona: id}
}
