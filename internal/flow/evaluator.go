package flow

import (
	"strings"
)

// Fallback messages returned when the flow cannot produce a next step
const (
	MsgNoFlow      = "No flow configured for this firm."
	MsgInvalidStep = "Invalid step in conversation flow."
	MsgNoNextStep  = "No valid next step found in the flow."
)

// Evaluate computes (next step id, outgoing message) for a user at
// currentStepID who sent input. It is a pure function: no I/O, no state.
//
// An empty next step id means no transition happened; the message then
// carries one of the fallback strings, or is empty for a terminal step
// (terminal steps stay silent). User input is trimmed of surrounding
// whitespace before matching; matching is case-sensitive.
func Evaluate(f *Flow, currentStepID, input string) (string, string) {
	if f.Len() == 0 {
		return "", MsgNoFlow
	}

	current, ok := f.Step(currentStepID)
	if !ok {
		return "", MsgInvalidStep
	}

	switch current.Next.Kind {
	case NextGoto:
		return current.Next.Target, f.messageFor(current.Next.Target)

	case NextBranch:
		trimmed := strings.TrimSpace(input)
		for _, b := range current.Next.Branches {
			if b.Matches(trimmed) {
				return b.Target, f.messageFor(b.Target)
			}
		}
		return "", MsgNoNextStep

	default: // terminal
		return "", ""
	}
}

// messageFor is lenient: an unresolvable target yields an empty message,
// not an error.
func (f *Flow) messageFor(stepID string) string {
	step, ok := f.Step(stepID)
	if !ok {
		return ""
	}
	return step.Message
}
