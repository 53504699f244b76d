// Package dialog drives one requester at a time through the ordered
// data-collection steps of a booking and hands the completed draft to
// pricing and conflict detection.
package dialog

import "fmt"

// Step is one stage of the booking dialog. Steps advance in strict order;
// invalid input re-prompts the same step.
type Step int

const (
	StepName Step = iota
	StepHandle
	StepDate
	StepTime
	StepLocation
	StepCategory
	StepQuantity
	StepDone
)

func (s Step) String() string {
	switch s {
	case StepName:
		return "name"
	case StepHandle:
		return "handle"
	case StepDate:
		return "date"
	case StepTime:
		return "time"
	case StepLocation:
		return "location"
	case StepCategory:
		return "category"
	case StepQuantity:
		return "quantity"
	case StepDone:
		return "done"
	}
	return fmt.Sprintf("step(%d)", int(s))
}

// Input is one inbound session event: free text, or a selection token for
// the category step.
type Input struct {
	Text      string
	Selection string
}

// Reply tells the transport what to send back.
type Reply struct {
	// Prompt is the next question, or the re-prompt after invalid input.
	Prompt string

	// AskCategory asks the transport to render the category choices.
	AskCategory bool

	// Invalid marks a re-prompt; the step did not advance.
	Invalid bool

	// Completed is set once the dialog reaches its final step.
	Completed *Completion
}

// ValidationError reports malformed input for a step. The dialog stays on
// the same step and the requester is re-prompted.
type ValidationError struct {
	Step   Step
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("dialog: invalid %s: %s", e.Step, e.Reason)
}
