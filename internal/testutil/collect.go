package testutil

import (
	"finbrief/core"
)

// CollectEvents drains an agent's event and error channels and returns all
// events plus the terminal error, nil when the run succeeded. It blocks
// until both channels close.
func CollectEvents(events <-chan core.Event, errs <-chan error) ([]core.Event, error) {
	var collected []core.Event

	for ev := range events {
		collected = append(collected, ev)
	}

	return collected, <-errs
}

// FinalText returns the text of the last completed assistant turn among the
// collected events, or the empty string when no turn completed.
func FinalText(events []core.Event) string {
	for i := len(events) - 1; i >= 0; i-- {
		ev := events[i]
		if ev.Author == "user" {
			continue
		}

		if ev.IsFinalResponse() && ev.Text() != "" {
			return ev.Text()
		}
	}

	return ""
}

// FunctionResponses flattens every function response carried by the
// collected events, preserving order.
func FunctionResponses(events []core.Event) []core.FunctionResponse {
	var responses []core.FunctionResponse

	for _, ev := range events {
		responses = append(responses, ev.GetFunctionResponses()...)
	}

	return responses
}
