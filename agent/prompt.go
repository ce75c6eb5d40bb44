package agent

import (
	"fmt"
	"strings"
)

// buildSystemPrompt assembles the static system prompt from the agent's
// identity, role, team and instructions. The prompt is built once at
// construction; nothing in it varies per request.
func (a *Agent) buildSystemPrompt() string {
	var b strings.Builder

	fmt.Fprintf(&b, "You are %s.", a.name)

	if role := strings.TrimSpace(a.opts.Role); role != "" {
		fmt.Fprintf(&b, " Your role is to %s", role)

		if !strings.HasSuffix(role, ".") {
			b.WriteString(".")
		}
	}

	if len(a.delegates) > 0 {
		b.WriteString("\n\nYou coordinate a team of agents. Delegate work to them with the tools listed below and combine their answers into a single response:\n")

		for _, d := range a.delegates {
			member := d.Agent()

			fmt.Fprintf(&b, "- %s (tool: %s)", member.Name(), d.Name())

			if role := strings.TrimSpace(member.Role()); role != "" {
				fmt.Fprintf(&b, ": %s", role)
			}

			b.WriteString("\n")
		}

		b.WriteString("Consult the team members in the order listed above.")
	}

	if len(a.opts.Instructions) > 0 {
		b.WriteString("\n\nFollow these instructions:\n")

		for _, instruction := range a.opts.Instructions {
			fmt.Fprintf(&b, "- %s\n", instruction)
		}
	}

	if a.opts.Markdown {
		b.WriteString("\nFormat your entire final answer as Markdown.")
	}

	return strings.TrimSpace(b.String())
}
