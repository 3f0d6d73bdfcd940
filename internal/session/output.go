package session

import (
	"fmt"
	"strings"

	"github.com/felixgeelhaar/academy/internal/domain"
)

// FormatRunOutput renders an execution result as terminal-style output text.
func FormatRunOutput(result *domain.ExecutionResult) string {
	var b strings.Builder

	if result.Success {
		b.WriteString("Execution completed successfully!\n\n")

		if result.Stdout != "" {
			fmt.Fprintf(&b, "Output:\n%s\n\n", result.Stdout)
		}
		// Time and memory are only meaningful when the program ran
		if result.Ran() {
			if result.Time != "" {
				fmt.Fprintf(&b, "Time: %ss\n", result.Time)
			}
			if result.Memory > 0 {
				fmt.Fprintf(&b, "Memory: %d KB\n", result.Memory)
			}
		}

		b.WriteString("\n")
		b.WriteString(result.Message)
		return b.String()
	}

	b.WriteString("Execution failed\n\n")

	if result.CompileOutput != "" {
		fmt.Fprintf(&b, "Compilation Error:\n%s\n\n", result.CompileOutput)
	}
	if result.Stderr != "" {
		fmt.Fprintf(&b, "Error:\n%s\n\n", result.Stderr)
	}

	if result.Message != "" {
		b.WriteString(result.Message)
	} else {
		b.WriteString("Unknown error")
	}
	return b.String()
}
