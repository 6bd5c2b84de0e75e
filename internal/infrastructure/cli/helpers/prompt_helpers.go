package helpers

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// PromptForChoice asks until the answer is one of options. An empty answer
// selects defaultValue; end of input also returns it.
func PromptForChoice(out io.Writer, reader *bufio.Reader, promptText string, options []string, defaultValue string) string {
	for {
		fmt.Fprintf(out, "%s (%s) [%s]: ", promptText, strings.Join(options, "/"), defaultValue)
		line, err := reader.ReadString('\n')
		line = strings.ToLower(strings.TrimSpace(line))
		if line == "" {
			return defaultValue
		}
		for _, option := range options {
			if line == option {
				return option
			}
		}
		if err != nil {
			return defaultValue
		}
		fmt.Fprintf(out, "Please choose one of: %s\n", strings.Join(options, ", "))
	}
}

// PromptForYesNo prompts the user for a yes/no question
// Returns true for yes, false for no, or the default value if no input
func PromptForYesNo(out io.Writer, reader *bufio.Reader, promptText string, defaultValue bool) bool {
	label := "y/N"
	if defaultValue {
		label = "Y/n"
	}
	fmt.Fprintf(out, "%s [%s]: ", promptText, label)

	line, _ := reader.ReadString('\n')
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "":
		return defaultValue
	case "y", "yes":
		return true
	default:
		return false
	}
}

// PromptForString prompts the user for a string input with an optional default value
func PromptForString(out io.Writer, reader *bufio.Reader, promptText string, defaultValue string) string {
	if defaultValue != "" {
		fmt.Fprintf(out, "%s [%s]: ", promptText, defaultValue)
	} else {
		fmt.Fprintf(out, "%s: ", promptText)
	}
	line, _ := reader.ReadString('\n')
	line = strings.TrimSpace(line)

	if line == "" {
		return defaultValue
	}
	return line
}
