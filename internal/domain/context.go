package domain

import "strings"

// OSContext describes the platform a generated command targets.
type OSContext struct {
	Platform     string
	Distribution string
	Shell        string
}

// String renders the context the way it is embedded into prompts and records.
func (c OSContext) String() string {
	parts := make([]string, 0, 2)
	if c.Platform != "" {
		parts = append(parts, c.Platform)
	}
	if c.Distribution != "" {
		parts = append(parts, "("+c.Distribution+")")
	}
	if len(parts) == 0 {
		return "unknown"
	}
	return strings.Join(parts, " ")
}
