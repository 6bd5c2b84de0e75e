// Package extract pulls a single command line out of free-form model output.
package extract

import (
	"regexp"
	"strings"
)

var (
	commandLine = regexp.MustCompile(`^(sudo\s+)?\S+(\s+\S+)*$`)
	// plainLine has only word, path and flag characters, which prose rarely does.
	plainLine   = regexp.MustCompile(`^(sudo\s+)?[\w./:-]+(\s+[\w./:-]+)*$`)
	labelPrefix = regexp.MustCompile(`(?i)^command\s*:\s*`)
)

// shellNames are language tags models emit on their own line around a command.
var shellNames = map[string]struct{}{
	"bash":  {},
	"sh":    {},
	"zsh":   {},
	"shell": {},
}

// Extract returns the last line of raw that looks like a single command.
// Code fences, bare shell names, a leading "$ " prompt and a "Command:" label
// are ignored. A line of plain tokens beats a later line of prose; when there
// is none, the last non-empty line is returned so the validator can say why
// it is unsafe. The boolean is false when nothing usable remains.
func Extract(raw string) (string, bool) {
	lines := candidateLines(raw)
	if line, ok := lastMatch(lines, plainLine); ok {
		return line, true
	}
	return lastMatch(lines, commandLine)
}

func lastMatch(lines []string, re *regexp.Regexp) (string, bool) {
	for i := len(lines) - 1; i >= 0; i-- {
		line := clean(lines[i])
		if line == "" {
			continue
		}
		if re.MatchString(line) {
			return line, true
		}
	}
	return "", false
}

func candidateLines(raw string) []string {
	var out []string
	for _, line := range strings.Split(strings.ReplaceAll(raw, "\r\n", "\n"), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "```") {
			continue
		}
		if _, ok := shellNames[strings.ToLower(line)]; ok {
			continue
		}
		out = append(out, line)
	}
	return out
}

func clean(line string) string {
	line = labelPrefix.ReplaceAllString(line, "")
	line = strings.TrimPrefix(line, "$ ")
	line = strings.Trim(line, "`")
	return strings.TrimSpace(line)
}
