package ai

import (
	"context"
	"regexp"
	"strings"

	"github.com/doeshing/cmdgen/internal/ports"
)

var taskLine = regexp.MustCompile(`(?m)^Task:\s*(.+)$`)

// OfflineBackend suggests commands from keywords without any network access.
// It exists so the tool stays usable when no model is reachable.
type OfflineBackend struct{}

func NewOfflineBackend() *OfflineBackend {
	return &OfflineBackend{}
}

func (p *OfflineBackend) Name() string {
	return "offline"
}

func (p *OfflineBackend) Invoke(_ context.Context, req ports.BackendRequest) (string, error) {
	task := req.Instruction
	if m := taskLine.FindStringSubmatch(req.Instruction); m != nil {
		task = m[1]
	}
	command := guessCommand(task)
	if command == "" {
		return "", malformed(p.Name(), "no keyword matched")
	}
	return command, nil
}

type keywordRule struct {
	all     []string
	command string
}

var keywordRules = []keywordRule{
	{all: []string{"list", "file"}, command: "ls -la"},
	{all: []string{"current", "directory"}, command: "pwd"},
	{all: []string{"where", "am"}, command: "pwd"},
	{all: []string{"disk", "usage"}, command: "du -sh ."},
	{all: []string{"disk", "space"}, command: "df -h"},
	{all: []string{"who", "am"}, command: "whoami"},
	{all: []string{"process"}, command: "ps aux"},
	{all: []string{"date"}, command: "date"},
	{all: []string{"time"}, command: "date"},
	{all: []string{"kernel"}, command: "uname -a"},
	{all: []string{"tree"}, command: "tree"},
}

func guessCommand(task string) string {
	task = strings.ToLower(task)
	for _, rule := range keywordRules {
		if containsAll(task, rule.all) {
			return rule.command
		}
	}
	return ""
}

func containsAll(s string, words []string) bool {
	for _, w := range words {
		if !strings.Contains(s, w) {
			return false
		}
	}
	return true
}

var _ ports.Backend = (*OfflineBackend)(nil)
