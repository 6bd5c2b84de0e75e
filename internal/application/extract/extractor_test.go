package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtract(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
		ok   bool
	}{
		{name: "plain", raw: "ls -la", want: "ls -la", ok: true},
		{name: "surrounding whitespace", raw: "\n  ls -la  \n\n", want: "ls -la", ok: true},
		{name: "fenced block", raw: "```bash\nfind . -name notes.txt\n```", want: "find . -name notes.txt", ok: true},
		{name: "language tag line", raw: "bash\nmkdir test_dir", want: "mkdir test_dir", ok: true},
		{name: "last line wins", raw: "Here is the command:\nls -la", want: "ls -la", ok: true},
		{name: "prompt marker", raw: "$ du -sh .", want: "du -sh .", ok: true},
		{name: "command label", raw: "Command: pwd", want: "pwd", ok: true},
		{name: "inline backticks", raw: "`whoami`", want: "whoami", ok: true},
		{name: "sudo", raw: "sudo ls /root", want: "sudo ls /root", ok: true},
		{name: "crlf", raw: "pwd\r\n", want: "pwd", ok: true},
		{name: "trailing explanation", raw: "ls -la\nThis lists all files, including hidden ones.", want: "ls -la", ok: true},
		{name: "explanation in parentheses", raw: "df -h\n(shows free space per mount)", want: "df -h", ok: true},
		{name: "separator kept for the validator", raw: "ls; cat /etc/passwd", want: "ls; cat /etc/passwd", ok: true},
		{name: "plain line preferred over later pipe", raw: "ps aux\nor: ps aux | grep x", want: "ps aux", ok: true},
		{name: "empty", raw: "", ok: false},
		{name: "only fences", raw: "```\n```", ok: false},
		{name: "only shell names", raw: "bash\nsh\nzsh", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Extract(tt.raw)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtractDoesNotValidate(t *testing.T) {
	got, ok := Extract("rm -rf /")
	assert.True(t, ok)
	assert.Equal(t, "rm -rf /", got)
}
