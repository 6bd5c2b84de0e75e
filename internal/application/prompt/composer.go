// Package prompt renders the instruction sent to the inference backend.
package prompt

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"github.com/doeshing/cmdgen/internal/domain"
	"github.com/doeshing/cmdgen/internal/ports"
)

// DefaultTemplate is the instruction layout used when none is configured.
const DefaultTemplate = `You are a command-line assistant for {{.System}}.
{{- if .Shell}} Commands run in {{.Shell}}.{{end}}
Reply with exactly one shell command that accomplishes the task below.
Do not add any explanation, comment, markdown or code fence.
Do not chain commands with ";", "&&", "||" or backticks.

Task: {{.Description}}
Command:`

// Composer implements ports.PromptComposer with a text/template.
type Composer struct {
	tmpl *template.Template
}

type templateData struct {
	Description string
	System      string
	Shell       string
}

// NewComposer parses text, falling back to DefaultTemplate when empty.
func NewComposer(text string) (*Composer, error) {
	if strings.TrimSpace(text) == "" {
		text = DefaultTemplate
	}
	tmpl, err := template.New("instruction").Option("missingkey=error").Parse(text)
	if err != nil {
		return nil, fmt.Errorf("parse prompt template: %w", err)
	}
	return &Composer{tmpl: tmpl}, nil
}

// MustDefault returns a Composer for DefaultTemplate.
func MustDefault() *Composer {
	c, err := NewComposer("")
	if err != nil {
		panic(err)
	}
	return c
}

// Compose is deterministic: identical inputs always produce identical text.
func (c *Composer) Compose(description string, osContext domain.OSContext) (string, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return "", domain.ErrEmptyDescription
	}
	var buf bytes.Buffer
	err := c.tmpl.Execute(&buf, templateData{
		Description: description,
		System:      osContext.String(),
		Shell:       osContext.Shell,
	})
	if err != nil {
		return "", fmt.Errorf("render prompt: %w", err)
	}
	return strings.TrimSpace(buf.String()), nil
}

var _ ports.PromptComposer = (*Composer)(nil)
