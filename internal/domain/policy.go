package domain

import (
	"regexp"
	"sort"
	"strings"
)

// RejectReason names the check that refused a command.
type RejectReason string

const (
	RejectEmpty            RejectReason = "empty"
	RejectMultiStatement   RejectReason = "multi-statement"
	RejectMalformed        RejectReason = "malformed"
	RejectNotWhitelisted   RejectReason = "not-whitelisted"
	RejectDangerousPattern RejectReason = "dangerous-pattern"
)

// Verdict is the outcome of validating one command.
type Verdict struct {
	Accepted bool
	Reason   RejectReason
	Detail   string
}

// Accept returns an accepting verdict.
func Accept() Verdict {
	return Verdict{Accepted: true}
}

// Reject returns a refusing verdict.
func Reject(reason RejectReason, detail string) Verdict {
	return Verdict{Reason: reason, Detail: detail}
}

// Err converts a rejection into ErrValidationRejected; nil when accepted.
func (v Verdict) Err() error {
	if v.Accepted {
		return nil
	}
	if v.Detail == "" {
		return ErrValidationRejected.WithMessage(string(v.Reason))
	}
	return ErrValidationRejected.WithMessagef("%s: %s", v.Reason, v.Detail)
}

// DangerousPattern is a named denylist regex.
type DangerousPattern struct {
	Name string
	Re   *regexp.Regexp
}

// ValidationPolicy is the immutable rule set used by the safety validator.
type ValidationPolicy struct {
	whitelist  map[string]struct{}
	argPattern *regexp.Regexp
	dangerous  []DangerousPattern
	separators []string
}

// NewValidationPolicy builds a policy. Empty whitelist entries and separators are ignored.
func NewValidationPolicy(whitelist []string, argPattern *regexp.Regexp, dangerous []DangerousPattern, separators []string) (*ValidationPolicy, error) {
	if argPattern == nil {
		return nil, ErrInvalidPolicy.WithMessage("argument pattern is required")
	}
	p := &ValidationPolicy{
		whitelist:  make(map[string]struct{}, len(whitelist)),
		argPattern: argPattern,
	}
	for _, w := range whitelist {
		if w = strings.TrimSpace(w); w != "" {
			p.whitelist[w] = struct{}{}
		}
	}
	if len(p.whitelist) == 0 {
		return nil, ErrInvalidPolicy.WithMessage("whitelist is empty")
	}
	for _, d := range dangerous {
		if d.Re == nil {
			return nil, ErrInvalidPolicy.WithMessagef("dangerous pattern %q has no expression", d.Name)
		}
		p.dangerous = append(p.dangerous, d)
	}
	for _, s := range separators {
		if s != "" {
			p.separators = append(p.separators, s)
		}
	}
	return p, nil
}

// Allows reports whether name is whitelisted.
func (p *ValidationPolicy) Allows(name string) bool {
	_, ok := p.whitelist[name]
	return ok
}

// Whitelist returns the sorted whitelist.
func (p *ValidationPolicy) Whitelist() []string {
	out := make([]string, 0, len(p.whitelist))
	for w := range p.whitelist {
		out = append(out, w)
	}
	sort.Strings(out)
	return out
}

// ArgPattern returns the per-token structural pattern.
func (p *ValidationPolicy) ArgPattern() *regexp.Regexp {
	return p.argPattern
}

// DangerousPatterns returns the denylist in evaluation order.
func (p *ValidationPolicy) DangerousPatterns() []DangerousPattern {
	out := make([]DangerousPattern, len(p.dangerous))
	copy(out, p.dangerous)
	return out
}

// ForbiddenSeparators returns the statement separators that are never allowed.
func (p *ValidationPolicy) ForbiddenSeparators() []string {
	out := make([]string, len(p.separators))
	copy(out, p.separators)
	return out
}
