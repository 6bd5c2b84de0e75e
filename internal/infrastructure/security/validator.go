package security

import (
	"strings"

	"github.com/doeshing/cmdgen/internal/domain"
	"github.com/doeshing/cmdgen/internal/ports"
)

const sudoToken = "sudo"

// Validator implements the SafetyValidator port against a fixed policy.
type Validator struct {
	policy *domain.ValidationPolicy
}

// NewValidator wraps policy.
func NewValidator(policy *domain.ValidationPolicy) *Validator {
	return &Validator{policy: policy}
}

// Policy exposes the rules the validator enforces.
func (v *Validator) Policy() *domain.ValidationPolicy {
	return v.policy
}

// Validate runs the checks in order and stops at the first failure:
// emptiness, statement separators, token shape, whitelist, dangerous patterns.
func (v *Validator) Validate(command string) domain.Verdict {
	cmd := strings.TrimSpace(command)
	if cmd == "" {
		return domain.Reject(domain.RejectEmpty, "")
	}

	if strings.ContainsAny(cmd, "\r\n") {
		return domain.Reject(domain.RejectMultiStatement, "line break")
	}
	for _, sep := range v.policy.ForbiddenSeparators() {
		if strings.Contains(cmd, sep) {
			return domain.Reject(domain.RejectMultiStatement, sep)
		}
	}

	tokens := strings.Fields(cmd)
	pattern := v.policy.ArgPattern()
	for _, tok := range tokens {
		if !pattern.MatchString(tok) {
			return domain.Reject(domain.RejectMalformed, tok)
		}
	}

	name := tokens[0]
	if name == sudoToken {
		if len(tokens) == 1 {
			return domain.Reject(domain.RejectMalformed, "sudo without command")
		}
		name = tokens[1]
	}
	if !v.policy.Allows(name) {
		return domain.Reject(domain.RejectNotWhitelisted, name)
	}

	for _, d := range v.policy.DangerousPatterns() {
		if d.Re.MatchString(cmd) {
			return domain.Reject(domain.RejectDangerousPattern, d.Name)
		}
	}

	return domain.Accept()
}

var _ ports.SafetyValidator = (*Validator)(nil)
