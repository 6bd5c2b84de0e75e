package security

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/doeshing/cmdgen/assets"
	"github.com/doeshing/cmdgen/internal/domain"
	"github.com/doeshing/cmdgen/internal/pkg/filesystem"
)

// PolicyFile is the YAML schema root.
type PolicyFile struct {
	Whitelist           []string        `yaml:"whitelist"`
	ArgPattern          string          `yaml:"arg_pattern"`
	ForbiddenSeparators []string        `yaml:"forbidden_separators"`
	DangerousPatterns   []DangerPattern `yaml:"dangerous_patterns"`
}

// DangerPattern describes a regex-based denylist rule.
type DangerPattern struct {
	Name    string `yaml:"name"`
	Pattern string `yaml:"pattern"`
}

// LoadPolicy reads the policy at path. A missing file yields the embedded
// default; sections left empty in the file are taken from the default too.
func LoadPolicy(path string) (*domain.ValidationPolicy, error) {
	defaults, err := parsePolicyFile(assets.DefaultPolicyYAML)
	if err != nil {
		return nil, fmt.Errorf("embedded policy: %w", err)
	}

	file := defaults
	if path != "" {
		data, err := os.ReadFile(filesystem.ExpandHome(path))
		switch {
		case errors.Is(err, fs.ErrNotExist):
			// fall back to defaults
		case err != nil:
			return nil, fmt.Errorf("read policy %s: %w", path, err)
		default:
			file, err = parsePolicyFile(data)
			if err != nil {
				return nil, fmt.Errorf("policy %s: %w", path, err)
			}
			file = mergeDefaults(file, defaults)
		}
	}
	return compilePolicy(file)
}

// DefaultPolicy returns the embedded policy.
func DefaultPolicy() (*domain.ValidationPolicy, error) {
	return LoadPolicy("")
}

func parsePolicyFile(data []byte) (PolicyFile, error) {
	var file PolicyFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return PolicyFile{}, domain.ErrInvalidPolicy.Wrap(err)
	}
	return file, nil
}

func mergeDefaults(file, defaults PolicyFile) PolicyFile {
	if len(file.Whitelist) == 0 {
		file.Whitelist = defaults.Whitelist
	}
	if strings.TrimSpace(file.ArgPattern) == "" {
		file.ArgPattern = defaults.ArgPattern
	}
	if len(file.ForbiddenSeparators) == 0 {
		file.ForbiddenSeparators = defaults.ForbiddenSeparators
	}
	if len(file.DangerousPatterns) == 0 {
		file.DangerousPatterns = defaults.DangerousPatterns
	}
	return file
}

func compilePolicy(file PolicyFile) (*domain.ValidationPolicy, error) {
	argPattern, err := regexp.Compile(file.ArgPattern)
	if err != nil {
		return nil, domain.ErrInvalidPolicy.WithMessage("arg_pattern").Wrap(err)
	}

	dangerous := make([]domain.DangerousPattern, 0, len(file.DangerousPatterns))
	for i, rule := range file.DangerousPatterns {
		re, err := regexp.Compile(rule.Pattern)
		if err != nil {
			return nil, domain.ErrInvalidPolicy.WithMessagef("dangerous pattern %d", i).Wrap(err)
		}
		name := rule.Name
		if name == "" {
			name = rule.Pattern
		}
		dangerous = append(dangerous, domain.DangerousPattern{Name: name, Re: re})
	}

	return domain.NewValidationPolicy(file.Whitelist, argPattern, dangerous, file.ForbiddenSeparators)
}
