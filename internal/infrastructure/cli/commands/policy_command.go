package commands

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/doeshing/cmdgen/assets"
	"github.com/doeshing/cmdgen/internal/domain"
	"github.com/doeshing/cmdgen/internal/pkg/filesystem"
)

// NewPolicyCommand creates the policy command with show and init subcommands
func NewPolicyCommand(source ContainerSource) *cobra.Command {
	policyCmd := &cobra.Command{
		Use:   "policy",
		Short: "Inspect the command safety policy",
	}

	policyCmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Show the active whitelist and dangerous patterns",
			RunE: func(cmd *cobra.Command, args []string) error {
				c, err := source(cmd.Context())
				if err != nil {
					return err
				}
				showPolicy(cmd.OutOrStdout(), c.Config.Security.PolicyFile, c.Validator.Policy())
				return nil
			},
		},
		newPolicyInitCommand(source),
	)

	return policyCmd
}

// newPolicyInitCommand writes the built-in policy out so it can be edited.
func newPolicyInitCommand(source ContainerSource) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write the built-in policy to the configured policy file",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := source(cmd.Context())
			if err != nil {
				return err
			}
			path := filesystem.ExpandHome(c.Config.Security.PolicyFile)
			if path == "" {
				return errors.New("security.policy_file is not set")
			}
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s exists; use --force to overwrite", path)
			} else if err != nil && !errors.Is(err, fs.ErrNotExist) {
				return err
			}
			if err := os.MkdirAll(filepath.Dir(path), domain.DirectoryPermissions); err != nil {
				return err
			}
			if err := os.WriteFile(path, assets.DefaultPolicyYAML, domain.SecureFilePermissions); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Policy written to %s\n", path)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing policy file")
	return cmd
}

func showPolicy(out io.Writer, source string, policy *domain.ValidationPolicy) {
	path := filesystem.ExpandHome(source)
	if _, err := os.Stat(path); source == "" || err != nil {
		fmt.Fprintln(out, "Source: built-in policy")
	} else {
		fmt.Fprintf(out, "Source: %s\n", path)
	}
	fmt.Fprintf(out, "Whitelist: %s\n", strings.Join(policy.Whitelist(), ", "))
	fmt.Fprintf(out, "Argument pattern: %s\n", policy.ArgPattern())
	fmt.Fprintf(out, "Forbidden separators: %s\n", strings.Join(policy.ForbiddenSeparators(), " "))
	fmt.Fprintln(out, "Dangerous patterns:")
	for _, p := range policy.DangerousPatterns() {
		fmt.Fprintf(out, "  %-28s %s\n", p.Name, p.Re)
	}
}
