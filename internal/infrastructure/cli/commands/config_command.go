package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	configapp "github.com/doeshing/cmdgen/internal/application/config"
	"github.com/doeshing/cmdgen/internal/domain"
	configinfra "github.com/doeshing/cmdgen/internal/infrastructure/config"
)

const (
	envKeyEditor  = "EDITOR"
	defaultEditor = "vi"

	msgNoDifferencesFromDefault = "No differences from default configuration."
)

// NewConfigCommand creates the config command with all subcommands
func NewConfigCommand(source ContainerSource) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect cmdgen configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return showConfiguration(cmd.Context(), cmd.OutOrStdout(), source)
		},
	}

	configCmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Show the effective configuration",
			RunE: func(cmd *cobra.Command, args []string) error {
				return showConfiguration(cmd.Context(), cmd.OutOrStdout(), source)
			},
		},
		newConfigGetCommand(source),
		&cobra.Command{
			Use:   "path",
			Short: "Print the configuration file path",
			RunE: func(cmd *cobra.Command, args []string) error {
				c, err := source(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), c.ConfigLoader.Path())
				return nil
			},
		},
		&cobra.Command{
			Use:   "validate",
			Short: "Validate the configuration file",
			RunE: func(cmd *cobra.Command, args []string) error {
				c, err := source(cmd.Context())
				if err != nil {
					return err
				}
				if err := configapp.Validate(c.Config); err != nil {
					return fmt.Errorf("configuration invalid: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), MsgConfigurationValid)
				return nil
			},
		},
		&cobra.Command{
			Use:   "diff",
			Short: "Show differences from the default configuration",
			RunE: func(cmd *cobra.Command, args []string) error {
				return showConfigurationDiff(cmd.Context(), cmd.OutOrStdout(), source)
			},
		},
		&cobra.Command{
			Use:   "edit",
			Short: "Edit configuration in $EDITOR",
			RunE: func(cmd *cobra.Command, args []string) error {
				c, err := source(cmd.Context())
				if err != nil {
					return err
				}
				return editConfigurationInEditor(c.ConfigLoader.Path())
			},
		},
	)

	return configCmd
}

// newConfigGetCommand creates the 'config get' subcommand
func newConfigGetCommand(source ContainerSource) *cobra.Command {
	var key string

	cmd := &cobra.Command{
		Use:   "get",
		Short: "Get a specific configuration value",
		RunE: func(cmd *cobra.Command, args []string) error {
			if key == "" {
				return errors.New(ErrKeyRequired)
			}
			c, err := source(cmd.Context())
			if err != nil {
				return err
			}
			return getConfigurationValue(cmd.OutOrStdout(), c.Config, key)
		},
	}

	cmd.Flags().StringVar(&key, "key", "", "Key path (e.g., backend.model)")
	return cmd
}

func showConfiguration(ctx context.Context, out io.Writer, source ContainerSource) error {
	c, err := source(ctx)
	if err != nil {
		return err
	}
	data, err := yaml.Marshal(c.Config)
	if err != nil {
		return err
	}
	fmt.Fprint(out, string(data))
	return nil
}

func getConfigurationValue(out io.Writer, cfg domain.Config, keyPath string) error {
	generic, err := convertConfigToGenericMap(cfg)
	if err != nil {
		return err
	}
	value, ok := traverseKey(generic, strings.Split(keyPath, "."))
	if !ok {
		return fmt.Errorf("key %s not found", keyPath)
	}
	data, err := yaml.Marshal(value)
	if err != nil {
		return err
	}
	fmt.Fprint(out, string(data))
	return nil
}

func showConfigurationDiff(ctx context.Context, out io.Writer, source ContainerSource) error {
	c, err := source(ctx)
	if err != nil {
		return err
	}
	defaultConfig, err := configinfra.DefaultConfig()
	if err != nil {
		return err
	}

	diff := cmp.Diff(defaultConfig, c.Config)
	if diff == "" {
		fmt.Fprintln(out, msgNoDifferencesFromDefault)
		return nil
	}
	fmt.Fprintln(out, diff)
	return nil
}

func editConfigurationInEditor(path string) error {
	editor := os.Getenv(envKeyEditor)
	if editor == "" {
		editor = defaultEditor
	}
	cmd := exec.Command(editor, path)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

// convertConfigToGenericMap keys the config by its YAML names.
func convertConfigToGenericMap(cfg domain.Config) (map[string]interface{}, error) {
	raw, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, err
	}
	generic := map[string]interface{}{}
	if err := yaml.Unmarshal(raw, &generic); err != nil {
		return nil, err
	}
	return generic, nil
}

func traverseKey(data interface{}, path []string) (interface{}, bool) {
	if len(path) == 0 {
		return data, true
	}
	node, ok := data.(map[string]interface{})
	if !ok {
		return nil, false
	}
	next, ok := node[path[0]]
	if !ok {
		return nil, false
	}
	return traverseKey(next, path[1:])
}
