// Package config implements the nlm config command and its subcommands.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/groupon/nlm/internal/changelog"
	"github.com/groupon/nlm/internal/cli/shared"
	"github.com/groupon/nlm/internal/config"
	clierrors "github.com/groupon/nlm/internal/errors"
	"github.com/groupon/nlm/internal/manifest"
	"github.com/groupon/nlm/internal/output"
)

// ConfigCmd groups the configuration subcommands.
var ConfigCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect and initialize nlm configuration",
	Long: `Inspect and initialize nlm configuration.

Configuration is loaded with the following priority (highest to lowest):
  1. --set flags and command flags
  2. Environment variables (NLM_*)
  3. The "nlm" section of package.json
  4. Project config (.nlm.yml next to package.json)
  5. User config (~/.config/nlm/config.yml)
  6. Built-in defaults`,
	Example: `  # List every configuration key
  nlm config keys

  # Show the effective configuration of a package
  nlm config show --dir packages/api

  # Create a project config
  nlm config init --project`,
}

var configKeysCmd = &cobra.Command{
	Use:   "keys",
	Short: "List the configuration keys with their types and defaults",
	Args:  shared.NoArgs,
	RunE:  runConfigKeys,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	Long: `Show the configuration nlm would use for the package in --dir.
The GitHub token is never printed.`,
	Args: shared.NoArgs,
	RunE: runConfigShow,
}

func init() {
	configShowCmd.Flags().StringP("output", "o", "yaml", "Output format: yaml or json")
	ConfigCmd.AddCommand(configKeysCmd, configShowCmd, configInitCmd)
}

func runConfigKeys(cmd *cobra.Command, args []string) error {
	bold := color.New(color.Bold).SprintFunc()
	dim := color.New(color.Faint).SprintFunc()

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", bold("KEY"), bold("TYPE"), bold("DEFAULT"), bold("DESCRIPTION"))
	for _, key := range config.SortedKeys() {
		schema := config.KnownKeys[key]
		typ := schema.Type.String()
		if len(schema.AllowedValues) > 0 {
			typ = strings.Join(schema.AllowedValues, "|")
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", key, typ, formatDefault(schema.Default), dim(schema.Description))
	}
	fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", "emoji.set.<key>", "string", "-",
		dim("Emoji override, key is one of: "+strings.Join(changelog.EmojiKeys(), ", ")))
	return tw.Flush()
}

func formatDefault(v any) string {
	switch d := v.(type) {
	case []string:
		return "[" + strings.Join(d, ",") + "]"
	case string:
		if d == "" {
			return `""`
		}
		return d
	default:
		return fmt.Sprint(d)
	}
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	value, _ := cmd.Flags().GetString("output")
	format, err := output.ParseFormat(value)
	if err != nil || format == output.FormatText {
		return clierrors.InvalidFlagValue("output", value, string(output.FormatYAML), string(output.FormatJSON))
	}

	cfg, err := loadEffective(cmd)
	if err != nil {
		return err
	}

	view, err := publicView(cfg)
	if err != nil {
		return err
	}
	return output.Encode(cmd.OutOrStdout(), format, view)
}

// loadEffective loads the configuration of the --dir package. Without a
// package.json the manifest layer is skipped.
func loadEffective(cmd *cobra.Command) (*config.Configuration, error) {
	pkg, err := shared.LoadPackage(cmd, nil)
	if err == nil {
		return pkg.Config, nil
	}
	if !errors.Is(err, manifest.ErrNotFound) {
		return nil, err
	}

	dir, _ := cmd.Flags().GetString("dir")
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving package directory: %w", err)
	}
	sets, _ := cmd.Flags().GetStringArray("set")
	overrides, err := shared.ParseSetFlags(sets)
	if err != nil {
		return nil, err
	}
	return config.LoadWithOptions(config.LoadOptions{Dir: abs, Overrides: overrides})
}

// publicView converts cfg into a generic map keyed like the config files,
// leaving out secrets.
func publicView(cfg *config.Configuration) (map[string]any, error) {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("encoding configuration: %w", err)
	}
	view := map[string]any{}
	if err := yaml.Unmarshal(data, &view); err != nil {
		return nil, fmt.Errorf("decoding configuration: %w", err)
	}
	return view, nil
}
