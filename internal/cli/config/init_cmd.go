package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/groupon/nlm/internal/cli/shared"
	"github.com/groupon/nlm/internal/config"
)

var (
	cGreen  = color.New(color.FgGreen).SprintFunc()
	cYellow = color.New(color.FgYellow).SprintFunc()
	cDim    = color.New(color.Faint).SprintFunc()
	cBold   = color.New(color.Bold).SprintFunc()
)

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a commented default configuration file",
	Long: `Write a commented configuration file with every default value.

By default the user config (~/.config/nlm/config.yml) is created. With
--project the file is written next to the package.json in --dir instead.
An existing file is left unchanged unless --force is given.`,
	Example: `  # Create the user config
  nlm config init

  # Create .nlm.yml for the current package, replacing an existing one
  nlm config init --project --force`,
	Args: shared.NoArgs,
	RunE: runConfigInit,
}

func init() {
	configInitCmd.Flags().BoolP("project", "p", false, "Create the project config (.nlm.yml)")
	configInitCmd.Flags().BoolP("force", "f", false, "Overwrite an existing config with defaults")
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	project, _ := cmd.Flags().GetBool("project")
	force, _ := cmd.Flags().GetBool("force")
	dir, _ := cmd.Flags().GetString("dir")

	path, err := configPath(project, dir)
	if err != nil {
		return fmt.Errorf("resolving config path: %w", err)
	}
	_, err = initializeConfig(cmd.OutOrStdout(), path, force)
	return err
}

// configPath returns the user config path, or the project config path of dir.
func configPath(project bool, dir string) (string, error) {
	if !project {
		return config.UserConfigPath()
	}
	if dir == "" {
		dir = "."
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}
	return config.ProjectConfigPath(abs), nil
}

// initializeConfig writes the default config to path. Returns true when a
// file was written.
func initializeConfig(out io.Writer, path string, force bool) (bool, error) {
	_, statErr := os.Stat(path)
	exists := statErr == nil

	if exists && !force {
		fmt.Fprintf(out, "%s %s: exists at %s (use --force to overwrite)\n", cYellow("⚠"), cBold("Config"), cDim(path))
		return false, nil
	}

	if err := writeDefaultConfig(path); err != nil {
		return false, fmt.Errorf("writing default config: %w", err)
	}

	if exists {
		fmt.Fprintf(out, "%s %s: overwritten at %s\n", cGreen("✓"), cBold("Config"), cDim(path))
	} else {
		fmt.Fprintf(out, "%s %s: created at %s\n", cGreen("✓"), cBold("Config"), cDim(path))
	}
	return true, nil
}

// writeDefaultConfig writes the default configuration to the given path
func writeDefaultConfig(configPath string) error {
	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	template := config.GetDefaultConfigTemplate()
	if err := os.WriteFile(configPath, []byte(template), 0o644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}
