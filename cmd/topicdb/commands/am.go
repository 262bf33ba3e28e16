package commands

import (
	"fmt"
	"os"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/topicdb/am"
	"github.com/teranos/topicdb/errors"
	"github.com/teranos/topicdb/sym"
)

// AmCmd represents the am (configuration) command
var AmCmd = &cobra.Command{
	Use:   "am",
	Short: sym.Prefix("am") + "Manage topicdb configuration",
	Long: sym.Prefix("am") + `am — Manage topicdb configuration

Configuration sources (in order of precedence):
1. Command line flags (--db, --mode)
2. Environment variables (TOPICDB_* prefix)
3. Project config (./topicdb.toml, searched up the directory tree)
4. User config (~/.topicdb/topicdb.toml)
5. Default values

Examples:
  topicdb am show                 # Show current configuration as TOML
  topicdb am show --format yaml   # Show configuration in YAML format
  topicdb am get ontology.mode    # Show a single value
  topicdb am validate             # Validate current configuration
  topicdb am init                 # Write the defaults to ~/.topicdb/topicdb.toml`,
}

var amShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Args:  cobra.NoArgs,
	RunE:  runAmShow,
}

var amGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Show a single configuration value (dot notation)",
	Args:  cobra.ExactArgs(1),
	RunE:  runAmGet,
}

var amValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate current configuration",
	Args:  cobra.NoArgs,
	RunE:  runAmValidate,
}

var amInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a configuration file holding the defaults",
	Args:  cobra.NoArgs,
	RunE:  runAmInit,
}

var (
	amFormatFlag string
	amPathFlag   string
	amForceFlag  bool
)

func init() {
	amShowCmd.Flags().StringVar(&amFormatFlag, "format", formatTOML, "Output format: toml, json, yaml")
	amInitCmd.Flags().StringVar(&amPathFlag, "path", "", "Target file (default ~/.topicdb/topicdb.toml)")
	amInitCmd.Flags().BoolVar(&amForceFlag, "force", false, "Overwrite an existing file (a backup is kept)")

	AmCmd.AddCommand(amShowCmd)
	AmCmd.AddCommand(amGetCmd)
	AmCmd.AddCommand(amValidateCmd)
	AmCmd.AddCommand(amInitCmd)
}

func runAmShow(cmd *cobra.Command, args []string) error {
	cfg, err := am.Load()
	if err != nil {
		return errors.Wrap(err, "failed to load config")
	}
	if amFormatFlag == formatText {
		amFormatFlag = formatTOML
	}
	return encode(cmd.OutOrStdout(), amFormatFlag, cfg)
}

func runAmGet(cmd *cobra.Command, args []string) error {
	value := am.Get(args[0])
	if value == nil {
		return errors.NewNotFoundError("configuration key %q", args[0])
	}
	_, err := fmt.Fprintln(cmd.OutOrStdout(), value)
	return err
}

func runAmValidate(cmd *cobra.Command, args []string) error {
	cfg, err := am.Load()
	if err != nil {
		return errors.Wrap(err, "failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		return errors.Wrap(err, "configuration validation failed")
	}
	pterm.Success.Println("Configuration is valid")
	return nil
}

func runAmInit(cmd *cobra.Command, args []string) error {
	path := amPathFlag
	if path == "" {
		path = am.UserConfigPath()
	}
	if path == "" {
		return errors.NewInvalidRequestError("cannot locate the home directory; pass --path")
	}

	if _, err := os.Stat(path); err == nil && !amForceFlag {
		return errors.WithHint(
			errors.NewInvalidRequestError("%s already exists", path),
			"pass --force to overwrite it")
	}

	if err := am.Save(am.Default(), path); err != nil {
		return err
	}
	pterm.Success.Printf("Wrote %s\n", path)
	return nil
}
