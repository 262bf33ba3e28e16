package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/teranos/topicdb/version"
)

// VersionCmd represents the version command
var VersionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show topicdb version information",
	Long:  `Display version, build time, commit hash, schema version and platform information for the topicdb binary.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		info := version.Get()

		if versionFormatFlag != formatText {
			return encode(cmd.OutOrStdout(), versionFormatFlag, info)
		}

		fmt.Fprintln(cmd.OutOrStdout(), info.String())
		fmt.Fprintf(cmd.OutOrStdout(), "Platform: %s\n", info.Platform)
		fmt.Fprintf(cmd.OutOrStdout(), "Go: %s\n", info.GoVersion)
		return nil
	},
}

var versionFormatFlag string

func init() {
	VersionCmd.Flags().StringVar(&versionFormatFlag, "format", formatText, "Output format: text, json, yaml")
}
