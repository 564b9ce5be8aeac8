package main

import "github.com/spf13/cobra"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the jourq version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		if humanOutput {
			outputHuman("jourq %s\n", Version)
			return
		}
		outputJSON(VersionResponse{Version: Version})
	},
}

// VersionResponse is the JSON output for the version command.
type VersionResponse struct {
	Version string `json:"version"`
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
