package cmd

import (
	"fmt"

	"github.com/ardeshir/lttng-tools/pkg/buildinfo"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("version:    %s\n", buildinfo.Version())
		fmt.Printf("commit:     %s\n", buildinfo.Commit())
		fmt.Printf("branch:     %s\n", buildinfo.Branch())
		fmt.Printf("build time: %s\n", buildinfo.BuildTime())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
