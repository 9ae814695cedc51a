package cli

import (
	"fmt"
	"runtime/debug"

	"github.com/fedlogin/fedlogin/internal/version"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version of fedlogin",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("fedlogin %s\n", version.String())
		if c := version.Commit(); c != "none" {
			fmt.Printf("  commit: %s\n", c)
		}
		if d := version.Date(); d != "unknown" {
			fmt.Printf("  built:  %s\n", d)
		}
		if info, ok := debug.ReadBuildInfo(); ok {
			fmt.Printf("  go:     %s\n", info.GoVersion)
		}
	},
}
