// Package cli implements the fedlogin command-line interface using Cobra.
// The root command performs the console login; subcommands cover version
// introspection.
package cli

import (
	"github.com/fedlogin/fedlogin/internal/log"
	"github.com/spf13/cobra"
)

var (
	verbose   bool
	jsonOut   bool
	debugMode bool
)

var rootCmd = &cobra.Command{
	Use:   "fedlogin [profile] [duration-seconds]",
	Short: "Log into the AWS console with short-lived credentials",
	Long: `fedlogin signs you into the AWS console using short-lived credentials
from an AWS profile. It fetches a federation sign-in token via STS
(GetFederationToken for IAM users, AssumeRole for role-based profiles)
and opens the console login URL in your browser.

With no arguments it uses the "default" profile and a 12 hour session.`,
	Args:          cobra.MaximumNArgs(2),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		log.Init(log.Options{
			Verbose:    verbose,
			JSONFormat: jsonOut,
		})
	},
	RunE: runLogin,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "log in JSON format")
	rootCmd.Flags().BoolVar(&debugMode, "debug", false, "show sensitive detail, including the sign-in URL, on stderr")
}
