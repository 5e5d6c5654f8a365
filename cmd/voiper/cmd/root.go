package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewRootCommand creates the root command for the voiper CLI
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "voiper",
		Short: "Voiper CLI - Tools for working with four-role Voiper modules",
		Long: `Voiper CLI provides tools for working with Voiper modules.
It scaffolds new modules and checks the bundle manifests used for named surfaces.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.AddCommand(NewGenerateCommand())
	cmd.AddCommand(NewBundlesCommand())
	cmd.AddCommand(NewVersionCommand())

	return cmd
}

// NewGenerateCommand creates the generate command
func NewGenerateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate module scaffolding",
		Long:  `Generate modules and their sample bundle manifests.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.AddCommand(NewGenerateModuleCommand())

	return cmd
}

// NewVersionCommand prints build information
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the CLI version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), PrintVersion())
		},
	}
}

// Version information
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// PrintVersion returns version information
func PrintVersion() string {
	return fmt.Sprintf("Voiper CLI v%s (commit: %s, built on: %s)", Version, Commit, Date)
}
