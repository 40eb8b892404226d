package main

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/templui/securedocs/cmd/linkctl/cmd"
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "linkctl",
		Short:        "Secure document link administration",
		SilenceUsage: true,
	}

	rootCmd.AddCommand(cmd.MintCmd())
	rootCmd.AddCommand(cmd.InspectCmd())
	rootCmd.AddCommand(cmd.UserCmd())
	rootCmd.AddCommand(cmd.MigrateCmd())
	rootCmd.AddCommand(cmd.StatsCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
