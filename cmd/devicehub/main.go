package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/devicehub/devicehub/internal/interfaces/cli/consistency"
	"github.com/devicehub/devicehub/internal/interfaces/cli/migrate"
	"github.com/devicehub/devicehub/internal/interfaces/cli/server"
	"github.com/devicehub/devicehub/internal/interfaces/cli/token"
	"github.com/devicehub/devicehub/internal/shared/version"
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "devicehub",
		Short:        "DeviceHub - device and product registry",
		Long:         `DeviceHub keeps devices and the products they belong to in sync, with an HTTP API, migration tools and consistency diagnostics.`,
		SilenceUsage: true,
	}

	rootCmd.AddCommand(
		server.NewCommand(),
		migrate.NewCommand(),
		consistency.NewCommand(),
		token.NewCommand(),
		&cobra.Command{
			Use:   "version",
			Short: "Print build information",
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintln(cmd.OutOrStdout(), version.String())
			},
		},
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
