package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/servana-inc/servana/internal/interfaces/cli/migrate"
	"github.com/servana-inc/servana/internal/interfaces/cli/server"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "servana",
		Short: "Servana - booking platform backend",
		Long:  `Servana is the booking platform backend with built-in server and migration tools.`,
	}

	rootCmd.AddCommand(
		server.NewCommand(),
		migrate.NewCommand(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
