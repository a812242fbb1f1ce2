package main

import (
	"fmt"
	"os"

	"github.com/akeren/waitlist-api/config"
	"github.com/akeren/waitlist-api/internal/log"
	"github.com/spf13/cobra"
)

var Version = "dev"

func main() {
	logger := log.NewLoggerFromEnv()

	rootCmd := &cobra.Command{
		Use:           "cli",
		Short:         "Operator and signup tooling for the waitlist API",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			config.InitializeEnvFile(logger)
		},
	}

	rootCmd.AddCommand(migrateCmd(logger))
	rootCmd.AddCommand(joinCmd())
	rootCmd.AddCommand(codeCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
