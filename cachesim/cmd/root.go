// Package cmd provides the command-line interface of cachesim.
package cmd

import (
	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "cachesim",
	Short: "cachesim simulates hierarchies of set-associative caches.",
	Long: `cachesim simulates hierarchies of set-associative caches that ` +
		`serve one request at a time. Flags can also be given as ` +
		`CACHESIM_* environment variables or in a .env file.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		envFile, _ := cmd.Flags().GetString("env-file")
		if err := loadEnvFile(envFile); err != nil {
			return err
		}

		return applyEnvDefaults(cmd)
	},
}

func init() {
	rootCmd.PersistentFlags().String("env-file", ".env",
		"File to load CACHESIM_* variables from.")
}

// Execute adds all child commands to the root command and sets flags
// appropriately. It runs the exit handlers before the process ends.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		atexit.Exit(1)
	}

	atexit.Exit(0)
}
