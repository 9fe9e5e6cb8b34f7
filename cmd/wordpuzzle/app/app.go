// Package app wires the wordpuzzle command line: building dictionary files,
// searching them, and serving searches over HTTP.
package app

import (
	"github.com/spf13/cobra"

	"github.com/Adithya-Monish-Kumar-K/wordpuzzle/pkg/logger"
)

const defaultDictionary = "default.dict"

type rootOptions struct {
	logLevel  string
	logFormat string
}

func New() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:           "wordpuzzle",
		Short:         "A search program for word puzzle games",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logger.SetupWriter(cmd.ErrOrStderr(), opts.logLevel, opts.logFormat)
		},
	}

	rootCmd.PersistentFlags().
		StringVar(&opts.logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().
		StringVar(&opts.logFormat, "log-format", "text", "log format (text, json)")

	rootCmd.AddCommand(
		newGenerateCmd(),
		newSearchCmd(),
		newServeCmd(opts),
	)
	return rootCmd
}
