package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/Adithya-Monish-Kumar-K/wordpuzzle/internal/dictfile"
	"github.com/Adithya-Monish-Kumar-K/wordpuzzle/internal/dictionary"
	"github.com/Adithya-Monish-Kumar-K/wordpuzzle/internal/wordlist"
	"github.com/Adithya-Monish-Kumar-K/wordpuzzle/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/wordpuzzle/pkg/postgres"
	"github.com/Adithya-Monish-Kumar-K/wordpuzzle/pkg/resilience"
)

// connectPostgres opens the word source for --postgres-query.
var connectPostgres = postgres.New

type generateOptions struct {
	output        string
	cfgPath       string
	postgresQuery string
	quiet         bool
}

func newGenerateCmd() *cobra.Command {
	opts := &generateOptions{}

	cmd := &cobra.Command{
		Use:   "generate [FILE]",
		Short: "Generates a dictionary file",
		Long: "Generates a dictionary file from FILE, a list of words separated in lines, " +
			"or from the rows of --postgres-query.",
		Args: func(cmd *cobra.Command, args []string) error {
			if opts.postgresQuery != "" {
				return cobra.NoArgs(cmd, args)
			}
			return cobra.ExactArgs(1)(cmd, args)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd, opts, args)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", defaultDictionary, "output file")
	cmd.Flags().StringVarP(&opts.cfgPath, "config", "c", "", "config file with the postgres connection")
	cmd.Flags().StringVar(&opts.postgresQuery, "postgres-query", "", "read words from the first column of this query")
	cmd.Flags().BoolVarP(&opts.quiet, "quiet", "q", false, "do not print progress messages")
	return cmd
}

func runGenerate(cmd *cobra.Command, opts *generateOptions, args []string) error {
	out := cmd.OutOrStdout()
	source := opts.postgresQuery
	if len(args) == 1 {
		source = args[0]
	}
	if !opts.quiet {
		fmt.Fprintf(out, "Generating a dictionary file (%q) from %q...\n", opts.output, source)
	}

	var (
		d     *dictionary.Dictionary
		stats wordlist.Stats
		err   error
	)
	if opts.postgresQuery != "" {
		d, stats, err = generateFromPostgres(cmd.Context(), opts)
	} else {
		d, stats, err = wordlist.BuildFile(args[0])
	}
	if err != nil {
		return err
	}

	n, err := dictfile.WriteFile(opts.output, d)
	if err != nil {
		return err
	}
	slog.Info("dictionary written",
		"path", opts.output,
		"lines", stats.Lines,
		"words", stats.Words,
		"duplicates", stats.Duplicates,
		"bytes", n,
	)
	if !opts.quiet {
		fmt.Fprintf(out, "Generated dictionary file %q\n", opts.output)
	}
	return nil
}

func generateFromPostgres(ctx context.Context, opts *generateOptions) (*dictionary.Dictionary, wordlist.Stats, error) {
	cfg, err := config.Load(opts.cfgPath)
	if err != nil {
		return nil, wordlist.Stats{}, err
	}
	var client *postgres.Client
	err = resilience.Retry(ctx, "postgres connect", resilience.RetryConfig{MaxAttempts: 3, JitterFraction: 0.1}, func(ctx context.Context) error {
		var err error
		client, err = connectPostgres(ctx, cfg.Postgres)
		return err
	})
	if err != nil {
		return nil, wordlist.Stats{}, err
	}
	defer client.Close()

	var (
		d     *dictionary.Dictionary
		stats wordlist.Stats
	)
	err = client.ReadOnly(ctx, func(tx *sql.Tx) error {
		var err error
		d, stats, err = wordlist.BuildFromQuery(ctx, tx, opts.postgresQuery)
		return err
	})
	if err != nil {
		var lineErr *wordlist.LineError
		if errors.As(err, &lineErr) {
			return nil, stats, fmt.Errorf("row %d (%q): %w", lineErr.Line, lineErr.Word, lineErr.Err)
		}
		return nil, stats, err
	}
	return d, stats, nil
}
