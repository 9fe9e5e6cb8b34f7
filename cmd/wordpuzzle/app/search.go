package app

import (
	"bufio"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Adithya-Monish-Kumar-K/wordpuzzle/internal/dictfile"
	"github.com/Adithya-Monish-Kumar-K/wordpuzzle/internal/search/executor"
)

type searchOptions struct {
	dictionary string
	minLength  int
	maxLength  int
	separator  string
	workers    int
	quiet      bool
}

func newSearchCmd() *cobra.Command {
	opts := &searchOptions{}

	cmd := &cobra.Command{
		Use:   "search LETTERS",
		Short: "Searches for words given a list of letters",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(cmd, opts, args[0])
		},
	}

	cmd.Flags().StringVarP(&opts.dictionary, "dictionary", "d", defaultDictionary, "dictionary file")
	cmd.Flags().IntVarP(&opts.minLength, "min-length", "m", executor.DefaultMinLength, "minimum length of the words to be searched")
	cmd.Flags().IntVarP(&opts.maxLength, "max-length", "M", 0, "maximum length of the words to be searched (0 for no limit)")
	cmd.Flags().StringVarP(&opts.separator, "separator", "s", "\n", "separator for the list of words")
	cmd.Flags().IntVarP(&opts.workers, "workers", "w", 0, "scan goroutines (0 for GOMAXPROCS)")
	cmd.Flags().BoolVarP(&opts.quiet, "quiet", "q", false, "print only the words")
	return cmd
}

func runSearch(cmd *cobra.Command, opts *searchOptions, letters string) error {
	out := bufio.NewWriter(cmd.OutOrStdout())
	defer out.Flush()

	if !opts.quiet {
		fmt.Fprintf(out, "Using dictionary file %q...\n", opts.dictionary)
	}
	d, err := dictfile.Open(opts.dictionary)
	if err != nil {
		return err
	}

	if !opts.quiet {
		fmt.Fprintf(out, "Solving for string %q, with minimum length of %d", letters, opts.minLength)
		if opts.maxLength > 0 {
			fmt.Fprintf(out, ", and maximum length of %d", opts.maxLength)
		}
		fmt.Fprintln(out)
	}

	result, err := executor.New(d, opts.workers, nil).Execute(cmd.Context(), executor.Query{
		Letters:   letters,
		MinLength: opts.minLength,
		MaxLength: opts.maxLength,
	})
	if err != nil {
		return err
	}
	for _, w := range result.Words {
		out.WriteString(w)
		out.WriteString(opts.separator)
	}
	return out.Flush()
}
