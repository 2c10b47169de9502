package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/turtacn/patent2rag/internal/application/batch"
	"github.com/turtacn/patent2rag/pkg/errors"
)

type batchOptions struct {
	in            string
	out           string
	workers       int
	pretty        bool
	extensions    []string
	targetTokens  int
	overlapTokens int
	watch         bool
	debounce      time.Duration
	zip           string
}

// NewBatchCmd creates the batch command.
func NewBatchCmd() *cobra.Command {
	opts := &batchOptions{}
	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Convert every document under a directory tree",
		Long: "Convert every matching document under --in. Each document is written to\n" +
			"OUT/docs/<name>.patent.json, all chunks to OUT/chunks/all.chunks.jsonl and\n" +
			"per-file failures to OUT/errors.jsonl. Exits with status 1 when any file failed.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			bc := cliCtx.Config.Batch
			if !cmd.Flags().Changed("workers") {
				opts.workers = bc.Workers
			}
			if !cmd.Flags().Changed("pretty") {
				opts.pretty = bc.Pretty
			}
			if !cmd.Flags().Changed("ext") {
				opts.extensions = bc.Extensions
			}
			return runBatch(cmd, cliCtx, opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.in, "in", "", "input directory (required)")
	f.StringVar(&opts.out, "out", "", "output directory (required)")
	f.IntVar(&opts.workers, "workers", batch.DefaultConfig().Workers, "concurrent conversions (default: config)")
	f.BoolVar(&opts.pretty, "pretty", false, "indent document JSON (default: config)")
	f.StringSliceVar(&opts.extensions, "ext", nil, "file extensions to convert (default: config)")
	f.IntVar(&opts.targetTokens, "target-tokens", 0, "chunk target size in estimated tokens (default: config)")
	f.IntVar(&opts.overlapTokens, "overlap-tokens", 0, "overlap between window slices (default: config)")
	f.BoolVar(&opts.watch, "watch", false, "keep running and convert files as they appear")
	f.DurationVar(&opts.debounce, "debounce", batch.DefaultDebounce, "quiet period before a changed file is converted in --watch mode")
	f.StringVar(&opts.zip, "zip", "", "also pack the output into this ZIP archive")
	_ = cmd.MarkFlagRequired("in")
	_ = cmd.MarkFlagRequired("out")
	return cmd
}

func runBatch(cmd *cobra.Command, cliCtx *CLIContext, opts *batchOptions) error {
	if opts.watch && opts.zip != "" {
		return errors.New(errors.ErrCodeBadRequest, "--zip cannot be combined with --watch")
	}
	conv := newConverter(cliCtx.Config, cliCtx.Logger, nil, nil)
	runner := batch.NewRunner(conv, batch.Config{
		Workers:    opts.workers,
		Pretty:     opts.pretty,
		Extensions: append([]string(nil), opts.extensions...),
		Options:    chunkOptions(opts.targetTokens, opts.overlapTokens),
	}, batch.WithLogger(cliCtx.Logger))

	stdout, stderr := cmd.OutOrStdout(), cmd.ErrOrStderr()
	if opts.watch {
		return runner.Watch(cmd.Context(), opts.in, opts.out, opts.debounce, func(sum batch.Summary) {
			printSummary(stdout, sum)
			printFailures(stderr, sum.Failed)
		})
	}

	sum, err := runner.Run(cmd.Context(), opts.in, opts.out)
	if err != nil {
		return err
	}
	if opts.zip != "" {
		if err := batch.BundleFile(opts.zip, opts.out, sum.Failed); err != nil {
			return err
		}
	}
	printSummary(stdout, sum)
	if sum.Errors > 0 {
		printFailures(stderr, sum.Failed)
		return &ExitError{Code: 1}
	}
	return nil
}

func printSummary(w io.Writer, sum batch.Summary) {
	line := fmt.Sprintf("Done. docs=%d chunks=%d errors=%d", sum.Docs, sum.Chunks, sum.Errors)
	if sum.Errors > 0 {
		line = color.YellowString(line)
	}
	fmt.Fprintln(w, line)
}

func printFailures(w io.Writer, failed []batch.FileError) {
	if len(failed) == 0 {
		return
	}
	table := tablewriter.NewWriter(w)
	table.Header([]string{"File", "Error"})
	for _, fe := range failed {
		table.Append([]string{fe.File, truncate(fe.Error, 120)})
	}
	table.Render()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

//Personal.AI order the ending
