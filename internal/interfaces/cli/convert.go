package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/turtacn/patent2rag/internal/application/batch"
	"github.com/turtacn/patent2rag/internal/application/conversion"
	"github.com/turtacn/patent2rag/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/patent2rag/pkg/errors"
	"github.com/turtacn/patent2rag/pkg/types/patent"
)

// ChunkFileSuffix names the per-document chunk stream written by convert --out.
const ChunkFileSuffix = ".chunks.jsonl"

type convertOptions struct {
	out           string
	pretty        bool
	jsonl         bool
	targetTokens  int
	overlapTokens int
}

// NewConvertCmd creates the convert command.
func NewConvertCmd() *cobra.Command {
	opts := &convertOptions{}
	cmd := &cobra.Command{
		Use:   "convert FILE",
		Short: "Convert one patent document",
		Long: "Convert one patent document. Without --out the {document, chunks} record is\n" +
			"written to stdout, or only the chunks as JSON Lines with --jsonl. With --out the\n" +
			"document goes to DIR/docs/<name>.patent.json and the chunks to\n" +
			"DIR/chunks/<name>.chunks.jsonl.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			return runConvert(cmd, cliCtx, args[0], opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.out, "out", "", "output directory (default: stdout)")
	f.BoolVar(&opts.pretty, "pretty", false, "indent JSON output")
	f.BoolVar(&opts.jsonl, "jsonl", false, "write only the chunks as JSON Lines to stdout")
	f.IntVar(&opts.targetTokens, "target-tokens", 0, "chunk target size in estimated tokens (default: config)")
	f.IntVar(&opts.overlapTokens, "overlap-tokens", 0, "overlap between window slices (default: config)")
	return cmd
}

func runConvert(cmd *cobra.Command, cliCtx *CLIContext, path string, opts *convertOptions) error {
	if opts.out != "" && opts.jsonl {
		return errors.New(errors.ErrCodeBadRequest, "--jsonl writes to stdout and cannot be combined with --out")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, errors.ErrCodeAcquisitionFailed, "read %s", path)
	}

	conv := newConverter(cliCtx.Config, cliCtx.Logger, nil, nil)
	doc, chunks, err := conv.Convert(cmd.Context(), data, filepath.Base(path), chunkOptions(opts.targetTokens, opts.overlapTokens)...)
	if err != nil {
		return err
	}

	switch {
	case opts.jsonl:
		return patent.WriteChunksJSONL(cmd.OutOrStdout(), chunks)
	case opts.out == "":
		return writeResult(cmd.OutOrStdout(), &conversion.Result{Document: doc, Chunks: chunks}, opts.pretty)
	}

	docPath, chunkPath, err := writeConverted(opts.out, path, doc, chunks, opts.pretty)
	if err != nil {
		return err
	}
	cliCtx.Logger.Debug("Converted document",
		logging.String(logging.FieldDocID, doc.DocID),
		logging.String(logging.FieldFileName, path))
	fmt.Fprintf(cmd.OutOrStdout(), "%s %s (%d claims, %d chunks)\n  %s\n  %s\n",
		color.GreenString("OK"), filepath.Base(path), doc.NumClaims, len(chunks), docPath, chunkPath)
	return nil
}

// chunkOptions turns flag values into conversion options; zero keeps the
// configured default.
func chunkOptions(targetTokens, overlapTokens int) []conversion.Option {
	var opts []conversion.Option
	if targetTokens > 0 {
		opts = append(opts, conversion.WithTargetTokens(targetTokens))
	}
	if overlapTokens > 0 {
		opts = append(opts, conversion.WithOverlapTokens(overlapTokens))
	}
	return opts
}

func writeResult(w io.Writer, r *conversion.Result, pretty bool) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if pretty {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(r); err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "encode result")
	}
	return nil
}

// writeConverted lays out one converted document the way batch does.
func writeConverted(out, src string, doc *patent.Document, chunks []patent.Chunk, pretty bool) (docPath, chunkPath string, err error) {
	for _, sub := range []string{batch.DocsDir, batch.ChunksDir} {
		if err := os.MkdirAll(filepath.Join(out, sub), 0o755); err != nil {
			return "", "", errors.Wrapf(err, errors.ErrCodeWriteFailed, "create %s", sub)
		}
	}

	data, err := patent.MarshalDocument(doc, pretty)
	if err != nil {
		return "", "", errors.Wrap(err, errors.ErrCodeSerialization, "marshal document")
	}
	docPath = filepath.Join(out, batch.DocsDir, batch.DocumentName(src))
	if err := os.WriteFile(docPath, data, 0o644); err != nil {
		return "", "", errors.Wrapf(err, errors.ErrCodeWriteFailed, "write %s", docPath)
	}

	base := filepath.Base(src)
	chunkPath = filepath.Join(out, batch.ChunksDir, strings.TrimSuffix(base, filepath.Ext(base))+ChunkFileSuffix)
	f, err := os.Create(chunkPath)
	if err != nil {
		return "", "", errors.Wrapf(err, errors.ErrCodeWriteFailed, "create %s", chunkPath)
	}
	if err := patent.WriteChunksJSONL(f, chunks); err != nil {
		f.Close()
		return "", "", errors.Wrapf(err, errors.ErrCodeWriteFailed, "write %s", chunkPath)
	}
	if err := f.Close(); err != nil {
		return "", "", errors.Wrapf(err, errors.ErrCodeWriteFailed, "close %s", chunkPath)
	}
	return docPath, chunkPath, nil
}

//Personal.AI order the ending
