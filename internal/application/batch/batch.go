// Package batch converts every document under a directory tree and writes
// per-document JSON records, a combined chunk stream and an error log.
package batch

import (
	"context"
	"encoding/json"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/turtacn/patent2rag/internal/application/conversion"
	"github.com/turtacn/patent2rag/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/patent2rag/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/patent2rag/pkg/errors"
	"github.com/turtacn/patent2rag/pkg/types/patent"
)

const (
	DocsDir        = "docs"
	ChunksDir      = "chunks"
	ChunksFile     = "all.chunks.jsonl"
	ErrorsFile     = "errors.jsonl"
	DocumentSuffix = ".patent.json"
)

// Converter is the conversion entry point the runner drives.
type Converter interface {
	Convert(ctx context.Context, data []byte, fileName string, opts ...conversion.Option) (*patent.Document, []patent.Chunk, error)
}

// Config controls a batch run.
type Config struct {
	Workers    int
	Pretty     bool
	Extensions []string
	Options    []conversion.Option
}

// DefaultConfig converts PDFs with four workers and pretty JSON.
func DefaultConfig() Config {
	return Config{Workers: 4, Pretty: true, Extensions: []string{".pdf"}}
}

// FileError is one line of errors.jsonl.
type FileError struct {
	File  string `json:"file"`
	Error string `json:"error"`
}

// Summary reports the outcome of a run.
type Summary struct {
	RunID    string        `json:"run_id"`
	Files    int           `json:"files"`
	Docs     int           `json:"docs"`
	Chunks   int           `json:"chunks"`
	Errors   int           `json:"errors"`
	Duration time.Duration `json:"duration"`
	Failed   []FileError   `json:"failed,omitempty"`
}

// Option configures a Runner.
type Option func(*Runner)

// WithLogger sets the logger.
func WithLogger(l logging.Logger) Option {
	return func(r *Runner) { r.logger = logging.OrNop(l) }
}

// WithMetrics attaches metric vectors.
func WithMetrics(m *prometheus.Metrics) Option {
	return func(r *Runner) { r.metrics = m }
}

// Runner converts directory trees.
type Runner struct {
	conv    Converter
	cfg     Config
	logger  logging.Logger
	metrics *prometheus.Metrics

	// mu serialises writes to the shared output files.
	mu sync.Mutex
}

// NewRunner builds a Runner.
func NewRunner(conv Converter, cfg Config, opts ...Option) *Runner {
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	if len(cfg.Extensions) == 0 {
		cfg.Extensions = DefaultConfig().Extensions
	}
	for i, ext := range cfg.Extensions {
		ext = strings.ToLower(ext)
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		cfg.Extensions[i] = ext
	}
	r := &Runner{conv: conv, cfg: cfg, logger: logging.NewNopLogger()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Matches reports whether path has one of the configured extensions.
func (r *Runner) Matches(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range r.cfg.Extensions {
		if ext == e {
			return true
		}
	}
	return false
}

// Collect lists matching files under in, sorted.
func (r *Runner) Collect(in string) ([]string, error) {
	info, err := os.Stat(in)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrCodeWalkFailed, "input directory %s", in)
	}
	if !info.IsDir() {
		return nil, errors.Newf(errors.ErrCodeWalkFailed, "input %s is not a directory", in)
	}

	var files []string
	err = filepath.WalkDir(in, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.Type().IsRegular() && r.Matches(path) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeWalkFailed, "walk input directory")
	}
	sort.Strings(files)
	return files, nil
}

type outcome struct {
	path   string
	doc    *patent.Document
	chunks []patent.Chunk
	err    error
}

// Run converts every matching file under in and writes the results under
// out. The chunk stream is rewritten from scratch. A failed file is logged
// to errors.jsonl and never stops the run; the returned error is reserved
// for walk and write failures.
func (r *Runner) Run(ctx context.Context, in, out string) (Summary, error) {
	start := time.Now()
	sum := Summary{RunID: uuid.NewString()}
	log := r.logger.With(logging.String("run_id", sum.RunID))

	files, err := r.Collect(in)
	if err != nil {
		return sum, err
	}
	w, err := openOutput(in, out, true)
	if err != nil {
		return sum, err
	}
	defer w.Close()

	sum.Files = len(files)
	if len(files) == 0 {
		log.Info("no input files found", logging.String("dir", in))
		sum.Duration = time.Since(start)
		return sum, nil
	}

	results := r.convertAll(ctx, files, log)
	for _, res := range results {
		if err := r.record(w, &sum, res); err != nil {
			return sum, err
		}
	}
	if err := w.writeErrors(sum.Failed); err != nil {
		return sum, err
	}

	sum.Duration = time.Since(start)
	logging.LogOperationDuration(log, "batch", start,
		logging.Int("files", sum.Files),
		logging.Int("docs", sum.Docs),
		logging.Int("chunks", sum.Chunks),
		logging.Int("errors", sum.Errors),
	)
	return sum, nil
}

// convertAll converts files concurrently; results keep input order.
func (r *Runner) convertAll(ctx context.Context, files []string, log logging.Logger) []outcome {
	results := make([]outcome, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.cfg.Workers)
	for i, path := range files {
		i, path := i, path
		g.Go(func() error {
			results[i] = r.convertFile(gctx, path, log)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func (r *Runner) convertFile(ctx context.Context, path string, log logging.Logger) outcome {
	res := outcome{path: path}
	if err := ctx.Err(); err != nil {
		res.err = err
		return res
	}
	data, err := os.ReadFile(path)
	if err != nil {
		res.err = err
		return res
	}
	res.doc, res.chunks, res.err = r.conv.Convert(ctx, data, filepath.Base(path), r.cfg.Options...)
	if res.err != nil {
		log.Warn("conversion failed", logging.String(logging.FieldFileName, path), logging.Err(res.err))
	}
	return res
}

func (r *Runner) record(w *output, sum *Summary, res outcome) error {
	status := "success"
	defer func() {
		if r.metrics != nil {
			r.metrics.BatchFilesTotal.WithLabelValues(status).Inc()
		}
	}()

	if res.err != nil {
		status = "failure"
		sum.Errors++
		sum.Failed = append(sum.Failed, FileError{File: res.path, Error: res.err.Error()})
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if err := w.writeDocument(res.path, res.doc, r.cfg.Pretty); err != nil {
		status = "failure"
		return err
	}
	if err := w.appendChunks(res.chunks); err != nil {
		status = "failure"
		return err
	}
	sum.Docs++
	sum.Chunks += len(res.chunks)
	return nil
}

// DocumentName returns the docs/ file name for an input path.
func DocumentName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base)) + DocumentSuffix
}

// nestedSeparator joins the directories of a nested input into its docs/
// file name.
const nestedSeparator = "__"

// DocumentNameIn returns the docs/ file name for path found under root.
// Nested inputs keep their relative directories, so "a/spec.pdf" and
// "b/spec.pdf" map to "a__spec.patent.json" and "b__spec.patent.json". Paths
// outside root fall back to their base name.
func DocumentNameIn(root, path string) string {
	return documentName(root, path, false)
}

func documentName(root, path string, keepExt bool) string {
	rel, err := filepath.Rel(root, path)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		rel = filepath.Base(path)
	}
	if !keepExt {
		rel = strings.TrimSuffix(rel, filepath.Ext(rel))
	}
	return strings.Join(strings.Split(filepath.ToSlash(rel), "/"), nestedSeparator) + DocumentSuffix
}

// output holds the open chunk stream of one output directory.
type output struct {
	in     string
	dir    string
	chunks *os.File
	// names maps each docs/ file written in this round to its source.
	names map[string]string
}

func openOutput(in, dir string, truncate bool) (*output, error) {
	for _, sub := range []string{DocsDir, ChunksDir} {
		if err := os.MkdirAll(filepath.Join(dir, sub), 0o755); err != nil {
			return nil, errors.Wrapf(err, errors.ErrCodeWriteFailed, "create %s", sub)
		}
	}
	flags := os.O_CREATE | os.O_WRONLY | os.O_APPEND
	if truncate {
		flags |= os.O_TRUNC
	}
	f, err := os.OpenFile(filepath.Join(dir, ChunksDir, ChunksFile), flags, 0o644)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeWriteFailed, "open chunk stream")
	}
	return &output{in: in, dir: dir, chunks: f, names: make(map[string]string)}, nil
}

func (o *output) Close() error { return o.chunks.Close() }

func (o *output) writeDocument(src string, doc *patent.Document, pretty bool) error {
	data, err := patent.MarshalDocument(doc, pretty)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "marshal document")
	}
	path := filepath.Join(o.dir, DocsDir, o.documentName(src))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrapf(err, errors.ErrCodeWriteFailed, "write %s", path)
	}
	return nil
}

// documentName resolves the docs/ file name of src. Inputs that differ only
// by extension ("X.pdf" and "X.html") keep it in the name of the later one.
func (o *output) documentName(src string) string {
	name := DocumentNameIn(o.in, src)
	if prev, ok := o.names[name]; ok && prev != src {
		name = documentName(o.in, src, true)
	}
	o.names[name] = src
	return name
}

func (o *output) appendChunks(chunks []patent.Chunk) error {
	if err := patent.WriteChunksJSONL(o.chunks, chunks); err != nil {
		return errors.Wrap(err, errors.ErrCodeWriteFailed, "append chunks")
	}
	return nil
}

// writeErrors replaces errors.jsonl; with no failures any previous file is
// removed.
func (o *output) writeErrors(failed []FileError) error {
	path := filepath.Join(o.dir, ErrorsFile)
	if len(failed) == 0 {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return errors.Wrap(err, errors.ErrCodeWriteFailed, "remove stale error log")
		}
		return nil
	}
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeWriteFailed, "create error log")
	}
	defer f.Close()
	return writeErrorLines(f, failed)
}

func writeErrorLines(w io.Writer, failed []FileError) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	for _, fe := range failed {
		if err := enc.Encode(fe); err != nil {
			return errors.Wrap(err, errors.ErrCodeWriteFailed, "write error log")
		}
	}
	return nil
}

//Personal.AI order the ending
