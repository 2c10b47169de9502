// Package ocr recognises text in image-only PDFs by rasterising pages with
// pdftoppm and running tesseract over each page image.
//
// The engine never panics or aborts a conversion: Probe reports whether the
// tools are usable, and Recognize returns an error the caller is expected to
// degrade on.
package ocr

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/turtacn/patent2rag/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/patent2rag/pkg/errors"
)

// Status is the availability state of the OCR engine.
type Status string

const (
	StatusAvailable   Status = "available"
	StatusUnavailable Status = "unavailable"
	StatusDisabled    Status = "disabled"
)

// Availability is the result of a capability check. Reason explains any
// status other than available.
type Availability struct {
	Status Status
	Reason string
}

// Available reports whether Recognize can be attempted.
func (a Availability) Available() bool { return a.Status == StatusAvailable }

// Config configures the engine.
type Config struct {
	Enabled       bool
	TesseractPath string
	PdftoppmPath  string
	Languages     string // tesseract -l value, e.g. "kor+jpn+chi_sim+eng"
	DPI           int
	PageTimeout   time.Duration
}

// DefaultConfig returns an enabled engine resolving both tools from PATH.
func DefaultConfig() Config {
	return Config{
		Enabled:       true,
		TesseractPath: "tesseract",
		PdftoppmPath:  "pdftoppm",
		Languages:     "kor+jpn+chi_sim+eng",
		DPI:           300,
		PageTimeout:   2 * time.Minute,
	}
}

// Runner executes external commands.
type Runner interface {
	LookPath(file string) (string, error)
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

type execRunner struct{}

func (execRunner) LookPath(file string) (string, error) { return exec.LookPath(file) }

func (execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}

// Engine runs OCR through external tools.
type Engine struct {
	cfg    Config
	runner Runner
	logger logging.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithRunner replaces command execution.
func WithRunner(r Runner) Option {
	return func(e *Engine) { e.runner = r }
}

// WithLogger sets the logger.
func WithLogger(l logging.Logger) Option {
	return func(e *Engine) { e.logger = logging.OrNop(l) }
}

// New returns an Engine. Empty settings take their defaults.
func New(cfg Config, opts ...Option) *Engine {
	def := DefaultConfig()
	if cfg.TesseractPath == "" {
		cfg.TesseractPath = def.TesseractPath
	}
	if cfg.PdftoppmPath == "" {
		cfg.PdftoppmPath = def.PdftoppmPath
	}
	if cfg.Languages == "" {
		cfg.Languages = def.Languages
	}
	if cfg.DPI <= 0 {
		cfg.DPI = def.DPI
	}
	if cfg.PageTimeout <= 0 {
		cfg.PageTimeout = def.PageTimeout
	}
	e := &Engine{cfg: cfg, runner: execRunner{}, logger: logging.NewNopLogger()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Probe checks that OCR is enabled and both tools resolve.
func (e *Engine) Probe() Availability {
	if e == nil || !e.cfg.Enabled {
		return Availability{Status: StatusDisabled, Reason: "ocr disabled by configuration"}
	}
	for _, tool := range []string{e.cfg.PdftoppmPath, e.cfg.TesseractPath} {
		if _, err := e.runner.LookPath(tool); err != nil {
			return Availability{Status: StatusUnavailable, Reason: tool + " not found: " + err.Error()}
		}
	}
	return Availability{Status: StatusAvailable}
}

var rePageNum = regexp.MustCompile(`-(\d+)\.png$`)

// Recognize rasterises data and returns the recognised text of each page in
// order. A page tesseract fails on yields "". An error is returned only when
// the engine is unavailable or no page image could be produced.
func (e *Engine) Recognize(ctx context.Context, data []byte) ([]string, error) {
	if av := e.Probe(); !av.Available() {
		return nil, errors.New(errors.ErrCodeOCRUnavailable, av.Reason)
	}

	dir, err := os.MkdirTemp("", "patent2rag-ocr-*")
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeOCRFailed, "create temp dir")
	}
	defer os.RemoveAll(dir)

	src := filepath.Join(dir, "input.pdf")
	if err := os.WriteFile(src, data, 0o600); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeOCRFailed, "write temp pdf")
	}
	prefix := filepath.Join(dir, "page")
	if _, err := e.runner.Run(ctx, e.cfg.PdftoppmPath, "-png", "-r", strconv.Itoa(e.cfg.DPI), src, prefix); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeOCRFailed, "rasterize pages")
	}

	images, err := filepath.Glob(prefix + "-*.png")
	if err != nil || len(images) == 0 {
		return nil, errors.New(errors.ErrCodeOCRFailed, "no page images produced")
	}
	sortByPage(images)

	pages := make([]string, len(images))
	for i, img := range images {
		if err := ctx.Err(); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeTimeout, "ocr cancelled")
		}
		pctx, cancel := context.WithTimeout(ctx, e.cfg.PageTimeout)
		out, err := e.runner.Run(pctx, e.cfg.TesseractPath, img, "stdout", "-l", e.cfg.Languages, "--psm", "3")
		cancel()
		if err != nil {
			e.logger.Warn("tesseract failed on page", logging.Int("page", i+1), logging.Err(err))
			continue
		}
		pages[i] = strings.TrimSpace(string(out))
	}
	return pages, nil
}

// sortByPage orders pdftoppm output by its numeric page suffix; the suffix
// width varies with page count.
func sortByPage(files []string) {
	num := func(p string) int {
		m := rePageNum.FindStringSubmatch(filepath.Base(p))
		if len(m) < 2 {
			return 0
		}
		n, _ := strconv.Atoi(m[1])
		return n
	}
	sort.SliceStable(files, func(i, j int) bool { return num(files[i]) < num(files[j]) })
}

//Personal.AI order the ending
