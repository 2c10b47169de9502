package batch

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"

	"github.com/turtacn/patent2rag/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/patent2rag/pkg/errors"
)

// DefaultDebounce is how long a file must stay quiet before it is converted.
const DefaultDebounce = 500 * time.Millisecond

// Watch runs a full batch, then converts files that appear or change under
// in until ctx is cancelled. Each incremental round appends to the chunk
// stream and the error log and is reported through onRound.
func (r *Runner) Watch(ctx context.Context, in, out string, debounce time.Duration, onRound func(Summary)) error {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if onRound == nil {
		onRound = func(Summary) {}
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeWalkFailed, "create file watcher")
	}
	defer watcher.Close()

	if err := addTree(watcher, in); err != nil {
		return err
	}

	sum, err := r.Run(ctx, in, out)
	if err != nil {
		return err
	}
	onRound(sum)

	var (
		mu      sync.Mutex
		pending = make(map[string]struct{})
		timer   *time.Timer
		rounds  = make(chan []string, 1)
	)
	flush := func() {
		mu.Lock()
		files := make([]string, 0, len(pending))
		for p := range pending {
			files = append(files, p)
		}
		pending = make(map[string]struct{})
		mu.Unlock()
		if len(files) == 0 {
			return
		}
		sort.Strings(files)
		select {
		case rounds <- files:
		case <-ctx.Done():
		}
	}

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil

		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if ev.Has(fsnotify.Create) {
				if fi, err := os.Stat(ev.Name); err == nil && fi.IsDir() {
					if err := addTree(watcher, ev.Name); err != nil {
						r.logger.Warn("cannot watch new directory", logging.String("dir", ev.Name), logging.Err(err))
					}
					continue
				}
			}
			if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) {
				continue
			}
			if !r.Matches(ev.Name) {
				continue
			}
			mu.Lock()
			pending[ev.Name] = struct{}{}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(debounce, flush)
			mu.Unlock()

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			r.logger.Error("file watcher error", logging.Err(err))

		case files := <-rounds:
			sum, err := r.RunFiles(ctx, in, files, out)
			if err != nil {
				r.logger.Error("incremental batch failed", logging.Err(err))
				continue
			}
			onRound(sum)
		}
	}
}

// RunFiles converts the given files found under in and appends their results
// to out.
func (r *Runner) RunFiles(ctx context.Context, in string, files []string, out string) (Summary, error) {
	start := time.Now()
	sum := Summary{RunID: uuid.NewString(), Files: len(files)}
	log := r.logger.With(logging.String("run_id", sum.RunID))

	w, err := openOutput(in, out, false)
	if err != nil {
		return sum, err
	}
	defer w.Close()

	for _, res := range r.convertAll(ctx, files, log) {
		if err := r.record(w, &sum, res); err != nil {
			return sum, err
		}
	}
	if err := w.appendErrors(sum.Failed); err != nil {
		return sum, err
	}
	sum.Duration = time.Since(start)
	log.Info("incremental batch done",
		logging.Int("files", sum.Files), logging.Int("docs", sum.Docs), logging.Int("errors", sum.Errors))
	return sum, nil
}

func (o *output) appendErrors(failed []FileError) error {
	if len(failed) == 0 {
		return nil
	}
	f, err := os.OpenFile(filepath.Join(o.dir, ErrorsFile), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeWriteFailed, "open error log")
	}
	defer f.Close()
	return writeErrorLines(f, failed)
}

func addTree(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if err := w.Add(path); err != nil {
			return errors.Wrapf(err, errors.ErrCodeWalkFailed, "watch %s", path)
		}
		return nil
	})
}

//Personal.AI order the ending
