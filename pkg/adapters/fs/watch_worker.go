package fs

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime/debug"
	"strings"
	"time"

	"github.com/aretw0/lifecycle"
	"github.com/aretw0/lifecycle/pkg/core/supervisor"
	"github.com/aretw0/lifecycle/pkg/core/worker"
	"github.com/fsnotify/fsnotify"

	"github.com/aretw0/mdwiki/pkg/core"
)

// DebounceDelay is how long a draft must stay quiet before a change is emitted.
const DebounceDelay = 50 * time.Millisecond

// watchWorker watches the directory of one draft file. The directory is
// watched instead of the file because atomic writes replace the inode.
type watchWorker struct {
	*worker.BaseWorker
	drafts    *Drafts
	target    string
	events    chan<- core.Event
	watcher   *fsnotify.Watcher
	debouncer *debouncer
	cancel    context.CancelFunc
}

func newWatchWorker(drafts *Drafts, target string, events chan<- core.Event) *watchWorker {
	return &watchWorker{
		BaseWorker: worker.NewBaseWorker("draft-watcher"),
		drafts:     drafts,
		target:     filepath.Clean(target),
		events:     events,
	}
}

func (w *watchWorker) Start(ctx context.Context) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	status := w.State().Status
	if status != worker.StatusCreated && status != worker.StatusPending {
		return fmt.Errorf("watcher already started (status: %s)", status)
	}

	dir := filepath.Dir(w.target)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create draft dir: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := watcher.Add(dir); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("watch %s: %w", dir, err)
	}

	w.watcher = watcher
	w.debouncer = newDebouncer(DebounceDelay)
	w.drafts.setWatcherActive(true, w.target)

	runCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel

	w.SetStatus(worker.StatusRunning)
	return w.StartFunc(runCtx, w.run)
}

func (w *watchWorker) Stop(ctx context.Context) error {
	if w.cancel != nil {
		w.StopRequested = true
		w.cancel()
	}
	return w.BaseWorker.Stop(ctx)
}

func (w *watchWorker) State() worker.State {
	return w.ExportState(func(s *worker.State) {
		s.Metadata = map[string]string{
			worker.MetadataType: string(worker.TypeGoroutine),
			"target":            w.target,
		}
	})
}

// eventType maps a raw notification on the target to a draft event.
// Temp files from atomic writes and unrelated files yield "".
func (w *watchWorker) eventType(event fsnotify.Event) core.EventType {
	name := filepath.Clean(event.Name)
	if strings.HasPrefix(filepath.Base(name), TempFilePrefix) || name != w.target {
		return ""
	}
	switch {
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		return core.EventDraftRemoved
	case event.Has(fsnotify.Create), event.Has(fsnotify.Write):
		return core.EventDraftChanged
	}
	return ""
}

// sendEvent enqueues an event via the debouncer, protecting against channel closure during shutdown.
func (w *watchWorker) sendEvent(ctx context.Context, event core.Event) {
	w.debouncer.add(event, func(e core.Event) {
		defer func() {
			_ = recover()
		}()
		select {
		case w.events <- e:
		case <-ctx.Done():
		}
	})
}

func (w *watchWorker) handleWatcherError(err error) {
	w.drafts.config.Logger.Error("fsnotify error", "error", err)
	if w.drafts.config.ErrorHandler != nil {
		w.drafts.config.ErrorHandler(err)
	}
}

func (w *watchWorker) run(ctx context.Context) (err error) {
	logger := w.drafts.config.Logger
	defer func() {
		if recovered := recover(); recovered != nil {
			panicErr := fmt.Errorf("watcher panic: %v", recovered)
			if logger.Enabled(ctx, slog.LevelDebug) {
				logger.Error("watcher panic", "error", panicErr, "stack", string(debug.Stack()))
			} else {
				logger.Error("watcher panic", "error", panicErr)
			}
			err = panicErr
		}
	}()
	defer w.drafts.setWatcherActive(false, "")
	defer w.watcher.Close()

	err = w.loop(ctx)

	// In-flight timers must finish before the owner closes the events channel.
	w.debouncer.stopAndWait(5 * time.Second)
	return err
}

func (w *watchWorker) loop(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				if w.StopRequested || ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("watcher events channel closed")
			}
			w.drafts.config.Logger.Debug("event received", "name", event.Name, "op", event.Op.String())
			if t := w.eventType(event); t != "" {
				w.sendEvent(ctx, core.Event{Type: t, Path: w.target, Timestamp: time.Now().Unix()})
			}

		case wErr, ok := <-w.watcher.Errors:
			if !ok {
				if w.StopRequested || ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("watcher errors channel closed")
			}
			w.handleWatcherError(wErr)
		}
	}
}

// watchBackoff bounds how often a failing watcher is restarted.
var watchBackoff = supervisor.Backoff{
	InitialInterval: 100 * time.Millisecond,
	MaxInterval:     2 * time.Second,
	Multiplier:      2,
	ResetDuration:   10 * time.Second,
	MaxRestarts:     5,
	MaxDuration:     time.Minute,
}

// Watch emits change events for the draft of (ws, pg) until ctx is done.
// The watcher runs under a supervisor that restarts it on failure. The
// returned channel is closed after the watcher has stopped.
func (d *Drafts) Watch(ctx context.Context, ws, pg int) (<-chan core.Event, error) {
	target := d.File(ws, pg)
	events := make(chan core.Event)

	spec := supervisor.Spec{
		Name: "draft-watcher",
		Type: string(worker.TypeGoroutine),
		Factory: func() (worker.Worker, error) {
			return newWatchWorker(d, target, events), nil
		},
		Backoff:       watchBackoff,
		RestartPolicy: supervisor.RestartOnFailure,
	}
	sup := supervisor.New("drafts", supervisor.StrategyOneForOne, spec)
	if err := sup.Start(ctx); err != nil {
		return nil, fmt.Errorf("start draft watcher: %w", err)
	}

	lifecycle.Go(ctx, func(ctx context.Context) error {
		<-ctx.Done()
		stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		err := sup.Stop(stopCtx)
		close(events)
		return err
	}, lifecycle.WithErrorHandler(func(err error) {
		if d.config.ErrorHandler != nil {
			d.config.ErrorHandler(fmt.Errorf("stop draft watcher: %w", err))
			return
		}
		d.config.Logger.Error("stop draft watcher", "error", err)
	}))

	return events, nil
}
