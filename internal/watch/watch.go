// Package watch implements eelc's -watch mode (§5 "Driver-level
// concurrency"): a filesystem-watch goroutine feeds debounced rebuild
// requests through a singleflight.Group (collapsing bursts from editors
// that save twice) into an errgroup.Group-managed rebuild goroutine,
// cancelled via context.Context when a newer write arrives before the
// previous rebuild finishes. Each rebuild constructs and discards one
// single-threaded compile pipeline; this package only schedules around
// that pipeline, never inside it.
//
// Patterned on internal/runtime/vfs's FSNotifyWatcher for the fsnotify
// event-loop shape, adapted from a generic VFS event stream to a single
// watched file driving single-flighted rebuilds.
package watch

import (
	"context"
	"time"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// Rebuild is the driver's compile-one-file entry point; Watcher calls it
// with a context cancelled as soon as a newer write supersedes the
// in-flight rebuild it was started for.
type Rebuild func(ctx context.Context, path string) error

// Watcher drives one watched file's debounced rebuild loop.
type Watcher struct {
	path     string
	debounce time.Duration
	rebuild  Rebuild

	group singleflight.Group

	onError func(error)
}

// New creates a Watcher for path. debounce is the window within which
// repeated writes collapse into a single rebuild (§8 scenario 13);
// onError receives every rebuild or watch-loop error, non-fatally — the
// watcher keeps running after a failed compile, since the whole point of
// -watch is to recover on the next save.
func New(path string, debounce time.Duration, rebuild Rebuild, onError func(error)) *Watcher {
	return &Watcher{path: path, debounce: debounce, rebuild: rebuild, onError: onError}
}

// Run watches until ctx is cancelled. It blocks.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fw.Close()

	if err := fw.Add(w.path); err != nil {
		return err
	}

	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	g, gctx := errgroup.WithContext(ctx)
	var cancelInFlight context.CancelFunc

	trigger := func() {
		if cancelInFlight != nil {
			cancelInFlight()
		}
		var rebuildCtx context.Context
		rebuildCtx, cancelInFlight = context.WithCancel(gctx)
		g.Go(func() error {
			_, err, _ := w.group.Do(w.path, func() (interface{}, error) {
				return nil, w.rebuild(rebuildCtx, w.path)
			})
			if err != nil && w.onError != nil {
				w.onError(err)
			}
			return nil
		})
	}

	for {
		select {
		case <-ctx.Done():
			return g.Wait()
		case ev, ok := <-fw.Events:
			if !ok {
				return g.Wait()
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			// Always swap in a fresh timer rather than Stop+Reset the old
			// one: Reset's documented drain dance assumes the old channel
			// still holds an undelivered tick, which doesn't hold once
			// the timerC case below has already received from it.
			if timer != nil {
				timer.Stop()
			}
			timer = time.NewTimer(w.debounce)
		case <-timerC(timer):
			trigger()
		case err, ok := <-fw.Errors:
			if !ok {
				return g.Wait()
			}
			if w.onError != nil {
				w.onError(err)
			}
		}
	}
}

// timerC returns t's channel, or a nil channel (which blocks forever in
// a select) while no debounce timer is pending — a select over a nil
// timer field would panic on the first iteration otherwise.
func timerC(t *time.Timer) <-chan time.Time {
	if t == nil {
		return nil
	}
	return t.C
}
