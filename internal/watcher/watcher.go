// Package watcher provides background monitoring of the projects directory,
// rescanning at a regular interval and emitting alerts when projects appear,
// disappear, or change git health.
package watcher

import (
	"context"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"

	"pydash/internal/scanner"
)

// debounceDelay is how long the watcher waits after a filesystem event
// before rescanning, so bursts of writes collapse into one check.
const debounceDelay = 500 * time.Millisecond

// WatchState captures a point-in-time view of the scanned projects.
type WatchState struct {
	Timestamp time.Time
	Projects  map[string]scanner.Project // keyed by project path
}

// Alert represents a notable change detected between two scans.
type Alert struct {
	Level   string // "info", "warning", "critical"
	Title   string
	Message string
	Time    time.Time
}

// ScanFunc produces the current project list. The production implementation
// wraps Scanner.Scan with the configured root.
type ScanFunc func(ctx context.Context) []scanner.Project

// Watcher rescans the projects directory at a regular interval, compares
// consecutive results, and emits alerts for notable changes. Filesystem
// events on the scan root trigger checks ahead of the next tick.
type Watcher struct {
	root          string
	interval      time.Duration
	scan          ScanFunc
	previous      *WatchState
	alertFn       func(Alert)     // callback for emitting alerts
	lastAlertKeys map[string]bool // dedup: suppress repeated identical alerts
	log           *logrus.Entry
}

// New creates a Watcher over the given scan root.
func New(root string, interval time.Duration, scan ScanFunc, alertFn func(Alert)) *Watcher {
	return &Watcher{
		root:          root,
		interval:      interval,
		scan:          scan,
		alertFn:       alertFn,
		lastAlertKeys: make(map[string]bool),
		log:           logrus.WithField("component", "watcher"),
	}
}

// Run starts the watch loop. It takes an initial snapshot, then checks at
// every interval and after filesystem activity on the scan root. Blocks
// until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	w.previous = w.snapshot(ctx)

	events := make(chan struct{}, 1)
	if fw, err := fsnotify.NewWatcher(); err != nil {
		w.log.Warnf("filesystem notifications unavailable: %v", err)
	} else {
		defer fw.Close()
		if err := fw.Add(w.root); err != nil {
			w.log.Debugf("cannot watch %s: %v", w.root, err)
		}
		go forwardEvents(ctx, fw, events)
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			w.emit(w.Check(ctx))
		case <-events:
			timer := time.NewTimer(debounceDelay)
		settle:
			for {
				select {
				case <-ctx.Done():
					timer.Stop()
					return ctx.Err()
				case <-events:
				case <-timer.C:
					break settle
				}
			}
			w.emit(w.Check(ctx))
			ticker.Reset(w.interval)
		}
	}
}

// forwardEvents collapses fsnotify events into non-blocking signals.
func forwardEvents(ctx context.Context, fw *fsnotify.Watcher, events chan<- struct{}) {
	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-fw.Events:
			if !ok {
				return
			}
			select {
			case events <- struct{}{}:
			default:
			}
		case _, ok := <-fw.Errors:
			if !ok {
				return
			}
		}
	}
}

// Check performs a single check cycle: takes a new snapshot, compares it
// against the previous state, updates the previous state, and returns any
// alerts. Identical alerts are suppressed until the underlying data changes.
func (w *Watcher) Check(ctx context.Context) []Alert {
	curr := w.snapshot(ctx)

	var raw []Alert
	if w.previous != nil {
		raw = Compare(w.previous, curr)
	}

	currentKeys := make(map[string]bool, len(raw))
	var alerts []Alert
	for _, a := range raw {
		key := a.Level + ":" + a.Title + ":" + a.Message
		currentKeys[key] = true
		if !w.lastAlertKeys[key] {
			alerts = append(alerts, a)
		}
	}
	w.lastAlertKeys = currentKeys

	w.previous = curr
	return alerts
}

// snapshot runs a scan and indexes the results by path.
func (w *Watcher) snapshot(ctx context.Context) *WatchState {
	projects := w.scan(ctx)
	byPath := make(map[string]scanner.Project, len(projects))
	for _, p := range projects {
		byPath[p.Path] = p
	}
	return &WatchState{Timestamp: time.Now(), Projects: byPath}
}

func (w *Watcher) emit(alerts []Alert) {
	for _, a := range alerts {
		if w.alertFn != nil {
			w.alertFn(a)
		}
	}
}
