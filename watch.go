package main

import (
	"context"
	"os"
	"time"

	"github.com/fsnotify/fsnotify"

	"oss.terrastruct.com/util-go/xmain"

	"github.com/pixelflip/pixelflip/lib/log"
)

// watcher re-encodes the input file whenever it changes. Editors overwrite
// files with renames and watches silently die on some platforms, so the
// watch is re-added after remove/rename events and a slow poll compares
// modification times to catch anything missed.
type watcher struct {
	ctx    context.Context
	cancel context.CancelFunc
	ms     *xmain.State

	opts       encodeOpts
	inputPath  string
	outputPath string

	fw       *fsnotify.Watcher
	encodeCh chan struct{}
}

func newWatcher(ctx context.Context, ms *xmain.State, opts encodeOpts, inputPath, outputPath string) (*watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(ctx)
	return &watcher{
		ctx:    ctx,
		cancel: cancel,
		ms:     ms,

		opts:       opts,
		inputPath:  inputPath,
		outputPath: outputPath,

		fw:       fw,
		encodeCh: make(chan struct{}, 1),
	}, nil
}

func (w *watcher) run() error {
	defer w.close()

	done := make(chan error, 2)
	go func() { done <- w.watchLoop(w.ctx) }()
	go func() { done <- w.encodeLoop(w.ctx) }()

	err := <-done
	w.close()
	<-done
	return err
}

func (w *watcher) close() {
	w.cancel()
	w.fw.Close()
}

func (w *watcher) requestEncode() {
	select {
	case w.encodeCh <- struct{}{}:
	default:
	}
}

// ensureAddWatch (re)adds the watch on the input path, waiting for the file
// to reappear if it was renamed away, and returns its modification time.
func (w *watcher) ensureAddWatch(ctx context.Context) (time.Time, error) {
	for {
		err := w.fw.Add(w.inputPath)
		if err == nil {
			st, err := os.Stat(w.inputPath)
			if err == nil {
				return st.ModTime(), nil
			}
		}

		select {
		case <-time.After(time.Millisecond * 50):
		case <-ctx.Done():
			return time.Time{}, ctx.Err()
		}
	}
}

func (w *watcher) watchLoop(ctx context.Context) error {
	lastModified, err := w.ensureAddWatch(ctx)
	if err != nil {
		return err
	}
	w.ms.Log.Info.Printf("watching %v...", w.ms.HumanPath(w.inputPath))
	w.requestEncode()

	eatBurstTimer := time.NewTimer(0)
	<-eatBurstTimer.C
	pollTicker := time.NewTicker(time.Second * 10)
	defer pollTicker.Stop()

	pendingChange := false
	for {
		select {
		case <-pollTicker.C:
			mt, err := w.ensureAddWatch(ctx)
			if err != nil {
				return err
			}
			if !mt.Equal(lastModified) {
				lastModified = mt
				w.requestEncode()
			}
		case ev, ok := <-w.fw.Events:
			if !ok {
				return nil
			}
			w.ms.Log.Debug.Printf("received file system event %v", ev)
			if ev.Has(fsnotify.Remove) || ev.Has(fsnotify.Rename) {
				mt, err := w.ensureAddWatch(ctx)
				if err != nil {
					return err
				}
				lastModified = mt
			}
			pendingChange = true
			eatBurstTimer.Reset(time.Millisecond * 16)
		case <-eatBurstTimer.C:
			if pendingChange {
				pendingChange = false
				w.requestEncode()
			}
		case err, ok := <-w.fw.Errors:
			if !ok {
				return nil
			}
			w.ms.Log.Error.Printf("watch error: %v", err)
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (w *watcher) encodeLoop(ctx context.Context) error {
	for {
		select {
		case <-w.encodeCh:
		case <-ctx.Done():
			return ctx.Err()
		}

		start := time.Now()
		ectx, cancel := log.WithTimeout(ctx, time.Minute)
		err := encode(ectx, w.ms, w.opts, w.inputPath, w.outputPath)
		cancel()
		if err != nil {
			w.ms.Log.Error.Printf("failed to encode %v: %v", w.ms.HumanPath(w.inputPath), err)
			continue
		}
		w.ms.Log.Success.Printf("successfully encoded %v to %v in %s",
			w.ms.HumanPath(w.inputPath), w.ms.HumanPath(w.outputPath), time.Since(start).Round(time.Millisecond))
	}
}
