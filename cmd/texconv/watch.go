package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/gogpu/dxtex"
)

// settle is how long a file must stay quiet before it is converted.
const settle = 200 * time.Millisecond

func newWatchCmd() *cobra.Command {
	var flags presetFlags
	cmd := &cobra.Command{
		Use:   "watch DIR...",
		Short: "Convert textures whenever they change",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := flags.resolve()
			if err != nil {
				return err
			}
			w, err := newWatcher(flags.outDir, p)
			if err != nil {
				return err
			}
			defer w.close()
			for _, dir := range args {
				if err := w.add(dir); err != nil {
					return err
				}
			}
			return w.run(cmd.Context())
		},
	}
	flags.register(cmd.Flags())
	return cmd
}

// isTexture reports whether the file extension names a container the
// engine reads.
func isTexture(path string) bool {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	switch ext {
	case "dds", "tga", "hdr", "exr":
		return true
	}
	_, ok := dxtex.WICCodecByExt(ext)
	return ok
}

type watcher struct {
	fs     *fsnotify.Watcher
	outDir string
	preset Preset

	// convert is replaced in tests.
	convert func(in, dir string, p Preset) (string, error)

	mu      sync.Mutex
	pending map[string]*time.Timer
	wg      sync.WaitGroup
}

func newWatcher(outDir string, p Preset) (*watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(outDir)
	if err != nil {
		fw.Close()
		return nil, err
	}
	return &watcher{
		fs:      fw,
		outDir:  abs,
		preset:  p,
		convert: convertFile,
		pending: make(map[string]*time.Timer),
	}, nil
}

// add watches dir and its sub-directories, skipping the output directory.
func (w *watcher) add(dir string) error {
	return filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if w.isOutput(path) {
			return filepath.SkipDir
		}
		if err := w.fs.Add(path); err != nil {
			return fmt.Errorf("watch %s: %w", path, err)
		}
		dxtex.Logger().Debug("watching", "dir", path)
		return nil
	})
}

func (w *watcher) isOutput(path string) bool {
	abs, err := filepath.Abs(path)
	return err == nil && abs == w.outDir
}

func (w *watcher) run(ctx context.Context) error {
	dxtex.Logger().Info("watching for changes", "preset", w.preset.Format, "out", w.outDir)
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			w.handle(ev)
		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			if errors.Is(err, fsnotify.ErrEventOverflow) {
				dxtex.Logger().Warn("events dropped", "err", err)
				continue
			}
			return err
		}
	}
}

func (w *watcher) handle(ev fsnotify.Event) {
	if ev.Has(fsnotify.Create) {
		if fi, err := os.Stat(ev.Name); err == nil && fi.IsDir() {
			if err := w.add(ev.Name); err != nil {
				dxtex.Logger().Error("watch new directory", "dir", ev.Name, "err", err)
			}
			return
		}
	}
	if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
		return
	}
	if !isTexture(ev.Name) || w.isOutput(filepath.Dir(ev.Name)) {
		return
	}
	w.schedule(ev.Name)
}

// schedule converts path once it has been quiet for settle.
func (w *watcher) schedule(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if old, ok := w.pending[path]; ok && old.Stop() {
		w.wg.Done()
	}
	w.wg.Add(1)
	var t *time.Timer
	t = time.AfterFunc(settle, func() {
		defer w.wg.Done()
		w.mu.Lock()
		if w.pending[path] == t {
			delete(w.pending, path)
		}
		w.mu.Unlock()

		if _, err := w.convert(path, w.outDir, w.preset); err != nil {
			dxtex.Logger().Error("convert", "path", path, "err", err)
		}
	})
	w.pending[path] = t
}

func (w *watcher) close() error {
	w.mu.Lock()
	for path, t := range w.pending {
		if t.Stop() {
			w.wg.Done()
		}
		delete(w.pending, path)
	}
	w.mu.Unlock()
	w.wg.Wait()
	return w.fs.Close()
}
