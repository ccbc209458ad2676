// Package catalog keeps the table registry in step with a directory of
// definition files.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"sort"
	"sync"

	"github.com/JonMunkholm/tabledef/internal/core"
	"github.com/JonMunkholm/tabledef/internal/props"
	"github.com/fsnotify/fsnotify"
)

// Catalog loads definition files from Dir and registers them under their
// service names.
type Catalog struct {
	dir     string
	decoder *props.Decoder
	logger  *slog.Logger

	mu     sync.Mutex
	loaded map[string]bool
}

// New creates a catalog for dir. A nil logger uses slog.Default().
func New(dir string, logger *slog.Logger) *Catalog {
	if logger == nil {
		logger = slog.Default()
	}
	return &Catalog{
		dir:     dir,
		decoder: &props.Decoder{Logger: logger},
		logger:  logger,
		loaded:  make(map[string]bool),
	}
}

// Dir returns the watched directory.
func (c *Catalog) Dir() string { return c.dir }

// Services returns the service names loaded from the directory, sorted.
func (c *Catalog) Services() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	names := make([]string, 0, len(c.loaded))
	for name := range c.loaded {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Load decodes every definition file and replaces the registered
// definitions. Services whose file disappeared are unregistered.
// On error nothing is changed.
func (c *Catalog) Load() (int, error) {
	defs, err := c.decoder.LoadDir(c.dir)
	if err != nil {
		return 0, fmt.Errorf("load catalog: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	for name := range c.loaded {
		if _, ok := defs[name]; !ok {
			core.Unregister(name)
			delete(c.loaded, name)
			c.logger.Info("table removed", "service", name)
		}
	}
	for name, def := range defs {
		core.Replace(name, def)
		c.loaded[name] = true
	}
	return len(defs), nil
}

// Reload re-reads a single definition file. A file that no longer exists
// unregisters its service; a file that fails to decode leaves the previous
// definition in place.
func (c *Catalog) Reload(path string) error {
	name := props.ServiceName(path)

	def, err := c.decoder.LoadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			c.remove(name)
			return nil
		}
		return err
	}

	c.mu.Lock()
	core.Replace(name, def)
	c.loaded[name] = true
	c.mu.Unlock()

	c.logger.Info("table reloaded", "service", name, "path", path)
	return nil
}

func (c *Catalog) remove(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.loaded[name] {
		return
	}
	core.Unregister(name)
	delete(c.loaded, name)
	c.logger.Info("table removed", "service", name)
}

// Watch reloads definitions as files in the directory change, until ctx
// is done. Decode failures are logged and the previous definition kept.
func (c *Catalog) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(c.dir); err != nil {
		return fmt.Errorf("watch %s: %w", c.dir, err)
	}
	c.logger.Info("watching table definitions", "dir", c.dir)

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			c.handle(ev)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			c.logger.Warn("table watcher error", "error", err)
		}
	}
}

func (c *Catalog) handle(ev fsnotify.Event) {
	if !props.IsDefinitionFile(filepath.Base(ev.Name)) {
		return
	}

	switch {
	case ev.Has(fsnotify.Remove), ev.Has(fsnotify.Rename):
		c.remove(props.ServiceName(ev.Name))
	case ev.Has(fsnotify.Create), ev.Has(fsnotify.Write):
		if err := c.Reload(ev.Name); err != nil {
			c.logger.Error("table reload failed",
				"path", ev.Name,
				"error", err,
				"code", core.MapError(err).Code,
			)
		}
	}
}
