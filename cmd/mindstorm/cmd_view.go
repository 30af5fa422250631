package main

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"sync/atomic"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/spf13/cobra"

	"github.com/dshills/mindstorm/internal/engine"
	"github.com/dshills/mindstorm/internal/metrics"
	"github.com/dshills/mindstorm/internal/snapshot"
	"github.com/dshills/mindstorm/internal/tui"
	"github.com/dshills/mindstorm/internal/watcher"
)

// =============================================================================
// VIEW COMMAND
// =============================================================================

func newViewCmd(c *cli) *cobra.Command {
	var (
		metricsAddr string
		noWatch     bool
	)
	cmd := &cobra.Command{
		Use:   "view FILE",
		Short: "Edit a map interactively in the terminal",
		Long: "Open the map in the terminal viewer. A missing file starts a new map\n" +
			"that is written on save. The file is reloaded when another program\n" +
			"changes it.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if metricsAddr != "" {
				c.cfg.Metrics.Enabled = true
				c.cfg.Metrics.Addr = metricsAddr
			}
			return c.view(cmd.Context(), args[0], !noWatch)
		},
	}
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address")
	cmd.Flags().BoolVar(&noWatch, "no-watch", false, "do not reload the file when it changes")
	return cmd
}

func (c *cli) view(ctx context.Context, path string, watch bool) error {
	data, err := snapshot.Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		data = snapshot.New("Central Topic")
		data.Direction = c.dir
	} else if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var extra []engine.Option
	var collector *metrics.Collector
	if c.cfg.Metrics.Enabled {
		collector = metrics.New(nil)
		extra = append(extra, engine.WithLayoutObserver(collector.ObserveLayout))
	}
	eng, err := engine.New(data, c.engineOptions(extra...)...)
	if err != nil {
		return err
	}
	defer eng.Close()

	if collector != nil {
		if err := collector.Attach(eng.Bus()); err != nil {
			return err
		}
		defer collector.Detach()
		go func() {
			if err := collector.Serve(ctx, c.cfg.Metrics.Addr); err != nil {
				c.logger.Error("metrics server: %v", err)
			}
		}()
		c.logger.Info("serving metrics on %s", c.cfg.Metrics.Addr)
	}

	keymap := tui.DefaultKeymap()
	if err := keymap.Apply(c.cfg.Keymap); err != nil {
		return err
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err := screen.Init(); err != nil {
		return err
	}
	defer screen.Fini()
	if c.cfg.Logging.File == "" {
		// stderr shares the terminal with the screen.
		c.logger.Disable()
		defer c.logger.Enable()
	}
	screen.EnableMouse()

	// Our own saves come back as file events; ignore them for a while so
	// they do not reload the map and clear the undo log.
	var ignoreUntil atomic.Int64
	debounce := c.cfg.Watch.Debounce.Std()
	save := func(d *snapshot.Data) error {
		ignoreUntil.Store(time.Now().Add(2*debounce + time.Second).UnixNano())
		return snapshot.Save(path, d)
	}

	v := tui.New(screen, eng,
		tui.WithKeymap(keymap),
		tui.WithSaver(save),
		tui.WithLogger(c.logger),
	)

	if watch {
		if _, err := os.Stat(path); err == nil {
			go c.reloadOnChange(ctx, path, debounce, &ignoreUntil, v)
		}
	}
	return v.Run(ctx)
}

// reloadOnChange reloads the viewer whenever the file at path changes.
func (c *cli) reloadOnChange(ctx context.Context, path string, debounce time.Duration, ignoreUntil *atomic.Int64, v *tui.Viewer) {
	err := watcher.Watch(ctx, path, func(ev watcher.Event) {
		if ev.Op.Has(watcher.OpRemove) || ev.Op.Has(watcher.OpRename) {
			return
		}
		if ev.Timestamp.UnixNano() < ignoreUntil.Load() {
			return
		}
		data, err := snapshot.Load(path)
		if err != nil {
			c.logger.Warn("reload %s: %v", path, err)
			return
		}
		if err := v.Reload(data); err != nil {
			c.logger.Warn("reload %s: %v", path, err)
		}
	}, watcher.WithDebounce(debounce))
	if err != nil {
		c.logger.Error("%v", err)
	}
}
