// Package main is the mindstorm command line: it creates, prints, exports,
// lays out, edits and scripts mind map files.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dshills/mindstorm/internal/config"
	"github.com/dshills/mindstorm/internal/engine"
	"github.com/dshills/mindstorm/internal/engine/layout"
	"github.com/dshills/mindstorm/internal/logging"
	"github.com/dshills/mindstorm/internal/snapshot"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// cli holds the global flags and what PersistentPreRunE builds from them.
type cli struct {
	configPath string
	logLevel   string
	direction  string

	cfg      *config.Config
	logger   *logging.Logger
	closeLog func() error
	dir      layout.Direction
	dirSet   bool
}

func newRootCmd() *cobra.Command {
	c := &cli{}
	root := &cobra.Command{
		Use:           "mindstorm",
		Short:         "Edit and lay out mind maps in the terminal",
		Long:          "mindstorm keeps mind maps as JSON or YAML files and lays them out as\nboxes and connectors for the terminal.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.setup(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if c.closeLog != nil {
				return c.closeLog()
			}
			return nil
		},
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&c.configPath, "config", "c", "", "path to the configuration file")
	flags.StringVar(&c.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	flags.StringVar(&c.direction, "direction", "", "layout direction (left, right, both)")

	root.AddCommand(
		newNewCmd(c),
		newPrintCmd(c),
		newExportCmd(c),
		newLayoutCmd(c),
		newViewCmd(c),
		newWatchCmd(c),
		newRunCmd(c),
		newVersionCmd(),
	)
	return root
}

// setup loads the configuration and applies the global flag overrides.
func (c *cli) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(config.WithPath(c.configPath))
	if err != nil {
		return err
	}
	if c.logLevel != "" {
		level, err := logging.ParseLevel(c.logLevel)
		if err != nil {
			return err
		}
		cfg.Logging.Level = level
	}
	c.dir = cfg.Layout.Direction
	if c.direction != "" {
		dir, err := layout.ParseDirection(c.direction)
		if err != nil {
			return err
		}
		c.dir, c.dirSet = dir, true
	}

	logger, closeLog, err := cfg.NewLogger()
	if err != nil {
		return err
	}
	c.cfg, c.logger, c.closeLog = cfg, logger, closeLog
	if cfg.Source != "" {
		logger.Debug("configuration loaded from %s", cfg.Source)
	}
	return nil
}

// engineOptions maps the configuration onto engine options. A --direction
// flag overrides the direction stored in the map file.
func (c *cli) engineOptions(extra ...engine.Option) []engine.Option {
	opts := []engine.Option{
		engine.WithLayoutConfig(c.cfg.LayoutConfig()),
		engine.WithNewTopicName(c.cfg.Editor.NewTopicName),
		engine.WithAllowUndo(c.cfg.Editor.AllowUndo),
		engine.WithMaxUndoEntries(c.cfg.Editor.MaxUndo),
		engine.WithLogger(c.logger),
	}
	if c.dirSet {
		opts = append(opts, engine.WithDirection(c.dir))
	}
	return append(opts, extra...)
}

// openEngine loads the map at path into a new engine.
func (c *cli) openEngine(path string, extra ...engine.Option) (*engine.Engine, error) {
	data, err := snapshot.Load(path)
	if err != nil {
		return nil, err
	}
	return engine.New(data, c.engineOptions(extra...)...)
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "mindstorm %s (commit %s, built %s)\n", version, commit, date)
		},
	}
}
