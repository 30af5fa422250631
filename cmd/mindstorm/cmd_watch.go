package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/dshills/mindstorm/internal/watcher"
)

// =============================================================================
// WATCH COMMAND
// =============================================================================

func newWatchCmd(c *cli) *cobra.Command {
	var format, out string
	cmd := &cobra.Command{
		Use:   "watch FILE",
		Short: "Export a map again every time it changes",
		Long:  "Export the map once, then again after every change to the file,\nuntil interrupted.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := resolveFormat(format, out)
			if err != nil {
				return err
			}
			return c.watch(cmd.Context(), cmd.OutOrStdout(), args[0], out, f)
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "", "output format: md, json or yaml")
	cmd.Flags().StringVarP(&out, "output", "o", "", "output file (default stdout)")
	return cmd
}

func (c *cli) watch(ctx context.Context, stdout io.Writer, path, out string, f exportFormat) error {
	if err := exportFile(stdout, path, out, f); err != nil {
		return err
	}
	c.logger.Info("watching %s", path)
	return watcher.Watch(ctx, path, func(ev watcher.Event) {
		if !ev.Op.Has(watcher.OpWrite) && !ev.Op.Has(watcher.OpCreate) {
			return
		}
		if out == "" {
			fmt.Fprintln(stdout)
		}
		if err := exportFile(stdout, path, out, f); err != nil {
			// A half-written file fails to decode; the next write fixes it.
			c.logger.Warn("export %s: %v", path, err)
			return
		}
		c.logger.Debug("re-exported %s (%s)", path, ev.Op)
	}, watcher.WithDebounce(c.cfg.Watch.Debounce.Std()))
}
