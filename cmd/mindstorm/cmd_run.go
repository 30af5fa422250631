package main

import (
	"github.com/spf13/cobra"

	"github.com/dshills/mindstorm/internal/engine"
	"github.com/dshills/mindstorm/internal/script"
	"github.com/dshills/mindstorm/internal/snapshot"
)

// =============================================================================
// RUN COMMAND
// =============================================================================

func newRunCmd(c *cli) *cobra.Command {
	var (
		mapPath string
		save    bool
		printMD bool
	)
	cmd := &cobra.Command{
		Use:   "run SCRIPT",
		Short: "Run a Lua script against a map",
		Long: "Run a Lua script with the mm module bound to a map. Without --map the\n" +
			"script starts from a blank map. --save writes the result back to the\n" +
			"map file.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var eng *engine.Engine
			var err error
			if mapPath != "" {
				eng, err = c.openEngine(mapPath)
				if err != nil {
					return err
				}
			} else {
				eng = engine.NewBlank("Central Topic", c.engineOptions()...)
			}
			defer eng.Close()

			err = script.RunFile(cmd.Context(), eng, args[0],
				script.WithTimeout(c.cfg.Script.Timeout.Std()),
				script.WithOutput(cmd.OutOrStdout()),
				script.WithLogger(c.logger),
			)
			if err != nil {
				return err
			}

			if save && mapPath != "" {
				if err := snapshot.Save(mapPath, eng.Snapshot()); err != nil {
					return err
				}
				c.logger.Info("saved %s", mapPath)
			}
			if printMD {
				_, err = cmd.OutOrStdout().Write([]byte(eng.Markdown()))
			}
			return err
		},
	}
	cmd.Flags().StringVarP(&mapPath, "map", "m", "", "map file to load")
	cmd.Flags().BoolVarP(&save, "save", "s", false, "write the map back after the script")
	cmd.Flags().BoolVarP(&printMD, "print", "p", false, "print the resulting map as Markdown")
	return cmd
}
