package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dshills/mindstorm/internal/engine/layout"
	"github.com/dshills/mindstorm/internal/engine/node"
	"github.com/dshills/mindstorm/internal/export"
	"github.com/dshills/mindstorm/internal/snapshot"
)

// =============================================================================
// NEW COMMAND
// =============================================================================

func newNewCmd(c *cli) *cobra.Command {
	var (
		label string
		force bool
	)
	cmd := &cobra.Command{
		Use:   "new FILE",
		Short: "Create a map holding only a root node",
		Long:  "Create a map file holding only a root node. The extension picks the\nformat: .json, .yaml or .yml.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			if !force {
				if _, err := os.Stat(path); err == nil {
					return fmt.Errorf("%s already exists (use --force to overwrite)", path)
				}
			}
			data := snapshot.New(label)
			data.Direction = c.dir
			if err := snapshot.Save(path, data); err != nil {
				return err
			}
			c.logger.Info("created %s", path)
			return nil
		},
	}
	cmd.Flags().StringVarP(&label, "label", "l", "Central Topic", "root label")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing file")
	return cmd
}

// =============================================================================
// PRINT COMMAND
// =============================================================================

func newPrintCmd(c *cli) *cobra.Command {
	var opts export.OutlineOptions
	var all bool
	cmd := &cobra.Command{
		Use:   "print FILE",
		Short: "Print a map as an indented outline",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := snapshot.Load(args[0])
			if err != nil {
				return err
			}
			opts.Visible = !all
			opts.Markers = true
			_, err = io.WriteString(cmd.OutOrStdout(), export.Outline(data.NodeData, opts))
			return err
		},
	}
	cmd.Flags().BoolVarP(&all, "all", "a", false, "include the children of collapsed nodes")
	cmd.Flags().StringVar(&opts.Indent, "indent", "  ", "indent per level")
	return cmd
}

// =============================================================================
// EXPORT COMMAND
// =============================================================================

// exportFormat is an output format of export and watch.
type exportFormat string

const (
	formatMarkdown exportFormat = "md"
	formatJSON     exportFormat = "json"
	formatYAML     exportFormat = "yaml"
)

var errUnknownExportFormat = errors.New("unknown export format")

// resolveFormat picks the format from the flag, falling back to the output
// file extension, then Markdown.
func resolveFormat(flag, out string) (exportFormat, error) {
	if flag == "" && out != "" {
		if f, err := snapshot.FormatFor(out); err == nil {
			return exportFormat(f.String()), nil
		}
		return formatMarkdown, nil
	}
	switch strings.ToLower(flag) {
	case "", "md", "markdown":
		return formatMarkdown, nil
	case "json":
		return formatJSON, nil
	case "yaml", "yml":
		return formatYAML, nil
	default:
		return "", fmt.Errorf("%w: %q", errUnknownExportFormat, flag)
	}
}

// writeExport renders data in format f to w.
func writeExport(w io.Writer, data *snapshot.Data, f exportFormat) error {
	switch f {
	case formatMarkdown:
		_, err := io.WriteString(w, export.Markdown(data.NodeData))
		return err
	case formatJSON:
		return snapshot.Encode(w, data, snapshot.FormatJSON)
	case formatYAML:
		return snapshot.Encode(w, data, snapshot.FormatYAML)
	default:
		return fmt.Errorf("%w: %q", errUnknownExportFormat, f)
	}
}

// exportFile renders the map at path to out, or to stdout when out is
// empty.
func exportFile(stdout io.Writer, path, out string, f exportFormat) error {
	data, err := snapshot.Load(path)
	if err != nil {
		return err
	}
	if out == "" {
		return writeExport(stdout, data, f)
	}
	file, err := os.Create(out)
	if err != nil {
		return err
	}
	if err := writeExport(file, data, f); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

func newExportCmd(c *cli) *cobra.Command {
	var format, out string
	cmd := &cobra.Command{
		Use:   "export FILE",
		Short: "Export a map as Markdown, JSON or YAML",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := resolveFormat(format, out)
			if err != nil {
				return err
			}
			if err := exportFile(cmd.OutOrStdout(), args[0], out, f); err != nil {
				return err
			}
			if out != "" {
				c.logger.Info("exported %s to %s as %s", args[0], out, f)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "", "output format: md, json or yaml")
	cmd.Flags().StringVarP(&out, "output", "o", "", "output file (default stdout)")
	return cmd
}

// =============================================================================
// LAYOUT COMMAND
// =============================================================================

func newLayoutCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "layout FILE",
		Short: "Print the computed box of every visible node",
		Long:  "Lay the map out and print one line per visible node in pre-order:\nid, x, y, width, height, side and label.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, err := c.openEngine(args[0])
			if err != nil {
				return err
			}
			defer eng.Close()
			writeLayout(cmd.OutOrStdout(), eng.Root(), eng.Layout())
			return nil
		},
	}
}

func writeLayout(w io.Writer, root *node.Node, res *layout.Result) {
	b := res.Bounds()
	fmt.Fprintf(w, "# direction=%s bounds=%d,%d %dx%d boxes=%d\n", res.Direction, b.X, b.Y, b.W, b.H, res.Len())
	node.Walk(root, func(n *node.Node) bool {
		box, ok := res.Box(n.ID)
		if !ok {
			return true
		}
		side := "root"
		if box.Side != node.SideNone {
			side = box.Side.String()
		}
		fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%d\t%s\t%s\n",
			n.ID, box.X, box.Y, box.W, box.H, side, strings.ReplaceAll(n.Label, "\n", " "))
		return true
	})
}
