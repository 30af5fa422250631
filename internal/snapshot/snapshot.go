// Package snapshot reads and writes whole mind maps.
//
// A snapshot is the root node tree plus the direction policy. Parent links
// are never stored; they are rebuilt after decoding, and the decoded tree
// must pass node.Validate.
package snapshot

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/dshills/mindstorm/internal/engine/layout"
	"github.com/dshills/mindstorm/internal/engine/node"
)

// Errors returned while decoding.
var (
	ErrNoRoot        = errors.New("snapshot has no root node")
	ErrUnknownFormat = errors.New("unknown snapshot format")
)

// Data is a serializable mind map.
type Data struct {
	NodeData  *node.Node       `json:"nodeData" yaml:"nodeData"`
	Direction layout.Direction `json:"direction" yaml:"direction"`
}

// New returns a map holding only a root with the given label.
func New(label string) *Data {
	return &Data{
		NodeData:  node.New(label, node.AsRoot()),
		Direction: layout.Both,
	}
}

// Format is a snapshot encoding.
type Format int

const (
	FormatJSON Format = iota
	FormatYAML
)

func (f Format) String() string {
	switch f {
	case FormatJSON:
		return "json"
	case FormatYAML:
		return "yaml"
	default:
		return fmt.Sprintf("Format(%d)", int(f))
	}
}

// ParseFormat parses "json", "yaml" or "yml".
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(s, ".")) {
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return FormatJSON, fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
}

// FormatFor picks the format from a file extension.
func FormatFor(path string) (Format, error) {
	return ParseFormat(filepath.Ext(path))
}

// Decode reads a snapshot. A missing direction defaults to both sides. The
// top node is marked as root and the tree is validated.
func Decode(r io.Reader, f Format) (*Data, error) {
	data := &Data{Direction: layout.Both}
	var err error
	switch f {
	case FormatJSON:
		err = json.NewDecoder(r).Decode(data)
	case FormatYAML:
		err = yaml.NewDecoder(r).Decode(data)
	default:
		return nil, fmt.Errorf("%w: %v", ErrUnknownFormat, f)
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", f, err)
	}
	if data.NodeData == nil {
		return nil, ErrNoRoot
	}
	data.NodeData.Root = true
	node.RecomputeParentLinks(data.NodeData)
	if err := node.Validate(data.NodeData); err != nil {
		return nil, fmt.Errorf("decode %s: %w", f, err)
	}
	return data, nil
}

// Encode writes a snapshot.
func Encode(w io.Writer, data *Data, f Format) error {
	if data == nil || data.NodeData == nil {
		return ErrNoRoot
	}
	switch f {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(data)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(data); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("%w: %v", ErrUnknownFormat, f)
	}
}

// Load reads the snapshot at path, choosing the format by extension.
func Load(path string) (*Data, error) {
	f, err := FormatFor(path)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	data, err := Decode(file, f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return data, nil
}

// Save writes data to path atomically: it writes a temporary file in the
// same directory and renames it over path.
func Save(path string, data *Data) error {
	f, err := FormatFor(path)
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if err := Encode(tmp, data, f); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
