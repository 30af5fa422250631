package node

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Side is the half-plane a top-level branch occupies when the tree is laid
// out on both sides of the root.
type Side int

const (
	// SideNone means no side has been assigned yet.
	SideNone Side = iota
	// SideLeft places the branch to the left of the root.
	SideLeft
	// SideRight places the branch to the right of the root.
	SideRight
)

// String returns the side name.
func (s Side) String() string {
	switch s {
	case SideLeft:
		return "left"
	case SideRight:
		return "right"
	default:
		return ""
	}
}

// ParseSide parses a side name. The empty string yields SideNone.
func ParseSide(s string) (Side, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return SideNone, nil
	case "left", "l", "lhs":
		return SideLeft, nil
	case "right", "r", "rhs":
		return SideRight, nil
	default:
		return SideNone, fmt.Errorf("unknown side %q", s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s Side) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Side) UnmarshalText(text []byte) error {
	v, err := ParseSide(string(text))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// Style holds the visual overrides of a node. Empty fields mean "inherit".
type Style struct {
	FontSize   string `json:"fontSize,omitempty" yaml:"fontSize,omitempty"`
	Color      string `json:"color,omitempty" yaml:"color,omitempty"`
	Background string `json:"background,omitempty" yaml:"background,omitempty"`
	FontWeight string `json:"fontWeight,omitempty" yaml:"fontWeight,omitempty"`
}

// Merge returns a copy of s with every non-empty field of patch applied.
// Keys absent from patch keep their current value.
func (s *Style) Merge(patch *Style) *Style {
	out := &Style{}
	if s != nil {
		*out = *s
	}
	if patch == nil {
		return out
	}
	if patch.FontSize != "" {
		out.FontSize = patch.FontSize
	}
	if patch.Color != "" {
		out.Color = patch.Color
	}
	if patch.Background != "" {
		out.Background = patch.Background
	}
	if patch.FontWeight != "" {
		out.FontWeight = patch.FontWeight
	}
	return out
}

// IsZero reports whether no style field is set.
func (s *Style) IsZero() bool {
	return s == nil || *s == Style{}
}

// Image is an inline picture shown inside a node.
type Image struct {
	URL    string `json:"url" yaml:"url"`
	Name   string `json:"name,omitempty" yaml:"name,omitempty"`
	Width  int    `json:"width" yaml:"width"`
	Height int    `json:"height" yaml:"height"`
}

// Attachment is a file linked from a node.
type Attachment struct {
	URL  string `json:"url" yaml:"url"`
	Name string `json:"name" yaml:"name"`
}

// Node is a labeled vertex of the mind-map tree.
//
// Parent is derived state and is never serialized; see RecomputeParentLinks.
type Node struct {
	ID       string  `json:"id" yaml:"id"`
	Label    string  `json:"topic" yaml:"topic"`
	Root     bool    `json:"root,omitempty" yaml:"root,omitempty"`
	Expanded *bool   `json:"expanded,omitempty" yaml:"expanded,omitempty"`
	Side     Side    `json:"side,omitempty" yaml:"side,omitempty"`
	Children []*Node `json:"children,omitempty" yaml:"children,omitempty"`

	// Decorative payload, opaque to the core.
	Style     *Style         `json:"style,omitempty" yaml:"style,omitempty"`
	Tags      []string       `json:"tags,omitempty" yaml:"tags,omitempty"`
	Icons     []string       `json:"icons,omitempty" yaml:"icons,omitempty"`
	HyperLink string         `json:"hyperLink,omitempty" yaml:"hyperLink,omitempty"`
	Image     *Image         `json:"image,omitempty" yaml:"image,omitempty"`
	File      *Attachment    `json:"file,omitempty" yaml:"file,omitempty"`
	AIAnswer  bool           `json:"aiAnswer,omitempty" yaml:"aiAnswer,omitempty"`
	Extra     map[string]any `json:"extra,omitempty" yaml:"extra,omitempty"`

	Parent *Node `json:"-" yaml:"-"`
}

// Option configures a Node during creation.
type Option func(*Node)

// WithID sets an explicit id instead of generating one.
func WithID(id string) Option {
	return func(n *Node) {
		if id != "" {
			n.ID = id
		}
	}
}

// WithChildren appends children to the new node.
func WithChildren(children ...*Node) Option {
	return func(n *Node) {
		n.Children = append(n.Children, children...)
	}
}

// AsRoot marks the node as the tree root.
func AsRoot() Option {
	return func(n *Node) {
		n.Root = true
	}
}

// WithSide assigns the branch side.
func WithSide(s Side) Option {
	return func(n *Node) {
		n.Side = s
	}
}

// Collapsed creates the node with its children hidden.
func Collapsed() Option {
	return func(n *Node) {
		n.SetExpanded(false)
	}
}

// New creates a node with a fresh id unless WithID is given.
func New(label string, opts ...Option) *Node {
	n := &Node{Label: label}
	for _, opt := range opts {
		opt(n)
	}
	if n.ID == "" {
		n.ID = NewID()
	}
	return n
}

// NewID returns a fresh opaque node id.
func NewID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// IsExpanded reports whether the node's children take part in layout.
// An unset flag counts as expanded.
func (n *Node) IsExpanded() bool {
	return n.Expanded == nil || *n.Expanded
}

// SetExpanded sets the expanded flag.
func (n *Node) SetExpanded(expanded bool) {
	v := expanded
	n.Expanded = &v
}

// HasChildren reports whether the node has any children in the model.
func (n *Node) HasChildren() bool {
	return len(n.Children) > 0
}

// VisibleChildren returns the children that participate in layout.
// A collapsed node has none.
func (n *Node) VisibleChildren() []*Node {
	if !n.IsExpanded() {
		return nil
	}
	return n.Children
}

// Index returns the position of n among its parent's children, or -1 when
// n has no parent.
func (n *Node) Index() int {
	if n.Parent == nil {
		return -1
	}
	for i, c := range n.Parent.Children {
		if c == n {
			return i
		}
	}
	return -1
}

// NextSibling returns the following sibling or nil.
func (n *Node) NextSibling() *Node {
	i := n.Index()
	if i < 0 || i+1 >= len(n.Parent.Children) {
		return nil
	}
	return n.Parent.Children[i+1]
}

// PrevSibling returns the preceding sibling or nil.
func (n *Node) PrevSibling() *Node {
	i := n.Index()
	if i <= 0 {
		return nil
	}
	return n.Parent.Children[i-1]
}

// Depth returns the distance from the root, which has depth 1.
func (n *Node) Depth() int {
	d := 1
	for p := n.Parent; p != nil; p = p.Parent {
		d++
	}
	return d
}

// Branch returns the top-level ancestor of n (the child of the root that
// contains n). The root itself returns nil.
func (n *Node) Branch() *Node {
	if n.Parent == nil {
		return nil
	}
	b := n
	for b.Parent != nil && b.Parent.Parent != nil {
		b = b.Parent
	}
	return b
}

// String returns a short description for logs.
func (n *Node) String() string {
	if n == nil {
		return "<nil>"
	}
	return fmt.Sprintf("%s(%q)", n.ID, n.Label)
}
