package mutate

import (
	"maps"
	"slices"
	"strings"

	"github.com/dshills/mindstorm/internal/engine/node"
)

// Patch lists decorative attributes to change on a node. Nil fields are
// left alone; an empty non-nil slice clears tags or icons.
type Patch struct {
	Label     *string
	Style     *node.Style
	Tags      []string
	Icons     []string
	HyperLink *string
	Image     *node.Image
	File      *node.Attachment
	AIAnswer  *bool
	Extra     map[string]any
}

// Reshape applies patch to target. Style and Extra are merged per key;
// other fields replace the current value.
func (m *Mutator) Reshape(target *node.Node, patch Patch) (Result, error) {
	if err := m.check(KindReshapeNode, target); err != nil {
		return Result{}, err
	}
	origin := node.CloneShallow(target)

	if patch.Label != nil {
		if l := strings.TrimSpace(*patch.Label); l != "" {
			target.Label = l
		}
	}
	if patch.Style != nil {
		target.Style = target.Style.Merge(patch.Style)
	}
	if patch.Tags != nil {
		target.Tags = slices.Clone(patch.Tags)
	}
	if patch.Icons != nil {
		target.Icons = slices.Clone(patch.Icons)
	}
	if patch.HyperLink != nil {
		target.HyperLink = *patch.HyperLink
	}
	if patch.Image != nil {
		img := *patch.Image
		target.Image = &img
	}
	if patch.File != nil {
		f := *patch.File
		target.File = &f
	}
	if patch.AIAnswer != nil {
		target.AIAnswer = *patch.AIAnswer
	}
	if patch.Extra != nil {
		if target.Extra == nil {
			target.Extra = make(map[string]any, len(patch.Extra))
		}
		maps.Copy(target.Extra, patch.Extra)
	}

	op := m.commit(KindReshapeNode, target, &ReshapePayload{
		Origin: origin,
		Result: node.CloneShallow(target),
	})
	return Result{Node: target, Selection: target, Op: op}, nil
}

// SetLabel commits an edited label. Surrounding space is trimmed. A blank
// label keeps the previous one and an unchanged label is a no-op; neither
// emits anything.
func (m *Mutator) SetLabel(target *node.Node, text string) (Result, error) {
	if err := m.check(KindFinishEdit, target); err != nil {
		return Result{}, err
	}
	label := strings.TrimSpace(text)
	if label == "" || label == target.Label {
		return Result{Node: target}, nil
	}
	origin := target.Label
	target.Label = label
	op := m.commit(KindFinishEdit, target, &LabelPayload{Origin: origin, Label: label})
	return Result{Node: target, Selection: target, Op: op}, nil
}

// SetStyle replaces target's style. A nil or empty style clears it.
func (m *Mutator) SetStyle(target *node.Node, style *node.Style) (Result, error) {
	if err := m.check(KindEditStyle, target); err != nil {
		return Result{}, err
	}
	origin := node.CloneShallow(target).Style
	if style.IsZero() {
		target.Style = nil
	} else {
		s := *style
		target.Style = &s
	}
	op := m.commit(KindEditStyle, target, &StylePayload{Origin: origin, Style: node.CloneShallow(target).Style})
	return Result{Node: target, Selection: target, Op: op}, nil
}

// SetTags replaces target's tags.
func (m *Mutator) SetTags(target *node.Node, tags []string) (Result, error) {
	return m.setList(KindEditTags, target, func(n *node.Node) *[]string { return &n.Tags }, tags)
}

// SetIcons replaces target's icons.
func (m *Mutator) SetIcons(target *node.Node, icons []string) (Result, error) {
	return m.setList(KindEditIcons, target, func(n *node.Node) *[]string { return &n.Icons }, icons)
}

func (m *Mutator) setList(kind Kind, target *node.Node, sel func(*node.Node) *[]string, values []string) (Result, error) {
	if err := m.check(kind, target); err != nil {
		return Result{}, err
	}
	field := sel(target)
	origin := slices.Clone(*field)
	var next []string
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			next = append(next, v)
		}
	}
	*field = next
	op := m.commit(kind, target, &ListPayload{Origin: origin, Values: slices.Clone(next)})
	return Result{Node: target, Selection: target, Op: op}, nil
}

// SetExpanded shows or hides target's children. Nothing is emitted when
// the state does not change.
func (m *Mutator) SetExpanded(target *node.Node, expanded bool) (Result, error) {
	if !m.owns(target) {
		return Result{}, fail(KindExpandNode, target, ErrNodeNotFound)
	}
	if target.IsExpanded() == expanded {
		return Result{Node: target}, nil
	}
	target.SetExpanded(expanded)
	op := m.commit(KindExpandNode, target, &ExpandPayload{Expanded: expanded})
	return Result{Node: target, Selection: target, Op: op}, nil
}

// ToggleExpanded flips target's expanded state.
func (m *Mutator) ToggleExpanded(target *node.Node) (Result, error) {
	if target == nil {
		return Result{}, fail(KindExpandNode, nil, ErrNodeNotFound)
	}
	return m.SetExpanded(target, !target.IsExpanded())
}

// RestoreAttributes puts back the label and decorative attributes saved in
// origin. It is the inverse of attribute edits, skips the before-hook and
// emits reshapeNode.
func (m *Mutator) RestoreAttributes(target, origin *node.Node) (Result, error) {
	if !m.owns(target) {
		return Result{}, fail(KindReshapeNode, target, ErrNodeNotFound)
	}
	if origin == nil {
		return Result{}, fail(KindReshapeNode, target, ErrInvalidNode)
	}
	prev := node.CloneShallow(target)
	target.Label = origin.Label
	node.CopyAttributes(target, origin)
	op := m.commit(KindReshapeNode, target, &ReshapePayload{
		Origin: prev,
		Result: node.CloneShallow(target),
	})
	return Result{Node: target, Selection: target, Op: op}, nil
}

// Unlink removes n without consulting the before-hook. It is the inverse
// of an insertion and emits removeNode.
func (m *Mutator) Unlink(n *node.Node) (Result, error) {
	if !m.owns(n) {
		return Result{}, fail(KindRemoveNode, n, ErrNodeNotFound)
	}
	if n.Root || n.Parent == nil {
		return Result{}, fail(KindRemoveNode, n, ErrRootImmutable)
	}
	rec := m.remove(n)
	op := m.commit(KindRemoveNode, n, rec)
	return Result{Node: n, Selection: node.Find(m.root, rec.SelectionID), Op: op}, nil
}
