package event

import "github.com/dshills/mindstorm/internal/event/topic"

// Topics published by the engine.
const (
	// TopicOperation prefixes every mutation; the kind is the second
	// segment, e.g. "operation.removeNode".
	TopicOperation topic.Topic = "operation"

	// TopicOperations matches every mutation.
	TopicOperations topic.Topic = "operation.*"

	// TopicSelectionChanged is published when the current node or the
	// selection changes.
	TopicSelectionChanged topic.Topic = "selection.changed"

	// TopicDirectionChanged is published when the direction policy changes.
	TopicDirectionChanged topic.Topic = "layout.direction"

	// TopicFocusChanged is published when focus mode starts or ends.
	TopicFocusChanged topic.Topic = "layout.focus"

	// TopicTreeRefreshed is published when the whole tree is replaced.
	TopicTreeRefreshed topic.Topic = "tree.refreshed"

	// TopicUndo is published after an undo, carrying the undone operation.
	TopicUndo topic.Topic = "history.undo"
)
