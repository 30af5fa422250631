// Package config loads mindstorm settings.
//
// Settings come from three layers, later layers overriding earlier ones:
//
//  1. Built-in defaults (Default)
//  2. The TOML file at DefaultPath, $MINDSTORM_CONFIG or WithPath
//  3. MINDSTORM_* environment variables
//
// Each layer is read into a map by the loader sub-package, the maps are
// deep-merged and the result is decoded into a Config, rejecting unknown
// keys, and validated.
//
// # Configuration File
//
//	[layout]
//	direction = "both"
//	hGap = 4
//	vGap = 1
//
//	[editor]
//	newTopicName = "new node"
//	maxUndo = 500 # 0, the default, keeps every entry
//
//	[watch]
//	debounce = "250ms"
//
//	[keymap]
//	"ctrl+n" = "add-child"
//
// # Environment
//
// MINDSTORM_LOG_LEVEL, MINDSTORM_DIRECTION, MINDSTORM_METRICS_ADDR,
// MINDSTORM_NEW_TOPIC, MINDSTORM_UNDO and MINDSTORM_WATCH_DEBOUNCE map to
// their settings directly. Any other MINDSTORM_SECTION_SOME_KEY variable
// sets section.someKey. Durations must carry a unit.
package config
