// Package topic names the events published on the mindstorm bus.
//
// Topics are dot-separated:
//
//	operation.addChild
//	operation.moveNodes
//	history.undo
//	selection.changed
//
// A subscription pattern may use "*" for exactly one segment and "**" for
// any number of segments, so "operation.*" sees every mutation while
// "**" sees everything:
//
//	topic.Topic("operation.removeNode").Matches("operation.*") // true
//	topic.Topic("layout.focus").Matches("operation.*")         // false
package topic
