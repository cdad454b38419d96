// Package tui renders the connectivity indicator in a terminal.
//
// [Model] is a Bubble Tea model driven by a [Controller]: snapshots arrive on
// the controller's subscription and key presses call Toggle. [Run] owns the
// program lifecycle. [RunPlain] is the fallback for output that is not a
// terminal; it prints one line per state change.
package tui
