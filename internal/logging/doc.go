// Package logging configures slog for pocketbible.
//
// Console output goes to stderr through a tint handler, colored only when
// stderr is a terminal. With --debug (or logging.file set), records are also
// written as JSON to a size-rotated file under ~/.pocketbible/logs/, which
// the logs command can tail and follow.
package logging
