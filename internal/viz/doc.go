// Package viz draws run feedback in the terminal.
//
//   - [Progress]: Bubble Tea model tracking rendered frames
//   - [Canvas]: Braille-based pixel canvas used for trajectory previews
//   - [RunSummary]: styled summary of a finished run
//
// # Key Bindings
//
//	q, Ctrl+C - cancel the run; the view exits once the pipeline stops
package viz
