// Package viz shows a running simulation in the terminal.
//
// The canvas is downsampled and drawn with upper half blocks, so every
// terminal cell carries two pixels: the foreground colour is the top pixel
// and the background colour the bottom one. A side panel shows per-tick
// statistics and an asciigraph plot of absorbed photons.
//
// # Key Bindings
//
//	Space/P - Pause/Resume
//	R       - Clear the canvas
//	S       - Save a snapshot
//	T       - Cycle color themes
//	Q       - Quit
package viz
