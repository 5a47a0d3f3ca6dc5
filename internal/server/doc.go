// Package server implements snowbow's server mode: it serves the latest
// successful build from memory, watches the content root and rebuilds on
// change, and notifies browsers over a live-reload stream.
package server
