// Package build runs one build pass of a content root into an in-memory
// file system and publishes it to disk.
//
// A pass is a fixed sequence of stages: load the theme, resolve content,
// render pages, copy assets, write feeds and write the root redirect. Each
// stage is timed and reported to the metrics recorder; the first failing
// stage aborts the pass. A Generator is reused across passes in server mode,
// and every pass starts from fresh state.
package build
