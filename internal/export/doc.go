// Package export merges finished recordings into deliverable videos.
//
// An Exporter reads a project folder (canonical stream names plus
// metadata.json), builds the layout's encoder invocation and supervises the
// run, translating the encoder's machine progress lines into percentages.
// Exports run as cancellable tasks so callers can poll progress and abort.
package export
