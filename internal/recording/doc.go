// Package recording manages the lifecycle of capture sessions.
//
// A session owns one encoder process per configured input. All processes
// start together against a shared start timestamp, pause and resume as a
// group, and stop through a graceful-then-forced escalation. Metadata is
// written only after every process has exited so it always describes a
// finished recording.
package recording
