// Package daemon coordinates the long-running tutorec process.
//
// It wires configuration, the recording library, device discovery, the
// session manager, and the exporter into a single lifecycle with
// flock-based locking to prevent multiple instances. The daemon finalizes
// stopped recordings into the library, tracks the one in-flight export
// task, and caches device listings between hotplug events.
//
// Keep orchestration logic here: capture, merge, and storage details live
// in their respective packages while the daemon focuses on startup,
// shutdown, and high level coordination.
package daemon
