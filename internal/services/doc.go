// Package services defines shared utilities consumed by the recording,
// export, and device components.
//
// Key responsibilities:
//   - Context helpers that stamp session identifiers, project names, and
//     correlation identifiers for logging and tracing.
//   - Structured error markers plus the Wrap helper that classify failures
//     (device, launch, validation, tool, ...) for the IPC boundary.
//
// Use these helpers when wiring new components so operational behaviour
// (error handling, observability) stays uniform across the system.
package services
