// Package media defines the project, layout, and session metadata types shared
// by the capture, recording, and export components.
//
// ProjectConfig describes what a recording captures (microphones, webcam,
// screen area) and round-trips to the JSON project file format. Metadata is
// the durable record a stopped session writes next to its output files; the
// export pipeline trusts that file plus the presence of the named stream
// files and nothing else. Layout enumerates the six compositing arrangements.
package media
