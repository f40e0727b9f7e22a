// Package capture synthesizes encoder invocations for recording streams.
//
// A Synthesizer is a pure mapping from (platform, device, project,
// parameters) to the argument vector of one ffmpeg capture process. It
// performs no I/O and never inspects the host: the platform tag is chosen
// by the caller, which keeps every variant testable from any OS.
package capture
