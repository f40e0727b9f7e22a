// Package proc launches and supervises the encoder processes behind a
// recording session.
//
// Capture processes outlive the request that started them, so handles are
// detached from any context and controlled explicitly: cooperative stop by
// writing the encoder's quit key to stdin, suspend and resume through
// process signals, and bounded waits so shutdown escalation never hangs.
package proc
