// Package ipc exposes the daemon over JSON-RPC Unix sockets and ships the
// matching client used by the CLI.
//
// It owns socket lifecycle management, request/response DTOs, and conversions
// between daemon state and lightweight wire representations. Method errors
// cross the wire as strings prefixed with their taxonomy kind; SplitErrorKind
// recovers the classification on the client side so commands can phrase
// failures without sentinel values.
//
// Reuse these types when adding new RPC endpoints to keep the protocol stable
// and compatible with existing command implementations.
package ipc
