// Package evkv implements a single-threaded, non-blocking, event-driven
// TCP key-value server.
//
// A process-wide string-to-string store is mutated by a single cooperative
// loop: one readiness wait (poll(2)) per iteration drives non-blocking
// reads and writes across the listening socket and every live connection.
// Requests and responses are framed on the wire with a 4-byte
// little-endian length prefix; see wire.go for the exact layout.
package evkv
