// Package diag carries fire-and-forget misconfiguration notices.
package diag

import "log"

// Sink receives diagnostic messages. Emit must not block or fail.
type Sink interface {
	Emit(msg string)
}

// LogSink writes diagnostics through the standard logger.
type LogSink struct {
	// Prefix is prepended to every message, e.g. "smooth: ".
	Prefix string
}

// Emit logs msg.
func (s LogSink) Emit(msg string) {
	log.Printf("%s%s", s.Prefix, msg)
}

// Discard drops every message.
type Discard struct{}

// Emit does nothing.
func (Discard) Emit(string) {}

// FakeSink records diagnostics for test assertions.
type FakeSink struct {
	Messages []string
}

// Emit records msg.
func (f *FakeSink) Emit(msg string) {
	f.Messages = append(f.Messages, msg)
}
