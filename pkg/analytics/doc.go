// Package analytics builds the analytics event stream and the sinks that consume it.
//
// An Emitter stamps every event with its configured wire name, the visitor and
// session identifiers and the custom tags, then hands it to a ports.EventSink.
// Sinks compose: Multi fans out, Redact masks payload keys, DataLayer keeps the
// flattened objects a tag manager would receive, LogSink writes them to slog.
package analytics
