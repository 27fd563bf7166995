// Package observability exposes the Prometheus instruments of the chat engine.
//
// Every method is safe on a nil *Metrics, so components record unconditionally
// and the host decides whether metrics exist at all.
package observability
