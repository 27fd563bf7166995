// Package delivery fans a finalized lead out to best-effort sinks.
//
// Every sink runs concurrently and independently. A failing or panicking sink
// yields an error in its Result and is logged; it never cancels, blocks or rolls
// back its siblings, and nothing is retried.
package delivery
