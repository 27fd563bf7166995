/*
Package ports defines the driven ports (interfaces) for the lead-capture chat engine.

These interfaces decouple the flow interpreter and the ledger from external
implementations, allowing the engine to work with various storage backends,
host user interfaces, analytics streams and delivery transports.

# Key Interfaces

  - Backend: raw key-value storage under the ledger (memory, file, sqlite, redis).
  - Renderer: receives render commands for the host UI.
  - EventSink: receives analytics events.
  - LeadSink: a best-effort destination for finalized leads.
*/
package ports
