/*
Package domain contains the core domain models of the lead-capture chat engine.

It defines the entities shared by the ledger, the flow interpreter and the delivery
fan-out. This package is kept pure and free of I/O, following the same hexagonal
split used by the adapters and ports packages.

# Key Entities

  - VisitorRecord: the persisted, per-browser-profile visit and conversion ledger.
  - LeadRecord: the contact data produced by one chat session.
  - Step: one scripted instruction (BotStep, InputStep or RedirectStep).
  - FlowState: the runtime cursor and guards of a single chat session.
  - RenderCommand: a structural representation of what the host UI should display.
  - Event: an analytics event pushed to the host's event stream.
*/
package domain
