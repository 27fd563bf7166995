/*
Package leadchat is a scripted, human-mimicking chat engine that captures visitor contact
data and hands the visitor off to a messaging channel.

It runs a configurable dialogue with realistic pacing (typing pauses, staggered
notifications), validates and stores name, e-mail and phone, gates the hand-off on
explicit privacy consent, remembers the visitor across page loads in an expiring ledger
and fans the finished lead out to best-effort delivery sinks.

# Concept

The Widget owns everything shared by the sessions of one visitor: the ledger and its
storage backend, the delivery sinks and the analytics stream. Each page load produces a
flow.Session, which interprets the step script and talks to the host UI through render
commands (ports.Renderer). The host feeds user events back: Open, Submit, SetConsent,
ChooseChannel and Close. This hexagonal split lets the engine run behind a terminal, an
HTTP handler or a test recorder alike.

# Key Features

  - Expiring ledger: every entry carries its own expiry and is evicted on read or sweep.
    Storage failures degrade to a no-persistence mode instead of failing the chat.
  - Single advancing pass: duplicate submits and racing timers collapse into one step.
  - Consent gate: the hand-off waits for consent, which is recorded with its declaration.
  - Best-effort fan-out: webhook, spreadsheet, local backup and e-mail sinks run
    concurrently and fail independently.

# Usage

	cfg, err := config.Load("widget.yaml")
	if err != nil {
		log.Fatal(err)
	}

	w, err := leadchat.New(cfg, leadchat.WithBackend(file.New("ledger.json")))
	if err != nil {
		log.Fatal(err)
	}

	req, _ := tracking.NewPageRequest("https://example.com/?utm_source=ads")
	sess, err := w.Load(ctx, req, flow.WithRenderer(myUI))
	if err != nil {
		log.Fatal(err)
	}
	defer sess.Shutdown()

	_ = sess.Open(ctx)
	_ = sess.Submit(ctx, "Maria")
*/
package leadchat
