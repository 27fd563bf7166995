/*
Package runner implements the interactive host loop of a chat session.

It acts as the bridge between a flow.Session and a terminal or a pipe. The runner
reads lines from an IOHandler, maps slash commands to session events and lets the
handler draw the render commands the session emits. It returns once the visitor is
handed off, quits or the input ends.

# Key Components

  - Runner: the read-dispatch loop with OS signal handling.
  - IOHandler: decouples how the session is drawn and how input arrives.
  - TextHandler: human readable output for interactive use.
  - JSONHandler: JSON-Lines output for scripted hosts.

# Usage

	h := runner.NewTextHandler(os.Stdin, os.Stdout)
	sess, err := widget.Load(ctx, req, flow.WithRenderer(h))
	if err != nil {
		log.Fatal(err)
	}
	defer sess.Shutdown()

	r := runner.New(runner.WithInputHandler(h))
	if err := r.Run(ctx, sess); err != nil {
		log.Fatal(err)
	}

# Commands

Lines starting with a slash are commands; anything else answers the pending question.

	/consent  toggle the privacy consent checkbox
	/privacy  show the privacy policy
	/app      pick the app channel
	/web      pick the web channel
	/open     open the chat
	/close    close the chat
	/help     list the commands
	/quit     leave (also "quit" and "exit")
*/
package runner
