/*
Package flow interprets the conversation script of one chat session.

A Session walks the ordered steps (bot, input, redirect) of the configured script.
Bot steps are paced by the scheduler, input steps suspend until the host submits a
value, and the redirect step applies the consent gate and the hand-off policy.

	sess, err := flow.NewSession(cfg, flow.WithRenderer(host))
	if err != nil {
		return err
	}
	defer sess.Shutdown()

	sess.Start()
	_ = sess.Open(ctx)           // runs until the first input step
	_ = sess.Submit(ctx, "Maria") // validates, stores and resumes

Host events (Open, Submit, SetConsent, ChooseChannel, Close) and timer callbacks all
funnel into a single advancing pass guarded by FlowState.Processing, so duplicate
triggers collapse into one advancement.
*/
package flow
