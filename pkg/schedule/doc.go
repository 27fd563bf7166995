/*
Package schedule provides the timing primitives of the chat engine.

Every pause of the conversation goes through this package: randomized typing
delays, cancellable sleeps, the pair of staggered notifications shown while the
chat is closed and the countdown that resolves the hand-off choice. All of them
read time from a clock.Clock so tests can drive them with clock.NewMock.
*/
package schedule
