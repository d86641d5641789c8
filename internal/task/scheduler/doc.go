// Package scheduler provides a deterministic, single-threaded model of an
// event loop.
//
// Work is submitted as one of two classes:
//   - microtasks: strict FIFO, drained to exhaustion whenever the loop yields
//   - macrotasks: ordered by (delay, submission order); one runs per cycle
//
// Delays are ordering keys only; nothing waits on the wall clock. Task errors
// and panics are isolated to the task and routed to the OnError hook.
package scheduler
