// Package scheduler provides the cooperative event loop that drives slumber.
// It runs every callback on a single goroutine, one pass at a time: entries
// without a deadline and entries whose deadline has elapsed execute in the
// pass, entries with a future deadline wait in a min-heap for a later pass.
// When a pass executes nothing the loop sleeps a small idle quantum.
//
// Callbacks must never block. Anything that needs to wait re-enqueues itself
// with a deadline instead, and the continuation adapter (Step, Resume, Go)
// lets sequential procedures be written as straight-line segments that
// suspend between passes.
//
// Errors and panics raised by a callback are logged and contained to that
// callback. Shutdown actions registered with EnqueueShutdown run once, in
// registration order, when the scheduler stops.
package scheduler
