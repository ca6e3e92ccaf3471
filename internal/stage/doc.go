// Package stage runs the command script of one sound stage.
//
// A stage directory holds a SLUMBER script and one or more WAV samples. The
// script is parsed once, then executed forever on the scheduler as a chain
// of continuation segments: every wait, fade and swap suspends the stage and
// hands control back to the event loop. When the script runs out it starts
// again from the top, first finishing any swap begun in the previous cycle.
package stage
