// Package frames holds the per-subject frame sequence and the run-length
// helpers every classification stage shares.
//
// A Table is zero-based and contiguous; its length is the unit for all window
// and interval arithmetic. Bouts and stimulus pulses are always derived on
// demand from the channels and never stored.
package frames
