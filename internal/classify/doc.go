// Package classify implements the per-frame Layer1 classifier, its
// smooth-then-classify denoised variant, and the Layer2 sliding-window
// consensus.
//
// All functions operate on plain slices and label streams so they can be
// exercised without a session. Classifier resolves the configured thresholds
// and window lengths once per batch.
package classify
