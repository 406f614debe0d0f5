// Package behavior publishes the compact Behavior label streams from the
// Layer2 and Resistant outputs, including bounded gap repair on the denoised
// path.
package behavior
