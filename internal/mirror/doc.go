// Package mirror copies published artifacts to a secondary directory in
// batches. Copies are verified and atomic; failures are logged and never
// surface to the scoring path.
package mirror
