// Package qc implements the session quality gates.
//
// Preflight runs the fatal checks against a raw, cleaned session in registry
// order and stops at the first failure. Postscore runs every non-fatal check
// against a classified session and reports all that trigger. Both return
// Failure values carrying a code from a closed registry plus compact metrics
// for the report row.
package qc
