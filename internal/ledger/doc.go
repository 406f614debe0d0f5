// Package ledger keeps the SQLite history of batch runs and the outcome of
// every processed session. It backs the history and status commands and is
// never consulted by the skip rule, which relies on the filesystem alone.
package ledger
