// Package config loads, normalizes, and validates ethogram configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours the ETHOGRAM_CONFIG environment
// fallback. The Config type is the read-only experiment registry: the
// timebase (frame rate and period schedule), the stimulus registry with each
// channel's detection mapping, and the thresholds used by the classifiers and
// quality gates.
//
// Algorithm packages receive the values they need explicitly; nothing reads
// configuration through globals.
package config
