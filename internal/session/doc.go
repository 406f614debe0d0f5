// Package session drives one telemetry file through cleaning, the pre-flight
// gate, classification, alignment, the post-score flags and publication, and
// runs many files through a bounded worker pool.
//
// Every file ends in exactly one Outcome. Fatal QC failures append one error
// row and copy the raw inputs into the forensic directory; flagged sessions
// append one flag row per code and write their output to quarantine; clean
// sessions are published atomically to the output directory.
package session
