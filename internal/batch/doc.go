// Package batch runs the extraction pipeline over every video in a
// directory with a bounded worker pool, records a batch session in run
// history, and writes a plain-text processing report.
package batch
