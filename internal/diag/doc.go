// Package diag defines the diagnostic model of the analyzer: codes, severities,
// the Bag accumulator and the Reporter contract between pipeline stages and
// their callers.
//
// Diagnostics are created in stage-local coordinates and translated into
// original-document coordinates once, at pipeline exit. Nothing in this
// package performs translation; see the stage package.
package diag
