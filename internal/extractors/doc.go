// Package extractors provides implementations of the TextExtractor interface
// for the document formats Lexis accepts. Each extractor knows how to pull
// plain text out of a specific MIME type.
//
// Extractors are registered with the Registry at startup; the Registry picks
// the highest-priority extractor for an upload's MIME type.
package extractors
