// Package dedup holds the pure matching algorithms of the candidate
// identity deduplication engine: the Spanish phonetic encoder, the phone
// normalizer, the name similarity scorer and the match engine that
// scores a candidate against a population snapshot.
//
// Nothing in this package performs I/O or holds shared mutable state;
// population snapshots are passed in by callers (see internal/checker)
// and every function is safe for concurrent use.
package dedup
