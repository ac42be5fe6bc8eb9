// Package identity derives the canonical location keys used to match scanned
// entities against persisted catalog rows.
//
// A Key is the canonical URL of a location: file://<absolute clean path> for
// filesystem entries and s3://<bucket>/<object> for object storage entries.
// Keys are plain strings, so they compare with == and order with <.
//
// Paths are made absolute and cleaned lexically. Symlinks are not resolved and
// case is not folded: two spellings the filesystem treats as distinct stay distinct.
package identity
