// Package scanner discovers the series and books currently present under a
// library root.
//
// A series is a folder that directly contains at least one supported book file
// (cbz, cbr, cb7, cbt, zip, rar, 7z, pdf, epub). Hidden files and folders are
// ignored. Filesystem handles file:// roots with filepath.WalkDir and
// ObjectStore handles s3:// roots through the storage client; Multi picks one
// by scheme.
//
// Scans are exhaustive: a read error fails the whole scan instead of returning
// a partial set, because the reconciler deletes whatever a scan does not report.
package scanner
