// Package dsstore reads, validates, mutates and writes the .DS_Store
// container format used by the macOS Finder to store per-directory
// presentation metadata (icon positions, view style, window bounds,
// folder background, inline property lists, ...).
//
// The on-disk format combines a buddy allocator (the "Bud1" block at the
// start of the file) with a B-tree of sorted (filename, type code) records
// rooted at the allocator's "DSDB" table-of-contents entry. No public
// specification of the format exists; this package follows the
// reverse-engineered bit layout used by libdsstore-compatible readers.
//
// Reading a container only populates the record set; the allocator and
// B-tree are rebuilt from scratch every time a container is written, so a
// round trip through Read and Write does not reproduce the original bytes,
// only an equivalent, valid container (see Container.Write).
package dsstore
