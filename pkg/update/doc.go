// Package update provides small, dependency-free helpers for deciding whether a
// pinned jextract build should move to a newer one.
//
// It is designed for build tooling that pins the generator version in a file
// and refreshes that pin on demand from the public build listing.
//
// This package intentionally does not perform network access, file I/O, or
// downloads. It focuses on parsing a listing, picking the compatible build, and
// comparing it with the currently pinned version.
//
// Version model
//   - Identifiers look like "25-jextract+2-4": toolchain major 25, main build 2,
//     sub build 4. A missing sub build ("25-jextract+3") counts as 0.
//   - Listings embed identifiers as "Build 25-jextract+2-4"; the pinned file holds
//     the bare form without the "Build " prefix.
//   - Builds order by (main, sub). The major only filters compatibility.
//   - The first compatible build in listing order is selected, not the greatest.
package update
