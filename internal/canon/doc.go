// Package canon provides the deterministic value codec for fairway.
//
// This package contains the constrained value tree, the canonical JSON
// serializer, and the SHA-256 content hasher. All other internal packages
// import canon; canon imports nothing internal. This keeps the codec the
// foundational layer with no circular dependencies.
//
// Canonical form rules:
//   - Object keys sorted by Unicode code-point order at every level
//   - Arrays preserve input order
//   - No insignificant whitespace
//   - Integral numbers serialize without decimal point or exponent
//   - Non-integral numbers use the shortest round-trip decimal form
//   - Negative zero normalizes to 0
//   - Strings NFC-normalized, minimally escaped, non-ASCII passed through
//   - NaN and Infinity are rejected
//
// Identical logical content always produces identical canonical bytes, and
// therefore the identical content hash, on every platform and in every run.
package canon
