// Package compress implements ORC's stripe-level block compression:
// the 3-byte length-prefixed block framing shared by every compression
// kind, and a Codec per kind (None, Zlib, Snappy, Lzo, Lz4, Zstd).
//
// A compressed stream is a concatenation of blocks, each prefixed by
// `(compressedLength << 1) | isOriginal`. BlockReader/BlockWriter
// handle that framing; the Codec implementations only ever see one
// block's worth of bytes at a time.
//
// LZO is decode-only: the only LZO implementation available wraps a
// decompressor, and ORC readers never need to produce LZO output.
package compress
