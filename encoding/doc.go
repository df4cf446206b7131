// Package encoding provides the run-length-encoded integer and byte
// codecs a stripe's streams are built from.
//
// # Overview
//
// ORC encodes its byte, boolean and integer streams as one of four
// run-length schemes, chosen by stream kind rather than by column type:
//
// Byte RLE - Byte streams (Byte column data, Union tags, and the bytes
// underneath Boolean RLE):
//   - Literal runs and repeat runs, state-machine driven
//   - MAX_LITERAL_LENGTH=128, MIN_REPEAT_LENGTH=3, MAX_REPEAT_LENGTH=130
//
// Boolean RLE - Boolean streams, built directly atop Byte RLE by
// reinterpreting each decoded byte as 8 MSB-first bits.
//
// Integer RLE v1 - older ORC writer streams (short-repeat/literal runs
// with delta encoding), selected when a stripe's ColumnEncoding reports
// Direct/Dictionary rather than DirectV2/DictionaryV2.
//
// Integer RLE v2 - current ORC writer streams: four sub-encodings
// (SHORT_REPEAT, DIRECT, PATCHED_BASE, DELTA) chosen per run by the
// two-bit encoding tag at the start of each run's header byte.
//
//	dec := encoding.NewIntRleV2Decoder(r, true) // signed
//	v, err := dec.Next()
//
// # Buffer pooling
//
// Encoders draw their output buffers from internal/pool.ByteBuffer,
// matching the pooled-buffer discipline used throughout this module's
// write path.
//
// # Thread safety
//
// Encoders and decoders are not safe for concurrent use; callers
// serialize access per stream, matching how a stripe's own column
// encoders/decoders are used (one per column, one stream at a time).
package encoding
