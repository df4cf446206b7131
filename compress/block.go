package compress

import (
	"bufio"
	"fmt"
	"io"

	"github.com/orcstripe/orcstripe/errs"
)

// blockHeaderSize is the width of ORC's per-block length/original-bit
// header: 3 little-endian bytes.
const blockHeaderSize = 3

// BlockReader presents a sequence of ORC compression blocks as a
// single decompressed byte stream. Each block is prefixed by a 3-byte
// little-endian header encoding `(compressedLength << 1) | isOriginal`;
// when isOriginal is set the following compressedLength bytes are
// stored verbatim, otherwise they hold codec-compressed data that
// expands to at most the stripe's compression buffer size.
type BlockReader struct {
	r     *bufio.Reader
	codec Codec

	pending []byte // decoded bytes from the current block not yet consumed
	pos     int
	err     error
}

// NewBlockReader creates a BlockReader over r using codec to inflate
// each block. Pass a NoneCodec for CompressionNone streams, though
// callers typically skip block framing entirely in that case (see
// CompressionNone's special-casing in stripe.CompressStripeData and
// stripe.DecompressStripeData).
func NewBlockReader(r io.Reader, codec Codec) *BlockReader {
	return &BlockReader{r: bufio.NewReader(r), codec: codec}
}

// Read implements io.Reader, decoding further blocks as needed.
func (b *BlockReader) Read(p []byte) (int, error) {
	if b.pos == len(b.pending) {
		if b.err != nil {
			return 0, b.err
		}
		if err := b.fillBlock(); err != nil {
			b.err = err

			return 0, err
		}
	}

	n := copy(p, b.pending[b.pos:])
	b.pos += n

	return n, nil
}

// ReadByte implements io.ByteReader so decoders can read one byte at a
// time without an extra buffering layer.
func (b *BlockReader) ReadByte() (byte, error) {
	if b.pos == len(b.pending) {
		if b.err != nil {
			return 0, b.err
		}
		if err := b.fillBlock(); err != nil {
			b.err = err

			return 0, err
		}
	}

	v := b.pending[b.pos]
	b.pos++

	return v, nil
}

func (b *BlockReader) fillBlock() error {
	var header [blockHeaderSize]byte
	if _, err := io.ReadFull(b.r, header[:]); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return io.EOF
		}

		return fmt.Errorf("compress: read block header: %w", errs.ErrIo)
	}

	raw := uint32(header[0]) | uint32(header[1])<<8 | uint32(header[2])<<16
	isOriginal := raw&1 != 0
	length := int(raw >> 1)

	block := make([]byte, length)
	if _, err := io.ReadFull(b.r, block); err != nil {
		return fmt.Errorf("compress: read block body: %w", errs.ErrIo)
	}

	if isOriginal {
		b.pending = block
	} else {
		decoded, err := b.codec.Decompress(block)
		if err != nil {
			return err
		}
		b.pending = decoded
	}
	b.pos = 0

	return nil
}

// BlockWriter is the symmetric encoder for BlockReader: it splits a
// byte stream into bufferSize-sized chunks, compresses each with
// codec, and stores whichever of the compressed or raw form is
// smaller, setting the isOriginal bit accordingly (ORC writers never
// emit a compressed block bigger than the original).
type BlockWriter struct {
	w          io.Writer
	codec      Codec
	bufferSize int
	buf        []byte
}

// NewBlockWriter creates a BlockWriter over w, chunking at bufferSize
// bytes per block.
func NewBlockWriter(w io.Writer, codec Codec, bufferSize int) *BlockWriter {
	if bufferSize <= 0 {
		bufferSize = defaultLzoBufferSize
	}

	return &BlockWriter{w: w, codec: codec, bufferSize: bufferSize, buf: make([]byte, 0, bufferSize)}
}

// Write buffers data, flushing full-size blocks as they fill.
func (w *BlockWriter) Write(p []byte) (int, error) {
	total := len(p)
	for len(p) > 0 {
		room := w.bufferSize - len(w.buf)
		n := room
		if n > len(p) {
			n = len(p)
		}
		w.buf = append(w.buf, p[:n]...)
		p = p[n:]
		if len(w.buf) == w.bufferSize {
			if err := w.flushBlock(); err != nil {
				return 0, err
			}
		}
	}

	return total, nil
}

// Flush emits any partially filled block.
func (w *BlockWriter) Flush() error {
	if len(w.buf) == 0 {
		return nil
	}

	return w.flushBlock()
}

func (w *BlockWriter) flushBlock() error {
	compressed, err := w.codec.Compress(w.buf)
	if err != nil {
		return err
	}

	body := compressed
	original := false
	if len(compressed) >= len(w.buf) {
		body = w.buf
		original = true
	}

	raw := uint32(len(body)) << 1
	if original {
		raw |= 1
	}

	var header [blockHeaderSize]byte
	header[0] = byte(raw)
	header[1] = byte(raw >> 8)
	header[2] = byte(raw >> 16)

	if _, err := w.w.Write(header[:]); err != nil {
		return fmt.Errorf("compress: write block header: %w", errs.ErrIo)
	}
	if _, err := w.w.Write(body); err != nil {
		return fmt.Errorf("compress: write block body: %w", errs.ErrIo)
	}

	w.buf = w.buf[:0]

	return nil
}
