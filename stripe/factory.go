package stripe

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/orcstripe/orcstripe/decoder"
	"github.com/orcstripe/orcstripe/encoding"
	"github.com/orcstripe/orcstripe/errs"
	"github.com/orcstripe/orcstripe/schema"
)

// BuildColumnDecoder constructs the decoder.ColumnDecoder tree for col,
// recursing into its children for Struct/List/Map/Union, wiring each
// stream the column declares (Present/Data/Length/Secondary/
// DictionaryData) out of streams, and selecting Integer RLE v1 vs v2
// per encodings' declared kind for col. writerLoc is the stripe's
// declared writer timezone (nil means UTC), consulted only by plain
// Timestamp columns. order is the byte order of Float/Double raw
// streams (binary.LittleEndian for every ORC file in the wild).
func BuildColumnDecoder(sch *schema.Schema, col schema.Column, encodings map[int]ColumnEncoding, streams *StreamMap, writerLoc *time.Location, order binary.ByteOrder) (decoder.ColumnDecoder, error) {
	present, err := buildPresentReader(col, streams)
	if err != nil {
		return nil, err
	}

	switch col.Type.Kind {
	case schema.KindBoolean:
		r, err := streams.GetByteReader(col.Index, StreamData)
		if err != nil {
			return nil, err
		}

		return decoder.NewBooleanColumnDecoder(col, present, r)

	case schema.KindByte:
		r, err := streams.GetByteReader(col.Index, StreamData)
		if err != nil {
			return nil, err
		}

		return decoder.NewByteColumnDecoder(col, present, r)

	case schema.KindShort, schema.KindInt, schema.KindLong, schema.KindDate:
		data, err := intSource(col, encodings, streams, StreamData, true)
		if err != nil {
			return nil, err
		}

		switch col.Type.Kind {
		case schema.KindShort:
			return decoder.NewShortColumnDecoder(col, present, data)
		case schema.KindInt:
			return decoder.NewIntColumnDecoder(col, present, data)
		case schema.KindDate:
			return decoder.NewDateColumnDecoder(col, present, data)
		default:
			return decoder.NewLongColumnDecoder(col, present, data)
		}

	case schema.KindFloat:
		r, err := streams.Get(col.Index, StreamData)
		if err != nil {
			return nil, err
		}

		return decoder.NewFloatColumnDecoder(col, present, r, order)

	case schema.KindDouble:
		r, err := streams.Get(col.Index, StreamData)
		if err != nil {
			return nil, err
		}

		return decoder.NewDoubleColumnDecoder(col, present, r, order)

	case schema.KindString, schema.KindVarchar, schema.KindChar:
		return buildStringDecoder(col, encodings, streams, present)

	case schema.KindBinary:
		lengths, err := intSource(col, encodings, streams, StreamLength, false)
		if err != nil {
			return nil, err
		}
		data, err := streams.Get(col.Index, StreamData)
		if err != nil {
			return nil, err
		}

		return decoder.NewBinaryColumnDecoder(col, present, lengths, data)

	case schema.KindDecimal:
		data, err := streams.GetByteReader(col.Index, StreamData)
		if err != nil {
			return nil, err
		}
		scales, err := intSource(col, encodings, streams, StreamSecondary, true)
		if err != nil {
			return nil, err
		}

		return decoder.NewDecimalColumnDecoder(col, present, data, scales)

	case schema.KindTimestamp, schema.KindTimestampWithLocalTZ:
		seconds, err := intSource(col, encodings, streams, StreamData, true)
		if err != nil {
			return nil, err
		}
		nanos, err := intSource(col, encodings, streams, StreamSecondary, false)
		if err != nil {
			return nil, err
		}

		return decoder.NewTimestampColumnDecoder(col, present, seconds, nanos, writerLoc)

	case schema.KindStruct:
		fields := make([]decoder.ColumnDecoder, len(col.Type.Children))
		for i, child := range col.Type.Children {
			childCol, err := sch.ByIndex(child.Index)
			if err != nil {
				return nil, err
			}
			fields[i], err = BuildColumnDecoder(sch, childCol, encodings, streams, writerLoc, order)
			if err != nil {
				return nil, err
			}
		}

		return decoder.NewStructColumnDecoder(col, present, fields)

	case schema.KindList:
		lengths, err := intSource(col, encodings, streams, StreamLength, false)
		if err != nil {
			return nil, err
		}
		elemCol, err := sch.ByIndex(col.Type.Children[0].Index)
		if err != nil {
			return nil, err
		}
		element, err := BuildColumnDecoder(sch, elemCol, encodings, streams, writerLoc, order)
		if err != nil {
			return nil, err
		}

		return decoder.NewListColumnDecoder(col, present, lengths, element)

	case schema.KindMap:
		lengths, err := intSource(col, encodings, streams, StreamLength, false)
		if err != nil {
			return nil, err
		}
		keyCol, err := sch.ByIndex(col.Type.Children[0].Index)
		if err != nil {
			return nil, err
		}
		valueCol, err := sch.ByIndex(col.Type.Children[1].Index)
		if err != nil {
			return nil, err
		}
		keys, err := BuildColumnDecoder(sch, keyCol, encodings, streams, writerLoc, order)
		if err != nil {
			return nil, err
		}
		values, err := BuildColumnDecoder(sch, valueCol, encodings, streams, writerLoc, order)
		if err != nil {
			return nil, err
		}

		return decoder.NewMapColumnDecoder(col, present, lengths, keys, values)

	case schema.KindUnion:
		tags, err := streams.GetByteReader(col.Index, StreamData)
		if err != nil {
			return nil, err
		}
		variants := make([]decoder.ColumnDecoder, len(col.Type.Children))
		for i, child := range col.Type.Children {
			variantCol, err := sch.ByIndex(child.Index)
			if err != nil {
				return nil, err
			}
			variants[i], err = BuildColumnDecoder(sch, variantCol, encodings, streams, writerLoc, order)
			if err != nil {
				return nil, err
			}
		}

		return decoder.NewUnionColumnDecoder(col, present, tags, variants)

	default:
		return nil, fmt.Errorf("stripe: column %q has unsupported kind %s: %w", col.Path, col.Type.Kind, errs.ErrUnsupportedTypeVariant)
	}
}

// buildPresentReader wraps col's Present stream, if the footer declared
// one; a column with no Present stream decodes as if every slot (at
// this level) were valid.
func buildPresentReader(col schema.Column, streams *StreamMap) (*decoder.PresentReader, error) {
	if !streams.Has(col.Index, StreamPresent) {
		return nil, nil
	}

	r, err := streams.GetByteReader(col.Index, StreamPresent)
	if err != nil {
		return nil, err
	}

	return decoder.NewPresentReader(r), nil
}

// buildStringDecoder dispatches to direct or dictionary string
// decoding per encodings' declared kind for col.
func buildStringDecoder(col schema.Column, encodings map[int]ColumnEncoding, streams *StreamMap, present *decoder.PresentReader) (decoder.ColumnDecoder, error) {
	enc, err := encodingFor(col, encodings)
	if err != nil {
		return nil, err
	}

	lengths, err := intSource(col, encodings, streams, StreamLength, false)
	if err != nil {
		return nil, err
	}

	if !enc.IsDictionary() {
		data, err := streams.Get(col.Index, StreamData)
		if err != nil {
			return nil, err
		}

		return decoder.NewStringDirectColumnDecoder(col, present, lengths, data)
	}

	dictData, err := streams.Get(col.Index, StreamDictionaryData)
	if err != nil {
		return nil, err
	}
	indices, err := intSource(col, encodings, streams, StreamData, false)
	if err != nil {
		return nil, err
	}

	return decoder.NewStringDictionaryColumnDecoder(col, present, enc.DictionarySize, lengths, dictData, indices)
}

// encodingFor looks up col's declared ColumnEncoding, reporting
// ErrInvalidColumnEncoding if the footer named no encoding for it.
func encodingFor(col schema.Column, encodings map[int]ColumnEncoding) (ColumnEncoding, error) {
	enc, ok := encodings[col.Index]
	if !ok {
		return ColumnEncoding{}, fmt.Errorf("stripe: column %d has no declared column encoding: %w", col.Index, errs.ErrInvalidColumnEncoding)
	}

	return enc, nil
}

// int64Source is satisfied by both encoding.IntRleV1Decoder and
// encoding.IntRleV2Decoder, letting intSource hand either one to the
// decoder package's column decoders without the caller ever needing
// to distinguish which RLE version was selected.
type int64Source interface {
	Next() (int64, error)
}

// intSource builds the signed or unsigned Integer RLE decoder (v1 or
// v2, selected by col's declared encoding) reading from the named
// stream.
func intSource(col schema.Column, encodings map[int]ColumnEncoding, streams *StreamMap, kind StreamKind, signed bool) (int64Source, error) {
	enc, err := encodingFor(col, encodings)
	if err != nil {
		return nil, err
	}

	r, err := streams.GetByteReader(col.Index, kind)
	if err != nil {
		return nil, err
	}

	if enc.UsesRleV2() {
		return encoding.NewIntRleV2Decoder(r, signed), nil
	}

	return encoding.NewIntRleV1Decoder(r, signed), nil
}
