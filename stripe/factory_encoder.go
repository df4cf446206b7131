package stripe

import (
	"encoding/binary"
	"fmt"

	"github.com/orcstripe/orcstripe/errs"
	"github.com/orcstripe/orcstripe/schema"
)

// BuildColumnEncoder constructs the ColumnStripeEncoder tree for col,
// recursing into its children for Struct/List/Map/Union, selecting
// Integer RLE v2 (DirectV2/DictionaryV2) over v1 per useV2. The writer
// never dictionary-encodes strings; every String/Varchar/Char column
// is built as StringDirectColumnEncoder regardless of how the source
// data was originally encoded. order is the byte order Float/Double
// columns write their Data stream in (binary.LittleEndian for every
// ORC file in the wild).
func BuildColumnEncoder(sch *schema.Schema, col schema.Column, useV2 bool, order binary.ByteOrder) (ColumnStripeEncoder, error) {
	switch col.Type.Kind {
	case schema.KindBoolean:
		return NewBooleanColumnEncoder(col.Index), nil

	case schema.KindByte:
		return NewByteColumnEncoder(col.Index), nil

	case schema.KindShort:
		return NewShortColumnEncoder(col.Index, useV2), nil
	case schema.KindInt:
		return NewIntColumnEncoder(col.Index, useV2), nil
	case schema.KindLong:
		return NewLongColumnEncoder(col.Index, useV2), nil
	case schema.KindDate:
		return NewDateColumnEncoder(col.Index, useV2), nil

	case schema.KindFloat:
		return NewFloatColumnEncoder(col.Index, order), nil
	case schema.KindDouble:
		return NewDoubleColumnEncoder(col.Index, order), nil

	case schema.KindString, schema.KindVarchar, schema.KindChar:
		return NewStringDirectColumnEncoder(col.Index, useV2), nil

	case schema.KindBinary:
		return NewBinaryColumnEncoder(col.Index, useV2), nil

	case schema.KindDecimal:
		return NewDecimalColumnEncoder(col.Index, col.Type.Scale, useV2), nil

	case schema.KindTimestamp, schema.KindTimestampWithLocalTZ:
		return NewTimestampColumnEncoder(col.Index, useV2), nil

	case schema.KindStruct:
		fields := make([]ColumnStripeEncoder, len(col.Type.Children))
		for i, child := range col.Type.Children {
			childCol, err := sch.ByIndex(child.Index)
			if err != nil {
				return nil, err
			}
			fields[i], err = BuildColumnEncoder(sch, childCol, useV2, order)
			if err != nil {
				return nil, err
			}
		}

		return NewStructColumnEncoder(col.Index, fields), nil

	case schema.KindList:
		elemCol, err := sch.ByIndex(col.Type.Children[0].Index)
		if err != nil {
			return nil, err
		}
		element, err := BuildColumnEncoder(sch, elemCol, useV2, order)
		if err != nil {
			return nil, err
		}

		return NewListColumnEncoder(col.Index, useV2, element), nil

	case schema.KindMap:
		keyCol, err := sch.ByIndex(col.Type.Children[0].Index)
		if err != nil {
			return nil, err
		}
		valueCol, err := sch.ByIndex(col.Type.Children[1].Index)
		if err != nil {
			return nil, err
		}
		keys, err := BuildColumnEncoder(sch, keyCol, useV2, order)
		if err != nil {
			return nil, err
		}
		values, err := BuildColumnEncoder(sch, valueCol, useV2, order)
		if err != nil {
			return nil, err
		}

		return NewMapColumnEncoder(col.Index, useV2, keys, values), nil

	case schema.KindUnion:
		variants := make([]ColumnStripeEncoder, len(col.Type.Children))
		for i, child := range col.Type.Children {
			variantCol, err := sch.ByIndex(child.Index)
			if err != nil {
				return nil, err
			}
			variants[i], err = BuildColumnEncoder(sch, variantCol, useV2, order)
			if err != nil {
				return nil, err
			}
		}

		return NewUnionColumnEncoder(col.Index, variants), nil

	default:
		return nil, fmt.Errorf("stripe: column %q has unsupported kind %s: %w", col.Path, col.Type.Kind, errs.ErrUnsupportedTypeVariant)
	}
}

// directOrV2 reports the ColumnEncoding for a column that uses
// Integer RLE directly (no dictionary), matching the corresponding
// ColumnStripeEncoder's own ColumnEncoding() logic.
func directOrV2(useV2 bool) ColumnEncoding {
	if useV2 {
		return ColumnEncoding{Kind: EncodingDirectV2}
	}

	return ColumnEncoding{Kind: EncodingDirect}
}

// collectColumnEncodings walks col (and its children) in the same
// shape as BuildColumnEncoder, recording the ColumnEncoding every
// built encoder would report for its own column. Kept as a standalone
// walk, rather than threading an accumulator through
// ColumnStripeEncoder itself, since write-side encodings are fully
// determined by (kind, useV2) before any row is encoded.
func collectColumnEncodings(sch *schema.Schema, col schema.Column, useV2 bool, out map[int]ColumnEncoding) error {
	switch col.Type.Kind {
	case schema.KindBoolean, schema.KindByte, schema.KindFloat, schema.KindDouble, schema.KindUnion:
		out[col.Index] = ColumnEncoding{Kind: EncodingDirect}

	case schema.KindShort, schema.KindInt, schema.KindLong, schema.KindDate,
		schema.KindString, schema.KindVarchar, schema.KindChar, schema.KindBinary,
		schema.KindDecimal, schema.KindTimestamp, schema.KindTimestampWithLocalTZ,
		schema.KindList, schema.KindMap:
		out[col.Index] = directOrV2(useV2)

	case schema.KindStruct:
		out[col.Index] = ColumnEncoding{Kind: EncodingDirect}
	}

	for _, child := range col.Type.Children {
		childCol, err := sch.ByIndex(child.Index)
		if err != nil {
			return err
		}
		if err := collectColumnEncodings(sch, childCol, useV2, out); err != nil {
			return err
		}
	}

	return nil
}
