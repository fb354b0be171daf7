package wire

import (
	"fmt"
	"math"
)

// IBT tags, see spec.md §4.1.
const (
	IBTInt    = 0
	IBTFloat  = 1
	IBTBool   = 2
	IBTString = 3
	IBTTable  = 4
	IBTNil    = 5
)

// Value is an IBT-encodable value. Exactly one of the typed fields is
// meaningful, selected by Tag.
type Value struct {
	Tag     byte
	Int     int64
	Float   float64
	Bool    bool
	Str     string
	Entries []Entry // Tag == IBTTable, insertion order preserved (spec.md §9 open question)
}

// Entry is one key/value pair of an IBT table, in encode/decode order.
type Entry struct {
	Key Value
	Val Value
}

func NilValue() Value          { return Value{Tag: IBTNil} }
func BoolValue(b bool) Value   { return Value{Tag: IBTBool, Bool: b} }
func StringValue(s string) Value { return Value{Tag: IBTString, Str: s} }

// NumberValue builds an IBT integer or float value using the source's own
// heuristic (spec.md §4.1): integral values within [-2^31, 2^31) use tag 0,
// everything else (non-integral, or out of that range) uses tag 1.
func NumberValue(f float64) Value {
	if f == math.Trunc(f) && f >= -(1<<31) && f < (1<<31) {
		return Value{Tag: IBTInt, Int: int64(f)}
	}
	return Value{Tag: IBTFloat, Float: f}
}

// TableValue builds an IBT table from an ordered slice of entries. Order is
// preserved on the wire, both ways.
func TableValue(entries []Entry) Value {
	return Value{Tag: IBTTable, Entries: entries}
}

// EncodeIBT appends the wire encoding of v to w.
func EncodeIBT(w *Writer, v Value) error {
	w.U8(v.Tag)
	switch v.Tag {
	case IBTInt:
		w.U64(uint64(v.Int))
	case IBTFloat:
		w.U64(math.Float64bits(v.Float))
	case IBTBool:
		if v.Bool {
			w.U8(1)
		} else {
			w.U8(0)
		}
	case IBTString:
		w.CString(v.Str)
	case IBTTable:
		if len(v.Entries) > 255 {
			return fmt.Errorf("wire: ibt table too large: %d entries", len(v.Entries))
		}
		w.U8(uint8(len(v.Entries)))
		for _, e := range v.Entries {
			if err := EncodeIBT(w, e.Key); err != nil {
				return err
			}
		}
		for _, e := range v.Entries {
			if err := EncodeIBT(w, e.Val); err != nil {
				return err
			}
		}
	case IBTNil:
		// no body
	default:
		return fmt.Errorf("wire: unknown ibt tag %d", v.Tag)
	}
	return nil
}

// DecodeIBT reads one IBT value from r.
func DecodeIBT(r *Reader) (Value, error) {
	tag, err := r.U8()
	if err != nil {
		return Value{}, err
	}
	switch tag {
	case IBTInt:
		u, err := r.U64()
		if err != nil {
			return Value{}, err
		}
		return Value{Tag: IBTInt, Int: int64(u)}, nil
	case IBTFloat:
		u, err := r.U64()
		if err != nil {
			return Value{}, err
		}
		return Value{Tag: IBTFloat, Float: math.Float64frombits(u)}, nil
	case IBTBool:
		u, err := r.U8()
		if err != nil {
			return Value{}, err
		}
		return Value{Tag: IBTBool, Bool: u != 0}, nil
	case IBTString:
		s, err := r.CString()
		if err != nil {
			return Value{}, err
		}
		return Value{Tag: IBTString, Str: s}, nil
	case IBTTable:
		n, err := r.U8()
		if err != nil {
			return Value{}, err
		}
		keys := make([]Value, n)
		for i := range keys {
			keys[i], err = DecodeIBT(r)
			if err != nil {
				return Value{}, err
			}
		}
		entries := make([]Entry, n)
		for i := range entries {
			v, err := DecodeIBT(r)
			if err != nil {
				return Value{}, err
			}
			entries[i] = Entry{Key: keys[i], Val: v}
		}
		return Value{Tag: IBTTable, Entries: entries}, nil
	case IBTNil:
		return Value{Tag: IBTNil}, nil
	default:
		return Value{}, fmt.Errorf("wire: unknown ibt tag %d", tag)
	}
}
