package packet

import (
	"fmt"

	"craftraw/internal/wire"
)

// FSRequest op codes, low nibble is the operation; high nibble 0x1 means
// file-open. spec.md §4.3.
const (
	FSOpExists       = 0
	FSOpIsDir        = 1
	FSOpIsReadOnly   = 2
	FSOpGetSize      = 3
	FSOpGetDrive     = 4
	FSOpGetCapacity  = 5
	FSOpGetFreeSpace = 6
	FSOpList         = 7
	FSOpAttributes   = 8
	FSOpFind         = 9
	FSOpMakeDir      = 10
	FSOpDelete       = 11
	FSOpCopy         = 12
	FSOpMove         = 13

	// FSOpOpenBase | (0..7) selects the open mode, see FSOpenModes.
	FSOpOpenBase = 0x10
	// FSOpOpenWriteConfirm is the response op used for every write-class
	// open regardless of which of the four write modes was requested.
	FSOpOpenWriteConfirm = 17
)

// FSOpenModes is the 8-entry mode table a file-open op's low 3 bits index
// into. Bit 0 distinguishes write-class (odd index) from read-class (even
// index). spec.md §4.3 transcribes this table verbatim, duplicates and all.
var FSOpenModes = [8]string{"r", "w", "r", "a", "rb", "wb", "rb", "ab"}

// IsFSOpenOp reports whether op is one of the 16..23 file-open codes.
func IsFSOpenOp(op uint8) bool { return op&0xF0 == FSOpOpenBase }

// FSOpenModeOf returns the mode string for a file-open op, and whether it
// is write-class (true) or read-class (false). Only valid when
// IsFSOpenOp(op).
func FSOpenModeOf(op uint8) (mode string, writeClass bool) {
	idx := op & 0x07
	return FSOpenModes[idx], idx&1 == 1
}

// FSRequest is kind 7 (C->S).
type FSRequest struct {
	Op    uint8
	ReqID uint8
	Path  string
	Path2 string // only set for FSOpCopy / FSOpMove
}

func fsRequestHasPath2(op uint8) bool { return op == FSOpCopy || op == FSOpMove }

func encodeFSRequest(w *wire.Writer, f *FSRequest) error {
	if f == nil {
		return fmt.Errorf("packet: nil FSRequest body")
	}
	w.U8(f.Op)
	w.U8(f.ReqID)
	w.CString(f.Path)
	if fsRequestHasPath2(f.Op) {
		w.CString(f.Path2)
	}
	return nil
}

func decodeFSRequest(r *wire.Reader) (*FSRequest, error) {
	op, err := r.U8()
	if err != nil {
		return nil, err
	}
	reqID, err := r.U8()
	if err != nil {
		return nil, err
	}
	path, err := r.CString()
	if err != nil {
		return nil, err
	}
	f := &FSRequest{Op: op, ReqID: reqID, Path: path}
	if fsRequestHasPath2(op) {
		if f.Path2, err = r.CString(); err != nil {
			return nil, err
		}
	}
	return f, nil
}

// FSAttributes is the body of an op-8 (attributes) FSResponse.
type FSAttributes struct {
	Size       uint32
	Created    uint64
	Modified   uint64
	IsDir      bool
	IsReadOnly bool
	// ErrorCode: 0 ok, 1 no-entry, 2 error.
	ErrorCode uint8
}

// fsResponseShape classifies how an FSResponse for the given op is laid
// out on the wire, per the dispatch table in spec.md §4.3.
type fsResponseShapeKind int

const (
	fsShapeUnknown fsResponseShapeKind = iota
	fsShapeBool
	fsShapeNumeric
	fsShapeStrings
	fsShapeAttrs
	fsShapeVoid
)

func fsResponseShape(op uint8) fsResponseShapeKind {
	switch op {
	case FSOpExists, FSOpIsDir, FSOpIsReadOnly:
		return fsShapeBool
	case FSOpGetSize, FSOpGetCapacity, FSOpGetFreeSpace:
		return fsShapeNumeric
	case FSOpGetDrive, FSOpList, FSOpFind:
		return fsShapeStrings
	case FSOpAttributes:
		return fsShapeAttrs
	case FSOpMakeDir, FSOpDelete, FSOpCopy, FSOpMove, FSOpOpenWriteConfirm:
		return fsShapeVoid
	default:
		return fsShapeUnknown
	}
}

// FSResponse is kind 8 (S->C). Exactly the fields matching fsResponseShape
// of Op are meaningful; see the Bool/Number/Strings/Attrs/ErrorMessage
// helpers on the server and client sides for how each op populates them.
type FSResponse struct {
	Op    uint8
	ReqID uint8

	Bool      bool // shape bool: value when not BoolError
	BoolError bool // shape bool: wire sentinel 2

	Number uint32 // shape numeric: 0xFFFFFFFF means error

	Strings []string // shape strings: empty means error (ambiguous with "no results", per spec.md §4.3)

	Attrs FSAttributes // shape attrs

	ErrorMessage string // shape void: empty means success
}

const fsNumberErrorSentinel = 0xFFFFFFFF

func (r FSResponse) NumberIsError() bool { return r.Number == fsNumberErrorSentinel }

func encodeFSResponse(w *wire.Writer, f *FSResponse) error {
	if f == nil {
		return fmt.Errorf("packet: nil FSResponse body")
	}
	w.U8(f.Op)
	w.U8(f.ReqID)
	switch fsResponseShape(f.Op) {
	case fsShapeBool:
		switch {
		case f.BoolError:
			w.U8(2)
		case f.Bool:
			w.U8(1)
		default:
			w.U8(0)
		}
	case fsShapeNumeric:
		w.U32(f.Number)
	case fsShapeStrings:
		if len(f.Strings) > 0xFFFFFFFF {
			return fmt.Errorf("packet: FSResponse strings too many")
		}
		w.U32(uint32(len(f.Strings)))
		for _, s := range f.Strings {
			w.CString(s)
		}
	case fsShapeAttrs:
		w.U32(f.Attrs.Size)
		w.U64(f.Attrs.Created)
		w.U64(f.Attrs.Modified)
		w.U8(boolByte(f.Attrs.IsDir))
		w.U8(boolByte(f.Attrs.IsReadOnly))
		w.U8(f.Attrs.ErrorCode)
		w.U8(0) // pad
	case fsShapeVoid:
		w.CString(f.ErrorMessage)
	default:
		return fmt.Errorf("packet: unknown FSResponse op %d", f.Op)
	}
	return nil
}

func decodeFSResponse(r *wire.Reader) (*FSResponse, error) {
	op, err := r.U8()
	if err != nil {
		return nil, err
	}
	reqID, err := r.U8()
	if err != nil {
		return nil, err
	}
	f := &FSResponse{Op: op, ReqID: reqID}
	switch fsResponseShape(op) {
	case fsShapeBool:
		v, err := r.U8()
		if err != nil {
			return nil, err
		}
		switch v {
		case 0:
			f.Bool = false
		case 1:
			f.Bool = true
		case 2:
			f.BoolError = true
		default:
			return nil, fmt.Errorf("packet: invalid bool FSResponse value %d", v)
		}
	case fsShapeNumeric:
		if f.Number, err = r.U32(); err != nil {
			return nil, err
		}
	case fsShapeStrings:
		n, err := r.U32()
		if err != nil {
			return nil, err
		}
		f.Strings = make([]string, n)
		for i := range f.Strings {
			if f.Strings[i], err = r.CString(); err != nil {
				return nil, err
			}
		}
	case fsShapeAttrs:
		if f.Attrs.Size, err = r.U32(); err != nil {
			return nil, err
		}
		if f.Attrs.Created, err = r.U64(); err != nil {
			return nil, err
		}
		if f.Attrs.Modified, err = r.U64(); err != nil {
			return nil, err
		}
		isDir, err := r.U8()
		if err != nil {
			return nil, err
		}
		f.Attrs.IsDir = isDir != 0
		isRO, err := r.U8()
		if err != nil {
			return nil, err
		}
		f.Attrs.IsReadOnly = isRO != 0
		if f.Attrs.ErrorCode, err = r.U8(); err != nil {
			return nil, err
		}
		if _, err = r.U8(); err != nil { // pad
			return nil, err
		}
	case fsShapeVoid:
		if f.ErrorMessage, err = r.CString(); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("packet: unknown FSResponse op %d", op)
	}
	return f, nil
}

// FSData subtypes, spec.md §4.3.
const (
	FSDataChunk        = 0
	FSDataOpenReadError = 1
)

// FSData is kind 9 (both directions): a length-prefixed byte payload,
// carrying a read-open's file body (server->client) or a write-open's
// commit (client->server).
type FSData struct {
	Subtype uint8
	ReqID   uint8
	Data    []byte
}

func encodeFSData(w *wire.Writer, f *FSData) error {
	if f == nil {
		return fmt.Errorf("packet: nil FSData body")
	}
	w.U8(f.Subtype)
	w.U8(f.ReqID)
	w.U32(uint32(len(f.Data)))
	w.Raw(f.Data)
	return nil
}

func decodeFSData(r *wire.Reader) (*FSData, error) {
	subtype, err := r.U8()
	if err != nil {
		return nil, err
	}
	reqID, err := r.U8()
	if err != nil {
		return nil, err
	}
	n, err := r.U32()
	if err != nil {
		return nil, err
	}
	data, err := r.Raw(int(n))
	if err != nil {
		return nil, err
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	return &FSData{Subtype: subtype, ReqID: reqID, Data: cp}, nil
}
