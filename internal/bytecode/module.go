// Package bytecode reads and rewrites compiled Move modules at the table
// level. Only the identifier table and the constant pool are decoded; every
// other table is carried through as opaque bytes so a module can be patched
// without understanding its code.
package bytecode

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"sort"

	"github.com/Mohsinsiddi/suiforge/internal/bcs"
)

// Errors.
var (
	ErrMalformedModule     = errors.New("malformed module")
	ErrIdentifierNotFound  = errors.New("identifier not found")
	ErrInvalidIdentifier   = errors.New("invalid identifier")
	ErrDuplicateIdentifier = errors.New("duplicate identifier")
	ErrConstantNotFound    = errors.New("constant not found")
	ErrUnsupportedType     = errors.New("unsupported constant type")
)

// Magic is the four-byte prefix of every compiled Move module.
var Magic = []byte{0xa1, 0x1c, 0xeb, 0x0b}

const (
	minVersion = 5
	maxVersion = 7

	// The high byte of the version word carries a binary flavor on newer
	// toolchains (Sui sets 0x05).
	versionMask = 0x00ff_ffff

	maxTableCount   = 32
	maxTableBytes   = 0xffff_ffff
	maxIdentifier   = 0xffff
	maxConstantSize = 0xffff
)

// TableKind identifies a table in the module header.
type TableKind uint8

// Table kinds defined by the Move binary format.
const (
	TableModuleHandles      TableKind = 0x01
	TableStructHandles      TableKind = 0x02
	TableFunctionHandles    TableKind = 0x03
	TableFunctionInst       TableKind = 0x04
	TableSignatures         TableKind = 0x05
	TableConstantPool       TableKind = 0x06
	TableIdentifiers        TableKind = 0x07
	TableAddressIdentifiers TableKind = 0x08
	TableStructDefs         TableKind = 0x0a
	TableStructDefInst      TableKind = 0x0b
	TableFunctionDefs       TableKind = 0x0c
	TableFieldHandles       TableKind = 0x0d
	TableFieldInst          TableKind = 0x0e
	TableFriendDecls        TableKind = 0x0f
	TableMetadata           TableKind = 0x10
	TableEnumDefs           TableKind = 0x11
	TableEnumDefInst        TableKind = 0x12
	TableVariantHandles     TableKind = 0x13
	TableVariantInst        TableKind = 0x14
)

var tableNames = map[TableKind]string{
	TableModuleHandles:      "module_handles",
	TableStructHandles:      "struct_handles",
	TableFunctionHandles:    "function_handles",
	TableFunctionInst:       "function_instantiations",
	TableSignatures:         "signatures",
	TableConstantPool:       "constant_pool",
	TableIdentifiers:        "identifiers",
	TableAddressIdentifiers: "address_identifiers",
	TableStructDefs:         "struct_defs",
	TableStructDefInst:      "struct_def_instantiations",
	TableFunctionDefs:       "function_defs",
	TableFieldHandles:       "field_handles",
	TableFieldInst:          "field_instantiations",
	TableFriendDecls:        "friend_decls",
	TableMetadata:           "metadata",
	TableEnumDefs:           "enum_defs",
	TableEnumDefInst:        "enum_def_instantiations",
	TableVariantHandles:     "variant_handles",
	TableVariantInst:        "variant_instantiations",
}

func (k TableKind) String() string {
	if n, ok := tableNames[k]; ok {
		return n
	}
	return fmt.Sprintf("table(0x%02x)", uint8(k))
}

// Table is a raw table body.
type Table struct {
	Kind TableKind
	Data []byte
}

// Constant is one constant pool entry: its type and BCS-encoded value.
type Constant struct {
	Type SignatureToken
	Data []byte
}

// Module is a compiled Move module split into its tables.
type Module struct {
	Version uint32

	// Tables holds every table in file order. The identifier and constant
	// pool entries are placeholders here; their contents live in
	// Identifiers and Constants and are re-encoded by Serialize.
	Tables []Table

	Identifiers []string
	Constants   []Constant

	// Trailer holds the bytes after the table contents (the self module
	// handle index).
	Trailer []byte
}

type tableHeader struct {
	kind   TableKind
	offset uint64
	length uint64
}

// Parse splits a compiled module into tables. The input is not retained.
func Parse(b []byte) (*Module, error) {
	r := &reader{buf: b}

	magic, err := r.bytes(len(Magic))
	if err != nil || !bytes.Equal(magic, Magic) {
		return nil, fmt.Errorf("%w: bad magic", ErrMalformedModule)
	}
	rawVersion, err := r.bytes(4)
	if err != nil {
		return nil, fmt.Errorf("%w: missing version", ErrMalformedModule)
	}
	version := binary.LittleEndian.Uint32(rawVersion)
	if v := version & versionMask; v < minVersion || v > maxVersion {
		return nil, fmt.Errorf("%w: unsupported binary version %d", ErrMalformedModule, v)
	}

	count, err := r.uleb()
	if err != nil {
		return nil, fmt.Errorf("%w: table count: %v", ErrMalformedModule, err)
	}
	if count == 0 || count > maxTableCount {
		return nil, fmt.Errorf("%w: table count %d out of range", ErrMalformedModule, count)
	}

	headers := make([]tableHeader, 0, count)
	seen := make(map[TableKind]bool, count)
	for i := uint64(0); i < count; i++ {
		kind, err := r.byte()
		if err != nil {
			return nil, fmt.Errorf("%w: table header %d: %v", ErrMalformedModule, i, err)
		}
		off, err := r.uleb()
		if err != nil {
			return nil, fmt.Errorf("%w: table header %d: %v", ErrMalformedModule, i, err)
		}
		length, err := r.uleb()
		if err != nil {
			return nil, fmt.Errorf("%w: table header %d: %v", ErrMalformedModule, i, err)
		}
		k := TableKind(kind)
		if seen[k] {
			return nil, fmt.Errorf("%w: duplicate %s table", ErrMalformedModule, k)
		}
		if length > maxTableBytes {
			return nil, fmt.Errorf("%w: %s table too large", ErrMalformedModule, k)
		}
		seen[k] = true
		headers = append(headers, tableHeader{kind: k, offset: off, length: length})
	}

	// Tables must tile the content region without gaps or overlap.
	sort.SliceStable(headers, func(i, j int) bool { return headers[i].offset < headers[j].offset })
	contentStart := r.pos
	var end uint64
	for _, h := range headers {
		if h.offset != end {
			return nil, fmt.Errorf("%w: %s table at offset %d, expected %d", ErrMalformedModule, h.kind, h.offset, end)
		}
		end += h.length
	}
	if uint64(len(b)-contentStart) < end {
		return nil, fmt.Errorf("%w: table contents truncated", ErrMalformedModule)
	}

	m := &Module{Version: version}
	for _, h := range headers {
		start := contentStart + int(h.offset)
		data := append([]byte(nil), b[start:start+int(h.length)]...)
		switch h.kind {
		case TableIdentifiers:
			ids, err := decodeIdentifiers(data)
			if err != nil {
				return nil, err
			}
			m.Identifiers = ids
			data = nil
		case TableConstantPool:
			consts, err := decodeConstants(data)
			if err != nil {
				return nil, err
			}
			m.Constants = consts
			data = nil
		}
		m.Tables = append(m.Tables, Table{Kind: h.kind, Data: data})
	}
	m.Trailer = append([]byte(nil), b[contentStart+int(end):]...)
	return m, nil
}

// Serialize lays the tables out contiguously in order and returns the
// module bytes. A module parsed from canonical bytes serializes back to the
// same bytes.
func (m *Module) Serialize() ([]byte, error) {
	bodies := make([][]byte, len(m.Tables))
	for i, t := range m.Tables {
		switch t.Kind {
		case TableIdentifiers:
			data, err := encodeIdentifiers(m.Identifiers)
			if err != nil {
				return nil, err
			}
			bodies[i] = data
		case TableConstantPool:
			data, err := encodeConstants(m.Constants)
			if err != nil {
				return nil, err
			}
			bodies[i] = data
		default:
			bodies[i] = t.Data
		}
	}

	var out bytes.Buffer
	out.Write(Magic)
	var version [4]byte
	binary.LittleEndian.PutUint32(version[:], m.Version)
	out.Write(version[:])
	out.Write(bcs.EncodeULEB128(uint64(len(m.Tables))))

	var offset uint64
	for i, t := range m.Tables {
		out.WriteByte(byte(t.Kind))
		out.Write(bcs.EncodeULEB128(offset))
		out.Write(bcs.EncodeULEB128(uint64(len(bodies[i]))))
		offset += uint64(len(bodies[i]))
	}
	for _, body := range bodies {
		out.Write(body)
	}
	out.Write(m.Trailer)
	return out.Bytes(), nil
}

// IdentifierIndex returns the position of name in the identifier table or -1.
func (m *Module) IdentifierIndex(name string) int {
	for i, id := range m.Identifiers {
		if id == name {
			return i
		}
	}
	return -1
}

// --- identifier table ---

func decodeIdentifiers(data []byte) ([]string, error) {
	r := &reader{buf: data}
	var ids []string
	for !r.done() {
		n, err := r.uleb()
		if err != nil {
			return nil, fmt.Errorf("%w: identifier %d: %v", ErrMalformedModule, len(ids), err)
		}
		if n > maxIdentifier {
			return nil, fmt.Errorf("%w: identifier %d too long", ErrMalformedModule, len(ids))
		}
		raw, err := r.bytes(int(n))
		if err != nil {
			return nil, fmt.Errorf("%w: identifier %d: %v", ErrMalformedModule, len(ids), err)
		}
		ids = append(ids, string(raw))
	}
	return ids, nil
}

func encodeIdentifiers(ids []string) ([]byte, error) {
	var out []byte
	for _, id := range ids {
		if len(id) > maxIdentifier {
			return nil, fmt.Errorf("%w: %q exceeds %d bytes", ErrInvalidIdentifier, id, maxIdentifier)
		}
		out = append(out, bcs.EncodeBytes([]byte(id))...)
	}
	return out, nil
}

// --- constant pool ---

func decodeConstants(data []byte) ([]Constant, error) {
	r := &reader{buf: data}
	var consts []Constant
	for !r.done() {
		tok, err := readSignatureToken(r, 0)
		if err != nil {
			return nil, fmt.Errorf("%w: constant %d: %v", ErrMalformedModule, len(consts), err)
		}
		n, err := r.uleb()
		if err != nil {
			return nil, fmt.Errorf("%w: constant %d: %v", ErrMalformedModule, len(consts), err)
		}
		if n > maxConstantSize {
			return nil, fmt.Errorf("%w: constant %d too large", ErrMalformedModule, len(consts))
		}
		raw, err := r.bytes(int(n))
		if err != nil {
			return nil, fmt.Errorf("%w: constant %d: %v", ErrMalformedModule, len(consts), err)
		}
		consts = append(consts, Constant{Type: tok, Data: append([]byte(nil), raw...)})
	}
	return consts, nil
}

func encodeConstants(consts []Constant) ([]byte, error) {
	var out []byte
	for i, c := range consts {
		if len(c.Data) > maxConstantSize {
			return nil, fmt.Errorf("%w: constant %d exceeds %d bytes", ErrUnsupportedType, i, maxConstantSize)
		}
		tok, err := c.Type.encode()
		if err != nil {
			return nil, err
		}
		out = append(out, tok...)
		out = append(out, bcs.EncodeBytes(c.Data)...)
	}
	return out, nil
}

// --- reader ---

type reader struct {
	buf []byte
	pos int
}

func (r *reader) done() bool { return r.pos >= len(r.buf) }

func (r *reader) byte() (byte, error) {
	if r.pos >= len(r.buf) {
		return 0, errors.New("unexpected end of input")
	}
	b := r.buf[r.pos]
	r.pos++
	return b, nil
}

func (r *reader) bytes(n int) ([]byte, error) {
	if n < 0 || len(r.buf)-r.pos < n {
		return nil, errors.New("unexpected end of input")
	}
	b := r.buf[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

func (r *reader) uleb() (uint64, error) {
	v, n, err := bcs.DecodeULEB128(r.buf[r.pos:])
	if err != nil {
		return 0, err
	}
	r.pos += n
	return v, nil
}
