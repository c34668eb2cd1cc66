package bytecode_test

import (
	"encoding/binary"
	"testing"

	"github.com/Mohsinsiddi/suiforge/internal/bcs"
	"github.com/Mohsinsiddi/suiforge/internal/bytecode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---------------------------------------------------------------------------
// fixture assembly
// ---------------------------------------------------------------------------

func identTable(ids ...string) []byte {
	var out []byte
	for _, id := range ids {
		out = append(out, bcs.EncodeBytes([]byte(id))...)
	}
	return out
}

type rawConst struct {
	tok  []byte
	data []byte
}

func constTable(consts ...rawConst) []byte {
	var out []byte
	for _, c := range consts {
		out = append(out, c.tok...)
		out = append(out, bcs.EncodeBytes(c.data)...)
	}
	return out
}

func mustString(t *testing.T, s string) []byte {
	t.Helper()
	b, err := bcs.EncodeString(s)
	require.NoError(t, err)
	return b
}

// assemble writes a canonical module: header, tables in the given order, and
// a zero self-handle index.
func assemble(tables ...bytecode.Table) []byte {
	out := append([]byte(nil), bytecode.Magic...)
	var v [4]byte
	binary.LittleEndian.PutUint32(v[:], 6)
	out = append(out, v[:]...)
	out = append(out, bcs.EncodeULEB128(uint64(len(tables)))...)
	var off uint64
	for _, t := range tables {
		out = append(out, byte(t.Kind))
		out = append(out, bcs.EncodeULEB128(off)...)
		out = append(out, bcs.EncodeULEB128(uint64(len(t.Data)))...)
		off += uint64(len(t.Data))
	}
	for _, t := range tables {
		out = append(out, t.Data...)
	}
	return append(out, 0x00)
}

func sampleModule(t *testing.T) []byte {
	t.Helper()
	return assemble(
		bytecode.Table{Kind: bytecode.TableModuleHandles, Data: []byte{0x00, 0x00, 0x01, 0x02}},
		bytecode.Table{Kind: bytecode.TableConstantPool, Data: constTable(
			rawConst{tok: []byte{0x02}, data: []byte{44}},
			rawConst{tok: []byte{0x0a, 0x02}, data: mustString(t, "TMPL")},
			rawConst{tok: []byte{0x02}, data: []byte{55}},
			rawConst{tok: []byte{0x03}, data: bcs.EncodeU64(66)},
			rawConst{tok: []byte{0x0a, 0x02}, data: mustString(t, "icon_url")},
		)},
		bytecode.Table{Kind: bytecode.TableIdentifiers, Data: identTable("template", "TEMPLATE", "coin", "init")},
		bytecode.Table{Kind: bytecode.TableAddressIdentifiers, Data: make([]byte, 64)},
	)
}

// ---------------------------------------------------------------------------
// Parse / Serialize
// ---------------------------------------------------------------------------

func TestParseDecodesIdentifiersAndConstants(t *testing.T) {
	m, err := bytecode.Parse(sampleModule(t))
	require.NoError(t, err)

	assert.Equal(t, uint32(6), m.Version)
	assert.Equal(t, []string{"template", "TEMPLATE", "coin", "init"}, m.Identifiers)
	require.Len(t, m.Constants, 5)
	assert.Equal(t, "U8", m.Constants[0].Type.String())
	assert.Equal(t, "Vector(U8)", m.Constants[1].Type.String())
	assert.Equal(t, "U64", m.Constants[3].Type.String())
	assert.Equal(t, []byte{0x00}, m.Trailer)
}

func TestParseSerializeRoundTrip(t *testing.T) {
	raw := sampleModule(t)
	m, err := bytecode.Parse(raw)
	require.NoError(t, err)

	out, err := m.Serialize()
	require.NoError(t, err)
	assert.Equal(t, raw, out)
}

// tableData returns the raw body of the table of the given kind.
func tableData(m *bytecode.Module, kind bytecode.TableKind) ([]byte, bool) {
	for _, t := range m.Tables {
		if t.Kind == kind {
			return t.Data, true
		}
	}
	return nil, false
}

func TestParseKeepsOpaqueTables(t *testing.T) {
	m, err := bytecode.Parse(sampleModule(t))
	require.NoError(t, err)

	data, ok := tableData(m, bytecode.TableModuleHandles)
	require.True(t, ok)
	assert.Equal(t, []byte{0x00, 0x00, 0x01, 0x02}, data)

	_, ok = tableData(m, bytecode.TableFunctionDefs)
	assert.False(t, ok)
}

func TestParseDoesNotAliasInput(t *testing.T) {
	raw := sampleModule(t)
	m, err := bytecode.Parse(raw)
	require.NoError(t, err)

	for i := range raw {
		raw[i] = 0
	}
	assert.Equal(t, "template", m.Identifiers[0])
	assert.Equal(t, []byte{44}, m.Constants[0].Data)
}

func TestSerializeRecomputesOffsets(t *testing.T) {
	m, err := bytecode.Parse(sampleModule(t))
	require.NoError(t, err)

	m.Identifiers[0] = "a_much_longer_module_name"
	out, err := m.Serialize()
	require.NoError(t, err)

	again, err := bytecode.Parse(out)
	require.NoError(t, err)
	assert.Equal(t, "a_much_longer_module_name", again.Identifiers[0])
	assert.Equal(t, m.Constants, again.Constants)
	data, _ := tableData(again, bytecode.TableAddressIdentifiers)
	assert.Len(t, data, 64)
}

func TestParseAcceptsFlavoredVersion(t *testing.T) {
	raw := sampleModule(t)
	binary.LittleEndian.PutUint32(raw[4:8], 0x0500_0007)
	m, err := bytecode.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, uint32(0x0500_0007), m.Version)
}

func TestParseRejectsBadMagic(t *testing.T) {
	raw := sampleModule(t)
	raw[0] = 0x00
	_, err := bytecode.Parse(raw)
	assert.ErrorIs(t, err, bytecode.ErrMalformedModule)
}

func TestParseRejectsUnsupportedVersion(t *testing.T) {
	raw := sampleModule(t)
	binary.LittleEndian.PutUint32(raw[4:8], 2)
	_, err := bytecode.Parse(raw)
	assert.ErrorIs(t, err, bytecode.ErrMalformedModule)
}

func TestParseRejectsTruncated(t *testing.T) {
	raw := sampleModule(t)
	_, err := bytecode.Parse(raw[:len(raw)-20])
	assert.ErrorIs(t, err, bytecode.ErrMalformedModule)
}

func TestParseRejectsEmpty(t *testing.T) {
	_, err := bytecode.Parse(nil)
	assert.ErrorIs(t, err, bytecode.ErrMalformedModule)
}

func TestParseRejectsDuplicateTable(t *testing.T) {
	raw := assemble(
		bytecode.Table{Kind: bytecode.TableIdentifiers, Data: identTable("a")},
		bytecode.Table{Kind: bytecode.TableIdentifiers, Data: identTable("b")},
	)
	_, err := bytecode.Parse(raw)
	assert.ErrorIs(t, err, bytecode.ErrMalformedModule)
}

func TestParseRejectsTableGap(t *testing.T) {
	raw := sampleModule(t)
	// Second header's offset byte sits after: magic(4) version(4) count(1)
	// kind(1) offset(1) length(1) kind(1).
	raw[4+4+1+3+1]++
	_, err := bytecode.Parse(raw)
	assert.ErrorIs(t, err, bytecode.ErrMalformedModule)
}

func TestParseRejectsUnknownConstantType(t *testing.T) {
	raw := assemble(
		bytecode.Table{Kind: bytecode.TableConstantPool, Data: constTable(rawConst{tok: []byte{0x08, 0x00}, data: []byte{1}})},
	)
	_, err := bytecode.Parse(raw)
	assert.ErrorIs(t, err, bytecode.ErrMalformedModule)
}

func TestIdentifierIndex(t *testing.T) {
	m, err := bytecode.Parse(sampleModule(t))
	require.NoError(t, err)
	assert.Equal(t, 1, m.IdentifierIndex("TEMPLATE"))
	assert.Equal(t, -1, m.IdentifierIndex("missing"))
}

func TestTableKindString(t *testing.T) {
	assert.Equal(t, "constant_pool", bytecode.TableConstantPool.String())
	assert.Equal(t, "identifiers", bytecode.TableIdentifiers.String())
	assert.Equal(t, "table(0x7f)", bytecode.TableKind(0x7f).String())
}

// ---------------------------------------------------------------------------
// type tags
// ---------------------------------------------------------------------------

func TestParseTypeTag(t *testing.T) {
	cases := map[string]string{
		"U8":                 "U8",
		"u64":                "U64",
		"Vector(U8)":         "Vector(U8)",
		"vector(vector(u8))": "Vector(Vector(U8))",
		"Address":            "Address",
		"Bool":               "Bool",
	}
	for in, want := range cases {
		tok, err := bytecode.ParseTypeTag(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, tok.String())
	}
}

func TestParseTypeTagUnsupported(t *testing.T) {
	for _, in := range []string{"", "String", "Vector(Foo)", "Struct"} {
		_, err := bytecode.ParseTypeTag(in)
		assert.ErrorIs(t, err, bytecode.ErrUnsupportedType, in)
	}
}

func TestSignatureTokenEqual(t *testing.T) {
	u8 := bytecode.Primitive(bytecode.TokenU8)
	assert.True(t, bytecode.VectorOf(u8).Equal(bytecode.VectorOf(u8)))
	assert.False(t, bytecode.VectorOf(u8).Equal(u8))
	assert.False(t, u8.Equal(bytecode.Primitive(bytecode.TokenU64)))
}
