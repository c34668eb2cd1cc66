package bytecode_test

import (
	"bytes"
	"sync"
	"testing"

	"github.com/Mohsinsiddi/suiforge/internal/bcs"
	"github.com/Mohsinsiddi/suiforge/internal/bytecode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var patcher bytecode.Patcher

// ---------------------------------------------------------------------------
// ReplaceIdentifiers
// ---------------------------------------------------------------------------

func TestReplaceIdentifiers(t *testing.T) {
	out, err := patcher.ReplaceIdentifiers(sampleModule(t), map[string]string{
		"TEMPLATE":    "MY_COIN",
		"template":    "my_coin",
		"REGTEMPLATE": "MY_COIN",
		"regtemplate": "my_coin",
	})
	require.NoError(t, err)

	m, err := bytecode.Parse(out)
	require.NoError(t, err)
	assert.Equal(t, []string{"my_coin", "MY_COIN", "coin", "init"}, m.Identifiers)
}

func TestReplaceIdentifiersLeavesInputUntouched(t *testing.T) {
	in := sampleModule(t)
	before := append([]byte(nil), in...)
	_, err := patcher.ReplaceIdentifiers(in, map[string]string{"TEMPLATE": "ABCDE"})
	require.NoError(t, err)
	assert.Equal(t, before, in)
}

func TestReplaceIdentifiersPreservesOtherTables(t *testing.T) {
	in := sampleModule(t)
	out, err := patcher.ReplaceIdentifiers(in, map[string]string{"template": "abcdefgh"})
	require.NoError(t, err)

	a, _ := bytecode.Parse(in)
	b, _ := bytecode.Parse(out)
	assert.Equal(t, a.Constants, b.Constants)
	for _, kind := range []bytecode.TableKind{bytecode.TableModuleHandles, bytecode.TableAddressIdentifiers} {
		x, _ := tableData(a, kind)
		y, _ := tableData(b, kind)
		assert.Equal(t, x, y, kind.String())
	}
	// Same-length rename: only the renamed bytes differ.
	require.Len(t, out, len(in))
	diff := 0
	for i := range in {
		if in[i] != out[i] {
			diff++
		}
	}
	assert.LessOrEqual(t, diff, len("template"))
}

func TestReplaceIdentifiersNoneFound(t *testing.T) {
	_, err := patcher.ReplaceIdentifiers(sampleModule(t), map[string]string{"MISSING": "X"})
	assert.ErrorIs(t, err, bytecode.ErrIdentifierNotFound)
}

func TestReplaceIdentifiersInvalid(t *testing.T) {
	for _, bad := range []string{"", "1ABC", "MY COIN", "MY-COIN", "_", "MÜNZE"} {
		_, err := patcher.ReplaceIdentifiers(sampleModule(t), map[string]string{"TEMPLATE": bad})
		assert.ErrorIs(t, err, bytecode.ErrInvalidIdentifier, "identifier %q", bad)
	}
}

func TestReplaceIdentifiersCollision(t *testing.T) {
	_, err := patcher.ReplaceIdentifiers(sampleModule(t), map[string]string{"template": "coin"})
	assert.ErrorIs(t, err, bytecode.ErrDuplicateIdentifier)
}

func TestReplaceIdentifiersMalformed(t *testing.T) {
	_, err := patcher.ReplaceIdentifiers([]byte{1, 2, 3}, map[string]string{"TEMPLATE": "X"})
	assert.ErrorIs(t, err, bytecode.ErrMalformedModule)
}

// ---------------------------------------------------------------------------
// ReplaceConstantBytes
// ---------------------------------------------------------------------------

func TestReplaceConstantU8(t *testing.T) {
	in := sampleModule(t)
	out, err := patcher.ReplaceConstantBytes(in, []byte{9}, []byte{44}, "U8")
	require.NoError(t, err)

	m, err := bytecode.Parse(out)
	require.NoError(t, err)
	assert.Equal(t, []byte{9}, m.Constants[0].Data)

	// Fixed-width patch: exactly one byte changes.
	require.Len(t, out, len(in))
	var changed []int
	for i := range in {
		if in[i] != out[i] {
			changed = append(changed, i)
		}
	}
	require.Len(t, changed, 1)
	assert.Equal(t, byte(9), out[changed[0]])
}

func TestReplaceConstantU64(t *testing.T) {
	in := sampleModule(t)
	out, err := patcher.ReplaceConstantBytes(in, bcs.EncodeU64(1_000_000_000_000), bcs.EncodeU64(66), "U64")
	require.NoError(t, err)

	m, err := bytecode.Parse(out)
	require.NoError(t, err)
	v, err := bcs.DecodeU64(m.Constants[3].Data)
	require.NoError(t, err)
	assert.Equal(t, uint64(1_000_000_000_000), v)

	idx := bytes.Index(in, bcs.EncodeU64(66))
	require.Positive(t, idx)
	assert.Equal(t, in[:idx], out[:idx])
	assert.Equal(t, in[idx+8:], out[idx+8:])
}

func TestReplaceConstantString(t *testing.T) {
	in := sampleModule(t)
	out, err := patcher.ReplaceConstantBytes(in, mustString(t, "TSTTK"), mustString(t, "TMPL"), "Vector(U8)")
	require.NoError(t, err)

	m, err := bytecode.Parse(out)
	require.NoError(t, err)
	s, err := bcs.DecodeString(m.Constants[1].Data)
	require.NoError(t, err)
	assert.Equal(t, "TSTTK", s)

	orig, _ := bytecode.Parse(in)
	for i := range m.Constants {
		if i == 1 {
			continue
		}
		assert.Equal(t, orig.Constants[i], m.Constants[i])
	}
	assert.Equal(t, orig.Identifiers, m.Identifiers)
}

func TestReplaceConstantEmptyString(t *testing.T) {
	out, err := patcher.ReplaceConstantBytes(sampleModule(t), mustString(t, ""), mustString(t, "icon_url"), "Vector(U8)")
	require.NoError(t, err)
	m, err := bytecode.Parse(out)
	require.NoError(t, err)
	assert.Equal(t, []byte{0}, m.Constants[4].Data)
}

func TestReplaceConstantFirstMatchOnly(t *testing.T) {
	raw := assemble(bytecode.Table{Kind: bytecode.TableConstantPool, Data: constTable(
		rawConst{tok: []byte{0x02}, data: []byte{7}},
		rawConst{tok: []byte{0x02}, data: []byte{7}},
	)})
	out, err := patcher.ReplaceConstantBytes(raw, []byte{1}, []byte{7}, "U8")
	require.NoError(t, err)
	m, err := bytecode.Parse(out)
	require.NoError(t, err)
	assert.Equal(t, []byte{1}, m.Constants[0].Data)
	assert.Equal(t, []byte{7}, m.Constants[1].Data)
}

func TestReplaceConstantMatchesTypeToo(t *testing.T) {
	// 55 exists only as a U8.
	_, err := patcher.ReplaceConstantBytes(sampleModule(t), bcs.EncodeU64(1), []byte{55}, "U64")
	assert.ErrorIs(t, err, bytecode.ErrConstantNotFound)

	_, err = patcher.ReplaceConstantBytes(sampleModule(t), bcs.EncodeU64(1), bcs.EncodeU64(55), "U64")
	assert.ErrorIs(t, err, bytecode.ErrConstantNotFound)
}

func TestReplaceConstantNotFound(t *testing.T) {
	_, err := patcher.ReplaceConstantBytes(sampleModule(t), []byte{1}, []byte{99}, "U8")
	assert.ErrorIs(t, err, bytecode.ErrConstantNotFound)
}

func TestReplaceConstantUnsupportedType(t *testing.T) {
	_, err := patcher.ReplaceConstantBytes(sampleModule(t), []byte{1}, []byte{44}, "String")
	assert.ErrorIs(t, err, bytecode.ErrUnsupportedType)
}

func TestReplaceConstantWrongWidth(t *testing.T) {
	_, err := patcher.ReplaceConstantBytes(sampleModule(t), []byte{1, 2}, []byte{44}, "U8")
	assert.ErrorIs(t, err, bytecode.ErrUnsupportedType)
}

func TestReplaceConstantBadStringPrefix(t *testing.T) {
	_, err := patcher.ReplaceConstantBytes(sampleModule(t), []byte{9, 'a'}, mustString(t, "TMPL"), "Vector(U8)")
	assert.ErrorIs(t, err, bytecode.ErrUnsupportedType)
}

func TestPatcherConcurrentUse(t *testing.T) {
	in := sampleModule(t)
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(v byte) {
			defer wg.Done()
			out, err := patcher.ReplaceConstantBytes(in, []byte{v}, []byte{44}, "U8")
			assert.NoError(t, err)
			m, err := bytecode.Parse(out)
			if assert.NoError(t, err) {
				assert.Equal(t, []byte{v}, m.Constants[0].Data)
			}
		}(byte(i))
	}
	wg.Wait()
}

// ---------------------------------------------------------------------------
// ValidIdentifier
// ---------------------------------------------------------------------------

func TestValidIdentifier(t *testing.T) {
	for _, ok := range []string{"a", "MY_COIN", "my_coin", "_x", "__", "coin2"} {
		assert.True(t, bytecode.ValidIdentifier(ok), ok)
	}
	for _, bad := range []string{"", "_", "2coin", "my coin", "é"} {
		assert.False(t, bytecode.ValidIdentifier(bad), bad)
	}
}
