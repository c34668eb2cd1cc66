package ui

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormattersKeepPrefixAndMessage(t *testing.T) {
	tests := []struct {
		name   string
		fn     func(string) string
		prefix string
	}{
		{"Success", Success, "✓"},
		{"Warn", Warn, "⚠"},
		{"Err", Err, "✗"},
		{"Info", Info, "ℹ"},
		{"Hint", Hint, "→"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := tt.fn("package published")
			assert.Contains(t, out, tt.prefix)
			assert.Contains(t, out, "package published")
			assert.Contains(t, tt.fn(""), tt.prefix)
		})
	}
}

func TestPlainFormattersContainInput(t *testing.T) {
	for _, fn := range []func(string) string{Addr, Val, Meta, NetworkName} {
		assert.Contains(t, fn("testnet"), "testnet")
	}
}

func TestInfoDifferentFromHint(t *testing.T) {
	assert.NotEqual(t, Info("x"), Hint("x"))
}

func TestTruncateAddr(t *testing.T) {
	full := "0x304af458e90e97c841685b8cbbc59b909f3e2cf150df590ada4c81452c29737d"
	assert.Equal(t, "0x304a…737d", TruncateAddr(full))
	assert.Equal(t, "0x2", TruncateAddr("0x2"))
	assert.Equal(t, "0x1234567890ab", TruncateAddr("0x1234567890ab"))
	assert.Equal(t, "", TruncateAddr(""))
}

func TestDangerBox(t *testing.T) {
	out := DangerBox("seed: 9d61b19d\n")
	assert.Contains(t, out, "seed: 9d61b19d")
	assert.NotPanics(t, func() { DangerBox("") })
	assert.Greater(t, strings.Count(out, "\n"), 1, "box adds border lines")
}

func TestBanner(t *testing.T) {
	b := Banner()
	assert.NotEmpty(t, b)
	assert.Contains(t, b, "Sui coin forge")
	assert.Contains(t, b, Version)
}
