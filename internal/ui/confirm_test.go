package ui

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPrompterConfirm(t *testing.T) {
	for in, want := range map[string]bool{
		"y\n":     true,
		"YES\n":   true,
		" yes \n": true,
		"n\n":     false,
		"\n":      false,
		"":        false,
		"maybe\n": false,
	} {
		var out bytes.Buffer
		got := NewPrompter(strings.NewReader(in), &out).Confirm("Publish coin?")
		assert.Equal(t, want, got, "%q", in)
		assert.Contains(t, out.String(), "Publish coin?")
		assert.Contains(t, out.String(), "[y/N]")
	}
}

func TestPrompterConfirmDanger(t *testing.T) {
	var out bytes.Buffer
	assert.True(t, NewPrompter(strings.NewReader("y\n"), &out).ConfirmDanger("Remove wallet?"))
	assert.Contains(t, out.String(), "⚠")
}

func TestPrompterAskSharesBuffer(t *testing.T) {
	var out bytes.Buffer
	p := NewPrompter(strings.NewReader("My Coin\n\nyes\n"), &out)

	assert.Equal(t, "My Coin", p.Ask("Name", ""))
	assert.Equal(t, "9", p.Ask("Decimals", "9"))
	assert.True(t, p.Confirm("Continue?"))
	assert.Contains(t, out.String(), "[9]")
}

func TestSpinnerNonTerminal(t *testing.T) {
	var out bytes.Buffer
	s := NewSpinnerTo(&out, "dry-running publish")
	s.Start()
	s.Update("ignored after start")
	s.StopWithMsg("done")
	s.Stop()

	assert.Contains(t, out.String(), "dry-running publish")
	assert.Contains(t, out.String(), "done")
}
