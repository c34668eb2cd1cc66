package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Color palette.
var (
	ColorSuccess   = lipgloss.Color("#00D26A") // green - success
	ColorWarning   = lipgloss.Color("#FFB800") // yellow - warning, confirmation
	ColorError     = lipgloss.Color("#FF4444") // red - error, danger
	ColorAddress   = lipgloss.Color("#4DA2FF") // sui blue - addresses, digests, object ids
	ColorValue     = lipgloss.Color("#FFFFFF") // white bold - amounts, coin fields
	ColorMeta      = lipgloss.Color("#555555") // dim gray - metadata
	ColorBorder    = lipgloss.Color("#1E3A5F") // dark blue - UI chrome
	ColorNetwork   = lipgloss.Color("#6FBCF0") // light blue - network names
	ColorHighlight = lipgloss.Color("#F15BB5") // pink - selected rows, headers
)

// Base styles.
var (
	StyleSuccess = lipgloss.NewStyle().Foreground(ColorSuccess).Bold(true)
	StyleWarning = lipgloss.NewStyle().Foreground(ColorWarning).Bold(true)
	StyleError   = lipgloss.NewStyle().Foreground(ColorError).Bold(true)
	StyleAddress = lipgloss.NewStyle().Foreground(ColorAddress)
	StyleValue   = lipgloss.NewStyle().Foreground(ColorValue).Bold(true)
	StyleMeta    = lipgloss.NewStyle().Foreground(ColorMeta)
	StyleNetwork = lipgloss.NewStyle().Foreground(ColorNetwork).Bold(true)

	StyleBorder = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder).
			Padding(0, 1)

	StyleDanger = lipgloss.NewStyle().
			Border(lipgloss.ThickBorder()).
			BorderForeground(ColorError).
			Padding(0, 1)

	StyleHeader = lipgloss.NewStyle().
			Foreground(ColorHighlight).
			Bold(true).
			Underline(true)

	StyleSelected = lipgloss.NewStyle().
			Background(ColorHighlight).
			Foreground(lipgloss.Color("#000000")).
			Bold(true)

	StyleTitle = lipgloss.NewStyle().
			Foreground(ColorNetwork).
			Bold(true).
			MarginBottom(1)
)

// Version is printed in the banner and by --version.
const Version = "0.3.0"

// Banner returns the suiforge banner.
func Banner() string {
	art := `
   ___ _   _(_)/ _| ___  _ __ __ _  ___
  / __| | | | | |_ / _ \| '__/ _' |/ _ \
  \__ \ |_| | |  _| (_) | | | (_| |  __/
  |___/\__,_|_|_|  \___/|_|  \__, |\___|
                             |___/`

	tagline := StyleMeta.Render("  Sui coin forge  ·  v" + Version)
	return StyleNetwork.Render(art) + "\n" + tagline + "\n"
}

// Success formats a success message.
func Success(msg string) string { return StyleSuccess.Render("✓ " + msg) }

// Warn formats a warning message.
func Warn(msg string) string { return StyleWarning.Render("⚠ " + msg) }

// Err formats an error message.
func Err(msg string) string { return StyleError.Render("✗ " + msg) }

// Info formats an informational line.
func Info(msg string) string { return StyleAddress.Render("ℹ ") + msg }

// Hint formats a next-step suggestion.
func Hint(msg string) string { return StyleMeta.Render("→ " + msg) }

// Addr formats an address, object id or digest.
func Addr(a string) string { return StyleAddress.Render(a) }

// Val formats a value.
func Val(v string) string { return StyleValue.Render(v) }

// Meta formats metadata text.
func Meta(m string) string { return StyleMeta.Render(m) }

// NetworkName formats a network name.
func NetworkName(n string) string { return StyleNetwork.Render(n) }

// DangerBox frames content that must not be shown to anyone else, such as a
// freshly generated private key.
func DangerBox(content string) string {
	return StyleDanger.Render(strings.TrimRight(content, "\n"))
}

// TruncateAddr shortens a 32-byte Sui address for display: 0x1234…cdef.
func TruncateAddr(addr string) string {
	if len(addr) <= 14 {
		return addr
	}
	return addr[:6] + "…" + addr[len(addr)-4:]
}
