package ui

import (
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// FormField is one question in a Form. Fields with Choices render as a menu;
// the others take free text and fall back to Default when left empty.
type FormField struct {
	Key      string
	Label    string
	Default  string
	Choices  []string
	Validate func(string) error
}

// --- Bubble Tea model ---

type formModel struct {
	title     string
	fields    []FormField
	step      int
	cursor    int
	input     string
	answers   map[string]string
	errMsg    string
	cancelled bool
}

func newFormModel(title string, fields []FormField) formModel {
	m := formModel{title: title, fields: fields, answers: make(map[string]string, len(fields))}
	m.resetCursor()
	return m
}

func (m formModel) Init() tea.Cmd { return nil }

func (m formModel) done() bool { return m.step >= len(m.fields) }

func (m formModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok || m.done() {
		return m, nil
	}
	f := m.fields[m.step]

	switch key.Type {
	case tea.KeyCtrlC, tea.KeyEsc:
		m.cancelled = true
		return m, tea.Quit
	case tea.KeyUp:
		if len(f.Choices) > 0 && m.cursor > 0 {
			m.cursor--
		}
	case tea.KeyDown:
		if len(f.Choices) > 0 && m.cursor < len(f.Choices)-1 {
			m.cursor++
		}
	case tea.KeyEnter:
		m.submit()
	case tea.KeyBackspace:
		if len(f.Choices) == 0 && m.input != "" {
			r := []rune(m.input)
			m.input = string(r[:len(r)-1])
		}
	case tea.KeySpace:
		if len(f.Choices) == 0 {
			m.input += " "
		}
	case tea.KeyRunes:
		if len(f.Choices) == 0 {
			m.input += string(key.Runes)
		}
	}

	if m.done() {
		return m, tea.Quit
	}
	return m, nil
}

func (m *formModel) submit() {
	f := m.fields[m.step]
	var answer string
	if len(f.Choices) > 0 {
		answer = f.Choices[m.cursor]
	} else {
		// Sanitize: strip whitespace and accidental brackets from paste.
		answer = strings.Trim(strings.TrimSpace(m.input), "[]")
		if answer == "" {
			answer = f.Default
		}
	}
	if f.Validate != nil {
		if err := f.Validate(answer); err != nil {
			m.errMsg = err.Error()
			return
		}
	}
	m.answers[f.Key] = answer
	m.errMsg = ""
	m.input = ""
	m.step++
	m.resetCursor()
}

func (m *formModel) resetCursor() {
	m.cursor = 0
	if m.done() {
		return
	}
	f := m.fields[m.step]
	for i, c := range f.Choices {
		if c == f.Default {
			m.cursor = i
		}
	}
}

func (m formModel) View() string {
	if m.done() {
		return StyleBorder.Render(Success(m.title+" complete")) + "\n"
	}
	f := m.fields[m.step]
	progress := StyleMeta.Render(fmt.Sprintf("%s  %d/%d", m.title, m.step+1, len(m.fields)))

	var s string
	if len(f.Choices) > 0 {
		s = renderMenu(f.Label, f.Choices, m.cursor)
	} else {
		s = StyleTitle.Render(f.Label) + "\n\n"
		if f.Default != "" {
			s += StyleMeta.Render("Press Enter for "+f.Default) + "\n"
		}
		s += "> " + StyleAddress.Render(m.input) + "█\n"
	}
	if m.errMsg != "" {
		s += "\n" + Err(m.errMsg)
	}
	return progress + "\n" + StyleBorder.Render(s) + "\n"
}

func renderMenu(title string, items []string, cursor int) string {
	s := StyleTitle.Render(title) + "\n\n"
	for i, item := range items {
		icon := "  "
		style := lipgloss.NewStyle().Foreground(ColorValue)
		if i == cursor {
			icon = "▸ "
			style = StyleSelected
		}
		s += icon + style.Render(item) + "\n"
	}
	s += "\n" + StyleMeta.Render("↑/↓ navigate · Enter select · Esc cancel")
	return s
}

// ErrFormCancelled is returned by RunForm when the user aborts.
var ErrFormCancelled = errors.New("form cancelled")

// RunForm walks the user through fields and returns answers keyed by
// FormField.Key.
func RunForm(title string, fields []FormField) (map[string]string, error) {
	p := tea.NewProgram(newFormModel(title, fields))
	final, err := p.Run()
	if err != nil {
		return nil, fmt.Errorf("form error: %w", err)
	}
	fm := final.(formModel)
	if fm.cancelled {
		return nil, ErrFormCancelled
	}
	return fm.answers, nil
}
