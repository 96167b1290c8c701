// Package fields supplies the concrete field kinds the form core binds
// against: each exposes getValue/setValue/on/off/enable/disable/setError
// per spec §4.9. Grounded on the teacher's pkg/components/input.go,
// checkbox.go, and select.go — reduced to the state/event surface the form
// core actually drives, since the teacher's versions carry their own
// bubbly.Component lifecycle that pkg/form replaces.
package fields

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Field is the contract the form core registers and drives (spec §4.9:
// "each exposing getValue/setValue/on/off/enable/disable/setError").
type Field interface {
	Name() string
	GetValue() any
	SetValue(v any)
	On(event string, fn func(any))
	Off(event string)
	Enable()
	Disable()
	SetError(msg string)
	Error() string
	Disabled() bool
	View() string
}

type base struct {
	name      string
	listeners map[string][]func(any)
	disabled  bool
	errMsg    string
}

func newBase(name string) base {
	return base{name: name, listeners: make(map[string][]func(any))}
}

func (b *base) Name() string { return b.name }

func (b *base) On(event string, fn func(any)) {
	b.listeners[event] = append(b.listeners[event], fn)
}

func (b *base) Off(event string) {
	delete(b.listeners, event)
}

func (b *base) emit(event string, data any) {
	for _, fn := range b.listeners[event] {
		fn(data)
	}
}

func (b *base) Enable()  { b.disabled = false }
func (b *base) Disable() { b.disabled = true }
func (b *base) Disabled() bool { return b.disabled }

func (b *base) SetError(msg string) { b.errMsg = msg }
func (b *base) Error() string       { return b.errMsg }

var (
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Italic(true)
	labelStyle = lipgloss.NewStyle().Bold(true)
)

// TextField wraps a bubbles/textinput.Model, grounded on
// pkg/components/input.go's textinput wiring.
type TextField struct {
	base
	Label string
	ti    textinput.Model
}

// NewTextField constructs a TextField with an initial value.
func NewTextField(name, label, initial string) *TextField {
	ti := textinput.New()
	ti.SetValue(initial)
	return &TextField{base: newBase(name), Label: label, ti: ti}
}

func (f *TextField) GetValue() any { return f.ti.Value() }

func (f *TextField) SetValue(v any) {
	s, _ := v.(string)
	if f.ti.Value() == s {
		return
	}
	f.ti.SetValue(s)
	f.emit("change", s)
	f.emit("input", s)
}

// Update forwards a bubbletea message to the underlying textinput when the
// field is focused and enabled, emitting change if the value moved.
func (f *TextField) Update(msg tea.Msg) tea.Cmd {
	if f.disabled {
		return nil
	}
	before := f.ti.Value()
	var cmd tea.Cmd
	f.ti, cmd = f.ti.Update(msg)
	if after := f.ti.Value(); after != before {
		f.emit("change", after)
		f.emit("input", after)
	}
	return cmd
}

func (f *TextField) Focus() { f.ti.Focus() }
func (f *TextField) Blur()  { f.ti.Blur() }

func (f *TextField) View() string {
	view := f.ti.View()
	if f.errMsg != "" {
		view += "\n" + errorStyle.Render("⚠ "+f.errMsg)
	}
	return view
}

// CheckboxField is a boolean toggle field, grounded on
// pkg/components/checkbox.go's check/uncheck semantics.
type CheckboxField struct {
	base
	Label   string
	checked bool
}

// NewCheckboxField constructs a CheckboxField.
func NewCheckboxField(name, label string, initial bool) *CheckboxField {
	return &CheckboxField{base: newBase(name), Label: label, checked: initial}
}

func (f *CheckboxField) GetValue() any { return f.checked }

func (f *CheckboxField) SetValue(v any) {
	b, _ := v.(bool)
	if f.checked == b {
		return
	}
	f.checked = b
	f.emit("change", b)
}

// Toggle flips the checked state, the terminal analogue of a checkbox
// click (spec-agnostic input plumbing; triggered by the composition
// root's key handler).
func (f *CheckboxField) Toggle() {
	if f.disabled {
		return
	}
	f.SetValue(!f.checked)
}

func (f *CheckboxField) View() string {
	box := "[ ]"
	if f.checked {
		box = "[x]"
	}
	view := box + " " + f.Label
	if f.errMsg != "" {
		view += "\n" + errorStyle.Render("⚠ "+f.errMsg)
	}
	return view
}

// SelectField is a single-choice field over a fixed option list, grounded
// on pkg/components/select.go's cursor/selection model.
type SelectField struct {
	base
	Label   string
	Options []string
	cursor  int
}

// NewSelectField constructs a SelectField.
func NewSelectField(name, label string, options []string, initialIndex int) *SelectField {
	if initialIndex < 0 || initialIndex >= len(options) {
		initialIndex = 0
	}
	return &SelectField{base: newBase(name), Label: label, Options: options, cursor: initialIndex}
}

func (f *SelectField) GetValue() any {
	if f.cursor < 0 || f.cursor >= len(f.Options) {
		return ""
	}
	return f.Options[f.cursor]
}

func (f *SelectField) SetValue(v any) {
	s, _ := v.(string)
	for i, opt := range f.Options {
		if opt == s && i != f.cursor {
			f.cursor = i
			f.emit("change", s)
			return
		}
	}
}

// Next/Prev cycle the selection, the terminal analogue of an arrow-key
// driven <select>.
func (f *SelectField) Next() {
	if f.disabled || len(f.Options) == 0 {
		return
	}
	f.cursor = (f.cursor + 1) % len(f.Options)
	f.emit("change", f.Options[f.cursor])
}

func (f *SelectField) Prev() {
	if f.disabled || len(f.Options) == 0 {
		return
	}
	f.cursor = (f.cursor - 1 + len(f.Options)) % len(f.Options)
	f.emit("change", f.Options[f.cursor])
}

func (f *SelectField) View() string {
	view := f.Label + ": "
	for i, opt := range f.Options {
		if i == f.cursor {
			view += "[" + opt + "]"
		} else {
			view += " " + opt + " "
		}
	}
	if f.errMsg != "" {
		view += "\n" + errorStyle.Render("⚠ "+f.errMsg)
	}
	return view
}

// Button is a pressable submit/cancel control, grounded on
// pkg/components/button.go's enabled/disabled styling.
type Button struct {
	Label    string
	disabled bool
	onPress  func()
}

// NewButton constructs a Button.
func NewButton(label string, onPress func()) *Button {
	return &Button{Label: label, onPress: onPress}
}

func (b *Button) Enable()         { b.disabled = false }
func (b *Button) Disable()        { b.disabled = true }
func (b *Button) Disabled() bool  { return b.disabled }

// Press invokes the handler unless disabled.
func (b *Button) Press() {
	if b.disabled || b.onPress == nil {
		return
	}
	b.onPress()
}

func (b *Button) View() string {
	style := lipgloss.NewStyle().Padding(0, 2).Bold(true)
	if b.disabled {
		style = style.Foreground(lipgloss.Color("8"))
	} else {
		style = style.Foreground(lipgloss.Color("230")).Background(lipgloss.Color("12"))
	}
	return style.Render(b.Label)
}
