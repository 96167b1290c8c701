package fields

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
)

func TestTextField_SetValueEmitsChangeOnce(t *testing.T) {
	f := NewTextField("name", "Name", "")
	var changes []string
	f.On("change", func(v any) { changes = append(changes, v.(string)) })

	f.SetValue("alice")
	f.SetValue("alice") // no-op: same value
	f.SetValue("bob")

	assert.Equal(t, []string{"alice", "bob"}, changes)
	assert.Equal(t, "bob", f.GetValue())
}

func TestTextField_DisabledBlocksUpdate(t *testing.T) {
	f := NewTextField("name", "Name", "x")
	f.Focus()
	f.Disable()
	assert.True(t, f.Disabled())
	f.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("y")})
	assert.Equal(t, "x", f.GetValue())
}

func TestCheckboxField_ToggleEmitsChange(t *testing.T) {
	f := NewCheckboxField("agree", "Agree", false)
	var got bool
	f.On("change", func(v any) { got = v.(bool) })

	f.Toggle()
	assert.True(t, got)
	assert.Equal(t, true, f.GetValue())
}

func TestCheckboxField_DisabledIgnoresToggle(t *testing.T) {
	f := NewCheckboxField("agree", "Agree", false)
	f.Disable()
	f.Toggle()
	assert.Equal(t, false, f.GetValue())
}

func TestSelectField_NextWrapsAround(t *testing.T) {
	f := NewSelectField("color", "Color", []string{"red", "green", "blue"}, 2)
	f.Next()
	assert.Equal(t, "red", f.GetValue())
}

func TestSelectField_PrevWrapsAround(t *testing.T) {
	f := NewSelectField("color", "Color", []string{"red", "green", "blue"}, 0)
	f.Prev()
	assert.Equal(t, "blue", f.GetValue())
}

func TestButton_PressInvokesHandlerUnlessDisabled(t *testing.T) {
	pressed := false
	b := NewButton("Submit", func() { pressed = true })
	b.Disable()
	b.Press()
	assert.False(t, pressed)

	b.Enable()
	b.Press()
	assert.True(t, pressed)
}

func TestField_SetErrorAndClear(t *testing.T) {
	f := NewTextField("email", "Email", "")
	f.SetError("invalid")
	assert.Equal(t, "invalid", f.Error())
	f.SetError("")
	assert.Equal(t, "", f.Error())
}
