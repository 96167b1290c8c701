package form

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/newbpydev/vlistengine/pkg/events"
	"github.com/newbpydev/vlistengine/pkg/form/fields"
)

type fakeSubmitter struct {
	err     error
	calls   int
	lastData map[string]any
}

func (s *fakeSubmitter) Submit(_ context.Context, data map[string]any) error {
	s.calls++
	s.lastData = data
	return s.err
}

func newTestForm(t *testing.T, submitter Submitter, bus *events.Bus) (*Form, *fields.TextField, *fields.Button, *fields.Button) {
	t.Helper()
	name := fields.NewTextField("name", "Name", "")
	submitBtn := fields.NewButton("Submit", nil)
	cancelBtn := fields.NewButton("Cancel", nil)

	f := New(Config{
		UI: map[string]fields.Field{"data.name": name},
		Rules: []Rule{
			{Field: "name", Validate: func(v any, _ map[string]any) any {
				s, _ := v.(string)
				return s != ""
			}, Message: "name is required"},
		},
		SubmitButton: submitBtn,
		CancelButton: cancelBtn,
		Submit:       submitter,
	}, bus)
	return f, name, submitBtn, cancelBtn
}

func TestRegister_StripsPrefixAndTracksInitialValue(t *testing.T) {
	f, name, _, _ := newTestForm(t, nil, nil)
	assert.Equal(t, "", f.Data()["name"])
	name.SetValue("alice")
	assert.Equal(t, "alice", f.Data()["name"])
}

func TestFieldChange_TransitionsPristineToDirtyOnce(t *testing.T) {
	bus := events.New(nil)
	var states []string
	bus.Subscribe(func(p events.Payload) {
		if p.Event == events.Name("state:change") {
			data := p.Data.(map[string]any)
			states = append(states, data["state"].(string))
		}
	})

	f, name, _, _ := newTestForm(t, nil, bus)
	assert.Equal(t, Pristine, f.State())

	name.SetValue("alice")
	assert.Equal(t, Dirty, f.State())
	name.SetValue("bob") // already dirty: no further transition
	assert.Equal(t, []string{"dirty"}, states)
}

func TestFieldChange_ReturningToInitialValueGoesPristine(t *testing.T) {
	f, name, submitBtn, cancelBtn := newTestForm(t, nil, nil)
	name.SetValue("alice")
	assert.True(t, submitBtn.Disabled() == false)
	assert.False(t, cancelBtn.Disabled())

	name.SetValue("")
	assert.Equal(t, Pristine, f.State())
	assert.True(t, submitBtn.Disabled())
	assert.True(t, cancelBtn.Disabled())
}

func TestValidate_ClearsErrorOnFix(t *testing.T) {
	f, name, _, _ := newTestForm(t, nil, nil)
	f.Validate("")
	assert.Equal(t, "name is required", f.Errors()["name"])

	name.SetValue("alice")
	f.Validate("")
	assert.Empty(t, f.Errors()["name"])
}

func TestSubmit_FailsValidationWithoutCallingSubmitter(t *testing.T) {
	sub := &fakeSubmitter{}
	f, _, _, _ := newTestForm(t, sub, nil)

	err := f.Submit(context.Background())
	assert.Error(t, err)
	assert.Equal(t, 0, sub.calls)
}

func TestSubmit_SuccessSnapshotsAndGoesPristine(t *testing.T) {
	sub := &fakeSubmitter{}
	bus := events.New(nil)
	var success bool
	bus.Subscribe(func(p events.Payload) {
		if p.Event == events.Name("submit:success") {
			success = true
		}
	})

	f, name, _, _ := newTestForm(t, sub, bus)
	name.SetValue("alice")
	require.NoError(t, f.Submit(context.Background()))

	assert.Equal(t, 1, sub.calls)
	assert.Equal(t, "alice", sub.lastData["name"])
	assert.True(t, success)
	assert.Equal(t, Pristine, f.State())
}

func TestSubmit_FailureReEnablesControlsAndEmitsError(t *testing.T) {
	sub := &fakeSubmitter{err: errors.New("boom")}
	bus := events.New(nil)
	var errEvent bool
	bus.Subscribe(func(p events.Payload) {
		if p.Event == events.Name("submit:error") {
			errEvent = true
		}
	})

	f, name, submitBtn, _ := newTestForm(t, sub, bus)
	name.SetValue("alice")

	err := f.Submit(context.Background())
	assert.Error(t, err)
	assert.True(t, errEvent)
	assert.False(t, submitBtn.Disabled()) // still dirty: submit stays enabled
}

func TestOverlays_OnlyArmedWhenDirtyAndProtected(t *testing.T) {
	name := fields.NewTextField("name", "Name", "")
	f := New(Config{
		UI:             map[string]fields.Field{"data.name": name},
		ProtectChanges: ProtectChanges{OnDataOverwrite: true},
	}, nil)

	assert.Nil(t, f.Overlays(80, 24, 10, 5, 40, 10))
	name.SetValue("alice")
	overlays := f.Overlays(80, 24, 10, 5, 40, 10)
	assert.Len(t, overlays, 4)
}

func TestHandleOverlayClick_EmitsConflict(t *testing.T) {
	name := fields.NewTextField("name", "Name", "")
	bus := events.New(nil)
	var conflict map[string]any
	bus.Subscribe(func(p events.Payload) {
		if p.Event == events.Name("data:conflict") {
			conflict = p.Data.(map[string]any)
		}
	})

	f := New(Config{
		UI:             map[string]fields.Field{"data.name": name},
		ProtectChanges: ProtectChanges{OnDataOverwrite: true},
	}, bus)
	name.SetValue("alice")

	overlays := f.Overlays(80, 24, 10, 5, 40, 10)
	intercepted := f.HandleOverlayClick(0, 0, overlays, map[string]any{"name": "server-value"})
	assert.True(t, intercepted)
	require.NotNil(t, conflict)
	assert.Equal(t, "alice", conflict["currentData"].(map[string]any)["name"])
}

func TestShouldInterceptQuit_OnlyWhenDirtyAndConfigured(t *testing.T) {
	name := fields.NewTextField("name", "Name", "")
	f := New(Config{
		UI:             map[string]fields.Field{"data.name": name},
		ProtectChanges: ProtectChanges{BeforeUnload: true},
	}, nil)

	assert.False(t, f.ShouldInterceptQuit())
	name.SetValue("alice")
	assert.True(t, f.ShouldInterceptQuit())
}
