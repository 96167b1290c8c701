// Package form implements the Form Core (spec §4.9): field registration by
// prefix scanning, modified-state tracking with change-dedup, the
// protection overlay, beforeunload-equivalent quit interception, and the
// submit pipeline. Grounded on the teacher's (now-adapted)
// pkg/components/form.go for the overall field/label/error/submit/cancel
// shape, generalized from a bubbly.Component into a plain, driveable core.
package form

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"sync"

	"github.com/newbpydev/vlistengine/pkg/events"
	"github.com/newbpydev/vlistengine/pkg/form/fields"
)

// State is the form's pristine/dirty classification.
type State int

const (
	Pristine State = iota
	Dirty
)

func (s State) String() string {
	if s == Dirty {
		return "dirty"
	}
	return "pristine"
}

// Rule is one ordered validation rule (spec §4.9 validate()).
// Validate returns either a bool (false → use Message) or a string (used
// verbatim as the error, overriding Message); a true bool or empty string
// clears any existing error for Field.
type Rule struct {
	Field    string
	Validate func(value any, data map[string]any) any
	Message  string
}

// ProtectChanges configures the two change-protection behaviors (spec
// §4.9 Protection).
type ProtectChanges struct {
	OnDataOverwrite bool
	BeforeUnload    bool
}

// Submitter is the engine-level equivalent of `fetch(action, ...)`: a
// user-supplied handler invoked by Submit. The engine never ships a
// concrete HTTP implementation — that boundary is the caller's to wire,
// matching the spec's "user-supplied handler or fetch" alternative.
type Submitter interface {
	Submit(ctx context.Context, data map[string]any) error
}

// SubmitError optionally carries a server-supplied message (spec: "on HTTP
// failure extracts an error message from the JSON body's error field if
// present").
type SubmitError struct {
	Message string
	Cause   error
}

func (e *SubmitError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Cause != nil {
		return e.Cause.Error()
	}
	return "submit failed"
}

func (e *SubmitError) Unwrap() error { return e.Cause }

// Overlay is one of the four fixed-position protection panes (spec §4.9:
// "four fixed-positioned transparent overlay elements (top/bottom/
// left/right of the form element's client rect)"), expressed in terminal
// cell coordinates instead of CSS pixels.
type Overlay struct {
	Name                string
	X, Y, Width, Height int
}

// Config configures a Form at construction.
type Config struct {
	// UI maps raw field names (prefixed "info."/"data."/"file.") to the
	// field components they bind to (spec §4.9 registration scan).
	UI             map[string]fields.Field
	Rules          []Rule
	ProtectChanges ProtectChanges
	Submit         Submitter
	SubmitButton   *fields.Button
	CancelButton   *fields.Button
	OnCancel       func()
}

// Form is the declarative form core: field registry, modified-state
// tracking, protection overlay, and submit pipeline.
type Form struct {
	mu sync.Mutex

	dataFields map[string]fields.Field
	fileFields map[string]fields.Field
	rules      []Rule
	protect    ProtectChanges
	submitter  Submitter
	submitBtn  *fields.Button
	cancelBtn  *fields.Button
	onCancel   func()

	initialData map[string]any
	currentData map[string]any
	errors      map[string]string
	lastEmitted map[string]any

	state      State
	submitting bool

	bus *events.Bus
}

// New constructs a Form, registering every UI field and taking the
// initial data snapshot.
func New(cfg Config, bus *events.Bus) *Form {
	f := &Form{
		dataFields:  make(map[string]fields.Field),
		fileFields:  make(map[string]fields.Field),
		rules:       cfg.Rules,
		protect:     cfg.ProtectChanges,
		submitter:   cfg.Submit,
		submitBtn:   cfg.SubmitButton,
		cancelBtn:   cfg.CancelButton,
		onCancel:    cfg.OnCancel,
		errors:      make(map[string]string),
		lastEmitted: make(map[string]any),
		bus:         bus,
	}
	f.currentData = make(map[string]any)
	for rawName, field := range cfg.UI {
		f.register(rawName, field)
	}
	f.initialData = f.snapshotCurrentLocked()
	f.applyControlState()
	return f
}

func (f *Form) register(rawName string, field fields.Field) {
	key, isFile := stripPrefix(rawName)
	if key == "" {
		return
	}
	if isFile {
		f.fileFields[key] = field
	} else {
		f.dataFields[key] = field
	}
	f.lastEmitted[key] = field.GetValue()
	f.currentData[key] = field.GetValue()

	field.On("input", func(v any) { f.handleFieldChange(key, v) })
	field.On("change", func(v any) { f.handleFieldChange(key, v) })
}

func stripPrefix(name string) (key string, isFile bool) {
	switch {
	case strings.HasPrefix(name, "info."):
		return strings.TrimPrefix(name, "info."), false
	case strings.HasPrefix(name, "data."):
		return strings.TrimPrefix(name, "data."), false
	case strings.HasPrefix(name, "file."):
		return strings.TrimPrefix(name, "file."), true
	default:
		return "", false
	}
}

// handleFieldChange dedupes against the per-field last-emitted-value cache
// (spec §4.9: "deduplicates by comparing against a per-field 'last emitted
// value' cache... Emits field:change and change only when the value
// actually changes").
func (f *Form) handleFieldChange(key string, value any) {
	f.mu.Lock()
	if isValueEqual(f.lastEmitted[key], value) {
		f.mu.Unlock()
		return
	}
	f.lastEmitted[key] = value
	f.currentData[key] = value
	f.mu.Unlock()

	f.emit("field:change", map[string]any{"field": key, "value": value})
	f.emit("change", f.Data())
	f.syncState()
}

// isValueEqual treats nil as equal to nil (spec: "null-treated-as-equal-
// to-undefined") and otherwise structurally compares, covering the
// "arrays compared element-wise" requirement via reflect.DeepEqual.
func isValueEqual(a, b any) bool {
	if a == nil && b == nil {
		return true
	}
	return reflect.DeepEqual(a, b)
}

// Data returns a snapshot of the current field values.
func (f *Form) Data() map[string]any {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.snapshotCurrentLocked()
}

func (f *Form) snapshotCurrentLocked() map[string]any {
	out := make(map[string]any, len(f.currentData))
	for k, v := range f.currentData {
		out[k] = v
	}
	return out
}

// Errors returns a snapshot of current validation errors.
func (f *Form) Errors() map[string]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[string]string, len(f.errors))
	for k, v := range f.errors {
		out[k] = v
	}
	return out
}

// State returns the current pristine/dirty classification.
func (f *Form) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// IsDirty reports whether currentData differs from initialData.
func (f *Form) IsDirty() bool { return f.State() == Dirty }

func (f *Form) modifiedLocked() bool {
	if len(f.initialData) != len(f.currentData) {
		return true
	}
	for k, v := range f.initialData {
		if !isValueEqual(v, f.currentData[k]) {
			return true
		}
	}
	return false
}

// syncState recomputes pristine/dirty and emits state:change exactly on
// transition (spec §4.9: "State transitions pristine<->dirty emit
// state:change").
func (f *Form) syncState() {
	f.mu.Lock()
	newState := Pristine
	if f.modifiedLocked() {
		newState = Dirty
	}
	changed := newState != f.state
	f.state = newState
	f.mu.Unlock()

	if changed {
		f.emit("state:change", map[string]any{"modified": newState == Dirty, "state": newState.String()})
		f.applyControlState()
	}
}

// applyControlState enables/disables the submit and cancel buttons per
// the current dirty/submitting state (spec §4.9: "Controller listens and
// enables/disables submit and cancel buttons accordingly").
func (f *Form) applyControlState() {
	enabled := f.IsDirty() && !f.submittingSnapshot()
	if f.submitBtn != nil {
		if enabled {
			f.submitBtn.Enable()
		} else {
			f.submitBtn.Disable()
		}
	}
	if f.cancelBtn != nil {
		if enabled {
			f.cancelBtn.Enable()
		} else {
			f.cancelBtn.Disable()
		}
	}
}

func (f *Form) submittingSnapshot() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.submitting
}

// Validate runs rules for fieldName, or every rule when fieldName is
// empty (spec §4.9 validate(): "Validating a single field clears or
// replaces its entry").
func (f *Form) Validate(fieldName string) map[string]string {
	data := f.Data()

	f.mu.Lock()
	rules := f.rules
	f.mu.Unlock()

	for _, rule := range rules {
		if fieldName != "" && rule.Field != fieldName {
			continue
		}
		f.applyRule(rule, data)
	}
	return f.Errors()
}

func (f *Form) applyRule(rule Rule, data map[string]any) {
	result := rule.Validate(data[rule.Field], data)

	f.mu.Lock()
	defer f.mu.Unlock()

	switch v := result.(type) {
	case bool:
		if v {
			delete(f.errors, rule.Field)
		} else {
			msg := rule.Message
			f.errors[rule.Field] = msg
		}
	case string:
		if v == "" {
			delete(f.errors, rule.Field)
		} else {
			f.errors[rule.Field] = v
		}
	default:
		delete(f.errors, rule.Field)
	}

	if field, ok := f.dataFields[rule.Field]; ok {
		field.SetError(f.errors[rule.Field])
	}
}

// Submit runs the full submit pipeline: single-flight guard, validation,
// control disabling, the submit event, the submitter call, and the
// success/failure events (spec §4.9 submit()).
func (f *Form) Submit(ctx context.Context) error {
	f.mu.Lock()
	if f.submitting {
		f.mu.Unlock()
		return nil
	}
	f.submitting = true
	f.mu.Unlock()
	f.applyControlState()

	f.Validate("")
	if errs := f.Errors(); len(errs) > 0 {
		f.mu.Lock()
		f.submitting = false
		f.mu.Unlock()
		f.applyControlState()
		return errors.New("form: validation failed")
	}

	f.emit("submit", f.Data())

	var err error
	if f.submitter != nil {
		err = f.submitter.Submit(ctx, f.Data())
	}

	if err != nil {
		f.mu.Lock()
		f.submitting = false
		f.mu.Unlock()
		f.applyControlState()
		f.emit("submit:error", err)
		return err
	}

	f.snapshot()
	f.mu.Lock()
	f.submitting = false
	f.mu.Unlock()
	f.applyControlState()
	f.emit("submit:success", f.Data())
	return nil
}

// snapshot takes currentData as the new baseline (spec §4.9: "on success
// calls snapshot() (new baseline)").
func (f *Form) snapshot() {
	f.mu.Lock()
	f.initialData = f.snapshotCurrentLocked()
	f.mu.Unlock()
	f.syncState()
}

// Cancel invokes the configured OnCancel handler.
func (f *Form) Cancel() {
	if f.onCancel != nil {
		f.onCancel()
	}
}

// Overlays computes the four protection panes around the form's client
// rect when protection is armed and the form is dirty (spec §4.9
// Protection); returns nil otherwise.
func (f *Form) Overlays(termWidth, termHeight, formX, formY, formWidth, formHeight int) []Overlay {
	if !f.protect.OnDataOverwrite || !f.IsDirty() {
		return nil
	}
	return []Overlay{
		{Name: "top", X: 0, Y: 0, Width: termWidth, Height: formY},
		{Name: "bottom", X: 0, Y: formY + formHeight, Width: termWidth, Height: termHeight - (formY + formHeight)},
		{Name: "left", X: 0, Y: formY, Width: formX, Height: formHeight},
		{Name: "right", X: formX + formWidth, Y: formY, Width: termWidth - (formX + formWidth), Height: formHeight},
	}
}

// HandleOverlayClick checks (x, y) against overlays and emits data:conflict
// if it falls within one, returning true if the click was intercepted
// (spec §4.9: "clicks on overlays emit data:conflict with
// {currentData, newData, cancel(), proceed()}").
func (f *Form) HandleOverlayClick(x, y int, overlays []Overlay, newData map[string]any) bool {
	for _, ov := range overlays {
		if x >= ov.X && x < ov.X+ov.Width && y >= ov.Y && y < ov.Y+ov.Height {
			f.emitConflict(newData)
			return true
		}
	}
	return false
}

func (f *Form) emitConflict(newData map[string]any) {
	current := f.Data()
	f.emit("data:conflict", map[string]any{
		"currentData": current,
		"newData":     newData,
		"cancel":      func() {},
		"proceed": func() {
			f.mu.Lock()
			for k, v := range newData {
				f.currentData[k] = v
			}
			f.mu.Unlock()
			f.snapshot()
		},
	})
}

// ShouldInterceptQuit reports whether a quit attempt should be blocked for
// confirmation (spec §4.9: the beforeunload-equivalent handler, armed when
// ProtectChanges.BeforeUnload is set and the form is dirty).
func (f *Form) ShouldInterceptQuit() bool {
	return f.protect.BeforeUnload && f.IsDirty()
}

func (f *Form) emit(name string, data any) {
	if f.bus != nil {
		f.bus.Emit(events.Name(name), data)
	}
}
