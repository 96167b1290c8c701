// Package vtelemetry wraps getsentry/sentry-go for the one capability the
// engine needs: capture-and-continue reporting of recovered panics from
// user-supplied templates (spec §6: "template MUST be total... if it
// throws, the engine renders a fallback error node and logs") and from
// event-bus listeners (spec §7 "Listener errors"). Grounded on the
// teacher's sentry-go wiring, previously in the deleted observability
// package (see DESIGN.md).
package vtelemetry

import (
	"fmt"
	"time"

	"github.com/getsentry/sentry-go"
)

// Reporter captures recovered panics. The zero value is a valid no-op
// reporter so callers that never configure a Sentry DSN still compile and
// run (construction-time failures are reserved for genuine programmer
// errors, not missing telemetry — spec §7).
type Reporter struct {
	enabled bool
}

// NewReporter initializes the Sentry client from dsn. An empty dsn yields
// a Reporter that only logs to context (via Capture's return value) and
// never calls out to Sentry.
func NewReporter(dsn string) (*Reporter, error) {
	if dsn == "" {
		return &Reporter{enabled: false}, nil
	}
	if err := sentry.Init(sentry.ClientOptions{Dsn: dsn}); err != nil {
		return nil, fmt.Errorf("vtelemetry: init sentry: %w", err)
	}
	return &Reporter{enabled: true}, nil
}

// Capture reports a recovered panic value under the given tag (e.g.
// "template", "listener"). Always returns a human-readable message so the
// caller can render a fallback node without needing Sentry configured.
func (r *Reporter) Capture(tag string, recovered any) string {
	msg := fmt.Sprintf("%s panic: %v", tag, recovered)
	if r != nil && r.enabled {
		sentry.WithScope(func(scope *sentry.Scope) {
			scope.SetTag("component", tag)
			sentry.CaptureMessage(msg)
		})
	}
	return msg
}

// Flush waits up to the given duration for buffered events to send, mirror
// of the teacher's shutdown hook.
func (r *Reporter) Flush(seconds int) {
	if r != nil && r.enabled {
		sentry.Flush(time.Duration(seconds) * time.Second)
	}
}
