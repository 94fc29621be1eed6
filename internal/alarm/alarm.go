// Package alarm decides whether an observed metric breaches the configured
// threshold and drives the resulting notify and recover actions.
package alarm

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
)

// Breached reports whether value meets or exceeds threshold. The boundary
// is inclusive: a value exactly at the threshold triggers.
func Breached(value, threshold float64) bool {
	return value >= threshold
}

// Status is the tri-state result of one dispatched action.
type Status string

const (
	StatusSucceeded Status = "succeeded"
	StatusSkipped   Status = "skipped"
	StatusFailed    Status = "failed"
)

// Outcome records how a single action ended. A skipped action means its
// capability was not configured or not available, which is not a failure.
type Outcome struct {
	Action string
	Status Status
	Detail string
	Err    error
}

// Succeeded builds a succeeded outcome.
func Succeeded(action, detail string) Outcome {
	return Outcome{Action: action, Status: StatusSucceeded, Detail: detail}
}

// Skipped builds a skipped outcome.
func Skipped(action, detail string) Outcome {
	return Outcome{Action: action, Status: StatusSkipped, Detail: detail}
}

// Failed builds a failed outcome carrying its cause.
func Failed(action string, err error) Outcome {
	return Outcome{Action: action, Status: StatusFailed, Detail: err.Error(), Err: err}
}

// Notifier publishes a breach notification.
type Notifier interface {
	Notify(ctx context.Context, value float64) Outcome
}

// Remediator runs the local recovery command.
type Remediator interface {
	Recover(ctx context.Context) Outcome
}

// Result aggregates both action outcomes for one dispatch.
type Result struct {
	Notify  Outcome
	Recover Outcome
}

// Dispatcher invokes the notify and recover capabilities for a breached
// threshold. The two actions are independent: they run concurrently, both
// are always awaited, and a failure or panic in one never reaches the other.
type Dispatcher struct {
	notifier   Notifier
	remediator Remediator
	log        zerolog.Logger
}

// NewDispatcher wires a Dispatcher from its two capabilities.
func NewDispatcher(n Notifier, r Remediator, log zerolog.Logger) *Dispatcher {
	return &Dispatcher{notifier: n, remediator: r, log: log}
}

// Dispatch runs both actions for the given observed value and returns their
// outcomes. It never returns an error; every failure mode is captured in
// the Result.
func (d *Dispatcher) Dispatch(ctx context.Context, value float64) Result {
	var res Result
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		res.Notify = run("notify", func() Outcome { return d.notifier.Notify(ctx, value) })
	}()
	go func() {
		defer wg.Done()
		res.Recover = run("recover", func() Outcome { return d.remediator.Recover(ctx) })
	}()
	wg.Wait()

	for _, out := range []Outcome{res.Notify, res.Recover} {
		ev := d.log.Info()
		switch out.Status {
		case StatusSkipped:
			ev = d.log.Warn()
		case StatusFailed:
			ev = d.log.Error().Err(out.Err)
		}
		ev.Str("action", out.Action).Str("status", string(out.Status)).Str("detail", out.Detail).Msg("action finished")
	}
	return res
}

// run converts a panic inside an action into a failed outcome so a
// crashing capability cannot take down its sibling or the invocation.
func run(action string, fn func() Outcome) (out Outcome) {
	defer func() {
		if r := recover(); r != nil {
			out = Failed(action, fmt.Errorf("action panicked: %v", r))
		}
	}()
	return fn()
}
