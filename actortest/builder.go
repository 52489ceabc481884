// Package actortest provides a scripted, deterministic driver for testing
// actor.Actor values without reaching for sleeps or manual goroutine
// synchronization: a Builder records a sequence of Tell/Ask/Check/
// ExpectTell/ExpectAsk steps, and Run drives them against a single actor
// under test one at a time, waiting on a Probe for every reply the script
// cares about.
package actortest

import (
	"context"
	"fmt"
	"time"

	"github.com/aector-go/aector/actor"
)

// DefaultTimeout bounds how long any single step waits for a reply before
// the script is considered stuck.
const DefaultTimeout = 2 * time.Second

// step is satisfied by every scripted instruction a Builder strings
// together. Steps run strictly in the order they were added.
type step[S any] interface {
	run(r *run[S]) error
}

// run carries the state threaded through a single Builder.Run invocation:
// the address under test and the probe standing in for the rest of the
// world.
type run[S any] struct {
	target  actor.Address
	probe   *actor.Probe
	timeout time.Duration
}

// Builder assembles a scripted sequence of interactions against a single
// actor under test. The zero value is ready to use.
type Builder[S any] struct {
	steps   []step[S]
	timeout time.Duration
}

// New returns an empty Builder using DefaultTimeout for every step.
func New[S any]() *Builder[S] {
	return &Builder[S]{timeout: DefaultTimeout}
}

// WithTimeout overrides the per-step wait timeout.
func (b *Builder[S]) WithTimeout(d time.Duration) *Builder[S] {
	b.timeout = d
	return b
}

// Tell appends a step that sends msg to the actor under test without a
// reply address.
func (b *Builder[S]) Tell(msg any) *Builder[S] {
	b.steps = append(b.steps, tellStep[S]{msg: msg})
	return b
}

// Check appends a step that asks the actor under test to evaluate pred
// against its own current state, failing the script if pred returns false.
// The behavior under test must have been built with
// actor.EnableStateChecks.
func (b *Builder[S]) Check(pred func(S) bool) *Builder[S] {
	b.steps = append(b.steps, checkStep[S]{pred: pred})
	return b
}

// Run spawns a on a fresh, unregistered run loop (see actor.Run), drives
// every scripted step against it in order, then kills it and waits for it
// to exit. The first failing step aborts the remaining script, but the
// actor is always sent Kill and awaited regardless of whether the script
// succeeded, so Run never leaks a's goroutine.
func (b *Builder[S]) Run(a *actor.Actor[S]) (actor.ExitReason, error) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := actor.Run[S](ctx, a)

	probe := actor.NewProbe()
	defer probe.Close()

	timeout := b.timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	r := &run[S]{target: a.Address(), probe: probe, timeout: timeout}

	var stepErr error
	for i, st := range b.steps {
		if err := st.run(r); err != nil {
			stepErr = fmt.Errorf("actortest: step %d: %w", i, err)
			break
		}
	}

	a.Address().Tell(actor.Kill())

	select {
	case reason := <-done:
		return reason, stepErr
	case <-time.After(timeout):
		cancel()
		<-done
		if stepErr != nil {
			return actor.ExitError, stepErr
		}
		return actor.ExitError, fmt.Errorf("actortest: actor did not exit within %s after Kill", timeout)
	}
}

type tellStep[S any] struct {
	msg any
}

func (s tellStep[S]) run(r *run[S]) error {
	r.target.Tell(s.msg)
	return nil
}

type checkStep[S any] struct {
	pred func(S) bool
}

func (s checkStep[S]) run(r *run[S]) error {
	r.target.Ask(actor.StateCheckQuery[S]{Pred: s.pred}, r.probe.Address())
	// EnableStateChecks answers with a plain replyTo.Tell(StateCheckResult{...}),
	// not an ask, so the reply envelope itself carries no sender.
	return expectReply(r, func(res actor.StateCheckResult) bool { return res.OK }, false)
}
