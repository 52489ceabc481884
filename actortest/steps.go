package actortest

import (
	"context"
	"fmt"

	"github.com/aector-go/aector/actor"
)

// Ask appends a step that sends msg to the actor under test with the
// script's probe as the reply address, then waits for a tell-reply of type
// R and checks it with pred. Free function, not a method: Builder.Ask
// would need to introduce R as a new method type parameter, which Go does
// not allow.
func Ask[S any, R any](b *Builder[S], msg any, pred func(R) bool) *Builder[S] {
	b.steps = append(b.steps, askStep[S, R]{msg: msg, pred: pred})
	return b
}

// ExpectTell appends a step that waits for the actor under test to send
// the probe a tell-message of type M, checking it with pred. Use this when
// an earlier Tell/Ask step is expected to make the actor under test
// message some other party — here, the probe standing in for it.
func ExpectTell[S any, M any](b *Builder[S], pred func(M) bool) *Builder[S] {
	b.steps = append(b.steps, expectTellStep[S, M]{pred: pred})
	return b
}

// ExpectAsk appends a step that waits for the actor under test to send the
// probe an ask-message of type M, checks it with pred, and replies with
// reply. This is the ask counterpart of ExpectTell: it lets the script
// stand in for a dependency the actor under test calls out to
// synchronously.
//
// Note this is intentionally NOT implemented by reusing ExpectTell's
// plumbing: a real ask carries a reply address the probe must honor, and a
// message arriving without one is a script failure, not a silent pass.
func ExpectAsk[S any, M any](b *Builder[S], pred func(M) bool, reply any) *Builder[S] {
	b.steps = append(b.steps, expectAskStep[S, M]{pred: pred, reply: reply})
	return b
}

type askStep[S any, R any] struct {
	msg  any
	pred func(R) bool
}

func (s askStep[S, R]) run(r *run[S]) error {
	r.target.Ask(s.msg, r.probe.Address())
	// A subject answers an ask with a plain Tell to the reply address, not
	// another ask, so the reply envelope itself carries no sender.
	return expectReply(r, s.pred, false)
}

type expectTellStep[S any, M any] struct {
	pred func(M) bool
}

func (s expectTellStep[S, M]) run(r *run[S]) error {
	return expectReply(r, s.pred, false)
}

type expectAskStep[S any, M any] struct {
	pred  func(M) bool
	reply any
}

func (s expectAskStep[S, M]) run(r *run[S]) error {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	env, ok := r.probe.Receive(ctx)
	if !ok {
		var zero M
		return fmt.Errorf("timed out waiting for an ask-sent %T", zero)
	}
	if !env.HasSender() {
		var zero M
		return fmt.Errorf("expected an ask-sent %T, got a tell", zero)
	}
	msg, err := safeExtract[M](env)
	if err != nil {
		return err
	}
	if !s.pred(msg) {
		return fmt.Errorf("predicate rejected ask message %#v", msg)
	}
	env.ReplyTo().Tell(s.reply)
	return nil
}

// expectReply waits for the next envelope on r's probe, checks it carries
// (or doesn't carry, per expectSender) a reply address, decodes it as R,
// and applies pred.
func expectReply[S any, R any](r *run[S], pred func(R) bool, expectSender bool) error {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	env, ok := r.probe.Receive(ctx)
	if !ok {
		var zero R
		return fmt.Errorf("timed out waiting for %T", zero)
	}
	if env.HasSender() != expectSender {
		var zero R
		return fmt.Errorf("sender-presence mismatch for %T (want sender=%v)", zero, expectSender)
	}
	msg, err := safeExtract[R](env)
	if err != nil {
		return err
	}
	if !pred(msg) {
		return fmt.Errorf("predicate rejected message %#v", msg)
	}
	return nil
}

// safeExtract wraps actor.ExtractAs, converting its panic-on-mismatch
// contract into an error: a script that gets sent the wrong message type
// should fail the test, not crash the test binary.
func safeExtract[T any](env *actor.Envelope) (t T, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("%v", rec)
		}
	}()
	t = actor.ExtractAs[T](env)
	return t, nil
}
