package actor

import (
	"fmt"
	"reflect"
)

// rawHandler is how handlers are stored internally: the type-narrowing that
// a user-registered OnTell[S, M]/OnAsk[S, M] handler performs is captured in
// a closure at registration time, so dispatch only ever needs the envelope's
// declared type identity to find the right entry.
type rawHandler[S any] func(env *Envelope, state *S, ctx *Context[S]) BehaviorAction[S]

type plainAction[S any] func(state *S, ctx *Context[S])

type actionKind int

const (
	actionKeep actionKind = iota
	actionChange
	actionFail
)

// BehaviorAction is returned by every message handler to tell the run loop
// what to do next: keep the current behavior, atomically switch to a new
// one, or fail (which runs on_error and exits the actor with ExitError).
type BehaviorAction[S any] struct {
	kind actionKind
	next *Behavior[S]
	err  error
}

// Keep retains the actor's current behavior.
func Keep[S any]() BehaviorAction[S] {
	return BehaviorAction[S]{kind: actionKeep}
}

// Change installs next as the actor's behavior before the next envelope is
// dequeued. The envelope currently being handled was already dispatched
// through the old behavior.
func Change[S any](next Behavior[S]) BehaviorAction[S] {
	return BehaviorAction[S]{kind: actionChange, next: &next}
}

// Fail indicates the handler encountered an error. The run loop executes
// on_error and exits the actor with ExitError.
func Fail[S any](err error) BehaviorAction[S] {
	if err == nil {
		err = fmt.Errorf("aector: handler failed")
	}
	return BehaviorAction[S]{kind: actionFail, err: err}
}

// Behavior is an immutable, shallow-clonable pair of type-indexed dispatch
// tables (ask and tell) plus four optional lifecycle hooks. Behaviors are
// value-like: copying one is O(1) and yields a handle sharing the same
// underlying handler maps, which is safe because a Behavior is never
// mutated after BehaviorBuilder.Build returns it. This is what makes
// Change cheap and Backup only O(1) extra memory beyond the handlers
// themselves.
type Behavior[S any] struct {
	askHandlers  map[reflect.Type]rawHandler[S]
	tellHandlers map[reflect.Type]rawHandler[S]
	onStart      plainAction[S]
	onKill       plainAction[S]
	onError      plainAction[S]
	onRestart    plainAction[S]
}

func (b Behavior[S]) hasTellHandler(t reflect.Type) bool {
	_, ok := b.tellHandlers[t]
	return ok
}

func (b Behavior[S]) hasAskHandler(t reflect.Type) bool {
	_, ok := b.askHandlers[t]
	return ok
}

// BehaviorBuilder builds a Behavior. Each registration method returns the
// builder so calls can be chained; Build finalizes it, additionally
// installing the management protocol's tell-handler (see management.go) so
// every actor is externally controllable.
type BehaviorBuilder[S any] struct {
	askHandlers  map[reflect.Type]rawHandler[S]
	tellHandlers map[reflect.Type]rawHandler[S]
	onStart      plainAction[S]
	onKill       plainAction[S]
	onError      plainAction[S]
	onRestart    plainAction[S]
}

// NewBehaviorBuilder returns an empty builder.
func NewBehaviorBuilder[S any]() *BehaviorBuilder[S] {
	return &BehaviorBuilder[S]{
		askHandlers:  make(map[reflect.Type]rawHandler[S]),
		tellHandlers: make(map[reflect.Type]rawHandler[S]),
	}
}

// OnTell registers h for tell-sent messages of type M. Only one tell
// handler per message type may be registered on a given builder; a second
// registration for the same M panics, since that is a programmer error to
// be caught at build time, not at dispatch time.
//
// OnTell is a free function, not a method, because Go methods cannot
// introduce additional type parameters beyond the receiver's: M has to be
// inferred at each call site.
func OnTell[S any, M any](b *BehaviorBuilder[S], h func(msg M, state *S, ctx *Context[S]) BehaviorAction[S]) *BehaviorBuilder[S] {
	t := reflect.TypeOf((*M)(nil)).Elem()
	if _, exists := b.tellHandlers[t]; exists {
		panic(fmt.Sprintf("aector: tell handler for %s already registered on this behavior", t))
	}
	b.tellHandlers[t] = func(env *Envelope, state *S, ctx *Context[S]) BehaviorAction[S] {
		return h(ExtractAs[M](env), state, ctx)
	}
	return b
}

// OnAsk registers h for ask-sent messages of type M, passing the sender's
// reply Address through to the handler. Only one ask handler per message
// type may be registered; a duplicate registration panics.
func OnAsk[S any, M any](b *BehaviorBuilder[S], h func(msg M, state *S, replyTo Address, ctx *Context[S]) BehaviorAction[S]) *BehaviorBuilder[S] {
	t := reflect.TypeOf((*M)(nil)).Elem()
	if _, exists := b.askHandlers[t]; exists {
		panic(fmt.Sprintf("aector: ask handler for %s already registered on this behavior", t))
	}
	b.askHandlers[t] = func(env *Envelope, state *S, ctx *Context[S]) BehaviorAction[S] {
		return h(ExtractAs[M](env), state, replyTo(env), ctx)
	}
	return b
}

func replyTo(env *Envelope) Address {
	return env.ReplyTo()
}

// HasTellHandler reports whether a tell handler for type t is already
// registered. Exposed for callers that need to register defaulted handlers
// at most once per message type.
func (b *BehaviorBuilder[S]) HasTellHandler(t reflect.Type) bool {
	_, ok := b.tellHandlers[t]
	return ok
}

// HasAskHandler reports whether an ask handler for type t is already
// registered.
func (b *BehaviorBuilder[S]) HasAskHandler(t reflect.Type) bool {
	_, ok := b.askHandlers[t]
	return ok
}

// OnStart registers the action run once per life (and again after every
// restart), before the first envelope is dequeued. A second registration
// panics.
func (b *BehaviorBuilder[S]) OnStart(f func(state *S, ctx *Context[S])) *BehaviorBuilder[S] {
	if b.onStart != nil {
		panic("aector: on_start already registered on this behavior")
	}
	b.onStart = f
	return b
}

// OnKill registers the action run when the actor exits via Kill. A second
// registration panics.
func (b *BehaviorBuilder[S]) OnKill(f func(state *S, ctx *Context[S])) *BehaviorBuilder[S] {
	if b.onKill != nil {
		panic("aector: on_kill already registered on this behavior")
	}
	b.onKill = f
	return b
}

// OnError registers the action run when a handler returns Fail, just
// before the actor exits with ExitError. A second registration panics.
func (b *BehaviorBuilder[S]) OnError(f func(state *S, ctx *Context[S])) *BehaviorBuilder[S] {
	if b.onError != nil {
		panic("aector: on_error already registered on this behavior")
	}
	b.onError = f
	return b
}

// OnRestart registers the action run when the actor exits via Restart,
// before the run loop returns control to the restart point. A second
// registration panics.
func (b *BehaviorBuilder[S]) OnRestart(f func(state *S, ctx *Context[S])) *BehaviorBuilder[S] {
	if b.onRestart != nil {
		panic("aector: on_restart already registered on this behavior")
	}
	b.onRestart = f
	return b
}

// EnableStateChecks installs the default ask-handler for the StateCheck
// protocol (see management.go): StateCheckQuery[S] is answered by applying
// the carried predicate to the actor's own state and replying with
// StateCheckResult. This must be called for any actor whose actortest
// script uses Check steps.
func EnableStateChecks[S any](b *BehaviorBuilder[S]) *BehaviorBuilder[S] {
	return OnAsk[S, StateCheckQuery[S]](b, func(msg StateCheckQuery[S], state *S, replyTo Address, ctx *Context[S]) BehaviorAction[S] {
		replyTo.Tell(StateCheckResult{OK: msg.Pred(*state)})
		return Keep[S]()
	})
}

// Build finalizes the builder into an immutable Behavior, installing the
// management protocol's tell-handler (Kill/Restart) unconditionally so
// every actor remains externally controllable regardless of what its own
// protocol looks like.
func (b *BehaviorBuilder[S]) Build() Behavior[S] {
	OnTell[S, ManagementMessage](b, func(msg ManagementMessage, state *S, ctx *Context[S]) BehaviorAction[S] {
		switch msg.kind {
		case managementKill:
			ctx.Kill()
		case managementRestart:
			ctx.Restart()
		}
		return Keep[S]()
	})

	return Behavior[S]{
		askHandlers:  b.askHandlers,
		tellHandlers: b.tellHandlers,
		onStart:      b.onStart,
		onKill:       b.onKill,
		onError:      b.onError,
		onRestart:    b.onRestart,
	}
}
