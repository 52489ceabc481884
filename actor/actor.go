package actor

import (
	"context"
	"fmt"
)

// ExitReason identifies why an actor's run loop returned control to its
// caller (either the System's bookkeeping goroutine, or a supervision
// strategy).
type ExitReason int

const (
	// ExitKill means the actor was killed, either explicitly (via
	// ManagementMessage/ctx.Kill) or because its run loop's context was
	// cancelled (System.Stop, or the context passed to Run). An actor's
	// mailbox is not closed when the last copy of its Address is dropped, so
	// an idle actor with no remaining senders keeps waiting until one of
	// those happens.
	ExitKill ExitReason = iota
	// ExitRestart means the actor requested its own restart via
	// ctx.Restart or the management protocol's Restart message.
	ExitRestart
	// ExitError means a handler returned Fail, or panicked.
	ExitError
)

func (r ExitReason) String() string {
	switch r {
	case ExitKill:
		return "Kill"
	case ExitRestart:
		return "Restart"
	case ExitError:
		return "Error"
	default:
		return "Unknown"
	}
}

// Cloneable is the constraint state types must satisfy to be usable with
// SpawnWithSupervision: supervision needs to snapshot a pristine copy of
// the actor's initial state so it can be restored after a restart.
type Cloneable[S any] interface {
	Clone() S
}

// Backup is an immutable snapshot of an actor's initial state and behavior,
// captured once at spawn-with-supervision time and used to rehydrate the
// actor on every subsequent restart.
type Backup[S Cloneable[S]] struct {
	state    S
	behavior Behavior[S]
}

// Actor is the tuple of private state, behavior, mailbox, and in-handler
// context bound together at creation time. Construct one with New, then
// hand it to Spawn or SpawnWithSupervision.
type Actor[S any] struct {
	state    S
	behavior Behavior[S]
	mb       mailbox
	address  Address
	ctx      *Context[S]
}

// New creates an actor with the given initial state and behavior, using an
// unbounded mailbox. The actor's Address is valid immediately, even before
// it is spawned.
func New[S any](state S, behavior Behavior[S]) *Actor[S] {
	return newActor(state, behavior, newMailbox(0))
}

// NewBounded creates an actor like New, but with a bounded mailbox of the
// given capacity.
func NewBounded[S any](state S, behavior Behavior[S], capacity int) *Actor[S] {
	return newActor(state, behavior, newMailbox(capacity))
}

func newActor[S any](state S, behavior Behavior[S], mb mailbox) *Actor[S] {
	addr := newAddress(mb)
	return &Actor[S]{
		state:    state,
		behavior: behavior,
		mb:       mb,
		address:  addr,
		ctx:      newContext[S](addr),
	}
}

// Address returns this actor's own Address.
func (a *Actor[S]) Address() Address {
	return a.address
}

// createBackup snapshots the actor's current state and behavior via S's
// Clone method. Behaviors are already value-like/shallow-clonable, so only
// the state needs an explicit deep copy.
func createBackup[S Cloneable[S]](a *Actor[S]) Backup[S] {
	return Backup[S]{state: a.state.Clone(), behavior: a.behavior}
}

// applyBackup replaces the actor's live state and behavior with a fresh
// clone of the pristine snapshot, and clears any pending control flag. Used
// by SupervisionStrategy implementations before returning ActionRestart.
func applyBackup[S Cloneable[S]](a *Actor[S], b Backup[S]) {
	a.state = b.state.Clone()
	a.behavior = b.behavior
	a.ctx.resetFlag()
}

// Run starts a's run loop on a fresh goroutine and returns a channel that
// receives exactly one ExitReason once it terminates. Unlike Spawn, Run
// does not register a with any System, so System()-scoped operations
// (Spawn, Query, Broadcast) are unavailable from its handlers. Intended for
// the actortest package and other harnesses that want to drive a bare,
// unregistered actor directly by its own Address.
func Run[S any](ctx context.Context, a *Actor[S]) <-chan ExitReason {
	done := make(chan ExitReason, 1)
	go func() {
		done <- a.runOnce(ctx)
	}()
	return done
}

// runOnce executes on_start followed by the dispatch loop until the actor
// exits, returning the reason. ctx.System()/Spawn/Query/Broadcast work from
// within handlers only if bindSystem was called first (as Spawn does); under
// Run no system is bound.
func (a *Actor[S]) runOnce(ctx context.Context) (reason ExitReason) {
	if a.behavior.onStart != nil {
		a.behavior.onStart(&a.state, a.ctx)
	}

	for {
		switch a.ctx.loadFlag() {
		case flagKill:
			a.ctx.resetFlag()
			if a.behavior.onKill != nil {
				a.behavior.onKill(&a.state, a.ctx)
			}
			return ExitKill
		case flagRestart:
			a.ctx.resetFlag()
			if a.behavior.onRestart != nil {
				a.behavior.onRestart(&a.state, a.ctx)
			}
			return ExitRestart
		}

		env, ok := a.mb.dequeue(ctx)
		if !ok {
			return ExitKill
		}

		action := a.dispatch(env)
		switch action.kind {
		case actionKeep:
			// no-op
		case actionChange:
			a.behavior = *action.next
		case actionFail:
			logf("aector: actor %s failed: %v", a.address, action.err)
			if a.behavior.onError != nil {
				a.behavior.onError(&a.state, a.ctx)
			}
			return ExitError
		}
	}
}

// dispatch routes env through the current behavior's ask- or tell-table
// depending on whether it carries a reply address, converting any panic
// raised by user handler code into a Fail action rather than letting it
// escape the run loop.
func (a *Actor[S]) dispatch(env *Envelope) (action BehaviorAction[S]) {
	defer func() {
		if r := recover(); r != nil {
			action = Fail[S](fmt.Errorf("aector: handler panic: %v", r))
		}
	}()

	var (
		h  rawHandler[S]
		ok bool
	)
	if env.HasSender() {
		h, ok = a.behavior.askHandlers[env.Type()]
	} else {
		h, ok = a.behavior.tellHandlers[env.Type()]
	}
	if !ok {
		// Unknown type, or a type registered in the other table: dropped
		// silently. Actors evolve their protocol over time via Change;
		// spurious messages must not crash peers.
		return Keep[S]()
	}
	return h(env, &a.state, a.ctx)
}
