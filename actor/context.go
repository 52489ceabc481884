package actor

import (
	"sync/atomic"
	"time"
)

type controlFlag int32

const (
	flagNone controlFlag = iota
	flagKill
	flagRestart
)

// Context is the in-handler API surface exposed to an actor's message
// handlers and lifecycle hooks. It is populated at Spawn time with a
// back-reference to the owning System; before that, Spawn and the
// Broadcast methods return ErrActorNotSpawnedYet, Query reports not found,
// and Stop does nothing.
type Context[S any] struct {
	self   Address
	flag   atomic.Int32
	system atomic.Pointer[System]
}

func newContext[S any](self Address) *Context[S] {
	c := &Context[S]{self: self}
	c.flag.Store(int32(flagNone))
	return c
}

// Self returns this actor's own Address.
func (c *Context[S]) Self() Address {
	return c.self
}

// System returns the owning ActorSystem, or nil if this actor has not yet
// been spawned. Exists chiefly so the free Spawn/SpawnWithSupervision
// functions (which need an extra type parameter Context methods can't carry)
// can reach the system without the caller threading it through by hand.
func (c *Context[S]) System() *System {
	return c.system.Load()
}

func (c *Context[S]) bindSystem(sys *System) {
	c.system.Store(sys)
}

// Kill requests that the actor exit at the top of its next loop iteration
// (after the current handler returns), running on_kill and exiting with
// ExitKill.
func (c *Context[S]) Kill() {
	c.flag.Store(int32(flagKill))
}

// Restart requests that the actor exit at the top of its next loop
// iteration, running on_restart and exiting with ExitRestart.
func (c *Context[S]) Restart() {
	c.flag.Store(int32(flagRestart))
}

func (c *Context[S]) loadFlag() controlFlag {
	return controlFlag(c.flag.Load())
}

func (c *Context[S]) resetFlag() {
	c.flag.Store(int32(flagNone))
}

// Stop requests a system-wide shutdown. A no-op if the actor has not been
// spawned yet.
func (c *Context[S]) Stop() {
	if sys := c.System(); sys != nil {
		sys.Stop()
	}
}

// Query looks up another actor's address by name.
func (c *Context[S]) Query(name string) (Address, bool) {
	sys := c.System()
	if sys == nil {
		return Address{}, false
	}
	return sys.Query(name)
}

// BroadcastTell sends m to every actor currently registered in the owning
// system, without a reply address.
func (c *Context[S]) BroadcastTell(m any) error {
	sys := c.System()
	if sys == nil {
		return ErrActorNotSpawnedYet
	}
	sys.BroadcastTell(m)
	return nil
}

// BroadcastAsk sends m to every actor currently registered in the owning
// system, with replyTo attached.
func (c *Context[S]) BroadcastAsk(m any, replyTo Address) error {
	sys := c.System()
	if sys == nil {
		return ErrActorNotSpawnedYet
	}
	sys.BroadcastAsk(m, replyTo)
	return nil
}

// RunAsync schedules f to run on a fresh goroutine, outside of this actor's
// mailbox. f has no access to actor state; it exists for timers and other
// side effects that must not block the run loop.
func (c *Context[S]) RunAsync(f func()) {
	go f()
}

// RunDelayed schedules f to run on a fresh goroutine after d has elapsed.
func (c *Context[S]) RunDelayed(f func(), d time.Duration) {
	time.AfterFunc(d, f)
}
