package actor

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// System is a registry of actors addressable by unique name, plus the
// machinery to spawn them onto the shared scheduler, broadcast to all of
// them, and bring everything down in an orderly (best-effort) fashion.
//
// The zero value is not usable; construct one with NewSystem.
type System struct {
	mu       sync.RWMutex
	registry map[string]Address

	group  errgroup.Group
	ctx    context.Context
	cancel context.CancelFunc

	cfg Config
}

// NewSystem constructs an empty System.
func NewSystem(opts ...Option) *System {
	cfg := DefaultConfig()
	for _, o := range opts {
		o(&cfg)
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &System{
		registry: make(map[string]Address),
		ctx:      ctx,
		cancel:   cancel,
		cfg:      cfg,
	}
}

// System returns s itself, so a *System satisfies SystemProvider directly —
// top-level code can call Spawn(sys, ...) the same way an in-handler
// Context does.
func (s *System) System() *System { return s }

// SystemProvider is satisfied by anything that can produce a back-reference
// to an ActorSystem: both *System itself and *Context[S] for any S. Spawn
// and SpawnWithSupervision accept a SystemProvider rather than a concrete
// *System so the same call works whether it's issued from ordinary code
// holding the system directly, or from inside a running actor's handler via
// its Context.
type SystemProvider interface {
	System() *System
}

func (s *System) defaultMailbox() mailbox {
	return newMailbox(s.cfg.DefaultMailboxCapacity)
}

// NewActor constructs an actor using sys's configured default mailbox
// capacity instead of New's unconditional unbounded one. Useful when a
// system is configured with WithDefaultMailboxCapacity and callers would
// otherwise have to repeat that capacity at every NewBounded call site.
func NewActor[S any](sys *System, state S, behavior Behavior[S]) *Actor[S] {
	return newActor(state, behavior, sys.defaultMailbox())
}

func (s *System) register(name string, addr Address) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.registry[name]; exists {
		return ErrNameAlreadyInUse
	}
	s.registry[name] = addr
	return nil
}

func (s *System) remove(name string) {
	s.mu.Lock()
	delete(s.registry, name)
	s.mu.Unlock()
}

// Query looks up the Address registered under name.
func (s *System) Query(name string) (Address, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	addr, ok := s.registry[name]
	return addr, ok
}

// snapshot returns a best-effort copy of the registry's current addresses.
// Broadcast is explicitly not a strict snapshot: spawns/removals racing
// with the iteration may or may not be observed (see the design notes).
func (s *System) snapshot() []Address {
	s.mu.RLock()
	defer s.mu.RUnlock()
	addrs := make([]Address, 0, len(s.registry))
	for _, a := range s.registry {
		addrs = append(addrs, a)
	}
	return addrs
}

// BroadcastTell sends m, without a reply address, to every actor currently
// registered. m should be a plain value type: every recipient's envelope
// holds the same interface value, and each handler gets its own copy only
// because extracting a non-pointer value from an interface copies it.
func (s *System) BroadcastTell(m any) {
	for _, addr := range s.snapshot() {
		addr.Tell(m)
	}
}

// BroadcastAsk sends m, with replyTo attached, to every actor currently
// registered.
func (s *System) BroadcastAsk(m any, replyTo Address) {
	for _, addr := range s.snapshot() {
		addr.Ask(m, replyTo)
	}
}

// Stop cancels every actor's run loop at its next suspension point and
// clears the registry. Already-buffered messages are discarded, not
// drained — see the design notes' Open Question on shutdown semantics.
func (s *System) Stop() {
	s.cancel()
	s.mu.Lock()
	s.registry = make(map[string]Address)
	s.mu.Unlock()
}

// AwaitQuiescence blocks until every spawned actor has terminally exited,
// polling the registry at the configured interval. It also propagates the
// first error returned by any actor's run goroutine (there currently is
// none: runOnce itself never returns a Go error, only an ExitReason) so a
// future supervisory escalation path has somewhere to surface one.
func (s *System) AwaitQuiescence() error {
	ticker := time.NewTicker(s.cfg.ShutdownPollInterval)
	defer ticker.Stop()
	for {
		s.mu.RLock()
		empty := len(s.registry) == 0
		s.mu.RUnlock()
		if empty {
			break
		}
		<-ticker.C
	}
	return s.group.Wait()
}

// Spawn registers a and starts its run loop without supervision: if the
// actor exits for any reason it is simply removed from the registry. p is
// typically either the System itself or a running actor's Context.
func Spawn[S any](p SystemProvider, a *Actor[S], name string) (Address, error) {
	sys := p.System()
	if sys == nil {
		return Address{}, ErrActorNotSpawnedYet
	}
	if err := sys.register(name, a.address); err != nil {
		return Address{}, err
	}
	a.ctx.bindSystem(sys)

	sys.group.Go(func() error {
		reason := a.runOnce(sys.ctx)
		logf("aector: actor %q exited without supervision: %s", name, reason)
		sys.remove(name)
		return nil
	})
	return a.address, nil
}

// SpawnWithSupervision registers a and starts its run loop under strategy's
// supervision: a Backup of a's initial state and behavior is captured once,
// before the first start, and on every exit strategy.Decide chooses whether
// to remove the actor (ActionExit) or restart it in place, preserving its
// name, Address, and mailbox (ActionRestart / ActionRestartDelayed).
func SpawnWithSupervision[S Cloneable[S]](p SystemProvider, a *Actor[S], strategy SupervisionStrategy[S], name string) (Address, error) {
	sys := p.System()
	if sys == nil {
		return Address{}, ErrActorNotSpawnedYet
	}
	if err := sys.register(name, a.address); err != nil {
		return Address{}, err
	}
	a.ctx.bindSystem(sys)

	backup := createBackup(a)

	sys.group.Go(func() error {
		for {
			reason := a.runOnce(sys.ctx)
			action := strategy.Decide(reason, &backup, a)
			logf("aector: actor %q exited with reason %s, supervision action kind=%d", name, reason, action.Kind)

			switch action.Kind {
			case ActionExit:
				sys.remove(name)
				return nil
			case ActionRestart:
				continue
			case ActionRestartDelayed:
				select {
				case <-time.After(action.Delay):
					continue
				case <-sys.ctx.Done():
					sys.remove(name)
					return nil
				}
			default:
				sys.remove(name)
				return nil
			}
		}
	})
	return a.address, nil
}
