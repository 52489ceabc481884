package actor

import "context"

// Probe is a raw mailbox endpoint with no behavior attached: a stand-in
// peer that a test harness can hand out as a reply-to Address, or as a
// target to Tell/Ask directly, in order to observe what gets sent to it.
// It is built on the same mailbox implementation every real Actor uses, so
// packages like actortest never need this package's mailbox internals
// exposed to them.
type Probe struct {
	addr Address
	mb   mailbox
}

// NewProbe creates a Probe backed by an unbounded mailbox.
func NewProbe() *Probe {
	mb := newMailbox(0)
	return &Probe{addr: newAddress(mb), mb: mb}
}

// Address returns the probe's Address.
func (p *Probe) Address() Address {
	return p.addr
}

// Receive blocks until the next envelope arrives, or ctx is done, or the
// probe is closed.
func (p *Probe) Receive(ctx context.Context) (*Envelope, bool) {
	return p.mb.dequeue(ctx)
}

// Close tears down the probe's mailbox. Further sends to its Address are
// silently discarded, same as sending to any other torn-down mailbox.
func (p *Probe) Close() {
	p.mb.close()
}
