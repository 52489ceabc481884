package actor

import (
	"time"

	"github.com/google/uuid"
)

// Address is an opaque, cheaply-clonable handle that enqueues envelopes into
// exactly one mailbox. Address is a plain value (copying it yields another
// handle aliasing the same mailbox), so it can be passed around, stored in
// messages, and broadcast without any special cloning API.
type Address struct {
	id uuid.UUID
	mb mailbox
}

func newAddress(mb mailbox) Address {
	return Address{id: uuid.New(), mb: mb}
}

// IsZero reports whether this Address is the zero value, i.e. was never
// bound to a mailbox.
func (a Address) IsZero() bool {
	return a.mb == nil
}

// String returns a short opaque identifier, useful for log correlation.
func (a Address) String() string {
	if a.mb == nil {
		return "addr(nil)"
	}
	return "addr(" + a.id.String() + ")"
}

// Tell enqueues payload without a reply address. Sends to a torn-down
// mailbox are silently discarded; the fire-and-forget contract has no error
// return.
func (a Address) Tell(payload any) {
	if a.mb == nil {
		return
	}
	a.mb.enqueue(WithoutSender(payload))
}

// Ask enqueues payload with replyTo attached, so the receiving behavior's
// ask-table is consulted instead of its tell-table.
func (a Address) Ask(payload any, replyTo Address) {
	if a.mb == nil {
		return
	}
	a.mb.enqueue(WithSender(payload, replyTo))
}

// TellDelayed behaves like Tell, except the envelope is enqueued only after
// d has elapsed. The call itself returns immediately; the delay is realized
// as a fresh timer-driven task rather than an in-handler suspension, so
// handlers stay synchronous (see the design notes on delayed send).
func (a Address) TellDelayed(payload any, d time.Duration) {
	time.AfterFunc(d, func() { a.Tell(payload) })
}

// AskDelayed behaves like Ask, delayed by d.
func (a Address) AskDelayed(payload any, replyTo Address, d time.Duration) {
	time.AfterFunc(d, func() { a.Ask(payload, replyTo) })
}
