package actor

import (
	"fmt"
	"reflect"
	"sync/atomic"
)

// Envelope is a type-erased, single-owner payload carrying an optional
// reply address. It is consumed at most once: extracting the payload marks
// it consumed, and a second extraction attempt panics, since that can only
// happen because of a dispatcher bug (see ExtractAs).
type Envelope struct {
	payload     any
	payloadType reflect.Type
	replyTo     *Address
	consumed    atomic.Bool
}

// WithSender constructs an envelope carrying payload and a reply-to address.
func WithSender(payload any, replyTo Address) *Envelope {
	return &Envelope{
		payload:     payload,
		payloadType: reflect.TypeOf(payload),
		replyTo:     &replyTo,
	}
}

// WithoutSender constructs an envelope carrying payload with no reply
// address.
func WithoutSender(payload any) *Envelope {
	return &Envelope{
		payload:     payload,
		payloadType: reflect.TypeOf(payload),
	}
}

// Type returns the stable runtime identity of the envelope's payload type.
func (e *Envelope) Type() reflect.Type {
	return e.payloadType
}

// HasSender reports whether a reply-to address was attached at
// construction, i.e. whether this envelope should be dispatched through the
// ask-table rather than the tell-table.
func (e *Envelope) HasSender() bool {
	return e.replyTo != nil
}

// ReplyTo returns the envelope's reply address. Only meaningful when
// HasSender reports true.
func (e *Envelope) ReplyTo() Address {
	if e.replyTo == nil {
		return Address{}
	}
	return *e.replyTo
}

// ExtractAs consumes the envelope and returns its payload as T. A type
// mismatch or a second extraction of the same envelope both indicate a
// dispatcher wiring bug (the ask/tell tables are keyed by exactly the type
// the envelope reports via Type()) and therefore panic rather than return an
// error.
func ExtractAs[T any](e *Envelope) T {
	if !e.consumed.CompareAndSwap(false, true) {
		panic("aector: envelope already consumed")
	}
	v, ok := e.payload.(T)
	if !ok {
		panic(fmt.Sprintf("aector: envelope payload type mismatch: got %s", e.payloadType))
	}
	return v
}
