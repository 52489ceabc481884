package actor

import (
	"context"
	"sync"

	"github.com/gammazero/deque"
)

// mailbox is a single-consumer FIFO of envelopes. Both implementations
// below satisfy it: unboundedMailbox (backed by a deque) and
// boundedMailbox (backed by a fixed-capacity channel).
type mailbox interface {
	enqueue(e *Envelope)
	dequeue(ctx context.Context) (*Envelope, bool)
	close()
}

// newMailbox constructs an unbounded mailbox when capacity <= 0, or a
// bounded mailbox of the given capacity otherwise.
func newMailbox(capacity int) mailbox {
	if capacity <= 0 {
		return newUnboundedMailbox()
	}
	return newBoundedMailbox(capacity)
}

// unboundedMailbox pairs a gammazero/deque.Deque with a one-slot signal
// channel to wake the consumer, following the same shape as a classic
// condvar-backed queue but expressed with a channel so dequeue can select
// on ctx.Done() for cancellation. Capacity is limited only by memory.
type unboundedMailbox struct {
	mu     sync.Mutex
	q      deque.Deque[*Envelope]
	signal chan struct{}
	closed bool
}

func newUnboundedMailbox() *unboundedMailbox {
	return &unboundedMailbox{signal: make(chan struct{}, 1)}
}

func (m *unboundedMailbox) enqueue(e *Envelope) {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.q.PushBack(e)
	m.mu.Unlock()
	m.wake()
}

func (m *unboundedMailbox) wake() {
	select {
	case m.signal <- struct{}{}:
	default:
	}
}

func (m *unboundedMailbox) dequeue(ctx context.Context) (*Envelope, bool) {
	for {
		m.mu.Lock()
		if m.q.Len() > 0 {
			e := m.q.PopFront()
			m.mu.Unlock()
			return e, true
		}
		closed := m.closed
		m.mu.Unlock()
		if closed {
			return nil, false
		}
		select {
		case <-m.signal:
			continue
		case <-ctx.Done():
			return nil, false
		}
	}
}

func (m *unboundedMailbox) close() {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
	m.wake()
}

// boundedMailbox is a fixed-capacity FIFO. A send that would block is
// off-loaded onto a detached goroutine so the calling handler never blocks
// on a full mailbox (see Address.Tell / §9 of the design notes); teardown is
// signalled through closedC rather than closing the data channel, so a
// pending off-loaded send can never panic on a send-to-closed-channel race.
type boundedMailbox struct {
	ch      chan *Envelope
	closedC chan struct{}
	once    sync.Once
}

func newBoundedMailbox(capacity int) *boundedMailbox {
	return &boundedMailbox{
		ch:      make(chan *Envelope, capacity),
		closedC: make(chan struct{}),
	}
}

func (m *boundedMailbox) enqueue(e *Envelope) {
	select {
	case <-m.closedC:
		return
	default:
	}
	select {
	case m.ch <- e:
	case <-m.closedC:
	default:
		go func() {
			select {
			case m.ch <- e:
			case <-m.closedC:
			}
		}()
	}
}

func (m *boundedMailbox) dequeue(ctx context.Context) (*Envelope, bool) {
	select {
	case e := <-m.ch:
		return e, true
	default:
	}
	select {
	case e := <-m.ch:
		return e, true
	case <-m.closedC:
		select {
		case e := <-m.ch:
			return e, true
		default:
			return nil, false
		}
	case <-ctx.Done():
		return nil, false
	}
}

func (m *boundedMailbox) close() {
	m.once.Do(func() { close(m.closedC) })
}
