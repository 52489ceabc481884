package actor

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnboundedMailboxFIFO(t *testing.T) {
	mb := newMailbox(0)
	mb.enqueue(WithoutSender(1))
	mb.enqueue(WithoutSender(2))
	mb.enqueue(WithoutSender(3))

	ctx := context.Background()
	for _, want := range []int{1, 2, 3} {
		env, ok := mb.dequeue(ctx)
		require.True(t, ok)
		assert.Equal(t, want, ExtractAs[int](env))
	}
}

func TestMailboxDequeueUnblocksOnContextCancel(t *testing.T) {
	mb := newMailbox(0)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan bool, 1)
	go func() {
		_, ok := mb.dequeue(ctx)
		done <- ok
	}()

	cancel()
	select {
	case ok := <-done:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("dequeue did not unblock on context cancellation")
	}
}

func TestMailboxDequeueReturnsFalseAfterClose(t *testing.T) {
	mb := newMailbox(0)
	mb.close()
	_, ok := mb.dequeue(context.Background())
	assert.False(t, ok)
}

func TestBoundedMailboxEnqueueNeverBlocksCaller(t *testing.T) {
	mb := newMailbox(1)
	mb.enqueue(WithoutSender(1))

	done := make(chan struct{})
	go func() {
		mb.enqueue(WithoutSender(2)) // would block a plain channel of capacity 1
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("enqueue on a full bounded mailbox blocked the caller")
	}

	ctx := context.Background()
	env, ok := mb.dequeue(ctx)
	require.True(t, ok)
	assert.Equal(t, 1, ExtractAs[int](env))

	env, ok = mb.dequeue(ctx)
	require.True(t, ok)
	assert.Equal(t, 2, ExtractAs[int](env))
}

func TestMailboxCloseIsIdempotent(t *testing.T) {
	mb := newMailbox(1)
	assert.NotPanics(t, func() {
		mb.close()
		mb.close()
	})
}
