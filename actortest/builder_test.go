package actortest_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aector-go/aector/actor"
	"github.com/aector-go/aector/actortest"
)

type counterState struct {
	total int
}

func (c counterState) Clone() counterState { return counterState{total: c.total} }

func newCounterBehavior() actor.Behavior[counterState] {
	b := actor.NewBehaviorBuilder[counterState]()
	actor.OnTell[counterState, int](b, func(msg int, state *counterState, ctx *actor.Context[counterState]) actor.BehaviorAction[counterState] {
		state.total += msg
		return actor.Keep[counterState]()
	})
	return actor.EnableStateChecks(b).Build()
}

// TestBuilderDrivesTellThenCheck is the S2 seed scenario, expressed with
// the scripted driver instead of a hand-rolled probe loop.
func TestBuilderDrivesTellThenCheck(t *testing.T) {
	a := actor.New(counterState{}, newCounterBehavior())

	script := actortest.New[counterState]().
		Tell(1).
		Tell(2).
		Tell(3).
		Tell(4).
		Check(func(s counterState) bool { return s.total == 10 })

	reason, err := script.Run(a)
	require.NoError(t, err)
	assert.Equal(t, actor.ExitKill, reason)
}

func TestBuilderFailsScriptOnWrongPredicate(t *testing.T) {
	a := actor.New(counterState{}, newCounterBehavior())

	script := actortest.New[counterState]().
		Tell(1).
		Check(func(s counterState) bool { return s.total == 999 })

	_, err := script.Run(a)
	assert.Error(t, err)
}

type changeMsg struct{}
type changeAck struct{}
type greet struct{}

type swapState struct {
	swapped bool
}

func (s swapState) Clone() swapState { return swapState{swapped: s.swapped} }

// newSwappableBehavior answers greet before the swap, acknowledges
// changeMsg while swapping to an empty behavior, and — since the new
// behavior registers no handler for greet at all — drops any later greet
// silently rather than replying.
func newSwappableBehavior() actor.Behavior[swapState] {
	b := actor.NewBehaviorBuilder[swapState]()
	actor.OnAsk[swapState, greet](b, func(_ greet, state *swapState, replyTo actor.Address, ctx *actor.Context[swapState]) actor.BehaviorAction[swapState] {
		replyTo.Tell(pongMsg{})
		return actor.Keep[swapState]()
	})
	actor.OnAsk[swapState, changeMsg](b, func(_ changeMsg, state *swapState, replyTo actor.Address, ctx *actor.Context[swapState]) actor.BehaviorAction[swapState] {
		state.swapped = true
		replyTo.Tell(changeAck{})
		empty := actor.EnableStateChecks(actor.NewBehaviorBuilder[swapState]()).Build()
		return actor.Change(empty)
	})
	return actor.EnableStateChecks(b).Build()
}

// TestBuilderObservesBehaviorSwap is the S3 seed scenario: greet is
// answered before the swap, the swap itself is acknowledged, and a second
// greet sent after the swap gets no reply at all — since the new (empty)
// behavior has no ask-handler for it — which the script observes as a
// timeout/error rather than a satisfied predicate.
func TestBuilderObservesBehaviorSwap(t *testing.T) {
	a := actor.New(swapState{}, newSwappableBehavior())

	script := actortest.New[swapState]().WithTimeout(300 * time.Millisecond)
	actortest.Ask[swapState, pongMsg](script, greet{}, func(pongMsg) bool { return true })
	actortest.Ask[swapState, changeAck](script, changeMsg{}, func(changeAck) bool { return true })
	script.Check(func(s swapState) bool { return s.swapped })
	actortest.Ask[swapState, pongMsg](script, greet{}, func(pongMsg) bool { return true })

	_, err := script.Run(a)
	assert.Error(t, err, "greet has no ask-reply once the behavior swaps away; the second Ask should time out")
}

type pingMsg struct{}
type pongMsg struct{}

func newReplyingBehavior() actor.Behavior[counterState] {
	b := actor.NewBehaviorBuilder[counterState]()
	actor.OnAsk[counterState, pingMsg](b, func(_ pingMsg, state *counterState, replyTo actor.Address, ctx *actor.Context[counterState]) actor.BehaviorAction[counterState] {
		replyTo.Tell(pongMsg{})
		return actor.Keep[counterState]()
	})
	return actor.EnableStateChecks(b).Build()
}

func TestBuilderAskReceivesTellReply(t *testing.T) {
	a := actor.New(counterState{}, newReplyingBehavior())

	script := actortest.New[counterState]()
	actortest.Ask[counterState, pongMsg](script, pingMsg{}, func(pongMsg) bool { return true })

	reason, err := script.Run(a)
	require.NoError(t, err)
	assert.Equal(t, actor.ExitKill, reason)
}
