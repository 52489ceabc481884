package actor

import (
	"errors"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type counterState struct {
	total int
}

func (c counterState) Clone() counterState { return counterState{total: c.total} }

func TestOnTellRegistersAndDispatches(t *testing.T) {
	b := NewBehaviorBuilder[counterState]()
	OnTell[counterState, int](b, func(msg int, state *counterState, ctx *Context[counterState]) BehaviorAction[counterState] {
		state.total += msg
		return Keep[counterState]()
	})
	built := b.Build()

	state := counterState{}
	ctx := newContext[counterState](Address{})
	h, ok := built.tellHandlers[reflect.TypeOf(0)]
	require.True(t, ok)
	h(WithoutSender(5), &state, ctx)
	assert.Equal(t, 5, state.total)
}

func TestOnTellPanicsOnDuplicateRegistration(t *testing.T) {
	b := NewBehaviorBuilder[counterState]()
	OnTell[counterState, int](b, func(int, *counterState, *Context[counterState]) BehaviorAction[counterState] {
		return Keep[counterState]()
	})
	assert.Panics(t, func() {
		OnTell[counterState, int](b, func(int, *counterState, *Context[counterState]) BehaviorAction[counterState] {
			return Keep[counterState]()
		})
	})
}

func TestOnAskReceivesReplyAddress(t *testing.T) {
	b := NewBehaviorBuilder[counterState]()
	var gotReply Address
	OnAsk[counterState, string](b, func(msg string, state *counterState, replyTo Address, ctx *Context[counterState]) BehaviorAction[counterState] {
		gotReply = replyTo
		return Keep[counterState]()
	})
	built := b.Build()

	probe := NewProbe()
	defer probe.Close()

	state := counterState{}
	ctx := newContext[counterState](Address{})
	h := built.askHandlers[reflect.TypeOf("")]
	h(WithSender("ping", probe.Address()), &state, ctx)
	assert.Equal(t, probe.Address().String(), gotReply.String())
}

func TestFailDefaultsNilError(t *testing.T) {
	action := Fail[counterState](nil)
	assert.Error(t, action.err)
}

func TestFailPreservesGivenError(t *testing.T) {
	want := errors.New("boom")
	action := Fail[counterState](want)
	assert.Equal(t, want, action.err)
}

func TestBuildInstallsManagementHandler(t *testing.T) {
	built := NewBehaviorBuilder[counterState]().Build()
	assert.True(t, built.hasTellHandler(reflect.TypeOf(ManagementMessage{})))
}

func TestEnableStateChecksInstallsStateCheckHandler(t *testing.T) {
	b := EnableStateChecks(NewBehaviorBuilder[counterState]())
	assert.True(t, b.HasAskHandler(reflect.TypeOf(StateCheckQuery[counterState]{})))
}
