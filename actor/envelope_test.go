package actor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvelopeWithoutSenderHasNoReplyTo(t *testing.T) {
	env := WithoutSender(42)
	assert.False(t, env.HasSender())
	assert.True(t, env.ReplyTo().IsZero())
}

func TestEnvelopeWithSenderCarriesReplyTo(t *testing.T) {
	probe := NewProbe()
	defer probe.Close()

	env := WithSender("hi", probe.Address())
	require.True(t, env.HasSender())
	assert.Equal(t, probe.Address().String(), env.ReplyTo().String())
}

func TestExtractAsReturnsPayload(t *testing.T) {
	env := WithoutSender(7)
	assert.Equal(t, 7, ExtractAs[int](env))
}

func TestExtractAsPanicsOnDoubleConsume(t *testing.T) {
	env := WithoutSender(7)
	ExtractAs[int](env)
	assert.Panics(t, func() { ExtractAs[int](env) })
}

func TestExtractAsPanicsOnTypeMismatch(t *testing.T) {
	env := WithoutSender(7)
	assert.Panics(t, func() { ExtractAs[string](env) })
}
