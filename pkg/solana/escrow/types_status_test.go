package escrow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatus(t *testing.T) {
	assert.False(t, StatusActive.IsTerminal())
	assert.True(t, StatusClaimed.IsTerminal())
	assert.True(t, StatusRefunded.IsTerminal())

	assert.True(t, StatusActive.CanTransitionTo(StatusClaimed))
	assert.True(t, StatusActive.CanTransitionTo(StatusRefunded))
	assert.False(t, StatusActive.CanTransitionTo(StatusActive))

	for _, terminal := range []Status{StatusClaimed, StatusRefunded} {
		for _, next := range []Status{StatusActive, StatusClaimed, StatusRefunded} {
			assert.False(t, terminal.CanTransitionTo(next))
		}
	}

	assert.False(t, Status(3).IsValid())
	assert.Equal(t, "unknown(3)", Status(3).String())

	for _, s := range []Status{StatusActive, StatusClaimed, StatusRefunded} {
		parsed, err := ParseStatus(s.String())
		require.NoError(t, err)
		assert.Equal(t, s, parsed)
	}
	_, err := ParseStatus("pending")
	require.Error(t, err)
	assert.Equal(t, `unknown escrow status: "pending"`, err.Error())
}
