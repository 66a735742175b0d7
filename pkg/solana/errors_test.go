package solana

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInstructionError(t *testing.T) {
	err := InstructionError{
		Index: 1,
		Err:   CustomError(0x10),
	}
	assert.Equal(t, "error processing instruction 1: custom program error: 10", err.Error())

	custom := err.CustomError()
	require.NotNil(t, custom)
	assert.EqualValues(t, 16, *custom)

	var target CustomError
	assert.True(t, errors.As(err, &target))
	assert.EqualValues(t, 16, target)

	err = InstructionError{
		Index: 0,
		Err:   InstructionErrorMissingRequiredSignature,
	}
	assert.Nil(t, err.CustomError())
	assert.True(t, errors.Is(err, InstructionErrorMissingRequiredSignature))
	assert.Equal(t, "error processing instruction 0: MissingRequiredSignature", err.Error())
}
