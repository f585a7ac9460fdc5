package core_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pathwise/coachmem-go/pkg/core"
)

func TestCoachErrorFormat(t *testing.T) {
	err := &core.CoachError{Op: "Append", Err: core.ErrStorageOperation}
	assert.Equal(t, "coachmem: Append: storage operation failed", err.Error())
}

func TestCoachErrorUnwrap(t *testing.T) {
	err := core.NewCoachError("Chat", core.ErrMessageEmpty)
	assert.ErrorIs(t, err, core.ErrMessageEmpty)

	var coachErr *core.CoachError
	require.ErrorAs(t, err, &coachErr)
	assert.Equal(t, "Chat", coachErr.Op)
}

func TestNewCoachErrorNil(t *testing.T) {
	assert.Nil(t, core.NewCoachError("Chat", nil))
}

func TestCoachErrorWrapsArbitraryErrors(t *testing.T) {
	inner := errors.New("disk full")
	err := core.NewCoachError("SaveProfile", inner)
	assert.ErrorIs(t, err, inner)
	assert.Contains(t, err.Error(), "disk full")
}
