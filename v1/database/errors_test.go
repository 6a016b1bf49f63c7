package database

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorMatchesKindSentinel(t *testing.T) {
	err := NewError(KindDeadlock, StateDeadlock, "deadlock detected")

	assert.ErrorIs(t, err, ErrDeadlock)
	assert.NotErrorIs(t, err, ErrEngine)
	assert.Equal(t, "[40P01] deadlock detected", err.Error())
	assert.True(t, IsRetryable(err))
	assert.True(t, IsRetryable(fmt.Errorf("update failed: %w", err)))
}

func TestWrapErrorKeepsCause(t *testing.T) {
	cause := errors.New("duplicate key")
	err := WrapError(KindEngine, "23505", 1062, cause)

	assert.ErrorIs(t, err, cause)
	assert.ErrorIs(t, err, ErrEngine)
	assert.Equal(t, 1062, err.Native)
	assert.Equal(t, "duplicate key", err.Message)
	assert.False(t, IsRetryable(err))
}

func TestSQLStateOf(t *testing.T) {
	assert.Equal(t, StateOK, SQLStateOf(nil))
	assert.Equal(t, StateGeneral, SQLStateOf(errors.New("plain")))
	assert.Equal(t, StateNotSeekable, SQLStateOf(fmt.Errorf("seek: %w", NewError(KindNotSeekable, StateNotSeekable, ""))))
}

func TestKindOf(t *testing.T) {
	kind, ok := KindOf(NewError(KindFormat, StateSyntax, "bad placeholder"))
	assert.True(t, ok)
	assert.Equal(t, KindFormat, kind)
	assert.Equal(t, "format", kind.String())

	_, ok = KindOf(errors.New("plain"))
	assert.False(t, ok)
	assert.Equal(t, "kind(99)", Kind(99).String())
}

func TestNewErrorDefaultsMessage(t *testing.T) {
	err := NewError(KindReleased, StateReleased, "")
	assert.Equal(t, StateReleased, err.Message)
}
