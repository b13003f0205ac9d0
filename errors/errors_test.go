package errors

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRowErrorFormat(t *testing.T) {
	err := NewNotNullableError("name")
	require.Equal(t, NotNullable, err.Code)
	require.Equal(t, "RCD0007 - Field name is not nullable", err.Error())

	err = NewInvalidConfigurationError("Space must be >= 1")
	require.Equal(t, "RCD0001 - Invalid configuration: Space must be >= 1", err.Error())
}

func TestCodeOf(t *testing.T) {
	err := Wrapf(NewOutOfRangeError("age", "INT8", 300), "row %d", 3)
	code, ok := CodeOf(err)
	require.True(t, ok)
	require.Equal(t, OutOfRange, code)
	require.True(t, HasCode(err, OutOfRange))
	require.False(t, HasCode(err, TypeMismatch))

	_, ok = CodeOf(New("plain"))
	require.False(t, ok)
	require.False(t, HasCode(nil, InternalError))
}

func TestMaybeAddStack(t *testing.T) {
	re := NewFieldUnsetError("x")
	require.Equal(t, error(re), MaybeAddStack(re))

	plain := New("plain")
	wrapped := MaybeAddStack(plain)
	require.NotEqual(t, plain, wrapped)
	require.Equal(t, plain, Cause(wrapped))
}

func TestErrorCodeString(t *testing.T) {
	require.Equal(t, "TypeMismatch", TypeMismatch.String())
	require.Equal(t, "ErrorCode(99)", ErrorCode(99).String())
}
