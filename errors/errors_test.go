package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	err := New("test error")
	require.NotNil(t, err)
	assert.Equal(t, "test error", err.Error())
}

func TestWrap(t *testing.T) {
	original := New("original")
	wrapped := Wrap(original, "wrapped")

	assert.Contains(t, wrapped.Error(), "wrapped")
	assert.Contains(t, wrapped.Error(), "original")
	assert.True(t, Is(wrapped, original))
}

func TestNewMalformedError(t *testing.T) {
	err := NewMalformedError("member %q has no type", "getAll")

	assert.Equal(t, `member "getAll" has no type`, err.Error())
	assert.True(t, IsMalformedError(err))
	assert.True(t, IsMalformedError(Wrap(err, "converting alarms")))
	assert.False(t, IsNotFoundError(err))
}

func TestNewNotFoundError(t *testing.T) {
	err := NewNotFoundError("no definition for %s", "topSites")

	assert.True(t, IsNotFoundError(err))
	assert.True(t, Is(Wrap(err, "resolve"), ErrNamespaceNotFound))
	assert.False(t, IsNotFoundError(nil))
}

func TestWithHint(t *testing.T) {
	err := WithHint(ErrUnknownPreset, "define it in api-names.json")

	assert.True(t, Is(err, ErrUnknownPreset))
	assert.Equal(t, []string{"define it in api-names.json"}, GetAllHints(err))
}

func TestStackTrace(t *testing.T) {
	err := Wrap(New("base"), "context")
	detailed := fmt.Sprintf("%+v", err)

	assert.Contains(t, detailed, "errors_test.go")
	assert.NotNil(t, GetStack(err))
}
