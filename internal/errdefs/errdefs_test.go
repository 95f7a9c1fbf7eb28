package errdefs

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindHelpers(t *testing.T) {
	t.Parallel()

	wrapped := fmt.Errorf("load: %w", NotFound("session", "abc"))
	assert.True(t, IsNotFound(wrapped))
	assert.False(t, IsInProgress(wrapped))
	assert.True(t, IsInProgress(InProgress("s1")))
	assert.True(t, IsNotAllowed(NotAllowed("no")))
	assert.True(t, IsPrecondition(Precondition("missing %s", "x")))
	assert.True(t, IsInvalidInput(InvalidInput("bad")))
	assert.False(t, IsNotFound(nil))
	assert.Equal(t, KindInternal, KindOf(errors.New("plain")))
}

func TestErrorMessage(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "component not found (c1, c2)", NotFound("component", "c1", "c2").Error())
	assert.Equal(t, "create stack failed: boom", Remote(errors.New("boom"), "create stack failed").Error())
	assert.Contains(t, InProgress("s1").Error(), "s1")
}

func TestPayloadOf(t *testing.T) {
	t.Parallel()

	p := PayloadOf(fmt.Errorf("wrap: %w", NotFound("component", "c9")))
	assert.Equal(t, KindNotFound, p.Kind)
	assert.Equal(t, []string{"c9"}, p.IDs)
	assert.Equal(t, "wrap: component not found (c9)", p.Message)

	p = PayloadOf(errors.New("boom"))
	assert.Equal(t, KindInternal, p.Kind)
	assert.Empty(t, p.IDs)

	assert.Equal(t, Payload{}, PayloadOf(nil))
}
