package platform

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewShutdownContext_ParentCancel(t *testing.T) {
	parent, cancelParent := context.WithCancel(context.Background())
	ctx, stop := NewShutdownContext(parent)
	defer stop()

	assert.NoError(t, ctx.Err())
	cancelParent()
	<-ctx.Done()
	assert.ErrorIs(t, ctx.Err(), context.Canceled)
}
