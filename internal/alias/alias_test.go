package alias

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type countingDropper struct {
	drops *int
}

func (c countingDropper) Drop() {
	*c.drops++
}

func TestValue_GetAndCopyShareState(t *testing.T) {
	a := New(42)
	b := a.Copy()

	assert.Equal(t, 42, a.Get())
	assert.Equal(t, 42, b.Get())
}

func TestValue_DropInvokesDropperExactlyOnce(t *testing.T) {
	drops := 0
	a := New[countingDropper](countingDropper{drops: &drops})
	b := a.Copy()

	// Only one member of the alias family should ever be told to drop.
	a.Drop()
	assert.Equal(t, 1, drops)

	_ = b
}

func TestValue_DropOnNonDropperIsNoop(t *testing.T) {
	a := New("plain string")
	assert.NotPanics(t, func() {
		a.Drop()
	})
}

func TestValue_IntoOwned(t *testing.T) {
	a := New([]int{1, 2, 3})
	owned := a.IntoOwned()
	assert.Equal(t, []int{1, 2, 3}, owned)
}
