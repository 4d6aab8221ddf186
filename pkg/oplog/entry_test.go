package oplog

import (
	"testing"

	"github.com/arrenbrecht/flashmap/internal/alias"
	"github.com/stretchr/testify/assert"
)

func TestEntry_MarkLeaky(t *testing.T) {
	e := Remove[string, int]("foo")
	assert.False(t, e.leaky)

	e.MarkLeaky()
	assert.True(t, e.leaky)
}

func TestEntry_Constructors(t *testing.T) {
	insert := InsertUnique("foo", alias.New(1))
	assert.Equal(t, entryTypeInsertUnique, insert.t)
	assert.Equal(t, "foo", insert.k)

	replace := Replace("foo", alias.New(2))
	assert.Equal(t, entryTypeReplace, replace.t)

	remove := Remove[string, int]("foo")
	assert.Equal(t, entryTypeRemove, remove.t)

	drop := DropEntry[string](alias.New(3))
	assert.Equal(t, entryTypeDrop, drop.t)
}
