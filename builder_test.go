package flashmap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arrenbrecht/flashmap/internal/table"
)

// All three hasher-construction modes produce a working map.
func TestBuilderHasherModes(t *testing.T) {
	builders := map[string]*Builder[string, int]{
		"instance":  NewBuilder[string, int]().Hasher(table.NewXXHashStringHasher()),
		"factory":   NewBuilder[string, int]().HasherFunc(table.NewXXHashStringHasher),
		"prototype": NewBuilder[string, int]().HasherFrom(table.NewXXHashStringHasher()),
	}

	for name, b := range builders {
		t.Run(name, func(t *testing.T) {
			w, r := b.Build()
			defer w.Close()
			defer r.Close()

			g := w.Guard()
			g.Insert("k", 1)
			g.Publish()

			rg := r.Guard()
			defer rg.Close()
			v, ok := rg.Get("k")
			require.True(t, ok)
			assert.Equal(t, 1, v)
		})
	}
}

func TestBuilderCapacityPreSizes(t *testing.T) {
	const n = 1000
	w, r := NewWithCapacity[int, int](n)
	defer w.Close()
	defer r.Close()

	g := w.Guard()
	for i := 0; i < n; i++ {
		g.Insert(i, i*2)
	}
	g.Publish()

	rg := r.Guard()
	defer rg.Close()
	assert.Equal(t, n, rg.Len())
	v, ok := rg.Get(n - 1)
	require.True(t, ok)
	assert.Equal(t, (n-1)*2, v)
}
