package flashmap

import (
	"fmt"
	"math/rand"
	"testing"
	"time"

	"golang.org/x/sync/errgroup"
)

// benchParams has no Writers field: this map has exactly one writer by
// construction.
type benchParams struct {
	Readers  int
	Keys     int
	Duration time.Duration
}

// drive runs params.Readers reader goroutines against r and a single writer
// loop against w for params.Duration, returning observed reads/sec and
// writes/sec. The readers run in an errgroup rather than a bare WaitGroup +
// result channels; its error is discarded, since the reader goroutines
// never return one (Get never errors).
func drive(params benchParams, w *WriteHandle[int, int], r *ReadHandle[int, int]) (readsPerSec, writesPerSec float64) {
	deadline := time.Now().Add(params.Duration)

	var eg errgroup.Group
	reads := make([]int, params.Readers)
	for i := 0; i < params.Readers; i++ {
		i := i
		eg.Go(func() error {
			rnd := rand.New(rand.NewSource(int64(i)))
			rh := r.Clone()
			defer rh.Close()
			n := 0
			for time.Now().Before(deadline) {
				g := rh.Guard()
				g.Get(rnd.Intn(params.Keys))
				g.Close()
				n++
			}
			reads[i] = n
			return nil
		})
	}

	rnd := rand.New(rand.NewSource(1))
	writes := 0
	for time.Now().Before(deadline) {
		g := w.Guard()
		k := rnd.Intn(params.Keys)
		g.Insert(k, k)
		g.Publish()
		writes++
	}

	_ = eg.Wait()

	total := 0
	for _, n := range reads {
		total += n
	}
	return float64(total) / params.Duration.Seconds(), float64(writes) / params.Duration.Seconds()
}

func BenchmarkFlashmap(b *testing.B) {
	var cases = []struct {
		readers  int
		keys     int
		duration time.Duration
	}{
		{10, 10_000, time.Second},
		{100, 100_000, time.Second},
		{1000, 1_000_000, time.Second},
	}

	for _, c := range cases {
		b.Run(fmt.Sprintf("%v/%v/%v", c.readers, c.keys, c.duration), func(b *testing.B) {
			w, r := NewWithCapacity[int, int](c.keys)
			defer w.Close()
			defer r.Close()

			rps, wps := drive(benchParams{Readers: c.readers, Keys: c.keys, Duration: c.duration}, w, r)
			b.ReportMetric(rps, "rps")
			b.ReportMetric(wps, "wps")
		})
	}
}
