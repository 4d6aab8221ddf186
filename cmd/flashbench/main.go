// Command flashbench drives a read-heavy workload against a real flashmap
// and reports throughput, making the package's many-readers benchmark
// scenario runnable outside `go test -bench`.
package main

import (
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/arrenbrecht/flashmap"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var (
		readers  int
		keys     int
		duration time.Duration
		verbose  bool
	)

	cmd := &cobra.Command{
		Use:   "flashbench",
		Short: "Drive concurrent readers and a writer against a flashmap and report throughput",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := zap.NewNop()
			if verbose {
				var err error
				logger, err = zap.NewDevelopment()
				if err != nil {
					return err
				}
			}
			defer logger.Sync() //nolint:errcheck

			w, r := flashmap.NewBuilder[int, int]().Capacity(keys).Logger(logger).Build()
			defer w.Close()
			defer r.Close()

			reads, writes := run(cmd.Context().Done(), w, r, readers, keys, duration)

			fmt.Printf("reads:  %s (%s/sec)\n", humanize.Comma(reads), humanize.Comma(int64(float64(reads)/duration.Seconds())))
			fmt.Printf("writes: %s (%s/sec)\n", humanize.Comma(writes), humanize.Comma(int64(float64(writes)/duration.Seconds())))
			return nil
		},
	}

	// Built as a standalone pflag.FlagSet and merged via AddFlagSet, so the
	// set can be constructed (and tested) independently of the command.
	benchFlags := pflag.NewFlagSet("flashbench", pflag.ContinueOnError)
	benchFlags.IntVar(&readers, "readers", 8, "number of concurrent reader goroutines")
	benchFlags.IntVar(&keys, "keys", 10_000, "number of distinct integer keys to insert/read")
	benchFlags.DurationVar(&duration, "duration", 5*time.Second, "how long to drive the workload")
	benchFlags.BoolVarP(&verbose, "verbose", "v", false, "log writer lifecycle events (parks, publishes) at debug level")
	cmd.Flags().AddFlagSet(benchFlags)

	return cmd
}

// run seeds the map with every key, then drives readers concurrently arg
// goroutines racing a single writer loop for duration, returning the total
// number of reads and writes performed.
func run(stop <-chan struct{}, w *flashmap.WriteHandle[int, int], r *flashmap.ReadHandle[int, int], readers, keys int, duration time.Duration) (reads, writes int64) {
	seed := w.Guard()
	for k := 0; k < keys; k++ {
		seed.Insert(k, k)
	}
	seed.Publish()

	deadline := time.Now().Add(duration)
	var eg errgroup.Group
	counts := make([]int64, readers)
	for i := 0; i < readers; i++ {
		i := i
		eg.Go(func() error {
			rnd := rand.New(rand.NewSource(int64(i)))
			rh := r.Clone()
			defer rh.Close()
			var n int64
			for time.Now().Before(deadline) {
				select {
				case <-stop:
					counts[i] = n
					return nil
				default:
				}
				g := rh.Guard()
				g.Get(rnd.Intn(keys))
				g.Close()
				n++
			}
			counts[i] = n
			return nil
		})
	}

	rnd := rand.New(rand.NewSource(1))
writeLoop:
	for time.Now().Before(deadline) {
		select {
		case <-stop:
			break writeLoop
		default:
		}
		g := w.Guard()
		k := rnd.Intn(keys)
		g.Insert(k, k)
		g.Publish()
		writes++
	}
	_ = eg.Wait()
	for _, n := range counts {
		reads += n
	}
	return reads, writes
}
