package fastsum

import (
	"bytes"
	"runtime"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sys/cpu"
)

// minRangeBytes keeps tiny inputs on the single-threaded path, where the
// fan-out overhead would dominate.
const minRangeBytes = 1 << 16

// SumParallel sums data across workers goroutines with default kernel
// options. workers <= 0 means GOMAXPROCS.
//
// The carried run length makes chunk order sequential within a range, so
// the input is cut at separator boundaries: every worker starts at the
// byte after a newline and therefore with a zero carry, and the shared
// permutation table is read-only across workers.
func SumParallel(data []byte, workers int) (uint64, error) {
	return sumParallel(data, Options{Workers: workers})
}

// result slots are cache-line padded so workers never share a line.
type paddedSum struct {
	sum uint64
	_   cpu.CacheLinePad
}

func sumParallel(data []byte, opts Options) (uint64, error) {
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if max := len(data) / minRangeBytes; workers > max {
		workers = max
	}
	if workers <= 1 {
		return sumRange(data, opts)
	}

	// Cut points move forward to the next separator so no token straddles
	// a range.
	bounds := make([]int, 0, workers+1)
	bounds = append(bounds, 0)
	for i := 1; i < workers; i++ {
		cut := i * len(data) / workers
		if cut <= bounds[len(bounds)-1] {
			continue
		}
		if next := bytes.IndexByte(data[cut:], '\n'); next >= 0 {
			bounds = append(bounds, cut+next+1)
		}
	}
	bounds = append(bounds, len(data))

	results := make([]paddedSum, len(bounds)-1)
	var g errgroup.Group
	for i := 0; i < len(bounds)-1; i++ {
		lo, hi := bounds[i], bounds[i+1]
		slot := &results[i]
		g.Go(func() error {
			sum, err := sumRange(data[lo:hi], opts)
			if err != nil {
				return err
			}
			slot.sum = sum
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}

	var total uint64
	for i := range results {
		total += results[i].sum
	}
	return total, nil
}
