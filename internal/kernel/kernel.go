// Package kernel implements a SWAR summation kernel for newline-delimited
// ASCII decimal integers. The input is scanned back to front in 32-byte
// chunks; per chunk, a single byte subtract yields digit values and a
// separator bitmask, a cached permutation descriptor pair redirects each
// digit into a decimal-place slot, and narrow per-slot sums are flushed
// into ten wide counters every BatchSize chunks. A carried digit-run
// length threads token state between chunks, which makes chunk order
// strictly sequential even though the per-chunk work is data-parallel.
package kernel

import (
	"fmt"
	"sync"
)

// Config carries the kernel tunables.
type Config struct {
	// BatchSize is the number of chunk iterations between accumulator
	// flushes. Values in [1, SafeBatchSize] are guaranteed exact; larger
	// values reduce flush overhead at the cost of a quantifiable chance
	// that a narrow lane wraps between flushes, silently corrupting the
	// result.
	BatchSize int

	// Strict makes the kernel fail with ErrUnsupportedCombination when a
	// chunk's (mask, carry) pair has no two-pass descriptor, instead of
	// summing that chunk on the scalar path.
	Strict bool
}

// DefaultConfig returns the exact-for-all-inputs configuration.
func DefaultConfig() Config {
	return Config{BatchSize: SafeBatchSize}
}

func (c Config) validate() error {
	if c.BatchSize < 1 {
		return fmt.Errorf("batch size must be positive, got %d", c.BatchSize)
	}
	return nil
}

// Kernel holds the per-scan state: the narrow accumulator, the wide
// per-place counters, and the scalar spill for boundary bytes and
// fallback chunks. Kernels are not safe for concurrent use; the table
// they share is.
type Kernel struct {
	cfg   Config
	table *Table

	acc       accumulator
	placeSums [DecimalPlaces]uint64
	spill     uint64
	pending   int
}

var kernelPool = sync.Pool{
	New: func() interface{} {
		return &Kernel{cfg: DefaultConfig(), table: shared}
	},
}

// New returns a default-configured kernel backed by the shared table.
func New() *Kernel {
	return kernelPool.Get().(*Kernel)
}

// NewWithConfig returns an unpooled kernel with the given tunables.
func NewWithConfig(cfg Config) (*Kernel, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &Kernel{cfg: cfg, table: shared}, nil
}

// Release returns a kernel obtained from New to the pool.
func (k *Kernel) Release() {
	k.reset()
	k.cfg = DefaultConfig()
	kernelPool.Put(k)
}

func (k *Kernel) reset() {
	k.acc = accumulator{}
	k.placeSums = [DecimalPlaces]uint64{}
	k.spill = 0
	k.pending = 0
}

// Sum computes the sum of all newline-separated decimal integers in data.
// The caller guarantees the input format; see Validate for the checked
// pre-pass. The result is exact for any conforming input when
// cfg.BatchSize <= SafeBatchSize.
func (k *Kernel) Sum(data []byte) (uint64, error) {
	k.reset()

	// Scalar boundary handler: consume the unaligned tail byte by byte,
	// establishing the initial carried run length for the vector loop.
	aligned := len(data) &^ (ChunkSize - 1)
	tailSum, carry := scalarSpan(data[aligned:], 0)
	k.spill += tailSum

	var vals [ChunkSize]uint8
	for off := aligned; off > 0; off -= ChunkSize {
		chunk := (*[ChunkSize]byte)(data[off-ChunkSize : off])
		mask := classify(chunk, &vals)

		e := k.table.lookup(mask, carry)
		if !e.supported {
			if k.cfg.Strict {
				return 0, combinationError(mask, carry)
			}
			var sum uint64
			sum, carry = scalarSpan(chunk[:], carry)
			k.spill += sum
			continue
		}

		k.acc.add(e, &vals)
		carry = e.nextCarry

		if k.pending++; k.pending >= k.cfg.BatchSize {
			k.acc.flush(&k.placeSums)
			k.pending = 0
		}
	}

	// Drain whatever the last partial batch left behind.
	k.acc.flush(&k.placeSums)
	return reduce(&k.placeSums) + k.spill, nil
}

// scalarSpan sums a byte span from its high end toward its low end,
// starting the decimal place at carry, and reports the run length left
// open at the low edge. It serves both the boundary handler and the
// fallback path for chunks without a supported descriptor.
func scalarSpan(span []byte, carry uint8) (sum uint64, outCarry uint8) {
	place := int(carry)
	for i := len(span) - 1; i >= 0; i-- {
		d := span[i] - digitZero
		if d > 9 {
			place = 0
			continue
		}
		if place < len(pow10) {
			sum += uint64(d) * pow10[place]
		}
		place++
	}
	if place > MaxRunLength {
		place = MaxRunLength
	}
	return sum, uint8(place)
}
