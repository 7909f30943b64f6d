// Package fastsum sums newline-delimited ASCII decimal integers with a
// SWAR kernel that processes 32 input bytes per step. The fast path
// assumes conforming input (values in [0, 2^31-1], at most 10 digits,
// newline separated); Valid and Options.Validate provide the checked
// pre-pass for callers that cannot guarantee it.
package fastsum

import (
	"errors"
	"fmt"
	"io"

	"github.com/biggeezerdevelopment/fastsum/internal/input"
	"github.com/biggeezerdevelopment/fastsum/internal/kernel"
)

var (
	// ErrInvalidInput reports a validation failure from the upfront
	// conformance pass.
	ErrInvalidInput = kernel.ErrInvalidInput

	// ErrUnsupportedInput reports, in strict mode, a chunk pattern outside
	// the distribution the permutation table can express.
	ErrUnsupportedInput = errors.New("unsupported input distribution")
)

// SafeBatchSize is the largest batch size with guaranteed exact results;
// see Options.BatchSize.
const SafeBatchSize = kernel.SafeBatchSize

// Options tunes a summation run. The zero value means: safe batch size,
// lenient (scalar fallback instead of unsupported-combination errors), no
// validation pass, single worker.
type Options struct {
	// BatchSize is the number of chunk iterations between accumulator
	// flushes. Up to SafeBatchSize (14) results are exact for every
	// conforming input; larger values trade a quantifiable silent-overflow
	// probability for fewer flushes.
	BatchSize int

	// Strict fails with ErrUnsupportedInput on chunk patterns the
	// permutation table cannot express, instead of summing them on the
	// scalar path.
	Strict bool

	// Validate runs the conformance pass before the kernel.
	Validate bool

	// Workers fans the scan out over separator-aligned sub-ranges when
	// greater than one. Zero or one means single-threaded.
	Workers int
}

// Sum computes the sum of all integers in data with default options.
func Sum(data []byte) (uint64, error) {
	k := kernel.New()
	defer k.Release()
	return k.Sum(data)
}

// SumWithOptions computes the sum of all integers in data.
func SumWithOptions(data []byte, opts Options) (uint64, error) {
	if opts.Validate {
		if err := kernel.Validate(data); err != nil {
			return 0, err
		}
	}
	if opts.Workers > 1 {
		return sumParallel(data, opts)
	}
	return sumRange(data, opts)
}

func sumRange(data []byte, opts Options) (uint64, error) {
	if opts.BatchSize == 0 && !opts.Strict {
		k := kernel.New()
		defer k.Release()
		return k.Sum(data)
	}

	cfg := kernel.Config{BatchSize: opts.BatchSize, Strict: opts.Strict}
	if cfg.BatchSize == 0 {
		cfg.BatchSize = kernel.SafeBatchSize
	}
	k, err := kernel.NewWithConfig(cfg)
	if err != nil {
		return 0, err
	}
	sum, err := k.Sum(data)
	if err != nil {
		if errors.Is(err, kernel.ErrUnsupportedCombination) {
			return 0, fmt.Errorf("%w: %s", ErrUnsupportedInput, err)
		}
		return 0, err
	}
	return sum, nil
}

// Valid reports whether data conforms to the input format.
func Valid(data []byte) bool {
	return kernel.Validate(data) == nil
}

// A Summer drains an io.Reader and sums its contents. The kernel needs
// the complete buffer up front, so the read happens on the first Sum
// call.
type Summer struct {
	r    io.Reader
	opts Options
}

// NewSummer returns a Summer reading from r with default options.
func NewSummer(r io.Reader) *Summer {
	return &Summer{r: r}
}

// NewSummerWithOptions returns a Summer reading from r.
func NewSummerWithOptions(r io.Reader, opts Options) *Summer {
	return &Summer{r: r, opts: opts}
}

// Sum reads the remaining stream and sums it.
func (s *Summer) Sum() (uint64, error) {
	data, err := input.ReadAll(s.r)
	if err != nil {
		return 0, err
	}
	return SumWithOptions(data, s.opts)
}
