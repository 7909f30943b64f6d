package kernel

import (
	"errors"
	"fmt"
)

// ErrInvalidInput is the sentinel wrapped by every validation failure.
var ErrInvalidInput = errors.New("invalid input")

// MaxTokenValue is the largest value a single token may encode.
const MaxTokenValue = 1<<31 - 1

// Validate runs the cheap upfront conformance pass the fast path skips:
// every byte must be an ASCII digit or newline, tokens must be non-empty,
// at most 10 digits, and no larger than 2^31-1. A trailing newline is
// optional. Validate never allocates and touches each byte once.
func Validate(data []byte) error {
	var (
		run   int
		value uint64
	)
	for i, b := range data {
		d := b - digitZero
		if d <= 9 {
			run++
			if run > MaxRunLength {
				return fmt.Errorf("%w: token exceeds %d digits at offset %d", ErrInvalidInput, MaxRunLength, i)
			}
			value = value*10 + uint64(d)
			continue
		}
		if b != separator {
			return fmt.Errorf("%w: byte %#02x at offset %d", ErrInvalidInput, b, i)
		}
		if run == 0 {
			return fmt.Errorf("%w: empty token at offset %d", ErrInvalidInput, i)
		}
		if value > MaxTokenValue {
			return fmt.Errorf("%w: value %d out of range at offset %d", ErrInvalidInput, value, i)
		}
		run, value = 0, 0
	}
	if run > 0 && value > MaxTokenValue {
		return fmt.Errorf("%w: value %d out of range at offset %d", ErrInvalidInput, value, len(data))
	}
	return nil
}
