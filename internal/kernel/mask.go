package kernel

import (
	"encoding/binary"
)

const (
	// ChunkSize is the width of one vector iteration window.
	ChunkSize = 32
	// LaneSize is the byte-redirection boundary: a descriptor may move a
	// byte anywhere within its 16-byte lane but never across it.
	LaneSize = 16

	// DecimalPlaces is the number of power-of-ten positions a conforming
	// token can occupy (values up to 2^31-1 have at most 10 digits).
	DecimalPlaces = 10
	// MaxRunLength is the largest legal carried digit-run length.
	MaxRunLength = 10

	separator = '\n'
	digitZero = '0'

	// discard marks a descriptor slot that claims no source byte. The high
	// bit matches pshufb zeroing semantics.
	discard = 0xFF
)

// SWAR constants for per-byte "below ASCII '0'" detection across a uint64.
const (
	swarOnes  = 0x0101010101010101
	swarHighs = 0x8080808080808080
	swarZeros = swarOnes * digitZero
	// Multiplying the 0x01-per-flagged-byte word by this constant gathers
	// the eight flags into the top byte, one bit per source byte.
	swarGather = 0x0102040810204080
)

// classify subtracts '0' from every chunk byte and derives the separator
// mask in the same pass. Digit bytes land on their 0-9 value with the top
// bit clear; separator bytes underflow and set the top bit, so the mask
// falls out of a single top-bit gather with no comparison.
//
// Bit i of the mask corresponds to chunk byte i regardless of host
// endianness. vals holds b-'0' for every byte; separator positions contain
// wrapped garbage that no descriptor ever references.
func classify(chunk *[ChunkSize]byte, vals *[ChunkSize]uint8) uint32 {
	var mask uint32
	for w := 0; w < ChunkSize/8; w++ {
		word := binary.LittleEndian.Uint64(chunk[w*8:])
		below := (word - swarZeros) & ^word & swarHighs
		mask |= uint32(((below>>7)*swarGather)>>56) << (w * 8)
	}
	for i := 0; i < ChunkSize; i++ {
		vals[i] = chunk[i] - digitZero
	}
	return mask
}
