package kernel

import (
	"errors"
	"fmt"
	"sync"
)

// ErrUnsupportedCombination is returned in strict mode when a chunk's
// (separator mask, carried run length) pair cannot be expressed by a
// two-pass descriptor, either because the implied token exceeds 10 digits
// or because the chunk packs more same-place digits into one lane than the
// accumulator layout can absorb.
var ErrUnsupportedCombination = errors.New("unsupported separator mask and run length combination")

// placeOfSlot is the static decimal-place layout of one 16-byte accumulator
// lane: two groups covering places 0-5 and one covering 6-9. Groups of at
// most six consecutive places keep every required redirection inside the
// lane, and the doubled low places absorb the short tokens that recur most.
var placeOfSlot = [LaneSize]uint8{
	0, 1, 2, 3, 4, 5,
	0, 1, 2, 3, 4, 5,
	6, 7, 8, 9,
}

// slotsForPlace inverts placeOfSlot: candidate lane-relative destination
// slots for each decimal place, in claim order.
var slotsForPlace = func() [DecimalPlaces][]uint8 {
	var s [DecimalPlaces][]uint8
	for slot, p := range placeOfSlot {
		s[p] = append(s[p], uint8(slot))
	}
	return s
}()

// entry is one populated point of the table: the descriptor pair plus the
// run length carried into the next (lower-address) chunk. An unsupported
// entry is cached too, so repeated offending chunks stay O(1).
type entry struct {
	shuffle   [2][ChunkSize]uint8
	nextCarry uint8
	supported bool
}

// Table is the associative rendition of the sparse permutation table: a
// (mask, carried run length) keyed map in place of the directly-addressed
// multi-terabyte reservation. Entries are derived analytically on first
// lookup and cached; the table is effectively read-only once warm and may
// be shared by any number of kernels.
type Table struct {
	mu      sync.RWMutex
	entries map[uint64]*entry
}

// NewTable returns an empty table.
func NewTable() *Table {
	return &Table{entries: make(map[uint64]*entry, 1024)}
}

// shared is the process-wide table used by pooled kernels.
var shared = NewTable()

func tableKey(mask uint32, carry uint8) uint64 {
	return uint64(mask)<<4 | uint64(carry)
}

// lookup returns the entry for (mask, carry), building it on first use.
func (t *Table) lookup(mask uint32, carry uint8) *entry {
	key := tableKey(mask, carry)

	t.mu.RLock()
	e := t.entries[key]
	t.mu.RUnlock()
	if e != nil {
		return e
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if e = t.entries[key]; e != nil {
		return e
	}
	e = buildEntry(mask, carry)
	t.entries[key] = e
	return e
}

// Len reports how many (mask, carry) combinations have been populated.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.entries)
}

// Prime populates every entry the sample's chunk sequence needs, using a
// separator-only pre-pass that threads the carry without touching any
// accumulator. Returns the number of entries populated. Priming from a
// representative input makes subsequent scans lock-free on the read path.
func (t *Table) Prime(sample []byte) int {
	before := t.Len()
	aligned := len(sample) &^ (ChunkSize - 1)
	carry := tailRunLength(sample[aligned:])
	var vals [ChunkSize]uint8
	for off := aligned; off > 0; off -= ChunkSize {
		chunk := (*[ChunkSize]byte)(sample[off-ChunkSize : off])
		mask := classify(chunk, &vals)
		carry = t.lookup(mask, carry).nextCarry
	}
	return t.Len() - before
}

// tailRunLength counts the digits of the token left open at the low edge
// of the unaligned tail, without summing anything.
func tailRunLength(tail []byte) uint8 {
	run := 0
	for i := len(tail) - 1; i >= 0; i-- {
		if tail[i]-digitZero > 9 {
			run = 0
			continue
		}
		run++
	}
	if run > MaxRunLength {
		run = MaxRunLength // malformed; the lookup will flag it
	}
	return uint8(run)
}

// buildEntry derives the descriptor pair for one (mask, carry) point.
//
// Walking the chunk from its high-address byte toward byte 0, the decimal
// place of each digit starts at the incoming carry, increments per digit,
// and resets to zero after each separator. Each digit byte then claims a
// destination slot of matching place inside its own 16-byte lane, first in
// pass one, then in pass two. A digit whose place would reach 10 (token
// longer than 10 digits) or that finds both passes exhausted makes the
// combination unsupported.
func buildEntry(mask uint32, carry uint8) *entry {
	e := &entry{}
	for pass := range e.shuffle {
		for i := range e.shuffle[pass] {
			e.shuffle[pass][i] = discard
		}
	}

	var places [ChunkSize]int8
	p := int(carry)
	for i := ChunkSize - 1; i >= 0; i-- {
		if mask&(1<<uint(i)) != 0 {
			p = 0
			places[i] = -1
			continue
		}
		if p >= DecimalPlaces {
			return e // token would exceed 10 digits
		}
		places[i] = int8(p)
		p++
	}
	e.nextCarry = uint8(p)

	var used [2][ChunkSize]bool
	for i := 0; i < ChunkSize; i++ {
		if places[i] < 0 {
			continue
		}
		base := (i / LaneSize) * LaneSize
		if !claimSlot(e, &used, base, uint8(i), uint8(places[i])) {
			return e // lane capacity exceeded for this place
		}
	}
	e.supported = true
	return e
}

func claimSlot(e *entry, used *[2][ChunkSize]bool, base int, src, place uint8) bool {
	for pass := 0; pass < 2; pass++ {
		for _, slot := range slotsForPlace[place] {
			j := base + int(slot)
			if !used[pass][j] {
				used[pass][j] = true
				e.shuffle[pass][j] = src
				return true
			}
		}
	}
	return false
}

// combinationError describes an unsupported point for strict-mode callers.
func combinationError(mask uint32, carry uint8) error {
	return fmt.Errorf("%w: mask=%#08x carry=%d", ErrUnsupportedCombination, mask, carry)
}
