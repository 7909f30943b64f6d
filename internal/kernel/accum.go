package kernel

// SafeBatchSize is the largest number of chunk iterations between flushes
// for which no narrow lane can wrap: each chunk adds at most one digit per
// descriptor pass to a slot, so at most 2*9 per chunk, and
// 255/(2*9) = 14. Larger batch sizes are accepted as an explicit tunable
// and trade flush frequency for a quantifiable silent-overflow probability.
const SafeBatchSize = 255 / (2 * 9)

// accumulator holds the narrow per-lane partial sums. Adds wrap around by
// design; correctness comes from bounding the number of adds between
// flushes, not from checking each one.
type accumulator struct {
	lanes [ChunkSize]uint8
}

// add applies both redirection passes of a descriptor pair, gathering each
// claimed digit value into its decimal-place slot.
func (a *accumulator) add(e *entry, vals *[ChunkSize]uint8) {
	for pass := range e.shuffle {
		s := &e.shuffle[pass]
		for j := 0; j < ChunkSize; j++ {
			if src := s[j]; src != discard {
				a.lanes[j] += vals[src]
			}
		}
	}
}

// flush drains every lane into the wide per-place counters and zeroes the
// accumulator.
func (a *accumulator) flush(placeSums *[DecimalPlaces]uint64) {
	for j := 0; j < ChunkSize; j++ {
		placeSums[placeOfSlot[j%LaneSize]] += uint64(a.lanes[j])
		a.lanes[j] = 0
	}
}

var pow10 = [20]uint64{
	1, 10, 100, 1000, 10000, 100000, 1000000, 10000000, 100000000,
	1000000000, 10000000000, 100000000000, 1000000000000, 10000000000000,
	100000000000000, 1000000000000000, 10000000000000000,
	100000000000000000, 1000000000000000000, 10000000000000000000,
}

// reduce folds the ten wide counters by powers of ten.
func reduce(placeSums *[DecimalPlaces]uint64) uint64 {
	var total uint64
	for p := 0; p < DecimalPlaces; p++ {
		total += placeSums[p] * pow10[p]
	}
	return total
}
