package kernel

import (
	"errors"
	"math/rand"
	"strconv"
	"strings"
	"testing"
)

// chunkPlaceSums computes, per decimal place, the digit total a single
// chunk should contribute given the incoming carry. Ground truth for the
// descriptor machinery.
func chunkPlaceSums(chunk *[ChunkSize]byte, carry uint8) (sums [DecimalPlaces]uint64, nextCarry uint8, ok bool) {
	p := int(carry)
	for i := ChunkSize - 1; i >= 0; i-- {
		d := chunk[i] - digitZero
		if d > 9 {
			p = 0
			continue
		}
		if p >= DecimalPlaces {
			return sums, 0, false
		}
		sums[p] += uint64(d)
		p++
	}
	return sums, uint8(p), true
}

// applyEntry runs one chunk through a freshly built descriptor pair and a
// private accumulator, returning the flushed per-place sums.
func applyEntry(t *testing.T, chunk *[ChunkSize]byte, carry uint8) ([DecimalPlaces]uint64, *entry) {
	t.Helper()
	var vals [ChunkSize]uint8
	mask := classify(chunk, &vals)

	e := buildEntry(mask, carry)
	if !e.supported {
		t.Fatalf("combination unexpectedly unsupported: mask=%#08x carry=%d", mask, carry)
	}

	var acc accumulator
	var sums [DecimalPlaces]uint64
	acc.add(e, &vals)
	acc.flush(&sums)
	return sums, e
}

func TestBuildEntryPlaceAttribution(t *testing.T) {
	tests := []struct {
		name  string
		input string
		carry uint8
	}{
		{"short tokens", "123\n45\n678\n90\n2147483647\n55\n190\n", 0},
		{"carry three", "147\n45\n678\n90\n2147483647\n55\n1902", 3},
		{"carry ten then separator", "445\n678\n90\n2147483647\n55\n190256\n", 10},
		{"max tokens", "2147483647\n2147483647\n147483647\n", 0},
		{"open run at low edge", "148397\n45\n678\n90\n2147483647\n5510", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if len(tt.input) != ChunkSize {
				t.Fatalf("test input must be %d bytes, got %d", ChunkSize, len(tt.input))
			}
			var chunk [ChunkSize]byte
			copy(chunk[:], tt.input)

			got, e := applyEntry(t, &chunk, tt.carry)
			want, wantCarry, ok := chunkPlaceSums(&chunk, tt.carry)
			if !ok {
				t.Fatal("reference model rejected the chunk")
			}
			if got != want {
				t.Errorf("place sums = %v, want %v", got, want)
			}
			if e.nextCarry != wantCarry {
				t.Errorf("nextCarry = %d, want %d", e.nextCarry, wantCarry)
			}
		})
	}
}

func TestBuildEntryUnsupported(t *testing.T) {
	tests := []struct {
		name  string
		mask  uint32
		carry uint8
	}{
		{"no separators", 0, 0},
		{"no separators with carry", 0, 7},
		{"minimal tokens saturate place zero", 0xAAAAAAAA, 0},
		{"carry ten into digit", 1 << 0, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if e := buildEntry(tt.mask, tt.carry); e.supported {
				t.Errorf("mask=%#08x carry=%d should be unsupported", tt.mask, tt.carry)
			}
		})
	}
}

// TestEntryLaneBounded checks the redirection invariants over masks drawn
// from realistic token streams: every claimed source is a digit byte in
// the destination's own lane, every digit is claimed exactly once, and
// every destination slot's static place matches the digit's place.
func TestEntryLaneBounded(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	var stream []byte
	for i := 0; i < 4096; i++ {
		stream = strconv.AppendInt(stream, r.Int63n(1<<31), 10)
		stream = append(stream, separator)
	}

	carry := uint8(0)
	aligned := len(stream) &^ (ChunkSize - 1)
	for off := aligned; off > 0; off -= ChunkSize {
		chunk := (*[ChunkSize]byte)(stream[off-ChunkSize : off])
		var vals [ChunkSize]uint8
		mask := classify(chunk, &vals)

		e := buildEntry(mask, carry)
		if !e.supported {
			t.Errorf("unsupported combination for realistic stream: mask=%#08x carry=%d", mask, carry)
			carry = 0 // keep scanning
			continue
		}

		places, _, _ := placesModel(mask, carry)
		claimed := make(map[uint8]int)
		for pass := range e.shuffle {
			for j, src := range e.shuffle[pass] {
				if src == discard {
					continue
				}
				if int(src)/LaneSize != j/LaneSize {
					t.Fatalf("cross-lane move: slot %d from byte %d", j, src)
				}
				if places[src] < 0 {
					t.Fatalf("slot %d claims separator byte %d", j, src)
				}
				if int(placeOfSlot[j%LaneSize]) != int(places[src]) {
					t.Fatalf("slot %d (place %d) claims byte %d (place %d)",
						j, placeOfSlot[j%LaneSize], src, places[src])
				}
				claimed[src]++
			}
		}
		for i := 0; i < ChunkSize; i++ {
			if places[i] >= 0 && claimed[uint8(i)] != 1 {
				t.Fatalf("digit byte %d claimed %d times", i, claimed[uint8(i)])
			}
		}
		carry = e.nextCarry
	}
}

// placesModel mirrors buildEntry's place walk for the invariant checks.
func placesModel(mask uint32, carry uint8) (places [ChunkSize]int8, nextCarry uint8, ok bool) {
	p := int(carry)
	for i := ChunkSize - 1; i >= 0; i-- {
		if mask&(1<<uint(i)) != 0 {
			p = 0
			places[i] = -1
			continue
		}
		if p >= DecimalPlaces {
			return places, 0, false
		}
		places[i] = int8(p)
		p++
	}
	return places, uint8(p), true
}

func TestTableLookupCaches(t *testing.T) {
	tbl := NewTable()
	var chunk [ChunkSize]byte
	copy(chunk[:], strings.Repeat("214748364\n", 3)+"21")
	var vals [ChunkSize]uint8
	mask := classify(&chunk, &vals)

	e1 := tbl.lookup(mask, 0)
	e2 := tbl.lookup(mask, 0)
	if e1 != e2 {
		t.Error("second lookup rebuilt the entry")
	}
	if tbl.Len() != 1 {
		t.Errorf("table has %d entries, want 1", tbl.Len())
	}
}

func TestTablePrime(t *testing.T) {
	r := rand.New(rand.NewSource(11))
	var sample []byte
	for i := 0; i < 2000; i++ {
		sample = strconv.AppendInt(sample, r.Int63n(1<<31), 10)
		sample = append(sample, separator)
	}

	tbl := NewTable()
	added := tbl.Prime(sample)
	if added == 0 || added != tbl.Len() {
		t.Fatalf("Prime added %d entries, table has %d", added, tbl.Len())
	}
	if again := tbl.Prime(sample); again != 0 {
		t.Errorf("second Prime added %d entries, want 0", again)
	}
}

func TestCombinationError(t *testing.T) {
	err := combinationError(0xDEADBEEF, 4)
	if !errors.Is(err, ErrUnsupportedCombination) {
		t.Fatalf("error %v does not wrap ErrUnsupportedCombination", err)
	}
}
