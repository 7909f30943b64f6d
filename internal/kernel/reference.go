package kernel

// ReferenceSum is the naive forward scalar sum the kernel is measured
// against. Kept branch-simple and obviously correct; the tests treat it
// as ground truth.
func ReferenceSum(data []byte) uint64 {
	var total, cur uint64
	for _, b := range data {
		if d := b - digitZero; d <= 9 {
			cur = cur*10 + uint64(d)
			continue
		}
		total += cur
		cur = 0
	}
	return total + cur
}
