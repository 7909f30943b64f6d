//go:build unix

package input

import (
	"fmt"
	"math"
	"os"

	"golang.org/x/sys/unix"
)

// ReadFile maps path read-only and returns the mapped bytes together with
// a release function. The data must not be used after release.
func ReadFile(path string) ([]byte, func(), error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		return nil, nil, fmt.Errorf("stat %s: %w", path, err)
	}
	size := st.Size()
	if size == 0 {
		return nil, func() {}, nil
	}
	length, err := mapLength(size)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", path, err)
	}

	data, err := unix.Mmap(int(f.Fd()), 0, length, unix.PROT_READ, unix.MAP_PRIVATE)
	if err != nil {
		return nil, nil, fmt.Errorf("mmap %s: %w", path, err)
	}

	// The scan is a single sequential pass; let the pager stay ahead of it.
	_ = unix.Madvise(data, unix.MADV_SEQUENTIAL)

	return data, func() { _ = unix.Munmap(data) }, nil
}

// mapLength narrows a file size to the int mmap takes, refusing sizes
// beyond the platform's addressable range (32-bit hosts).
func mapLength(size int64) (int, error) {
	if size > math.MaxInt {
		return 0, fmt.Errorf("file size %d exceeds addressable range", size)
	}
	return int(size), nil
}
