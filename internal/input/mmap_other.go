//go:build !unix

package input

import (
	"os"
)

// ReadFile loads path into memory on platforms without mmap support.
func ReadFile(path string) ([]byte, func(), error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}
	return data, func() {}, nil
}
