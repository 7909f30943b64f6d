//go:build !amd64

package kernel

import (
	"golang.org/x/sys/cpu"
)

// Features reports the vector extensions present on this CPU.
func Features() []string {
	if cpu.ARM64.HasASIMD {
		return []string{"asimd"}
	}
	return nil
}
