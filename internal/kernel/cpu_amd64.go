//go:build amd64

package kernel

import (
	"golang.org/x/sys/cpu"
)

// Features reports the vector extensions present on this CPU. The SWAR
// kernel is portable and does not branch on these, but callers surface
// them in diagnostics to explain observed throughput.
func Features() []string {
	var f []string
	if cpu.X86.HasAVX2 {
		f = append(f, "avx2")
	}
	if cpu.X86.HasSSE42 {
		f = append(f, "sse4.2")
	}
	if cpu.X86.HasBMI2 {
		f = append(f, "bmi2")
	}
	return f
}
