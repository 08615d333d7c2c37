//go:build !linux

package trace

// adviseSequential is a no-op on non-Linux platforms.
func adviseSequential(data []byte) {}
