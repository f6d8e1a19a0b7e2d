//go:build linux

// Package cpu binds worker goroutines to OS threads and, where the platform
// allows it, to individual logical CPUs.
package cpu

import (
	"runtime"

	"golang.org/x/sys/unix"
)

// PinThread locks the calling goroutine to its OS thread and binds that
// thread to the logical CPU slot%NumCPU. The returned func releases the
// thread lock; affinity is left to the scheduler to reclaim.
func PinThread(slot int) func() {
	runtime.LockOSThread()

	var mask unix.CPUSet
	mask.Zero()
	mask.Set(slot % runtime.NumCPU())
	// 0 targets the current thread. Failure is not actionable here; the
	// worker just runs unpinned.
	_ = unix.SchedSetaffinity(0, &mask)

	return runtime.UnlockOSThread
}
