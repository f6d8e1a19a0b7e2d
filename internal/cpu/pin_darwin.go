//go:build darwin

package cpu

import "runtime"

// PinThread locks the calling goroutine to its OS thread. macOS exposes no
// public thread-affinity API, so the slot is ignored.
func PinThread(slot int) func() {
	_ = slot
	runtime.LockOSThread()
	return runtime.UnlockOSThread
}
