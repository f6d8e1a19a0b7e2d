//go:build windows

package cpu

import (
	"runtime"
	"syscall"
)

var (
	kernel32              = syscall.NewLazyDLL("kernel32.dll")
	setThreadAffinityMask = kernel32.NewProc("SetThreadAffinityMask")
	getCurrentThread      = kernel32.NewProc("GetCurrentThread")
)

// PinThread locks the calling goroutine to its OS thread and binds that
// thread to the logical CPU slot%NumCPU via SetThreadAffinityMask. The
// returned func releases the thread lock.
func PinThread(slot int) func() {
	runtime.LockOSThread()

	handle, _, _ := getCurrentThread.Call()
	mask := uintptr(1) << (slot % runtime.NumCPU())
	// A zero return means the call failed; the worker then runs unpinned.
	_, _, _ = setThreadAffinityMask.Call(handle, mask)

	return runtime.UnlockOSThread
}
