//go:build windows

package floatinput

import (
	"syscall"
	"unsafe"
)

var (
	user32           = syscall.NewLazyDLL("user32.dll")
	procSetWindowPos = user32.NewProc("SetWindowPos")
)

const (
	hwndTopmost   = ^uintptr(0) // (HWND)-1
	swpNoSize     = 0x0001
	swpNoMove     = 0x0002
	swpShowWindow = 0x0040
)

// raiseAboveAll pins the window above every other window so the prompt stays
// visible over the application the user was typing in.
func raiseAboveAll(handle unsafe.Pointer) {
	if handle == nil {
		return
	}
	_, _, _ = procSetWindowPos.Call(
		uintptr(handle), hwndTopmost, 0, 0, 0, 0,
		swpNoMove|swpNoSize|swpShowWindow)
}
