//go:build !windows

package floatinput

import "unsafe"

// raiseAboveAll is only implemented for Windows; elsewhere the window manager
// decides stacking.
func raiseAboveAll(_ unsafe.Pointer) {}
