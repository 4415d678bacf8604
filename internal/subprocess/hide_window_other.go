//go:build !windows

package subprocess

import "os/exec"

// hideWindow is a no-op on platforms without console windows.
func hideWindow(_ *exec.Cmd) {}
