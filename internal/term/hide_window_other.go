//go:build !windows

package term

import "os/exec"

func hideWindow(_ *exec.Cmd) {}
