package subprocess

import (
	"os/exec"
	"syscall"
)

// createNoWindow suppresses the console window for spawned processes.
const createNoWindow = 0x08000000

// hideWindow configures the command so the bridge process does not open a
// visible console window.
func hideWindow(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{CreationFlags: createNoWindow}
}
