package term

import (
	"os/exec"
	"syscall"
)

// createNoWindow suppresses the console window for spawned processes.
const createNoWindow = 0x08000000

func hideWindow(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{CreationFlags: createNoWindow}
}
