//go:build !windows

// Package process tears down the headless browser's process tree.
package process

import "syscall"

// KillProcessGroup sends SIGKILL to the whole process group of pid so
// Chrome's renderer and GPU helpers exit with it.
func KillProcessGroup(pid int) {
	_ = syscall.Kill(-pid, syscall.SIGKILL)
}
