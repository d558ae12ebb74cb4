//go:build unix

package exec

import (
	"os/exec"
	"syscall"
	"time"
)

// setProcessGroup runs cmd in its own process group so cancellation reaches
// every worker ansible-playbook forks. With a positive grace the group gets
// SIGTERM first and SIGKILL once grace has passed.
func setProcessGroup(cmd *exec.Cmd, grace time.Duration) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	if grace <= 0 {
		cmd.Cancel = func() error {
			return syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
		}
		return
	}

	cmd.Cancel = func() error {
		pgid := -cmd.Process.Pid
		if err := syscall.Kill(pgid, syscall.SIGTERM); err != nil {
			return syscall.Kill(pgid, syscall.SIGKILL)
		}
		time.AfterFunc(grace, func() {
			// ESRCH once the group is gone
			_ = syscall.Kill(pgid, syscall.SIGKILL)
		})
		return nil
	}
	cmd.WaitDelay = 2 * grace
}
