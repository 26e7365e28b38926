//go:build !unix

package process

import (
	"os"
	"os/exec"
)

func setProcessGroup(cmd *exec.Cmd) {}

// terminate falls back to an interrupt; platforms without signal support
// return an error and the caller escalates to kill.
func terminate(p *os.Process) error {
	return p.Signal(os.Interrupt)
}

func kill(p *os.Process) error {
	return p.Kill()
}
