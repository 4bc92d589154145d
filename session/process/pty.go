package process

import (
	"os"
	"os/exec"

	"github.com/creack/pty"
)

// PtyFactory starts a command attached to a pseudo-terminal. The returned file
// is the controlling side; reading it yields the command's output.
type PtyFactory interface {
	Start(cmd *exec.Cmd) (*os.File, error)
	Close()
}

// Pty is the PtyFactory backed by creack/pty.
type Pty struct{}

func (pt Pty) Start(cmd *exec.Cmd) (*os.File, error) {
	return pty.Start(cmd)
}

func (pt Pty) Close() {}

func MakePtyFactory() PtyFactory {
	return Pty{}
}
