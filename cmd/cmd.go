// Package cmd abstracts process execution so callers can be tested without
// spawning real programs.
package cmd

import (
	"os/exec"
	"strings"
)

// Executor runs commands. The default implementation delegates to os/exec.
type Executor interface {
	Run(cmd *exec.Cmd) error
	Output(cmd *exec.Cmd) ([]byte, error)
}

type executor struct{}

func (e executor) Run(cmd *exec.Cmd) error {
	return cmd.Run()
}

func (e executor) Output(cmd *exec.Cmd) ([]byte, error) {
	return cmd.Output()
}

// MakeExecutor returns the os/exec backed Executor.
func MakeExecutor() Executor {
	return executor{}
}

// ToString renders a command line for logs and error messages.
func ToString(cmd *exec.Cmd) string {
	if cmd == nil {
		return "<nil>"
	}
	return strings.Join(cmd.Args, " ")
}
