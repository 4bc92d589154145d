package cmd_test

import (
	"os/exec"
	"sync"
)

// MockCmdExec records every command it is asked to run.
type MockCmdExec struct {
	RunFunc    func(cmd *exec.Cmd) error
	OutputFunc func(cmd *exec.Cmd) ([]byte, error)

	mu   sync.Mutex
	Runs []*exec.Cmd
}

func (e *MockCmdExec) Run(cmd *exec.Cmd) error {
	e.mu.Lock()
	e.Runs = append(e.Runs, cmd)
	e.mu.Unlock()
	return e.RunFunc(cmd)
}

func (e *MockCmdExec) Output(cmd *exec.Cmd) ([]byte, error) {
	return e.OutputFunc(cmd)
}

// Commands returns the argv of every recorded Run call.
func (e *MockCmdExec) Commands() [][]string {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([][]string, 0, len(e.Runs))
	for _, c := range e.Runs {
		out = append(out, c.Args)
	}
	return out
}

// NewMockExecutor returns a *MockCmdExec with no-op defaults.
// Callers may override RunFunc and OutputFunc before use.
func NewMockExecutor() *MockCmdExec {
	return &MockCmdExec{
		RunFunc: func(cmd *exec.Cmd) error {
			return nil
		},
		OutputFunc: func(cmd *exec.Cmd) ([]byte, error) {
			return nil, nil
		},
	}
}
