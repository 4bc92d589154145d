// Package process runs game instances under a pseudo-terminal and tees their
// output into the instance log.
package process

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/kastheco/craftdeck/log"
)

// ErrAlreadyRunning is returned by Launch when key already has a live process.
var ErrAlreadyRunning = errors.New("instance is already running")

type proc struct {
	cmd     *exec.Cmd
	ptmx    *os.File
	logFile *os.File
	started time.Time
	done    chan struct{}
	err     error
}

func (p *proc) alive() bool {
	select {
	case <-p.done:
		return false
	default:
		return true
	}
}

// Manager tracks at most one process per key.
type Manager struct {
	mu         sync.Mutex
	ptyFactory PtyFactory
	procs      map[string]*proc
}

// NewManager returns a manager starting processes through factory.
func NewManager(factory PtyFactory) *Manager {
	if factory == nil {
		factory = MakePtyFactory()
	}
	return &Manager{ptyFactory: factory, procs: make(map[string]*proc)}
}

// Launch starts argv in dir and copies its terminal output to logPath, which
// is truncated first.
func (m *Manager) Launch(key, dir string, argv []string, logPath string) error {
	if len(argv) == 0 {
		return fmt.Errorf("launch %s: empty command", key)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if p, ok := m.procs[key]; ok && p.alive() {
		return ErrAlreadyRunning
	}

	if err := os.MkdirAll(filepath.Dir(logPath), 0755); err != nil {
		return fmt.Errorf("create log dir: %w", err)
	}
	logFile, err := os.Create(logPath)
	if err != nil {
		return fmt.Errorf("open log %s: %w", logPath, err)
	}

	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Dir = dir
	ptmx, err := m.ptyFactory.Start(cmd)
	if err != nil {
		logFile.Close()
		return fmt.Errorf("start %s: %w", argv[0], err)
	}

	p := &proc{
		cmd:     cmd,
		ptmx:    ptmx,
		logFile: logFile,
		started: time.Now(),
		done:    make(chan struct{}),
	}
	m.procs[key] = p

	go func() {
		// a pty returns EIO once the child exits
		_, _ = io.Copy(logFile, ptmx)
		p.err = cmd.Wait()
		ptmx.Close()
		logFile.Close()
		if p.err != nil {
			log.InfoLog.Printf("instance %s exited: %v", key, p.err)
		} else {
			log.InfoLog.Printf("instance %s exited", key)
		}
		close(p.done)
	}()

	log.InfoLog.Printf("launched instance %s (pid %d)", key, cmd.Process.Pid)
	return nil
}

// IsRunning reports whether key has a live process.
func (m *Manager) IsRunning(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.procs[key]
	return ok && p.alive()
}

// Started returns when key's live process was launched.
func (m *Manager) Started(key string) (time.Time, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.procs[key]
	if !ok || !p.alive() {
		return time.Time{}, false
	}
	return p.started, true
}

// Stop asks key's process to terminate. It is a no-op when nothing runs.
func (m *Manager) Stop(key string) error {
	m.mu.Lock()
	p, ok := m.procs[key]
	m.mu.Unlock()
	if !ok || !p.alive() {
		return nil
	}
	if err := p.cmd.Process.Signal(syscall.SIGTERM); err != nil && !errors.Is(err, os.ErrProcessDone) {
		return fmt.Errorf("stop %s: %w", key, err)
	}
	return nil
}

// StopAll terminates every live process and waits up to timeout, killing
// stragglers.
func (m *Manager) StopAll(timeout time.Duration) {
	m.mu.Lock()
	live := make([]*proc, 0, len(m.procs))
	for _, p := range m.procs {
		if p.alive() {
			live = append(live, p)
		}
	}
	m.mu.Unlock()

	for _, p := range live {
		_ = p.cmd.Process.Signal(syscall.SIGTERM)
	}
	deadline := time.After(timeout)
	for _, p := range live {
		select {
		case <-p.done:
		case <-deadline:
			_ = p.cmd.Process.Kill()
		}
	}
	m.ptyFactory.Close()
}
