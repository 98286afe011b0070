package solanafw

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"sync/atomic"
	"time"
)

// Process is a child process owned by a test, e.g. solana-test-validator.
type Process struct {
	name    string
	cmd     *exec.Cmd
	done    chan struct{}
	stopped atomic.Bool
	result  ExitResult
}

type ExitResult struct {
	// Stopped is true when the process exited because Stop asked it to.
	Stopped bool
	Err     error
}

func (r ExitResult) String() string {
	if r.Stopped {
		return "stopped"
	}

	return fmt.Sprintf("exited: %v", r.Err)
}

// StartProcess runs binary with args, sending stdout and stderr to out.
func StartProcess(binary string, args []string, out io.Writer) (*Process, error) {
	cmd := exec.Command(binary, args...)
	cmd.Stdout = out
	cmd.Stderr = out

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start %s: %w", binary, err)
	}

	p := &Process{
		name: filepath.Base(binary),
		cmd:  cmd,
		done: make(chan struct{}),
	}

	go func() {
		err := cmd.Wait()
		p.result = ExitResult{Stopped: p.stopped.Load(), Err: err}
		close(p.done)
	}()

	return p, nil
}

// Done is closed once the process has exited.
func (p *Process) Done() <-chan struct{} {
	return p.done
}

// Exited returns the exit result, ok is false while the process runs.
func (p *Process) Exited() (ExitResult, bool) {
	select {
	case <-p.done:
		return p.result, true
	default:
		return ExitResult{}, false
	}
}

// Stop interrupts the process and kills it if it is still running after grace.
func (p *Process) Stop(grace time.Duration) error {
	if _, exited := p.Exited(); exited {
		return nil
	}

	p.stopped.Store(true)

	if err := p.cmd.Process.Signal(os.Interrupt); err != nil && !errors.Is(err, os.ErrProcessDone) {
		return fmt.Errorf("interrupt %s: %w", p.name, err)
	}

	timer := time.NewTimer(grace)
	defer timer.Stop()

	select {
	case <-p.done:
		return nil
	case <-timer.C:
	}

	if err := p.cmd.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
		return fmt.Errorf("kill %s: %w", p.name, err)
	}

	<-p.done

	return nil
}
