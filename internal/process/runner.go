// Package process launches and stops the server child process.
package process

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/quarrylabs/quarry-cli/internal/config"
	"github.com/quarrylabs/quarry-cli/internal/server"
)

// StopTimeout is how long a graceful stop waits before killing the
// process.
const StopTimeout = 10 * time.Second

// Runner starts and stops the server process for one instance.
type Runner struct {
	inst   *server.Instance
	cfg    *config.Config
	logger *zap.Logger
}

// NewRunner creates a Runner for the instance.
func NewRunner(inst *server.Instance, cfg *config.Config, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{inst: inst, cfg: cfg, logger: logger}
}

// command builds the java invocation for the instance.
func (r *Runner) command() *exec.Cmd {
	args := []string{
		"-Xms" + r.cfg.MinMemory,
		"-Xmx" + r.cfg.MaxMemory,
		"-jar", server.JarName,
		"nogui",
	}
	cmd := exec.Command(r.cfg.JavaBin, args...)
	cmd.Dir = r.inst.Dir
	return cmd
}

// RunForeground runs the server attached to the caller's terminal and
// blocks until it exits. The server console is the user's console: input
// typed by the user (including the stop command) goes straight to the
// server.
func (r *Runner) RunForeground() error {
	if err := r.preflight(); err != nil {
		return err
	}

	cmd := r.command()
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	r.logger.Debug("starting server",
		zap.String("java", r.cfg.JavaBin),
		zap.String("dir", r.inst.Dir))

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}

	if err := r.writePid(cmd.Process.Pid); err != nil {
		r.logger.Warn("failed to write pid file", zap.Error(err))
	}
	defer r.clearPid()

	if err := cmd.Wait(); err != nil {
		return fmt.Errorf("server exited with error: %w", err)
	}
	return nil
}

// Handle is a server started in the background with a managed stdin.
type Handle struct {
	runner  *Runner
	cmd     *exec.Cmd
	stdin   io.WriteCloser
	done    chan error
	timeout time.Duration
}

// Start launches the server detached from the caller's stdin, returning
// a Handle that can send console commands and stop it. Server output
// still goes to the caller's terminal.
func (r *Runner) Start() (*Handle, error) {
	if err := r.preflight(); err != nil {
		return nil, err
	}

	cmd := r.command()
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to open server stdin: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start server: %w", err)
	}

	if err := r.writePid(cmd.Process.Pid); err != nil {
		r.logger.Warn("failed to write pid file", zap.Error(err))
	}

	h := &Handle{
		runner:  r,
		cmd:     cmd,
		stdin:   stdin,
		done:    make(chan error, 1),
		timeout: StopTimeout,
	}
	go func() {
		err := cmd.Wait()
		r.clearPid()
		h.done <- err
	}()
	return h, nil
}

// PID returns the child process id.
func (h *Handle) PID() int {
	return h.cmd.Process.Pid
}

// Send writes a console command to the server's stdin.
func (h *Handle) Send(command string) error {
	_, err := io.WriteString(h.stdin, command+"\n")
	if err != nil {
		return fmt.Errorf("failed to send %q to server: %w", command, err)
	}
	return nil
}

// Wait blocks until the server exits.
func (h *Handle) Wait() error {
	return <-h.done
}

// Stop asks the server to shut down via its stop command, waits up to
// StopTimeout, then kills it.
func (h *Handle) Stop() error {
	_ = h.Send("stop")

	select {
	case err := <-h.done:
		return err
	case <-time.After(h.timeout):
		h.runner.logger.Warn("server did not stop in time, killing",
			zap.Int("pid", h.PID()))
		if err := h.cmd.Process.Kill(); err != nil {
			return fmt.Errorf("failed to kill server: %w", err)
		}
		<-h.done
		return nil
	}
}

// RunningPID returns the pid of a managed server if one is running.
func (r *Runner) RunningPID() (int, bool) {
	data, err := os.ReadFile(r.inst.PidPath())
	if err != nil {
		return 0, false
	}

	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || pid <= 0 {
		return 0, false
	}

	proc, err := os.FindProcess(pid)
	if err != nil {
		return 0, false
	}
	if err := proc.Signal(syscall.Signal(0)); err != nil {
		// Stale pid file from an unclean exit.
		r.clearPid()
		return 0, false
	}
	return pid, true
}

// StopByPid terminates a server started by another quarry invocation.
// SIGTERM first (the JVM runs shutdown hooks and saves on it), SIGKILL
// after the timeout.
func (r *Runner) StopByPid() error {
	pid, ok := r.RunningPID()
	if !ok {
		return fmt.Errorf("no running server found")
	}

	proc, err := os.FindProcess(pid)
	if err != nil {
		return fmt.Errorf("failed to find process %d: %w", pid, err)
	}

	if err := proc.Signal(syscall.SIGTERM); err != nil {
		return fmt.Errorf("failed to signal process %d: %w", pid, err)
	}

	deadline := time.Now().Add(StopTimeout)
	for time.Now().Before(deadline) {
		if err := proc.Signal(syscall.Signal(0)); err != nil {
			r.clearPid()
			return nil
		}
		time.Sleep(250 * time.Millisecond)
	}

	r.logger.Warn("server did not stop in time, killing", zap.Int("pid", pid))
	if err := proc.Kill(); err != nil {
		return fmt.Errorf("failed to kill process %d: %w", pid, err)
	}
	r.clearPid()
	return nil
}

// preflight verifies the instance is launchable.
func (r *Runner) preflight() error {
	if !r.inst.Installed() {
		return fmt.Errorf("server jar not found at %s, run 'quarry install' first", r.inst.JarPath())
	}
	if !r.inst.EULAAccepted() {
		return fmt.Errorf("EULA not accepted, run 'quarry install' to accept it")
	}
	if _, running := r.RunningPID(); running {
		return fmt.Errorf("server already running")
	}
	return nil
}

func (r *Runner) writePid(pid int) error {
	return os.WriteFile(r.inst.PidPath(), []byte(strconv.Itoa(pid)+"\n"), 0644)
}

func (r *Runner) clearPid() {
	_ = os.Remove(r.inst.PidPath())
}
