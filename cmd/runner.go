package cmd

import (
	"context"
	"fmt"
	"io"
	"os/exec"
	"syscall"
	"time"

	"go.uber.org/zap"
)

// Cmd is an executable command abstraction for different runners.
type Cmd interface {
	SetStdin(r io.Reader)
	SetStdout(w io.Writer)
	SetStderr(w io.Writer)
	Run(timeout int) int
}

// CommandRunner creates Cmd instances for a given command.
type CommandRunner interface {
	CommandContext(ctx context.Context, name string, arg ...string) Cmd
}

// execRunner is the sole CommandRunner: every configured command is a
// shell command whose stdout is scanned for embedded sixel sequences by
// outputWriter.go. It logs process lifecycle events through the same zap
// logger cmd/sixelbridged uses elsewhere, so a keyword that hangs, gets
// killed, or exits nonzero shows up in the daemon's structured logs
// instead of only in the Slack reply.
type execRunner struct {
	logger *zap.Logger
}

// NewExecRunner returns a runner backed by os/exec. A nil logger is
// replaced with a no-op logger so callers (and tests) that don't care
// about observability don't have to construct one.
func NewExecRunner(logger *zap.Logger) CommandRunner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &execRunner{logger: logger}
}

func (r *execRunner) CommandContext(ctx context.Context, name string, arg ...string) Cmd {
	return &execCmd{cmd: exec.CommandContext(ctx, name, arg...), logger: r.logger, name: name, args: arg}
}

type execCmd struct {
	cmd    *exec.Cmd
	logger *zap.Logger
	name   string
	args   []string
}

func (c *execCmd) SetStdin(r io.Reader) {
	c.cmd.Stdin = r
}

func (c *execCmd) SetStdout(w io.Writer) {
	c.cmd.Stdout = w
}

func (c *execCmd) SetStderr(w io.Writer) {
	c.cmd.Stderr = w
}

// Run executes the command and returns its exit code.
// Exit code meanings follow the previous behavior:
// - 0-255: actual exit code
// - 127: failed to start or unknown error
// - 143: terminated by signal or timeout
func (c *execCmd) Run(timeout int) int {
	c.cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	c.cmd.Cancel = func() error {
		// 参考: http://makiuchi-d.github.io/2020/05/10/go-kill-child-process.ja.html
		c.logger.Warn("command timed out, sending SIGTERM", zap.String("command", c.name), zap.Int("timeout_sec", timeout))
		_ = syscall.Kill(-c.cmd.Process.Pid, syscall.SIGTERM) // setpgidしたPGIDはPIDと等しい
		time.Sleep(2 * time.Second)
		c.logger.Warn("command still alive after SIGTERM, sending SIGKILL", zap.String("command", c.name))
		return syscall.Kill(-c.cmd.Process.Pid, syscall.SIGKILL)
	}

	c.logger.Debug("starting command", zap.String("command", c.name), zap.Strings("args", c.args))
	if err := c.cmd.Start(); err != nil {
		c.logger.Error("command failed to start", zap.String("command", c.name), zap.Error(err))
		if c.cmd.Stderr != nil {
			_, _ = fmt.Fprintf(c.cmd.Stderr, "%v", err)
		}
		return 127
	}

	err := c.cmd.Wait()
	if err != nil {
		if exitError, ok := err.(*exec.ExitError); ok {
			if exitError.ExitCode() == -1 {
				// https://pkg.go.dev/os#ProcessState.ExitCode
				// -1 if the process hasn't exited or was terminated by a signal.
				if c.cmd.Stderr != nil && timeout > 0 {
					_, _ = fmt.Fprintf(c.cmd.Stderr, "Timeout exceeded (%ds)", timeout)
				}
				c.logger.Warn("command terminated by signal or timeout", zap.String("command", c.name))
				return 143 // 128+15(SIGTERM)
			}
			c.logger.Debug("command exited nonzero", zap.String("command", c.name), zap.Int("exit_code", exitError.ExitCode()))
			return exitError.ExitCode()
		}
		c.logger.Error("command wait failed", zap.String("command", c.name), zap.Error(err))
		if c.cmd.Stderr != nil {
			_, _ = fmt.Fprintf(c.cmd.Stderr, "Error: %v", err)
		}
		return 127
	}
	c.logger.Debug("command exited", zap.String("command", c.name), zap.Int("exit_code", c.cmd.ProcessState.ExitCode()))
	return c.cmd.ProcessState.ExitCode()
}
