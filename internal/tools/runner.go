package tools

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// CommandRunner abstracts command execution for version-control adapters.
type CommandRunner interface {
	Run(ctx context.Context, dir string, name string, args ...string) ([]byte, []byte, int32, error)
}

// ExecRunner executes commands on the local host.
type ExecRunner struct{}

// Run executes name in dir and returns stdout, stderr and the exit code.
// Exit code 127 means the binary could not be started.
func (r ExecRunner) Run(ctx context.Context, dir string, name string, args ...string) ([]byte, []byte, int32, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	var stdout bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err == nil {
		return stdout.Bytes(), stderr.Bytes(), 0, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return stdout.Bytes(), stderr.Bytes(), int32(exitErr.ExitCode()), err
	}

	exitCode := int32(1)
	var execErr *exec.Error
	if errors.As(err, &execErr) {
		exitCode = 127
	}
	return stdout.Bytes(), stderr.Bytes(), exitCode, err
}

// CommandError carries the full context of a failed command.
type CommandError struct {
	Name     string
	Args     []string
	ExitCode int32
	Stdout   string
	Stderr   string
	Err      error
}

func (e *CommandError) Error() string {
	return fmt.Sprintf(
		"command failed cmd=%s args=%q exit=%d stdout=%q stderr=%q: %v",
		e.Name,
		strings.Join(e.Args, " "),
		e.ExitCode,
		e.Stdout,
		e.Stderr,
		e.Err,
	)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// RunChecked runs a command and folds any failure, including a non-zero
// exit code reported without an error, into a *CommandError.
func RunChecked(ctx context.Context, r CommandRunner, dir string, name string, args ...string) ([]byte, error) {
	stdout, stderr, exitCode, err := r.Run(ctx, dir, name, args...)
	if err == nil && exitCode == 0 {
		return stdout, nil
	}
	if err == nil {
		err = fmt.Errorf("exit status %d", exitCode)
	}
	return stdout, &CommandError{
		Name:     name,
		Args:     args,
		ExitCode: exitCode,
		Stdout:   strings.TrimSpace(string(stdout)),
		Stderr:   strings.TrimSpace(string(stderr)),
		Err:      err,
	}
}
