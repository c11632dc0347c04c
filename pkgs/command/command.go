// Package command runs external tools (generators, compiler drivers,
// archive mergers, archivers) as blocking calls.
package command

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sort"
	"strings"

	"github.com/qiniu/x/log"
)

// Cmd is an external command line.
type Cmd struct {
	Name string
	Args []string
	Dir  string            // working directory, empty for the current one
	Env  map[string]string // overrides on top of the process environment
}

func (c Cmd) String() string {
	parts := append([]string{c.Name}, c.Args...)
	for i, p := range parts {
		if p == "" || strings.ContainsAny(p, " \t\"") {
			parts[i] = fmt.Sprintf("%q", p)
		}
	}
	return strings.Join(parts, " ")
}

// Runner executes commands.
type Runner interface {
	Run(ctx context.Context, cmd Cmd) error
}

// ExitError reports a tool that could not be started or exited non-zero.
type ExitError struct {
	Cmd  Cmd
	Code int // -1 when the process did not run to completion
	Err  error
}

func (e *ExitError) Error() string {
	if e.Code >= 0 {
		return fmt.Sprintf("command failed with exit status %d: %s", e.Code, e.Cmd)
	}
	return fmt.Sprintf("command failed: %s: %v", e.Cmd, e.Err)
}

func (e *ExitError) Unwrap() error { return e.Err }

// ExitCode returns the exit status carried by err, or 1 when err is not an
// ExitError with a status.
func ExitCode(err error) int {
	var ee *ExitError
	if errors.As(err, &ee) && ee.Code > 0 {
		return ee.Code
	}
	return 1
}

// Exec runs commands as child processes.
type Exec struct {
	Stdout io.Writer
	Stderr io.Writer
}

// NewExec returns an Exec attached to the process's standard streams.
func NewExec() *Exec {
	return &Exec{Stdout: os.Stdout, Stderr: os.Stderr}
}

func (e *Exec) Run(ctx context.Context, c Cmd) error {
	log.Info("calling:", c.String())
	cmd := exec.CommandContext(ctx, c.Name, c.Args...)
	cmd.Dir = c.Dir
	cmd.Stdout = e.Stdout
	cmd.Stderr = e.Stderr
	if len(c.Env) > 0 {
		cmd.Env = mergeEnv(os.Environ(), c.Env)
	}
	if err := cmd.Run(); err != nil {
		code := -1
		var xe *exec.ExitError
		if errors.As(err, &xe) {
			code = xe.ExitCode()
		}
		return &ExitError{Cmd: c, Code: code, Err: err}
	}
	return nil
}

func mergeEnv(base []string, override map[string]string) []string {
	envMap := make(map[string]string, len(base))
	for _, kv := range base {
		if k, v, ok := strings.Cut(kv, "="); ok {
			envMap[k] = v
		}
	}
	for k, v := range override {
		envMap[k] = v
	}
	keys := make([]string, 0, len(envMap))
	for k := range envMap {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, k+"="+envMap[k])
	}
	return out
}
