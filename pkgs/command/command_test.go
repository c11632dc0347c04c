package command

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"testing"
)

func TestCmdString(t *testing.T) {
	c := Cmd{Name: "cmake", Args: []string{"-G", "Visual Studio 16 2019", "-B", "build", ""}}
	if got, want := c.String(), `cmake -G "Visual Studio 16 2019" -B build ""`; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestExitError(t *testing.T) {
	err := fmt.Errorf("merge: %w", &ExitError{Cmd: Cmd{Name: "lipo", Args: []string{"-create"}}, Code: 3, Err: errors.New("exit status 3")})
	if got := ExitCode(err); got != 3 {
		t.Errorf("ExitCode = %d, want 3", got)
	}
	if got, want := err.Error(), "merge: command failed with exit status 3: lipo -create"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if got := ExitCode(errors.New("plain")); got != 1 {
		t.Errorf("ExitCode(plain) = %d, want 1", got)
	}
	notStarted := &ExitError{Cmd: Cmd{Name: "7z"}, Code: -1, Err: errors.New("not found")}
	if got := ExitCode(notStarted); got != 1 {
		t.Errorf("ExitCode(not started) = %d, want 1", got)
	}
}

func TestExecMissingBinary(t *testing.T) {
	err := NewExec().Run(context.Background(), Cmd{Name: "sdkbuild-no-such-tool"})
	var ee *ExitError
	if !errors.As(err, &ee) {
		t.Fatalf("err = %v, want *ExitError", err)
	}
	if ee.Code != -1 {
		t.Errorf("Code = %d, want -1", ee.Code)
	}
}

func TestMergeEnv(t *testing.T) {
	got := mergeEnv([]string{"B=1", "A=2", "C=x=y"}, map[string]string{"A": "3", "D": "4"})
	want := []string{"A=3", "B=1", "C=x=y", "D=4"}
	if !slices.Equal(got, want) {
		t.Errorf("mergeEnv = %v, want %v", got, want)
	}
}

func TestRecorder(t *testing.T) {
	r := &Recorder{Fail: func(c Cmd) error {
		if c.Name == "bad" {
			return &ExitError{Cmd: c, Code: 2}
		}
		return nil
	}}
	ctx := context.Background()
	if err := r.Run(ctx, Cmd{Name: "good", Args: []string{"a"}}); err != nil {
		t.Fatal(err)
	}
	if err := r.Run(ctx, Cmd{Name: "bad"}); ExitCode(err) != 2 {
		t.Fatalf("err = %v", err)
	}
	if got := r.Lines(); !slices.Equal(got, []string{"good a", "bad"}) {
		t.Errorf("Lines = %v", got)
	}
}
