// Package apple wraps the Xcode command-line tools used on release trees.
package apple

import (
	"context"
	"errors"
	"path/filepath"

	"github.com/heroiclabs/sdkbuild/pkgs/command"
)

// Lipo merges single-architecture files into one universal file.
type Lipo struct {
	Runner command.Runner
}

// Merge runs "lipo -create <inputs...> -output <output>".
func (l *Lipo) Merge(ctx context.Context, inputs []string, output string) error {
	if len(inputs) == 0 {
		return errors.New("lipo: no inputs")
	}
	args := append([]string{"-create"}, inputs...)
	args = append(args, "-output", output)
	return l.Runner.Run(ctx, command.Cmd{Name: "lipo", Args: args})
}

// SetInstallName makes a dylib load through the runtime search path:
// "install_name_tool -id @rpath/<name> <path>".
func SetInstallName(ctx context.Context, runner command.Runner, path string) error {
	return runner.Run(ctx, command.Cmd{
		Name: "install_name_tool",
		Args: []string{"-id", "@rpath/" + filepath.Base(path), path},
	})
}
