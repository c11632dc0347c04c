package archive

import (
	"context"
	"os"

	"github.com/heroiclabs/sdkbuild/pkgs/command"
)

// SevenZip archives with the external 7-Zip tool.
type SevenZip struct {
	Runner command.Runner
	// Path is the 7z executable; empty means "7z" from PATH.
	Path string
}

func (z *SevenZip) Ext() string { return ".7z" }

func (z *SevenZip) Archive(ctx context.Context, srcDir, dest string, exclude []string) error {
	if err := os.Remove(dest); err != nil && !os.IsNotExist(err) {
		return err
	}
	bin := z.Path
	if bin == "" {
		bin = "7z"
	}
	args := []string{"a", "-r", dest, srcDir}
	for _, p := range exclude {
		args = append(args, "-xr!"+p)
	}
	return z.Runner.Run(ctx, command.Cmd{Name: bin, Args: args})
}
