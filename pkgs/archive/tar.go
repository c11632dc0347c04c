package archive

import (
	"archive/tar"
	"context"
	"io"
	"os"

	"github.com/klauspost/compress/zstd"
	"github.com/ulikunitz/xz"
)

// TarZstd writes zstandard-compressed tarballs.
type TarZstd struct{}

func (TarZstd) Ext() string { return ".tar.zst" }

func (TarZstd) Archive(ctx context.Context, srcDir, dest string, exclude []string) error {
	return writeTar(dest, func(w io.Writer) (io.WriteCloser, error) {
		return zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedBetterCompression))
	}, srcDir, exclude)
}

// TarXz writes xz-compressed tarballs.
type TarXz struct{}

func (TarXz) Ext() string { return ".tar.xz" }

func (TarXz) Archive(ctx context.Context, srcDir, dest string, exclude []string) error {
	return writeTar(dest, func(w io.Writer) (io.WriteCloser, error) {
		return xz.NewWriter(w)
	}, srcDir, exclude)
}

func writeTar(dest string, compress func(io.Writer) (io.WriteCloser, error), srcDir string, exclude []string) (err error) {
	f, err := os.Create(dest)
	if err != nil {
		return err
	}
	defer closeOrRemove(f, &err)

	cw, err := compress(f)
	if err != nil {
		return err
	}
	tw := tar.NewWriter(cw)
	err = walk(srcDir, exclude, func(e entry) error {
		hdr, err := tar.FileInfoHeader(e.info, "")
		if err != nil {
			return err
		}
		hdr.Name = e.name
		if e.info.IsDir() {
			hdr.Name += "/"
		}
		if err := tw.WriteHeader(hdr); err != nil {
			return err
		}
		if e.info.IsDir() {
			return nil
		}
		file, err := os.Open(e.path)
		if err != nil {
			return err
		}
		defer file.Close()
		_, err = io.Copy(tw, file)
		return err
	})
	if err != nil {
		tw.Close()
		cw.Close()
		return err
	}
	if err := tw.Close(); err != nil {
		return err
	}
	return cw.Close()
}
