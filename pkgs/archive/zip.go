package archive

import (
	"archive/zip"
	"context"
	"io"
	"os"
)

// Zip writes deflate-compressed zip archives.
type Zip struct{}

func (Zip) Ext() string { return ".zip" }

func (Zip) Archive(ctx context.Context, srcDir, dest string, exclude []string) (err error) {
	f, err := os.Create(dest)
	if err != nil {
		return err
	}
	defer closeOrRemove(f, &err)

	w := zip.NewWriter(f)
	err = walk(srcDir, exclude, func(e entry) error {
		header, err := zip.FileInfoHeader(e.info)
		if err != nil {
			return err
		}
		header.Name = e.name
		if e.info.IsDir() {
			header.Name += "/"
			_, err := w.CreateHeader(header)
			return err
		}
		header.Method = zip.Deflate

		writer, err := w.CreateHeader(header)
		if err != nil {
			return err
		}
		file, err := os.Open(e.path)
		if err != nil {
			return err
		}
		defer file.Close()
		_, err = io.Copy(writer, file)
		return err
	})
	if err != nil {
		w.Close()
		return err
	}
	return w.Close()
}
