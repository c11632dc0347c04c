package archive

import (
	"archive/tar"
	"archive/zip"
	"context"
	"io"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ulikunitz/xz"

	"github.com/heroiclabs/sdkbuild/pkgs/command"
)

func makeSDK(t *testing.T) string {
	t.Helper()
	root := filepath.Join(t.TempDir(), "nakama-cpp-sdk")
	files := map[string]string{
		"include/nakama-cpp/Nakama.h":         "header",
		"libs/linux/x64/libnakama-cpp.a":      "lib",
		"nakama-cpp-android/build.gradle":     "gradle",
		"shared-libs/mac/libnakama-cpp.dylib": "dylib",
		"shared-libs/mac/.DS_Store":           "junk",
	}
	for name, content := range files {
		p := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	}
	return root
}

var wantFiles = map[string]string{
	"nakama-cpp-sdk/include/nakama-cpp/Nakama.h":         "header",
	"nakama-cpp-sdk/libs/linux/x64/libnakama-cpp.a":      "lib",
	"nakama-cpp-sdk/shared-libs/mac/libnakama-cpp.dylib": "dylib",
}

var exclude = []string{"nakama-cpp-android", ".DS_*"}

func readTar(t *testing.T, r io.Reader) map[string]string {
	t.Helper()
	got := map[string]string{}
	tr := tar.NewReader(r)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		if hdr.Typeflag == tar.TypeDir {
			continue
		}
		data, err := io.ReadAll(tr)
		require.NoError(t, err)
		got[hdr.Name] = string(data)
	}
	return got
}

func TestZip(t *testing.T) {
	src := makeSDK(t)
	dest := filepath.Join(t.TempDir(), "sdk"+Zip{}.Ext())
	require.NoError(t, Zip{}.Archive(context.Background(), src, dest, exclude))

	zr, err := zip.OpenReader(dest)
	require.NoError(t, err)
	defer zr.Close()

	got := map[string]string{}
	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		rc, err := f.Open()
		require.NoError(t, err)
		data, err := io.ReadAll(rc)
		rc.Close()
		require.NoError(t, err)
		got[f.Name] = string(data)
	}
	assert.Equal(t, wantFiles, got)
}

func TestTarZstd(t *testing.T) {
	src := makeSDK(t)
	dest := filepath.Join(t.TempDir(), "sdk"+TarZstd{}.Ext())
	require.NoError(t, TarZstd{}.Archive(context.Background(), src, dest, exclude))

	f, err := os.Open(dest)
	require.NoError(t, err)
	defer f.Close()
	zr, err := zstd.NewReader(f)
	require.NoError(t, err)
	defer zr.Close()
	assert.Equal(t, wantFiles, readTar(t, zr))
}

func TestTarXz(t *testing.T) {
	src := makeSDK(t)
	dest := filepath.Join(t.TempDir(), "sdk"+TarXz{}.Ext())
	require.NoError(t, TarXz{}.Archive(context.Background(), src, dest, exclude))

	f, err := os.Open(dest)
	require.NoError(t, err)
	defer f.Close()
	xr, err := xz.NewReader(f)
	require.NoError(t, err)
	assert.Equal(t, wantFiles, readTar(t, xr))
}

func TestFailedArchiveLeavesNoFile(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nakama-cpp-sdk")
	for _, a := range []Archiver{Zip{}, TarZstd{}, TarXz{}} {
		dest := filepath.Join(t.TempDir(), "sdk"+a.Ext())
		assert.Error(t, a.Archive(context.Background(), missing, dest, nil), a.Ext())
		assert.NoFileExists(t, dest, a.Ext())
	}
}

func TestTarKeepsDirectoryEntries(t *testing.T) {
	src := makeSDK(t)
	dest := filepath.Join(t.TempDir(), "sdk.tar.xz")
	require.NoError(t, TarXz{}.Archive(context.Background(), src, dest, exclude))

	f, err := os.Open(dest)
	require.NoError(t, err)
	defer f.Close()
	xr, err := xz.NewReader(f)
	require.NoError(t, err)

	var dirs []string
	tr := tar.NewReader(xr)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		if hdr.Typeflag == tar.TypeDir {
			dirs = append(dirs, hdr.Name)
		}
	}
	sort.Strings(dirs)
	assert.Contains(t, dirs, "nakama-cpp-sdk/")
	assert.Contains(t, dirs, "nakama-cpp-sdk/libs/linux/x64/")
	assert.NotContains(t, dirs, "nakama-cpp-sdk/nakama-cpp-android/")
}

func TestSevenZip(t *testing.T) {
	rec := &command.Recorder{}
	dest := filepath.Join(t.TempDir(), "sdk.7z")
	require.NoError(t, os.WriteFile(dest, []byte("stale"), 0o644))

	z := &SevenZip{Runner: rec, Path: `c:\Program Files\7-Zip\7z.exe`}
	require.NoError(t, z.Archive(context.Background(), "sdk", dest, []string{"nakama-cpp-android"}))

	require.Len(t, rec.Cmds, 1)
	assert.Equal(t, `c:\Program Files\7-Zip\7z.exe`, rec.Cmds[0].Name)
	assert.Equal(t, []string{"a", "-r", dest, "sdk", "-xr!nakama-cpp-android"}, rec.Cmds[0].Args)
	_, err := os.Stat(dest)
	assert.True(t, os.IsNotExist(err), "stale archive must be removed first")
}

func TestNew(t *testing.T) {
	for _, f := range Formats {
		a, err := New(f, &command.Recorder{})
		require.NoError(t, err, f)
		assert.Equal(t, "."+f, a.Ext())
	}
	_, err := New("rar", nil)
	assert.Error(t, err)
}

func TestExcluded(t *testing.T) {
	assert.True(t, Excluded("nakama-cpp-android", exclude))
	assert.True(t, Excluded("nakama-cpp-android/src/main.cpp", exclude))
	assert.True(t, Excluded("shared-libs/mac/.DS_Store", exclude))
	assert.False(t, Excluded("libs/android/arm64-v8a/libnakama-cpp.a", exclude))
	assert.False(t, Excluded("anything", nil))
}
