package env

import (
	"os"
	"path/filepath"
)

// WorkDir returns the per-user directory sdkbuild keeps scratch trees in.
// SDKBUILD_WORKDIR overrides it.
func WorkDir() (string, error) {
	if dir := os.Getenv("SDKBUILD_WORKDIR"); dir != "" {
		return dir, nil
	}
	userCacheDir, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(userCacheDir, ".sdkbuild"), nil
}

// StageDir returns, creating it if needed, the directory holding the
// per-architecture trees of universal builds.
func StageDir() (string, error) {
	work, err := WorkDir()
	if err != nil {
		return "", err
	}
	dir := filepath.Join(work, "stage")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", err
	}
	return dir, nil
}
