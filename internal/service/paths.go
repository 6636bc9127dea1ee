package service

import (
	"os"
	"path/filepath"

	"reelsmith/internal/appdirs"
)

// resolveBankRoot returns the directory the local clip bank is served
// from when object storage is disabled.
func resolveBankRoot() (string, error) {
	root, err := appdirs.ResolveUploadRoot()
	if err != nil {
		return "", err
	}
	if err = os.MkdirAll(root, 0o755); err != nil {
		return "", err
	}
	return root, nil
}

// renderWorkDir creates the per-task working directory for intermediate
// files. The caller removes it when the task finishes.
func renderWorkDir(taskId string) (string, error) {
	dir, err := appdirs.ResolveRenderDir(taskId)
	if err != nil {
		return "", err
	}
	if err = os.MkdirAll(filepath.Join(dir, "output"), 0o755); err != nil {
		return "", err
	}
	return dir, nil
}
