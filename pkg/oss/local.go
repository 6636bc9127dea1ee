package oss

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"reelsmith/internal/types"
	apperrors "reelsmith/pkg/errors"
)

// LocalStore serves the clip bank from a directory on disk. It backs
// deployments that run without object storage; keys are slash-separated
// paths relative to the root.
type LocalStore struct {
	root string
}

func NewLocalStore(root string) *LocalStore {
	return &LocalStore{root: root}
}

func (s *LocalStore) List(ctx context.Context, prefix string) ([]types.Asset, error) {
	var assets []types.Asset
	err := filepath.WalkDir(s.root, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(s.root, p)
		if err != nil {
			return err
		}
		key := filepath.ToSlash(rel)
		if !strings.HasPrefix(key, prefix) {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		asset := types.Asset{
			Key:         key,
			Name:        path.Base(key),
			Size:        info.Size(),
			ContentType: contentTypeForKey(key),
			UpdatedAt:   info.ModTime(),
		}
		if sum, err := fileMD5(p); err == nil {
			asset.MD5 = sum
		}
		assets = append(assets, asset)
		return nil
	})
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeObjectStore, "Local bank listing failed", err)
	}
	return assets, nil
}

func (s *LocalStore) Download(ctx context.Context, key string, destPath string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	src, err := os.Open(filepath.Join(s.root, filepath.FromSlash(key)))
	if err != nil {
		return apperrors.WrapWithDetail(apperrors.CodeFileNotFound, "Bank asset not found", key, err)
	}
	defer src.Close()

	if err = os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
		return apperrors.Wrap(apperrors.CodeFileWriteError, "Destination directory create failed", err)
	}
	dst, err := os.Create(destPath)
	if err != nil {
		return apperrors.Wrap(apperrors.CodeFileWriteError, "Destination file create failed", err)
	}
	defer dst.Close()

	if _, err = io.Copy(dst, src); err != nil {
		return apperrors.Wrap(apperrors.CodeFileWriteError, "Asset copy failed", err)
	}
	return nil
}

func (s *LocalStore) Upload(ctx context.Context, localPath string, key string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	destPath := filepath.Join(s.root, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
		return "", apperrors.Wrap(apperrors.CodeFileWriteError, "Bank directory create failed", err)
	}

	src, err := os.Open(localPath)
	if err != nil {
		return "", apperrors.WrapWithDetail(apperrors.CodeFileNotFound, "Upload source not found", localPath, err)
	}
	defer src.Close()

	dst, err := os.Create(destPath)
	if err != nil {
		return "", apperrors.Wrap(apperrors.CodeFileWriteError, "Bank file create failed", err)
	}
	defer dst.Close()

	if _, err = io.Copy(dst, src); err != nil {
		return "", apperrors.Wrap(apperrors.CodeFileWriteError, "Bank file write failed", err)
	}
	return destPath, nil
}

func fileMD5(p string) (string, error) {
	f, err := os.Open(p)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := md5.New()
	if _, err = io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
