package publish

import (
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	ferrors "git.home.luguber.info/inful/fwpublish/internal/foundation/errors"
	"git.home.luguber.info/inful/fwpublish/internal/logfields"
)

// ensureDir creates dir and any missing parents. Losing a creation race to
// another process is fine as long as a directory exists afterwards.
func ensureDir(dir string) error {
	err := os.MkdirAll(dir, 0o755)
	if err == nil {
		return nil
	}
	if info, statErr := os.Stat(dir); statErr == nil && info.IsDir() {
		return nil
	}
	return ferrors.FileSystemError("failed to create build directory").
		WithCause(err).
		WithContext("dir", dir).
		Build()
}

// copyFile copies src over dst, keeping permission bits and modification time
// where the platform allows it. The data lands in a temp file next to dst and
// is renamed into place, so readers never observe a half-written image.
func copyFile(logger *slog.Logger, src, dst string) (int64, error) {
	srcInfo, err := os.Stat(src)
	if errors.Is(err, fs.ErrNotExist) {
		return 0, ferrors.NotFoundError("source artifact not found").
			WithCause(err).
			WithContext("source", src).
			Build()
	}
	if err != nil {
		return 0, ferrors.FileSystemError("cannot stat source artifact").
			WithCause(err).
			WithContext("source", src).
			Build()
	}
	if srcInfo.IsDir() {
		return 0, ferrors.FileSystemError("source artifact is a directory").
			WithContext("source", src).
			Build()
	}
	if dstInfo, err := os.Stat(dst); err == nil && dstInfo.IsDir() {
		return 0, ferrors.FileSystemError("destination is a directory").
			WithContext("dest", dst).
			Build()
	}

	in, err := os.Open(filepath.Clean(src))
	if err != nil {
		return 0, ferrors.FileSystemError("cannot open source artifact").
			WithCause(err).
			WithContext("source", src).
			Build()
	}
	defer func() {
		_ = in.Close()
	}()

	tmp, err := os.CreateTemp(filepath.Dir(dst), ".firmware_latest-*.tmp")
	if err != nil {
		return 0, ferrors.FileSystemError("cannot create destination").
			WithCause(err).
			WithContext("dest", dst).
			Build()
	}
	tmpName := tmp.Name()
	fail := func(msg string, cause error) (int64, error) {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return 0, ferrors.FileSystemError(msg).
			WithCause(cause).
			WithContext("source", src).
			WithContext("dest", dst).
			Build()
	}

	n, err := io.Copy(tmp, in)
	if err != nil {
		return fail("failed to copy artifact", err)
	}
	if err := tmp.Sync(); err != nil {
		return fail("failed to sync destination", err)
	}
	if err := tmp.Close(); err != nil {
		return fail("failed to close destination", err)
	}

	if err := os.Chmod(tmpName, srcInfo.Mode().Perm()); err != nil {
		logger.Debug("Could not preserve permissions", logfields.Dest(dst), logfields.Error(err))
	}
	if err := os.Rename(tmpName, dst); err != nil {
		_ = os.Remove(tmpName)
		return 0, ferrors.FileSystemError("failed to replace destination").
			WithCause(err).
			WithContext("dest", dst).
			Build()
	}
	if err := os.Chtimes(dst, srcInfo.ModTime(), srcInfo.ModTime()); err != nil {
		logger.Debug("Could not preserve modification time", logfields.Dest(dst), logfields.Error(err))
	}
	return n, nil
}
