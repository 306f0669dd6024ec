package fsutil

import (
	"PDFReduce/internal/pkgerror"
	"io"
	"os"

	"github.com/spf13/afero"
)

// CopyFile duplicates src to dst byte for byte and carries over the mode and
// modification time. dst is truncated if it exists.
func CopyFile(fs afero.Fs, src, dst string) error {
	in, err := fs.Open(src)
	if err != nil {
		return pkgerror.NewIO(src, err)
	}
	defer func() {
		_ = in.Close()
	}()

	info, err := in.Stat()
	if err != nil {
		return pkgerror.NewIO(src, err)
	}

	out, err := fs.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return pkgerror.NewIO(dst, err)
	}

	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return pkgerror.NewIO(dst, err)
	}
	if err := out.Close(); err != nil {
		return pkgerror.NewIO(dst, err)
	}

	if err := fs.Chtimes(dst, info.ModTime(), info.ModTime()); err != nil {
		return pkgerror.NewIO(dst, err)
	}
	return nil
}

// Exists reports whether path exists. Errors other than not-exist are returned.
func Exists(fs afero.Fs, path string) (bool, error) {
	ok, err := afero.Exists(fs, path)
	if err != nil {
		return false, pkgerror.NewIO(path, err)
	}
	return ok, nil
}

// Size returns the size of path in bytes.
func Size(fs afero.Fs, path string) (int64, error) {
	info, err := fs.Stat(path)
	if err != nil {
		return 0, pkgerror.NewIO(path, err)
	}
	return info.Size(), nil
}
