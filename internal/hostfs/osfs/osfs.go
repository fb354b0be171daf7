// Package osfs is a concrete hostfs.HostFS backed by the local filesystem,
// rooted at a single directory. It exists to drive the demo binaries and
// end-to-end tests — the real HostFS collaborator is always supplied by
// the host per spec.md §1/§6, never by the core itself.
package osfs

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"syscall"

	"craftraw/internal/hostfs"
)

// FS roots every path at Root. Paths are cleaned as if absolute before
// joining, so ".." components cannot climb above Root: an escaping path is
// clamped inside Root rather than rejected.
type FS struct {
	Root string
}

func New(root string) *FS { return &FS{Root: root} }

func (f *FS) resolve(path string) (string, error) {
	clean := filepath.Clean("/" + path)
	full := filepath.Join(f.Root, clean)
	if !strings.HasPrefix(full, filepath.Clean(f.Root)) {
		return "", fmt.Errorf("osfs: path escapes root: %q", path)
	}
	return full, nil
}

func (f *FS) Exists(path string) bool {
	full, err := f.resolve(path)
	if err != nil {
		return false
	}
	_, err = os.Stat(full)
	return err == nil
}

func (f *FS) IsDir(path string) bool {
	full, err := f.resolve(path)
	if err != nil {
		return false
	}
	info, err := os.Stat(full)
	return err == nil && info.IsDir()
}

func (f *FS) IsReadOnly(path string) bool {
	full, err := f.resolve(path)
	if err != nil {
		return false
	}
	info, err := os.Stat(full)
	if err != nil {
		return false
	}
	return info.Mode().Perm()&0200 == 0
}

func (f *FS) GetSize(path string) (uint32, error) {
	full, err := f.resolve(path)
	if err != nil {
		return 0, err
	}
	info, err := os.Stat(full)
	if err != nil {
		return 0, notFound(path, err)
	}
	return uint32(info.Size()), nil
}

func (f *FS) GetDrive(path string) (string, error) {
	// A single-root filesystem has exactly one drive.
	return "hdd", nil
}

func (f *FS) GetCapacity(path string) (uint32, error) {
	var stat syscall.Statfs_t
	if err := syscall.Statfs(f.Root, &stat); err != nil {
		return 0, err
	}
	return uint32(stat.Blocks * uint64(stat.Bsize)), nil
}

func (f *FS) GetFreeSpace(path string) (uint32, error) {
	var stat syscall.Statfs_t
	if err := syscall.Statfs(f.Root, &stat); err != nil {
		return 0, err
	}
	return uint32(stat.Bavail * uint64(stat.Bsize)), nil
}

func (f *FS) List(path string) ([]string, error) {
	full, err := f.resolve(path)
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(full)
	if err != nil {
		return nil, notFound(path, err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names, nil
}

func (f *FS) Attributes(path string) (hostfs.Attributes, error) {
	full, err := f.resolve(path)
	if err != nil {
		return hostfs.Attributes{}, err
	}
	info, err := os.Stat(full)
	if err != nil {
		return hostfs.Attributes{}, notFound(path, err)
	}
	return hostfs.Attributes{
		Size:       uint32(info.Size()),
		Modified:   uint64(info.ModTime().Unix()),
		IsDir:      info.IsDir(),
		IsReadOnly: info.Mode().Perm()&0200 == 0,
	}, nil
}

func (f *FS) Find(pattern string) ([]string, error) {
	full, err := f.resolve(pattern)
	if err != nil {
		return nil, err
	}
	matches, err := filepath.Glob(full)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(matches))
	for _, m := range matches {
		rel, err := filepath.Rel(f.Root, m)
		if err != nil {
			continue
		}
		names = append(names, "/"+rel)
	}
	return names, nil
}

func (f *FS) MakeDir(path string) error {
	full, err := f.resolve(path)
	if err != nil {
		return err
	}
	return os.MkdirAll(full, 0755)
}

func (f *FS) Delete(path string) error {
	full, err := f.resolve(path)
	if err != nil {
		return err
	}
	return os.RemoveAll(full)
}

func (f *FS) Copy(src, dst string) error {
	srcFull, err := f.resolve(src)
	if err != nil {
		return err
	}
	dstFull, err := f.resolve(dst)
	if err != nil {
		return err
	}
	in, err := os.Open(srcFull)
	if err != nil {
		return notFound(src, err)
	}
	defer in.Close()
	out, err := os.Create(dstFull)
	if err != nil {
		return err
	}
	defer out.Close()
	_, err = io.Copy(out, in)
	return err
}

func (f *FS) Move(src, dst string) error {
	srcFull, err := f.resolve(src)
	if err != nil {
		return err
	}
	dstFull, err := f.resolve(dst)
	if err != nil {
		return err
	}
	return os.Rename(srcFull, dstFull)
}

func (f *FS) ReadFile(path string, binary bool) ([]byte, error) {
	full, err := f.resolve(path)
	if err != nil {
		return nil, err
	}
	b, err := os.ReadFile(full)
	if err != nil {
		return nil, notFound(path, err)
	}
	return b, nil
}

func (f *FS) OpenWrite(path string, mode string) (hostfs.WriteHandle, error) {
	full, err := f.resolve(path)
	if err != nil {
		return nil, err
	}
	flags := os.O_WRONLY | os.O_CREATE
	if mode == "a" || mode == "ab" {
		flags |= os.O_APPEND
	} else {
		flags |= os.O_TRUNC
	}
	return os.OpenFile(full, flags, 0644)
}

func notFound(path string, err error) error {
	if errors.Is(err, fs.ErrNotExist) {
		return &hostfs.NotFoundError{Path: path}
	}
	return err
}
