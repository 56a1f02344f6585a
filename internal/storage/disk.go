package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	dirPerm  fs.FileMode = 0o755
	filePerm fs.FileMode = 0o644
)

// Disk stores blobs as regular files under a canonical root directory.
// Writes land in a temporary file next to the target and are renamed into place,
// so readers see either the previous blob or the complete new one.
type Disk struct {
	root string
}

var _ Storage = (*Disk)(nil)

// NewDisk initializes root and returns a store bound to it.
func NewDisk(root string) (*Disk, error) {
	canon, err := Init(root)
	if err != nil {
		return nil, err
	}
	return &Disk{root: canon}, nil
}

// Init ensures root exists as a directory, creating it and any parents if absent,
// and returns its canonical absolute form. It is safe to call repeatedly.
func Init(root string) (string, error) {
	if strings.TrimSpace(root) == "" {
		return "", fmt.Errorf("%w: root path is required", ErrStorageInit)
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrStorageInit, err)
	}

	fi, err := os.Stat(abs)
	switch {
	case err == nil:
		if !fi.IsDir() {
			return "", fmt.Errorf("%w: %s is not a directory", ErrStorageInit, abs)
		}
	case errors.Is(err, fs.ErrNotExist):
		if err := os.MkdirAll(abs, dirPerm); err != nil {
			return "", fmt.Errorf("%w: %v", ErrStorageInit, err)
		}
	default:
		return "", fmt.Errorf("%w: %v", ErrStorageInit, err)
	}

	canon, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrStorageInit, err)
	}
	return canon, nil
}

// Root returns the canonical root directory.
func (d *Disk) Root() string { return d.root }

// Put streams r into the file addressed by name. Concurrent writers to the same name
// race and the last rename wins; writers to different names are independent.
func (d *Disk) Put(ctx context.Context, name string, r io.Reader, opt PutObjectOptions) (ObjectInfo, error) {
	clean, err := CleanName(name)
	if err != nil {
		return ObjectInfo{}, err
	}
	target, err := d.resolve(clean)
	if err != nil {
		return ObjectInfo{}, err
	}

	f, err := os.CreateTemp(filepath.Dir(target), ".upload-*")
	if err != nil {
		return ObjectInfo{}, fmt.Errorf("create temp file: %w", err)
	}
	tmp := f.Name()
	fail := func(err error) (ObjectInfo, error) {
		_ = f.Close()
		_ = os.Remove(tmp)
		return ObjectInfo{}, err
	}

	n, err := io.Copy(f, contextReader{ctx: ctx, r: r})
	if err != nil {
		return fail(fmt.Errorf("write blob: %w", err))
	}
	if err := f.Chmod(filePerm); err != nil {
		return fail(fmt.Errorf("chmod blob: %w", err))
	}
	if err := f.Sync(); err != nil {
		return fail(fmt.Errorf("sync blob: %w", err))
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return ObjectInfo{}, fmt.Errorf("close blob: %w", err)
	}
	if err := os.Rename(tmp, target); err != nil {
		_ = os.Remove(tmp)
		return ObjectInfo{}, fmt.Errorf("commit blob: %w", err)
	}

	return ObjectInfo{
		Path:         target,
		Size:         n,
		ContentType:  opt.ContentType,
		LastModified: time.Now(),
		Metadata:     opt.Metadata,
	}, nil
}

// Get opens the regular file at p after checking that it, and whatever it resolves to,
// lies inside the root.
func (d *Disk) Get(ctx context.Context, p string) (io.ReadCloser, ObjectInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, ObjectInfo{}, err
	}
	if p == "" || !filepath.IsAbs(p) {
		return nil, ObjectInfo{}, fmt.Errorf("%w: path is not absolute", ErrUnsafePath)
	}
	clean := filepath.Clean(p)
	if !d.contains(clean) || clean == d.root {
		return nil, ObjectInfo{}, fmt.Errorf("%w: path outside root", ErrUnsafePath)
	}

	canon, err := filepath.EvalSymlinks(clean)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ObjectInfo{}, ErrNotFound
		}
		return nil, ObjectInfo{}, fmt.Errorf("resolve blob: %w", err)
	}
	if !d.contains(canon) {
		return nil, ObjectInfo{}, fmt.Errorf("%w: path resolves outside root", ErrUnsafePath)
	}

	f, err := os.Open(canon)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ObjectInfo{}, ErrNotFound
		}
		return nil, ObjectInfo{}, fmt.Errorf("open blob: %w", err)
	}
	fi, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, ObjectInfo{}, fmt.Errorf("stat blob: %w", err)
	}
	if !fi.Mode().IsRegular() {
		_ = f.Close()
		return nil, ObjectInfo{}, ErrNotFound
	}

	return f, ObjectInfo{
		Path:         canon,
		Size:         fi.Size(),
		LastModified: fi.ModTime(),
	}, nil
}

// resolve maps a cleaned name onto a canonical target path inside the root,
// creating intermediate directories only once their nearest existing ancestor
// is known to resolve inside the root.
func (d *Disk) resolve(clean string) (string, error) {
	full := filepath.Join(d.root, filepath.FromSlash(clean))
	if !d.contains(full) || full == d.root {
		return "", fmt.Errorf("%w: name outside root", ErrUnsafePath)
	}
	parent := filepath.Dir(full)

	existing := parent
	for {
		if _, err := os.Lstat(existing); err == nil {
			break
		}
		existing = filepath.Dir(existing)
	}
	canonExisting, err := filepath.EvalSymlinks(existing)
	if err != nil {
		return "", fmt.Errorf("resolve parent: %w", err)
	}
	if !d.contains(canonExisting) {
		return "", fmt.Errorf("%w: parent resolves outside root", ErrUnsafePath)
	}

	if err := os.MkdirAll(parent, dirPerm); err != nil {
		return "", fmt.Errorf("create parent: %w", err)
	}
	canonParent, err := filepath.EvalSymlinks(parent)
	if err != nil {
		return "", fmt.Errorf("resolve parent: %w", err)
	}
	if !d.contains(canonParent) {
		return "", fmt.Errorf("%w: parent resolves outside root", ErrUnsafePath)
	}

	target := filepath.Join(canonParent, filepath.Base(full))
	fi, err := os.Lstat(target)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return target, nil
	case err != nil:
		return "", fmt.Errorf("stat target: %w", err)
	case fi.Mode()&fs.ModeSymlink != 0:
		resolved, err := filepath.EvalSymlinks(target)
		if err != nil {
			return "", fmt.Errorf("%w: dangling link", ErrUnsafePath)
		}
		if !d.contains(resolved) || resolved == d.root {
			return "", fmt.Errorf("%w: link resolves outside root", ErrUnsafePath)
		}
		target = resolved
		if fi, err = os.Stat(target); err != nil {
			return "", fmt.Errorf("stat target: %w", err)
		}
	}
	if fi.IsDir() {
		return "", fmt.Errorf("%w: name refers to a directory", ErrUnsafePath)
	}
	return target, nil
}

// contains reports whether p is the root or a descendant of it.
func (d *Disk) contains(p string) bool {
	rel, err := filepath.Rel(d.root, p)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) && !filepath.IsAbs(rel)
}
