// Package resource owns an unpacked FMU directory on disk. A Resource is
// shared across every Instance born from the same FMU: the last holder to
// release it deletes the directory.
package resource

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/containerd/log"
	"github.com/klauspost/compress/flate"

	"github.com/fmi4go/fmi2/internal/fmierr"
)

// Resource is the unpacked contents of an FMU package: an absolute directory
// path plus a refcounted drop-on-zero teardown. The zero value is not usable;
// construct with Open.
type Resource struct {
	dir      string
	refcount int32

	mu        sync.Mutex
	released  bool
	onRelease func()
}

// Open unpacks fmuFile (a zip archive) into a fresh temporary directory and
// returns a Resource holding one reference. Callers must call Release when
// done with their reference.
func Open(fmuFile string) (*Resource, error) {
	r, err := zip.OpenReader(fmuFile)
	if err != nil {
		return nil, fmierr.NewPackageError("resource.Open", fmt.Errorf("open %s: %w", fmuFile, err))
	}
	defer r.Close()
	// Swap the stdlib's inflate implementation for klauspost's faster one on
	// this reader; archive/zip already registers Deflate globally, so the
	// package-level RegisterDecompressor would panic.
	r.RegisterDecompressor(zip.Deflate, func(in io.Reader) io.ReadCloser {
		return flate.NewReader(in)
	})

	dir, err := os.MkdirTemp("", "fmi-*")
	if err != nil {
		return nil, fmierr.NewPackageError("resource.Open", fmt.Errorf("create unpack dir: %w", err))
	}

	if err := extractAll(dir, &r.Reader); err != nil {
		os.RemoveAll(dir)
		return nil, fmierr.NewPackageError("resource.Open", fmt.Errorf("extract %s: %w", fmuFile, err))
	}
	log.L.WithField("fmu", fmuFile).WithField("dir", dir).Debug("unpacked fmu")

	return &Resource{dir: dir, refcount: 1}, nil
}

func extractAll(dir string, zr *zip.Reader) error {
	for _, f := range zr.File {
		target := filepath.Join(dir, filepath.FromSlash(f.Name))
		if !withinDir(dir, target) {
			return fmt.Errorf("zip entry %q escapes unpack directory", f.Name)
		}

		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0o755); err != nil {
				return err
			}
			continue
		}

		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return err
		}

		if err := extractFile(target, f); err != nil {
			return err
		}
	}
	return nil
}

func extractFile(target string, f *zip.File) error {
	src, err := f.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	dst, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, f.Mode())
	if err != nil {
		return err
	}
	defer dst.Close()

	_, err = io.Copy(dst, src)
	return err
}

func withinDir(dir, target string) bool {
	rel, err := filepath.Rel(dir, target)
	if err != nil {
		return false
	}
	return filepath.IsLocal(rel)
}

// Directory returns the absolute path of the unpacked FMU contents.
func (r *Resource) Directory() string { return r.dir }

// Acquire adds one reference to the Resource and returns it, for callers
// sharing a Resource across multiple Instances of the same FMU.
func (r *Resource) Acquire() *Resource {
	atomic.AddInt32(&r.refcount, 1)
	return r
}

// OnRelease registers a callback invoked exactly once, after the directory
// has actually been removed (not merely when one holder calls Release).
// Intended for test assertions of "the directory exists iff a holder is
// alive" (testable property 4).
func (r *Resource) OnRelease(fn func()) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onRelease = fn
}

// Release drops one reference. When the last reference is dropped, the
// unpacked directory is removed recursively.
func (r *Resource) Release() error {
	if atomic.AddInt32(&r.refcount, -1) > 0 {
		return nil
	}

	err := os.RemoveAll(r.dir)
	log.L.WithField("dir", r.dir).Debug("removed unpacked fmu")

	r.mu.Lock()
	r.released = true
	cb := r.onRelease
	r.mu.Unlock()
	if cb != nil {
		cb()
	}

	if err != nil {
		return fmierr.NewPackageError("resource.Release", err)
	}
	return nil
}

// Alive reports whether the directory is still present (i.e. at least one
// reference remains outstanding). Intended for tests only.
func (r *Resource) Alive() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return !r.released
}
