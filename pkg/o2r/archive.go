package o2r

import (
	"archive/zip"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/multierr"
)

// Archive is an opened .o2r archive: a zip file whose entries are
// resources addressed by forward-slash paths.
type Archive struct {
	zr       *zip.ReadCloser
	fileList map[string]*zip.File
}

// OpenArchive opens a .o2r archive for reading.
func OpenArchive(path string) (*Archive, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("opening archive: %w", err)
	}

	a := &Archive{
		zr:       zr,
		fileList: make(map[string]*zip.File, len(zr.File)),
	}
	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		a.fileList[normalizePath(f.Name)] = f
	}
	return a, nil
}

// Close closes the archive.
func (a *Archive) Close() error {
	if a.zr != nil {
		return a.zr.Close()
	}
	return nil
}

// List returns all resource paths in the archive, sorted.
func (a *Archive) List() []string {
	result := make([]string, 0, len(a.fileList))
	for path := range a.fileList {
		result = append(result, path)
	}
	sort.Strings(result)
	return result
}

// Contains checks if a resource exists.
func (a *Archive) Contains(path string) bool {
	_, ok := a.fileList[normalizePath(path)]
	return ok
}

// Read reads a resource from the archive.
func (a *Archive) Read(path string) ([]byte, error) {
	f, ok := a.fileList[normalizePath(path)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", fs.ErrNotExist, path)
	}
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

// Pack writes every file under dir into a new archive at dest. Entry names
// are the slash-separated paths relative to dir. It returns the packed
// entry names in walk order.
func Pack(dir, dest string) (names []string, err error) {
	out, err := os.Create(dest)
	if err != nil {
		return nil, fmt.Errorf("creating archive: %w", err)
	}
	zw := zip.NewWriter(out)
	defer func() {
		err = multierr.Combine(err, zw.Close(), out.Close())
	}()

	absDest, _ := filepath.Abs(dest)
	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			return nil
		}
		if abs, _ := filepath.Abs(path); abs == absDest {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		name := filepath.ToSlash(rel)

		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		w, err := zw.Create(name)
		if err != nil {
			return err
		}
		if _, err := w.Write(data); err != nil {
			return err
		}
		names = append(names, name)
		return nil
	})
	return names, err
}

func normalizePath(path string) string {
	path = strings.ReplaceAll(path, "\\", "/")
	return strings.TrimPrefix(path, "/")
}
