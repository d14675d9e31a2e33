package export

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/Faultbox/z64forge/internal/asset"
	"github.com/Faultbox/z64forge/pkg/cdata"
)

// DiskSink writes emitted files below a root directory and remembers
// every file it finished, so a failed export can report what is already
// on disk.
type DiskSink struct {
	root    string
	folder  string
	log     *zap.Logger
	written []string
	dirs    map[string]bool
}

// NewDiskSink returns a sink writing resources to root/folder.
func NewDiskSink(root, folder string, log *zap.Logger) *DiskSink {
	return &DiskSink{root: root, folder: folder, log: log, dirs: make(map[string]bool)}
}

// Dir returns the directory files are written to.
func (s *DiskSink) Dir() string {
	return filepath.Join(s.root, filepath.FromSlash(s.folder))
}

// Put writes an O2R resource.
func (s *DiskSink) Put(f asset.File) error {
	return s.WriteFile(f.Name, f.Data)
}

// WriteFile writes data to name inside the sink directory.
func (s *DiskSink) WriteFile(name string, data []byte) error {
	path := filepath.Join(s.Dir(), filepath.FromSlash(name))
	if dir := filepath.Dir(path); !s.dirs[dir] {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating directory: %w", err)
		}
		s.dirs[dir] = true
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	s.written = append(s.written, path)
	s.log.Debug("wrote file", zap.String("path", path), zap.Int("bytes", len(data)))
	return nil
}

// WriteC writes name.h and name.c.
func (s *DiskSink) WriteC(name string, c *cdata.CData) error {
	if err := s.WriteFile(name+".h", []byte(c.Header.String())); err != nil {
		return err
	}
	return s.WriteFile(name+".c", []byte(c.Source.String()))
}

// Written returns the paths written so far, in order.
func (s *DiskSink) Written() []string {
	return s.written
}
