// Package export runs one export invocation: it loads and validates the
// input, builds the skeleton or scene, then writes every output file.
//
// Nothing is written until the input has been fully converted, so
// validation and resource errors leave the output directory untouched.
// A failure while writing returns an errs.PartialWrite error listing the
// files already on disk; they are not removed.
package export

import (
	"bytes"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/Faultbox/z64forge/internal/asset"
	"github.com/Faultbox/z64forge/internal/config"
	"github.com/Faultbox/z64forge/internal/input"
	"github.com/Faultbox/z64forge/internal/scene"
	"github.com/Faultbox/z64forge/internal/skeleton"
	"github.com/Faultbox/z64forge/pkg/errs"
	"github.com/Faultbox/z64forge/pkg/o2r"
)

// Report summarizes a finished export.
type Report struct {
	Name    string
	Format  string
	Files   []string // written paths, in write order
	Archive string   // .o2r path when the output was packed
	Limbs   int
}

// Exporter runs exports with one configuration.
type Exporter struct {
	cfg *config.Config
	log *zap.Logger
}

// New returns an exporter. A nil log disables logging.
func New(cfg *config.Config, log *zap.Logger) *Exporter {
	if log == nil {
		log = zap.NewNop()
	}
	return &Exporter{cfg: cfg, log: log}
}

// Open loads a document and registers the configured search paths.
// Entries ending in .o2r are opened as archives.
func (e *Exporter) Open(doc string) (*input.Project, error) {
	p, err := input.Open(doc)
	if err != nil {
		return nil, err
	}
	for _, sp := range e.cfg.Export.SearchPaths {
		if filepath.Ext(sp) == ".o2r" {
			if err := p.Files.AddArchive(sp); err != nil {
				return nil, multierr.Append(err, p.Close())
			}
			continue
		}
		p.Files.AddDir(sp)
	}
	return p, nil
}

// BuildSkeleton converts the project's armature, and its LOD armature if
// present, into a skeleton named name. The returned model holds every
// texture, material and mesh the skeleton draws.
func (e *Exporter) BuildSkeleton(p *input.Project, name string, skeletonOnly bool) (*skeleton.Result, *asset.Model, error) {
	arm, err := p.Armature()
	if err != nil {
		return nil, nil, err
	}
	var model *asset.Model
	if !skeletonOnly {
		if model, err = p.Model(name, nil, nil); err != nil {
			return nil, nil, err
		}
	}

	opts := skeleton.Options{
		Transform:    e.cfg.Matrix(),
		SkeletonOnly: skeletonOnly,
		Geometry:     p.Geometry(false),
		Model:        model,
		VertexGroups: p.Doc.VertexGroups,
	}
	res, err := skeleton.Build(arm, name, opts)
	if err != nil {
		return nil, nil, err
	}

	lodArm, err := p.LODArmature()
	if err != nil || lodArm == nil {
		return res, model, err
	}
	opts.Geometry = p.Geometry(true)
	opts.VertexGroups = nil
	lod, err := skeleton.Build(lodArm, name+"_lod", opts)
	if err != nil {
		return nil, nil, err
	}
	if err := skeleton.MergeLOD(res.Skeleton, lod.Skeleton); err != nil {
		return nil, nil, err
	}
	return res, model, nil
}

// Skeleton exports the project's armature as skeleton name.
func (e *Exporter) Skeleton(p *input.Project, name string) (*Report, error) {
	start := time.Now()
	log := e.log.With(zap.String("skeleton", name), zap.String("format", e.cfg.Export.Format))
	log.Debug("building skeleton")

	res, model, err := e.BuildSkeleton(p, name, false)
	if err != nil {
		return nil, err
	}
	skel := res.Skeleton
	folder := path.Join(e.cfg.Export.ObjectSubdir, name)

	report := &Report{Name: name, Format: e.cfg.Export.Format, Limbs: len(skel.LimbList())}
	err = e.emit(report, folder, log, func(sink *DiskSink) error {
		if e.cfg.Export.Format == config.FormatC {
			return sink.WriteC(name, skeleton.EmitC(skel, model, name))
		}
		for _, f := range skeleton.Files(skel, model, folder, name) {
			if err := sink.Put(f); err != nil {
				return err
			}
		}
		return nil
	}, model)
	if err != nil {
		return report, err
	}

	log.Info("exported skeleton",
		zap.Int("limbs", report.Limbs),
		zap.Int("files", len(report.Files)),
		zap.Duration("took", time.Since(start)))
	return report, nil
}

// Scene exports the named scene of the project, or its only scene when
// name is empty.
func (e *Exporter) Scene(p *input.Project, name string) (*Report, error) {
	start := time.Now()

	s, err := p.Scene(name)
	if err != nil {
		return nil, err
	}
	log := e.log.With(zap.String("scene", s.Name), zap.String("format", e.cfg.Export.Format))
	if err := s.Validate(); err != nil {
		return nil, err
	}

	var blob []byte
	if e.cfg.Export.Format == config.FormatC {
		table, base, err := p.Segments(s.Name)
		if err != nil {
			return nil, err
		}
		if len(table) > 0 {
			if blob, err = s.Collision.Binary(base, table); err != nil {
				return nil, err
			}
		}
	}

	var models []*asset.Model
	for _, r := range s.Rooms {
		if r.Shape.Model != nil {
			models = append(models, r.Shape.Model)
		}
	}

	folder := path.Join(e.cfg.Export.SceneSubdir, s.Name)
	report := &Report{Name: s.Name, Format: e.cfg.Export.Format}
	err = e.emit(report, folder, log, func(sink *DiskSink) error {
		if e.cfg.Export.Format == config.FormatO2R {
			return scene.NewO2RWriter(s, sink, folder, log).Run()
		}
		for _, f := range s.CFiles() {
			if err := sink.WriteC(f.Name, f.Data); err != nil {
				return err
			}
		}
		if blob != nil {
			return sink.WriteFile(s.Collision.Name+".bin", blob)
		}
		return nil
	}, models...)
	if err != nil {
		return report, err
	}

	log.Info("exported scene",
		zap.Int("rooms", len(s.Rooms)),
		zap.Int("files", len(report.Files)),
		zap.Duration("took", time.Since(start)))
	return report, nil
}

// emit runs write against a disk sink. When the output is archived the
// files go to a scratch directory first, which is packed into
// root/<name>.o2r and removed afterwards.
func (e *Exporter) emit(report *Report, folder string, log *zap.Logger, write func(*DiskSink) error, models ...*asset.Model) (err error) {
	root, err := e.cfg.RootDir()
	if err != nil {
		return err
	}

	archive := e.cfg.Export.Archive && e.cfg.Export.Format == config.FormatO2R
	outRoot := root
	if archive {
		var scratch string
		scratch, err = os.MkdirTemp("", "z64forge-"+report.Name+"-")
		if err != nil {
			return errs.Resource("export", err, "creating scratch directory")
		}
		defer func() {
			err = multierr.Append(err, os.RemoveAll(scratch))
		}()
		outRoot = scratch
	}

	sink := NewDiskSink(outRoot, folder, log)
	werr := write(sink)
	if werr == nil && e.cfg.Export.WebPPreviews {
		werr = writePreviews(sink, models)
	}
	report.Files = append([]string(nil), sink.Written()...)
	if werr != nil {
		if archive {
			// Scratch files are removed, nothing reached the output.
			return errs.PartialWrite(nil, werr)
		}
		return errs.PartialWrite(report.Files, werr)
	}

	if archive {
		dest := filepath.Join(root, report.Name+".o2r")
		if err := os.MkdirAll(root, 0755); err != nil {
			return errs.PartialWrite(nil, err)
		}
		names, err := o2r.Pack(outRoot, dest)
		if err != nil {
			return errs.PartialWrite([]string{dest}, fmt.Errorf("packing %s: %w", dest, err))
		}
		report.Archive = dest
		report.Files = []string{dest}
		log.Debug("packed archive", zap.String("path", dest), zap.Int("entries", len(names)))
	}
	return nil
}

// writePreviews writes a WebP preview of every texture under previews/.
func writePreviews(sink *DiskSink, models []*asset.Model) error {
	for _, m := range models {
		for _, t := range m.Textures() {
			var buf bytes.Buffer
			if err := t.WriteWebP(&buf); err != nil {
				return fmt.Errorf("encoding preview of %s: %w", t.Name, err)
			}
			if err := sink.WriteFile(path.Join("previews", t.Name+".webp"), buf.Bytes()); err != nil {
				return err
			}
		}
	}
	return nil
}
