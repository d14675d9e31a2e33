package export

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/z64forge/internal/config"
	"github.com/Faultbox/z64forge/internal/input"
	"github.com/Faultbox/z64forge/pkg/errs"
	"github.com/Faultbox/z64forge/pkg/o2r"
)

var endDL = []byte{0xDF, 0, 0, 0, 0, 0, 0, 0}

const doc = `
name: gTestSkel
vertex_groups: [root, body]
armature:
  name: Armature
  bones:
    - name: root
    - name: body
      parent: root
      mesh: bodyMesh
textures:
  - {name: tex0, file: tex.png}
materials:
  - name: mat0
    setup: {file: end.bin}
meshes:
  - name: bodyMesh
    draw: {name: bodyDL, file: end.bin}
    groups:
      - material: mat0
        tri_list: {file: end.bin}
        vertices: {file: vtx.bin}
scenes:
  - name: test_scene
    collision:
      vertices: [[0, 0, 0], [100, 0, 0], [0, 0, -100]]
      polygons:
        - indices: [0, 1, 2]
      surface_types:
        - {}
    rooms:
      - entries:
          - opaque: {file: end.bin}
        meshes: [bodyMesh]
        materials: [mat0]
        textures: [tex0]
    spawns:
      - {actor: 0, room: 0}
    entrance_actors:
      - {pos: [1, 2, 3]}
    collision_base: 4096
    segments:
      - {id: 2, start: 4096, end: 8192}
`

func writeFile(t *testing.T, path string, data []byte) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, data, 0644))
}

// setup writes the fixture document and returns an opened project plus a
// config exporting into a fresh directory.
func setup(t *testing.T, format string, text string) (*Exporter, *input.Project, string) {
	t.Helper()
	src := t.TempDir()
	img := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	img.Set(1, 1, color.NRGBA{0, 255, 0, 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))

	writeFile(t, filepath.Join(src, "tex.png"), buf.Bytes())
	writeFile(t, filepath.Join(src, "end.bin"), endDL)
	writeFile(t, filepath.Join(src, "vtx.bin"), make([]byte, 32))
	writeFile(t, filepath.Join(src, "doc.yaml"), []byte(text))

	out := t.TempDir()
	cfg := config.Default()
	cfg.Export.Root = out
	cfg.Export.Format = format

	e := New(cfg, nil)
	p, err := e.Open(filepath.Join(src, "doc.yaml"))
	require.NoError(t, err)
	t.Cleanup(func() { p.Close() })
	return e, p, out
}

func listFiles(t *testing.T, root string) []string {
	t.Helper()
	var files []string
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			rel, _ := filepath.Rel(root, path)
			files = append(files, filepath.ToSlash(rel))
		}
		return nil
	})
	require.NoError(t, err)
	return files
}

func TestSkeletonC(t *testing.T) {
	e, p, out := setup(t, config.FormatC, doc)
	report, err := e.Skeleton(p, "gTestSkel")
	require.NoError(t, err)

	assert.Equal(t, 2, report.Limbs)
	assert.ElementsMatch(t, []string{"objects/gTestSkel/gTestSkel.h", "objects/gTestSkel/gTestSkel.c"}, listFiles(t, out))

	src, err := os.ReadFile(filepath.Join(out, "objects/gTestSkel/gTestSkel.c"))
	require.NoError(t, err)
	assert.Contains(t, string(src), "gTestSkelLimbs[]")
	assert.Contains(t, string(src), "Gfx bodyDL[]")
}

func TestSkeletonO2R(t *testing.T) {
	e, p, out := setup(t, config.FormatO2R, doc)
	report, err := e.Skeleton(p, "gTestSkel")
	require.NoError(t, err)

	files := listFiles(t, out)
	assert.Contains(t, files, "objects/gTestSkel/gTestSkel")
	assert.Contains(t, files, "objects/gTestSkel/gTestSkelLimb_000")
	assert.Contains(t, files, "objects/gTestSkel/bodyDL")
	assert.Contains(t, files, "objects/gTestSkel/tex0")
	assert.Len(t, report.Files, len(files))

	data, err := os.ReadFile(filepath.Join(out, "objects/gTestSkel/gTestSkel"))
	require.NoError(t, err)
	h, err := o2r.ParseHeader(data)
	require.NoError(t, err)
	assert.Equal(t, o2r.TypeSkeleton, h.Type)
}

func TestSceneO2R(t *testing.T) {
	e, p, out := setup(t, config.FormatO2R, doc)
	_, err := e.Scene(p, "")
	require.NoError(t, err)

	files := listFiles(t, out)
	for _, want := range []string{
		"scenes/nonmq/test_scene/test_scene",
		"scenes/nonmq/test_scene/test_scene_collisionHeader",
		"scenes/nonmq/test_scene/test_room_0",
		"scenes/nonmq/test_scene/test_room_0_dl_opa_0",
		"scenes/nonmq/test_scene/bodyDL",
		"scenes/nonmq/test_scene/tex0",
	} {
		assert.Contains(t, files, want)
	}
}

func TestSceneC(t *testing.T) {
	e, p, out := setup(t, config.FormatC, doc)
	_, err := e.Scene(p, "test_scene")
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{
		"scenes/nonmq/test_scene/test_scene.h",
		"scenes/nonmq/test_scene/test_scene.c",
		"scenes/nonmq/test_scene/test_room_0.h",
		"scenes/nonmq/test_scene/test_room_0.c",
		"scenes/nonmq/test_scene/test_scene_collisionHeader.bin",
	}, listFiles(t, out))

	blob, err := os.ReadFile(filepath.Join(out, "scenes/nonmq/test_scene/test_scene_collisionHeader.bin"))
	require.NoError(t, err)
	assert.Equal(t, []byte{0x02, 0x00, 0x00, 0x2C}, blob[0x10:0x14], "vertex pointer is segmented")
}

func TestArchive(t *testing.T) {
	e, p, out := setup(t, config.FormatO2R, doc)
	e.cfg.Export.Archive = true

	report, err := e.Scene(p, "")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(out, "test_scene.o2r"), report.Archive)
	assert.Equal(t, []string{"test_scene.o2r"}, listFiles(t, out), "only the archive reaches the output")

	a, err := o2r.OpenArchive(report.Archive)
	require.NoError(t, err)
	defer a.Close()
	assert.True(t, a.Contains("scenes/nonmq/test_scene/test_room_0"))
	assert.True(t, a.Contains("scenes/nonmq/test_scene/test_scene"))
}

func TestWebPPreviews(t *testing.T) {
	e, p, out := setup(t, config.FormatO2R, doc)
	e.cfg.Export.WebPPreviews = true

	_, err := e.Skeleton(p, "gTestSkel")
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(out, "objects/gTestSkel/previews/tex0.webp"))
	require.NoError(t, err)
	assert.Equal(t, "RIFF", string(data[:4]))
	assert.Equal(t, "WEBP", string(data[8:12]))
}

func TestValidationWritesNothing(t *testing.T) {
	broken := strings.Replace(doc, "      - {actor: 0, room: 0}", "      - {actor: 0, room: 5}", 1)
	e, p, out := setup(t, config.FormatO2R, broken)

	_, err := e.Scene(p, "")
	assert.ErrorIs(t, err, errs.ErrValidation)
	assert.Empty(t, listFiles(t, out))
}

const lodArmature = `lod_armature:
  name: ArmatureLOD
  bones:
    - name: root
    - name: body
      parent: root
      mesh: bodyMesh
`

func TestSkeletonWithLOD(t *testing.T) {
	withLOD := strings.Replace(doc, "textures:\n", lodArmature+"textures:\n", 1)
	e, p, _ := setup(t, config.FormatO2R, withLOD)

	res, _, err := e.BuildSkeleton(p, "gTestSkel", false)
	require.NoError(t, err)
	assert.True(t, res.Skeleton.HasLOD)
	limbs := res.Skeleton.LimbList()
	require.Len(t, limbs, 2)
	assert.Equal(t, "bodyDL", limbs[1].LODDLName())
	assert.Equal(t, "gTestSkelLimb_001", limbs[1].Name())
}

func TestLODMismatchWritesNothing(t *testing.T) {
	withLOD := strings.Replace(doc, "textures:\n", lodArmature+"textures:\n", 1)
	mismatch := strings.Replace(withLOD,
		"      mesh: bodyMesh\nlod_armature:",
		"      mesh: bodyMesh\n    - name: tail\n      parent: body\nlod_armature:", 1)
	require.NotEqual(t, withLOD, mismatch)
	e, p, out := setup(t, config.FormatO2R, mismatch)

	_, err := e.Skeleton(p, "gTestSkel")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errs.ErrValidation))
	assert.Contains(t, err.Error(), "gTestSkel cannot use gTestSkel_lod as LOD")
	assert.Empty(t, listFiles(t, out))
}

func TestMissingResourceWritesNothing(t *testing.T) {
	broken := strings.Replace(doc, "vertices: {file: vtx.bin}", "vertices: {file: missing.bin}", 1)
	e, p, out := setup(t, config.FormatC, broken)

	_, err := e.Skeleton(p, "gTestSkel")
	assert.ErrorIs(t, err, errs.ErrResource)
	assert.Empty(t, listFiles(t, out))
}

func TestPartialWrite(t *testing.T) {
	e, p, out := setup(t, config.FormatO2R, doc)
	// A directory where the room file goes makes that write fail.
	require.NoError(t, os.MkdirAll(filepath.Join(out, "scenes/nonmq/test_scene/test_room_0"), 0755))

	report, err := e.Scene(p, "")
	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrPartialWrite)

	var pw *errs.Error
	require.ErrorAs(t, err, &pw)
	require.Len(t, pw.Written, 3)
	assert.Equal(t, report.Files, pw.Written)
	for _, f := range pw.Written {
		assert.FileExists(t, f, "written files are left in place")
	}
	assert.Equal(t, "test_scene_collisionHeader", filepath.Base(pw.Written[0]))
}

func TestOpenWithSearchArchive(t *testing.T) {
	assets := t.TempDir()
	writeFile(t, filepath.Join(assets, "shared/end.bin"), endDL)
	archive := filepath.Join(t.TempDir(), "shared.o2r")
	_, err := o2r.Pack(assets, archive)
	require.NoError(t, err)

	src := t.TempDir()
	writeFile(t, filepath.Join(src, "doc.yaml"), []byte(`
name: x
materials:
  - name: m
    setup: {file: shared/end.bin}
`))
	cfg := config.Default()
	cfg.Export.SearchPaths = []string{archive}
	p, err := New(cfg, nil).Open(filepath.Join(src, "doc.yaml"))
	require.NoError(t, err)
	defer p.Close()

	m, err := p.Model("x", nil, nil)
	require.NoError(t, err)
	assert.Len(t, m.Materials(), 1)
}
