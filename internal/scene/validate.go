package scene

import (
	"fmt"

	"go.uber.org/multierr"

	"github.com/Faultbox/z64forge/pkg/errs"
)

// Validate checks the scene for structural problems before anything is
// written. All problems found are reported together.
func (s *Scene) Validate() error {
	var err error
	fail := func(format string, args ...any) {
		err = multierr.Append(err, fmt.Errorf(format, args...))
	}

	if s.Name == "" {
		fail("scene has no name")
	}
	if len(s.Rooms) == 0 {
		fail("scene %q has no rooms", s.Name)
	}
	if len(s.Spawns) != len(s.EntranceActors) {
		fail("%d spawns but %d entrance actors", len(s.Spawns), len(s.EntranceActors))
	}
	for i, sp := range s.Spawns {
		if int(sp.RoomIndex) < 0 || int(sp.RoomIndex) >= len(s.Rooms) {
			fail("spawn %d: room index %d out of range (%d rooms)", i, sp.RoomIndex, len(s.Rooms))
		}
		if int(sp.SpawnIndex) < 0 || int(sp.SpawnIndex) >= len(s.EntranceActors) {
			fail("spawn %d: entrance actor index %d out of range (%d actors)", i, sp.SpawnIndex, len(s.EntranceActors))
		}
	}

	for i, r := range s.Rooms {
		if r == nil {
			fail("room %d is nil", i)
			continue
		}
		if r.Hour > 23 && r.Hour != 0xFF {
			fail("room %d: hour %d out of range", i, r.Hour)
		}
		if r.Minute > 59 && r.Minute != 0xFF {
			fail("room %d: minute %d out of range", i, r.Minute)
		}
		switch r.Shape.Type {
		case ShapeNormal, ShapeImage, ShapeCullable, ShapeNone:
		default:
			fail("room %d: unknown shape type %d", i, r.Shape.Type)
		}
		if r.Shape.Type == ShapeCullable {
			for j, e := range r.Shape.Entries {
				if e.Opaque == nil && e.Transparent == nil {
					fail("room %d: cullable entry %d has no display list", i, j)
				}
			}
		}
		if len(r.Shape.Entries) > 0xFF {
			fail("room %d: %d display list entries exceed 255", i, len(r.Shape.Entries))
		}
	}

	col := &s.Collision
	for i, p := range col.Polygons {
		for _, idx := range p.Indices {
			if int(idx&PolyIndexMask) >= len(col.Vertices) {
				fail("polygon %d: vertex index %d out of range (%d vertices)", i, idx&PolyIndexMask, len(col.Vertices))
			}
		}
		if int(p.Type) >= len(col.SurfaceTypes) {
			fail("polygon %d: surface type %d out of range (%d types)", i, p.Type, len(col.SurfaceTypes))
		}
	}
	for i, st := range col.SurfaceTypes {
		if len(col.BgCams) > 0 && int(st.BgCamIndex) >= len(col.BgCams) {
			fail("surface type %d: camera index %d out of range (%d cameras)", i, st.BgCamIndex, len(col.BgCams))
		}
	}

	if err != nil {
		return &errs.Error{Kind: errs.KindValidation, Op: "scene.validate", Msg: s.Name, Err: err}
	}
	return nil
}
