package scene

import (
	"bytes"
	"errors"
	"fmt"
	"path"

	"go.uber.org/zap"

	"github.com/Faultbox/z64forge/internal/asset"
	"github.com/Faultbox/z64forge/pkg/errs"
	"github.com/Faultbox/z64forge/pkg/o2r"
)

// Scene and room header command ids.
const (
	CmdSpawnList         uint32 = 0x00
	CmdCutsceneCamera    uint32 = 0x02
	CmdCollisionHeader   uint32 = 0x03
	CmdRoomList          uint32 = 0x04
	CmdEntranceList      uint32 = 0x06
	CmdSpecialFiles      uint32 = 0x07
	CmdRoomBehavior      uint32 = 0x08
	CmdRoomShape         uint32 = 0x0A
	CmdTimeSettings      uint32 = 0x10
	CmdSkyboxSettings    uint32 = 0x11
	CmdSkyboxDisables    uint32 = 0x12
	CmdEnd               uint32 = 0x14
	CmdEchoSettings      uint32 = 0x16
	CmdActorCutsceneList uint32 = 0x1B
)

// The scene command count excludes the trailing end marker, the room
// command count includes it.
const (
	sceneCommandCount = 8
	roomCommandCount  = 6
)

// ErrState is returned when a writer step is called out of order.
var ErrState = errors.New("scene writer called out of order")

// Phase is a step of an O2R scene export.
type Phase int

const (
	PhaseInit Phase = iota
	PhaseSceneHeader
	PhaseCollision
	PhaseRoomList
	PhaseRooms
	PhaseAssets
	PhaseDone
)

func (p Phase) String() string {
	switch p {
	case PhaseInit:
		return "init"
	case PhaseSceneHeader:
		return "scene header"
	case PhaseCollision:
		return "collision"
	case PhaseRoomList:
		return "room list"
	case PhaseRooms:
		return "rooms"
	case PhaseAssets:
		return "assets"
	case PhaseDone:
		return "done"
	default:
		return fmt.Sprintf("Phase(%d)", int(p))
	}
}

// O2RWriter emits one scene as O2R resources, one step at a time:
//
//	WriteSceneHeader → WriteCollision → WriteRoomList → WriteRoom × rooms → WriteAssets
//
// Each step hands its finished files to the sink before returning, so a
// failing step leaves the files of earlier steps in place.
type O2RWriter struct {
	scene  *Scene
	sink   asset.Sink
	folder string
	log    *zap.Logger

	phase   Phase
	header  *o2r.Writer
	room    int
	written map[string][]byte
}

// NewO2RWriter returns a writer for s whose resource paths live under
// folder, e.g. "scenes/nonmq/spot00_scene". A nil log disables logging.
func NewO2RWriter(s *Scene, sink asset.Sink, folder string, log *zap.Logger) *O2RWriter {
	if log == nil {
		log = zap.NewNop()
	}
	return &O2RWriter{
		scene:   s,
		sink:    sink,
		folder:  folder,
		log:     log.With(zap.String("scene", s.Name)),
		written: make(map[string][]byte),
	}
}

// Phase returns the last completed step.
func (w *O2RWriter) Phase() Phase {
	return w.phase
}

func (w *O2RWriter) advance(from, to Phase) error {
	if w.phase != from {
		return fmt.Errorf("%w: %s after %s", ErrState, to, w.phase)
	}
	w.phase = to
	w.log.Debug("scene phase", zap.Stringer("phase", to))
	return nil
}

// put hands f to the sink once. A second file under the same name must
// carry the same bytes.
func (w *O2RWriter) put(f asset.File) error {
	if prev, ok := w.written[f.Name]; ok {
		if !bytes.Equal(prev, f.Data) {
			return errs.Validation("scene.o2r", "resource %s written twice with different content", f.Name)
		}
		return nil
	}
	if err := w.sink.Put(f); err != nil {
		return err
	}
	w.written[f.Name] = f.Data
	return nil
}

func (w *O2RWriter) resourcePath(name string) string {
	return path.Join(w.folder, name)
}

// WriteSceneHeader starts the scene resource with its command count and
// collision header reference.
func (w *O2RWriter) WriteSceneHeader() error {
	if err := w.advance(PhaseInit, PhaseSceneHeader); err != nil {
		return err
	}
	w.header = o2r.NewWriter(o2r.TypeRoom)
	w.header.U32(sceneCommandCount)
	w.header.U32(CmdCollisionHeader)
	w.header.String(w.resourcePath(w.scene.Collision.Name))
	return nil
}

// WriteCollision emits the collision resource.
func (w *O2RWriter) WriteCollision() error {
	if err := w.advance(PhaseSceneHeader, PhaseCollision); err != nil {
		return err
	}
	col := &w.scene.Collision
	return w.put(asset.File{Name: col.Name, Type: o2r.TypeCollision, Data: col.O2R()})
}

// WriteRoomList finishes the scene resource with the room list and the
// remaining scene commands, then emits it.
func (w *O2RWriter) WriteRoomList() error {
	if err := w.advance(PhaseCollision, PhaseRoomList); err != nil {
		return err
	}
	s, h := w.scene, w.header

	h.U32(CmdRoomList)
	h.U32(uint32(len(s.Rooms)))
	for _, r := range s.Rooms {
		h.String(w.resourcePath(r.Name))
		h.U32(0)
		h.U32(0)
	}

	h.U32(CmdActorCutsceneList)
	h.U32(0)

	h.U32(CmdCutsceneCamera)
	h.U32(uint32(len(s.CutsceneCameras)))
	for _, c := range s.CutsceneCameras {
		h.U16(c.Type)
		h.U16(uint16(len(c.Points)))
		for _, p := range c.Points {
			writeVec3s(h, p)
		}
	}

	h.U32(CmdSpecialFiles)
	h.U8(s.SpecialFiles.NaviHint)
	h.U16(s.SpecialFiles.GlobalObject)

	h.U32(CmdSkyboxSettings)
	h.U8(s.Skybox.Unknown)
	h.U8(s.Skybox.SkyboxID)
	h.U8(s.Skybox.Weather)
	h.Bool(s.Skybox.Indoors)

	h.U32(CmdEntranceList)
	h.U32(uint32(len(s.Spawns)))
	for _, sp := range s.Spawns {
		h.I8(sp.SpawnIndex)
		h.I8(sp.RoomIndex)
	}

	h.U32(CmdSpawnList)
	h.U32(uint32(len(s.EntranceActors)))
	for _, a := range s.EntranceActors {
		h.I16(a.ActorID)
		writeVec3s(h, a.Pos)
		writeVec3s(h, a.Rot)
		h.U16(a.Params)
	}

	h.U32(CmdEnd)
	w.header = nil
	return w.put(asset.File{Name: s.Name, Type: o2r.TypeRoom, Data: h.Bytes()})
}

// WriteRoom emits the next room's display list entries and its resource.
// It is called once per room, in order.
func (w *O2RWriter) WriteRoom() error {
	switch {
	case w.phase == PhaseRoomList:
		w.phase = PhaseRooms
		w.log.Debug("scene phase", zap.Stringer("phase", PhaseRooms))
	case w.phase != PhaseRooms:
		return fmt.Errorf("%w: room after %s", ErrState, w.phase)
	}
	if w.room >= len(w.scene.Rooms) {
		return fmt.Errorf("%w: all %d rooms already written", ErrState, len(w.scene.Rooms))
	}
	r := w.scene.Rooms[w.room]
	w.room++

	rw := o2r.NewWriter(o2r.TypeRoom)
	rw.U32(roomCommandCount)

	rw.U32(CmdRoomShape)
	rw.U8(1)
	rw.U8(uint8(r.Shape.Type))
	rw.U8(uint8(len(r.Shape.Entries)))
	for _, e := range r.Shape.Entries {
		if r.Shape.Type == ShapeCullable {
			rw.U8(uint8(r.Shape.Type))
			writeVec3s(rw, e.Center)
			rw.I16(e.Radius)
		}
		for _, dl := range [2]*asset.DisplayList{e.Opaque, e.Transparent} {
			if dl == nil {
				rw.U32(0)
				continue
			}
			rw.String(w.resourcePath(dl.Name))
			if dl.Data == nil {
				continue
			}
			if err := w.put(asset.File{Name: dl.Name, Type: o2r.TypeDisplayList, Data: dl.O2R(w.folder)}); err != nil {
				return err
			}
		}
	}

	rw.U32(CmdEchoSettings)
	rw.U8(r.Echo)

	rw.U32(CmdRoomBehavior)
	rw.U8(0)
	rw.U8(0)
	rw.Bool(r.ShowInvisActors)
	rw.Bool(r.DisableWarpSongs)
	rw.Bool(r.EnablePosLights)
	rw.Bool(r.EnableStorm)

	rw.U32(CmdSkyboxDisables)
	rw.Bool(r.DisableSky)
	rw.Bool(r.DisableSunMoon)

	rw.U32(CmdTimeSettings)
	rw.U8(r.Hour)
	rw.U8(r.Minute)
	rw.U8(r.TimeSpeed)

	rw.U32(CmdEnd)
	return w.put(asset.File{Name: r.Name, Type: o2r.TypeRoom, Data: rw.Bytes()})
}

// WriteAssets emits the textures, materials and meshes of every room's
// model, in room order. Resources shared by rooms are written once. A
// scene without rooms goes straight from the room list to its assets.
func (w *O2RWriter) WriteAssets() error {
	if (w.phase != PhaseRooms && w.phase != PhaseRoomList) || w.room != len(w.scene.Rooms) {
		return fmt.Errorf("%w: assets after %s with %d/%d rooms", ErrState, w.phase, w.room, len(w.scene.Rooms))
	}
	w.phase = PhaseAssets
	w.log.Debug("scene phase", zap.Stringer("phase", PhaseAssets))

	for _, r := range w.scene.Rooms {
		if r.Shape.Model == nil {
			continue
		}
		for _, f := range r.Shape.Model.Files(w.folder) {
			if err := w.put(f); err != nil {
				return err
			}
		}
	}
	w.phase = PhaseDone
	return nil
}

// Run performs every step in order.
func (w *O2RWriter) Run() error {
	steps := []func() error{w.WriteSceneHeader, w.WriteCollision, w.WriteRoomList}
	for range w.scene.Rooms {
		steps = append(steps, w.WriteRoom)
	}
	steps = append(steps, w.WriteAssets)
	for _, step := range steps {
		if err := step(); err != nil {
			return err
		}
	}
	return nil
}

// WriteO2R validates s and emits all of its O2R resources to sink.
func WriteO2R(s *Scene, sink asset.Sink, folder string, log *zap.Logger) error {
	if err := s.Validate(); err != nil {
		return err
	}
	return NewO2RWriter(s, sink, folder, log).Run()
}
