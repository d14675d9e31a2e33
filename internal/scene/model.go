// Package scene encodes a scene's collision, room and entrance data, either
// as O2R resources or as legacy C source with a big-endian collision blob.
package scene

import (
	"fmt"
	"strings"

	"github.com/Faultbox/z64forge/internal/asset"
	"github.com/Faultbox/z64forge/pkg/errs"
)

// Vec3s is a vector of signed 16-bit engine units.
type Vec3s [3]int16

// CollisionPoly is one collision triangle.
type CollisionPoly struct {
	Type    uint16    // index into the surface type table
	Indices [3]uint16 // vertex indices; the top three bits of the first carry flags
	Normal  Vec3s     // unit normal scaled by 0x7FFF
	Dist    int32     // plane distance from the origin along the normal
}

// SurfaceType holds the properties shared by a group of polygons.
type SurfaceType struct {
	BgCamIndex     uint8
	ExitIndex      uint8
	FloorType      uint8
	Unk18          uint8
	WallType       uint8
	FloorProperty  uint8
	IsSoft         bool
	IsHorseBlocked bool

	Material          uint8
	FloorEffect       uint8
	LightSetting      uint8
	Echo              uint8
	CanHookshot       bool
	ConveyorSpeed     uint8
	ConveyorDirection uint8
	Unk27             bool
}

// BgCamInfo is a background camera setting with optional position data.
type BgCamInfo struct {
	Setting uint16
	Data    []Vec3s
}

// WaterBox is an axis-aligned water volume.
type WaterBox struct {
	XMin, YSurface, ZMin int16
	XLength, ZLength     int16
	Properties           uint32
}

// CollisionHeader is a scene's static collision mesh.
type CollisionHeader struct {
	Name         string
	MinBounds    Vec3s
	MaxBounds    Vec3s
	Vertices     []Vec3s
	Polygons     []CollisionPoly
	SurfaceTypes []SurfaceType
	BgCams       []BgCamInfo
	WaterBoxes   []WaterBox
}

// RoomShapeType selects how a room's geometry is drawn.
type RoomShapeType uint8

// Room shape type codes.
const (
	ShapeNormal   RoomShapeType = 0
	ShapeImage    RoomShapeType = 1
	ShapeCullable RoomShapeType = 2
	ShapeNone     RoomShapeType = 3
)

// String returns the C enum name.
func (t RoomShapeType) String() string {
	switch t {
	case ShapeNormal:
		return "ROOM_SHAPE_TYPE_NORMAL"
	case ShapeImage:
		return "ROOM_SHAPE_TYPE_IMAGE"
	case ShapeCullable:
		return "ROOM_SHAPE_TYPE_CULLABLE"
	case ShapeNone:
		return "ROOM_SHAPE_TYPE_NONE"
	default:
		return fmt.Sprintf("Unknown(%d)", uint8(t))
	}
}

// ParseRoomShapeType accepts "normal", "image", "cullable", "none" or the
// C enum names.
func ParseRoomShapeType(s string) (RoomShapeType, error) {
	switch strings.TrimPrefix(strings.ToLower(s), "room_shape_type_") {
	case "", "normal":
		return ShapeNormal, nil
	case "image":
		return ShapeImage, nil
	case "cullable":
		return ShapeCullable, nil
	case "none":
		return ShapeNone, nil
	default:
		return 0, errs.Validation("scene.room", "unknown room shape type %q", s)
	}
}

// DisplayListEntry is one opaque/transparent pair of a room's geometry.
// Center and Radius bound it for cullable rooms.
type DisplayListEntry struct {
	Opaque      *asset.DisplayList
	Transparent *asset.DisplayList
	Center      Vec3s
	Radius      int16
}

// RoomShape is a room's geometry.
type RoomShape struct {
	Type    RoomShapeType
	Entries []DisplayListEntry
	Model   *asset.Model // resources the entries draw, may be nil
}

// Room is one room of a scene.
type Room struct {
	Name  string
	Shape RoomShape

	Echo             uint8
	ShowInvisActors  bool
	DisableWarpSongs bool
	EnablePosLights  bool
	EnableStorm      bool
	DisableSky       bool
	DisableSunMoon   bool
	Hour             uint8
	Minute           uint8
	TimeSpeed        uint8
}

// Spawn pairs an entrance actor with the room it starts in.
type Spawn struct {
	SpawnIndex int8
	RoomIndex  int8
}

// EntranceActor is a player start position.
type EntranceActor struct {
	ActorID int16
	Pos     Vec3s
	Rot     Vec3s
	Params  uint16
}

// CutsceneCamera is a camera path used by the scene's cutscenes.
type CutsceneCamera struct {
	Type   uint16
	Points []Vec3s
}

// SpecialFiles selects the navi hint set and global object.
type SpecialFiles struct {
	NaviHint     uint8
	GlobalObject uint16
}

// SkyboxSettings configures the sky.
type SkyboxSettings struct {
	Unknown  uint8
	SkyboxID uint8
	Weather  uint8
	Indoors  bool
}

// Scene is everything one scene export writes.
type Scene struct {
	Name      string
	Collision CollisionHeader
	Rooms     []*Room

	Spawns          []Spawn
	EntranceActors  []EntranceActor
	CutsceneCameras []CutsceneCamera
	SpecialFiles    SpecialFiles
	Skybox          SkyboxSettings
}

// New returns a scene with the settings an exported scene starts from:
// the dungeon keep as global object and an indoor sky.
func New(name string) *Scene {
	return &Scene{
		Name:         name,
		Collision:    CollisionHeader{Name: name + "_collisionHeader"},
		SpecialFiles: SpecialFiles{GlobalObject: 3},
		Skybox:       SkyboxSettings{Indoors: true},
	}
}

// RoomName returns the conventional name of room i.
func RoomName(scene string, i int) string {
	return fmt.Sprintf("%s_room_%d", strings.TrimSuffix(scene, "_scene"), i)
}
