// Package input loads the host scene-graph snapshot an export reads from:
// armatures, meshes, materials, textures and scenes described in a YAML or
// TOML document, with binary payloads in files next to it.
package input

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/Faultbox/z64forge/pkg/errs"
)

// Document is the root of a snapshot document.
type Document struct {
	Name         string       `yaml:"name" toml:"name"`
	Armature     *ArmatureDoc `yaml:"armature" toml:"armature"`
	LOD          *ArmatureDoc `yaml:"lod_armature" toml:"lod_armature"`
	VertexGroups []string     `yaml:"vertex_groups" toml:"vertex_groups"`

	Textures  []TextureDoc  `yaml:"textures" toml:"textures"`
	Materials []MaterialDoc `yaml:"materials" toml:"materials"`
	Meshes    []MeshDoc     `yaml:"meshes" toml:"meshes"`
	Scenes    []SceneDoc    `yaml:"scenes" toml:"scenes"`
}

// ArmatureDoc is a bone tree.
type ArmatureDoc struct {
	Name  string    `yaml:"name" toml:"name"`
	Scale []float32 `yaml:"scale" toml:"scale"`
	Bones []BoneDoc `yaml:"bones" toml:"bones"`
}

// BoneDoc is one bone. MatrixLocal holds the rest transform as four rows;
// empty means identity.
type BoneDoc struct {
	Name        string       `yaml:"name" toml:"name"`
	Parent      string       `yaml:"parent" toml:"parent"`
	Type        string       `yaml:"type" toml:"type"`
	Deform      *bool        `yaml:"deform" toml:"deform"`
	CustomDL    string       `yaml:"custom_dl" toml:"custom_dl"`
	MatrixLocal [][4]float32 `yaml:"matrix_local" toml:"matrix_local"`
	Mesh        string       `yaml:"mesh" toml:"mesh"`
}

// DLDoc references a display list file of big-endian F3D commands.
type DLDoc struct {
	Name string   `yaml:"name" toml:"name"`
	File string   `yaml:"file" toml:"file"`
	Refs []string `yaml:"refs" toml:"refs"`
}

// TextureDoc references an image file.
type TextureDoc struct {
	Name   string `yaml:"name" toml:"name"`
	File   string `yaml:"file" toml:"file"`
	Format string `yaml:"format" toml:"format"`
}

// MaterialDoc is a material's setup and revert display lists.
type MaterialDoc struct {
	Name   string `yaml:"name" toml:"name"`
	Setup  DLDoc  `yaml:"setup" toml:"setup"`
	Revert *DLDoc `yaml:"revert" toml:"revert"`
}

// GroupDoc is one material's triangles within a mesh. Vertices references
// a file of big-endian Vtx records; without a file, Verts lists them
// inline and TextureSize scales their UVs.
type GroupDoc struct {
	Material    string      `yaml:"material" toml:"material"`
	TriList     DLDoc       `yaml:"tri_list" toml:"tri_list"`
	Vertices    DLDoc       `yaml:"vertices" toml:"vertices"`
	Verts       []VertexDoc `yaml:"verts" toml:"verts"`
	TextureSize [2]int      `yaml:"texture_size" toml:"texture_size"`
}

// VertexDoc is an inline vertex. Color defaults to opaque white.
type VertexDoc struct {
	Pos    [3]float64  `yaml:"pos" toml:"pos"`
	UV     [2]float64  `yaml:"uv" toml:"uv"`
	Normal *[3]float32 `yaml:"normal" toml:"normal"`
	Color  *[4]uint8   `yaml:"color" toml:"color"`
}

// MeshDoc is a drawable mesh.
type MeshDoc struct {
	Name    string     `yaml:"name" toml:"name"`
	Skinned bool       `yaml:"skinned" toml:"skinned"`
	Draw    DLDoc      `yaml:"draw" toml:"draw"`
	Groups  []GroupDoc `yaml:"groups" toml:"groups"`
}

// SceneDoc is one scene.
type SceneDoc struct {
	Name            string       `yaml:"name" toml:"name"`
	Collision       CollisionDoc `yaml:"collision" toml:"collision"`
	Rooms           []RoomDoc    `yaml:"rooms" toml:"rooms"`
	Spawns          []SpawnDoc   `yaml:"spawns" toml:"spawns"`
	EntranceActors  []ActorDoc   `yaml:"entrance_actors" toml:"entrance_actors"`
	CutsceneCameras []CameraDoc  `yaml:"cutscene_cameras" toml:"cutscene_cameras"`
	NaviHint        uint8        `yaml:"navi_hint" toml:"navi_hint"`
	GlobalObject    *uint16      `yaml:"global_object" toml:"global_object"`
	Skybox          SkyboxDoc    `yaml:"skybox" toml:"skybox"`

	// CollisionBase and Segments place the legacy collision blob.
	CollisionBase uint32       `yaml:"collision_base" toml:"collision_base"`
	Segments      []SegmentDoc `yaml:"segments" toml:"segments"`
}

// CollisionDoc is a scene's collision mesh.
type CollisionDoc struct {
	Vertices     [][3]int16    `yaml:"vertices" toml:"vertices"`
	Polygons     []PolygonDoc  `yaml:"polygons" toml:"polygons"`
	SurfaceTypes []SurfaceDoc  `yaml:"surface_types" toml:"surface_types"`
	Cameras      []BgCameraDoc `yaml:"cameras" toml:"cameras"`
	WaterBoxes   []WaterBoxDoc `yaml:"water_boxes" toml:"water_boxes"`
}

// PolygonDoc is a collision triangle over three vertex indices.
type PolygonDoc struct {
	Indices      [3]uint16 `yaml:"indices" toml:"indices"`
	Surface      uint16    `yaml:"surface" toml:"surface"`
	IgnoreCamera bool      `yaml:"ignore_camera" toml:"ignore_camera"`
	IgnoreActors bool      `yaml:"ignore_actors" toml:"ignore_actors"`
	Conveyor     bool      `yaml:"conveyor" toml:"conveyor"`
}

// SurfaceDoc mirrors scene.SurfaceType.
type SurfaceDoc struct {
	Camera         uint8 `yaml:"camera" toml:"camera"`
	Exit           uint8 `yaml:"exit" toml:"exit"`
	FloorType      uint8 `yaml:"floor_type" toml:"floor_type"`
	Unk18          uint8 `yaml:"unk18" toml:"unk18"`
	WallType       uint8 `yaml:"wall_type" toml:"wall_type"`
	FloorProperty  uint8 `yaml:"floor_property" toml:"floor_property"`
	IsSoft         bool  `yaml:"soft" toml:"soft"`
	IsHorseBlocked bool  `yaml:"horse_blocked" toml:"horse_blocked"`

	Material          uint8 `yaml:"material" toml:"material"`
	FloorEffect       uint8 `yaml:"floor_effect" toml:"floor_effect"`
	LightSetting      uint8 `yaml:"light_setting" toml:"light_setting"`
	Echo              uint8 `yaml:"echo" toml:"echo"`
	CanHookshot       bool  `yaml:"hookshot" toml:"hookshot"`
	ConveyorSpeed     uint8 `yaml:"conveyor_speed" toml:"conveyor_speed"`
	ConveyorDirection uint8 `yaml:"conveyor_direction" toml:"conveyor_direction"`
	Unk27             bool  `yaml:"unk27" toml:"unk27"`
}

// BgCameraDoc is a background camera.
type BgCameraDoc struct {
	Setting uint16     `yaml:"setting" toml:"setting"`
	Data    [][3]int16 `yaml:"data" toml:"data"`
}

// WaterBoxDoc is a water volume.
type WaterBoxDoc struct {
	XMin       int16  `yaml:"x_min" toml:"x_min"`
	YSurface   int16  `yaml:"y_surface" toml:"y_surface"`
	ZMin       int16  `yaml:"z_min" toml:"z_min"`
	XLength    int16  `yaml:"x_length" toml:"x_length"`
	ZLength    int16  `yaml:"z_length" toml:"z_length"`
	Properties uint32 `yaml:"properties" toml:"properties"`
}

// RoomDoc is one room. Meshes, Materials and Textures name entries of the
// document that the room's model draws.
type RoomDoc struct {
	Name      string     `yaml:"name" toml:"name"`
	Shape     string     `yaml:"shape" toml:"shape"`
	Entries   []EntryDoc `yaml:"entries" toml:"entries"`
	Meshes    []string   `yaml:"meshes" toml:"meshes"`
	Materials []string   `yaml:"materials" toml:"materials"`
	Textures  []string   `yaml:"textures" toml:"textures"`

	Echo             uint8  `yaml:"echo" toml:"echo"`
	ShowInvisActors  bool   `yaml:"show_invisible_actors" toml:"show_invisible_actors"`
	DisableWarpSongs bool   `yaml:"disable_warp_songs" toml:"disable_warp_songs"`
	EnablePosLights  bool   `yaml:"enable_pos_lights" toml:"enable_pos_lights"`
	EnableStorm      bool   `yaml:"enable_storm" toml:"enable_storm"`
	DisableSky       bool   `yaml:"disable_sky" toml:"disable_sky"`
	DisableSunMoon   bool   `yaml:"disable_sun_moon" toml:"disable_sun_moon"`
	Hour             *uint8 `yaml:"hour" toml:"hour"`
	Minute           *uint8 `yaml:"minute" toml:"minute"`
	TimeSpeed        *uint8 `yaml:"time_speed" toml:"time_speed"`
}

// EntryDoc is one display list entry of a room shape.
type EntryDoc struct {
	Opaque      *DLDoc   `yaml:"opaque" toml:"opaque"`
	Transparent *DLDoc   `yaml:"transparent" toml:"transparent"`
	Center      [3]int16 `yaml:"center" toml:"center"`
	Radius      int16    `yaml:"radius" toml:"radius"`
}

// SpawnDoc pairs an entrance actor with its room.
type SpawnDoc struct {
	Actor int8 `yaml:"actor" toml:"actor"`
	Room  int8 `yaml:"room" toml:"room"`
}

// ActorDoc is a player start position.
type ActorDoc struct {
	ActorID int16    `yaml:"actor_id" toml:"actor_id"`
	Pos     [3]int16 `yaml:"pos" toml:"pos"`
	Rot     [3]int16 `yaml:"rot" toml:"rot"`
	Params  uint16   `yaml:"params" toml:"params"`
}

// CameraDoc is a cutscene camera path.
type CameraDoc struct {
	Type   uint16     `yaml:"type" toml:"type"`
	Points [][3]int16 `yaml:"points" toml:"points"`
}

// SkyboxDoc configures the sky. Indoors defaults to true.
type SkyboxDoc struct {
	Unknown uint8 `yaml:"unknown" toml:"unknown"`
	ID      uint8 `yaml:"id" toml:"id"`
	Weather uint8 `yaml:"weather" toml:"weather"`
	Indoors *bool `yaml:"indoors" toml:"indoors"`
}

// SegmentDoc is one segment of the legacy address space.
type SegmentDoc struct {
	ID    uint8  `yaml:"id" toml:"id"`
	Start uint32 `yaml:"start" toml:"start"`
	End   uint32 `yaml:"end" toml:"end"`
}

// Format is a document encoding.
type Format int

const (
	FormatYAML Format = iota
	FormatTOML
)

func (f Format) String() string {
	if f == FormatTOML {
		return "toml"
	}
	return "yaml"
}

// FormatOf picks the document format from a file extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	default:
		return 0, errs.Validation("input", "unsupported document extension %q", filepath.Ext(path))
	}
}

// Decode parses a document. Unknown fields are rejected.
func Decode(data []byte, f Format) (*Document, error) {
	doc := &Document{}
	switch f {
	case FormatTOML:
		dec := toml.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(doc); err != nil {
			return nil, errs.Validation("input", "parsing toml: %v", err)
		}
	default:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(doc); err != nil {
			return nil, errs.Validation("input", "parsing yaml: %v", err)
		}
	}
	return doc, nil
}

// LoadDocument reads and parses the document at path.
func LoadDocument(path string) (*Document, error) {
	f, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errs.Resource("input", err, "reading document")
	}
	return Decode(data, f)
}

func (d *Document) mesh(name string) (*MeshDoc, bool) {
	for i := range d.Meshes {
		if d.Meshes[i].Name == name {
			return &d.Meshes[i], true
		}
	}
	return nil, false
}

// Scene returns the scene named name, or the only scene when name is
// empty.
func (d *Document) Scene(name string) (*SceneDoc, error) {
	if name == "" {
		if len(d.Scenes) == 1 {
			return &d.Scenes[0], nil
		}
		return nil, errs.Validation("input", "document has %d scenes, pick one by name", len(d.Scenes))
	}
	for i := range d.Scenes {
		if d.Scenes[i].Name == name {
			return &d.Scenes[i], nil
		}
	}
	return nil, errs.Validation("input", "no scene named %q", name)
}

func (d *Document) String() string {
	return fmt.Sprintf("%s (%d meshes, %d scenes)", d.Name, len(d.Meshes), len(d.Scenes))
}
