package scene

import (
	"fmt"
	"strings"

	"github.com/Faultbox/z64forge/internal/asset"
	"github.com/Faultbox/z64forge/pkg/cdata"
)

// CIncludes are the headers every scene and room header pulls in.
var CIncludes = []string{"ultra64.h", "z64.h", "macros.h"}

// CFile is a named C header/source pair.
type CFile struct {
	Name string // base file name without extension
	Data *cdata.CData
}

func cbool(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

func vec3s(v Vec3s) string {
	return fmt.Sprintf("{ %d, %d, %d }", v[0], v[1], v[2])
}

// guarded wraps body's header in an include guard and prefixes the
// source with the header's include.
func guarded(name string, body *cdata.CData) *cdata.CData {
	h := strings.Builder{}
	for _, inc := range CIncludes {
		fmt.Fprintf(&h, "#include \"%s\"\n", inc)
	}
	h.WriteString("\n")
	h.WriteString(body.Header.String())

	out := cdata.New()
	out.Headerf("%s", cdata.Guarded(name, h.String()))
	out.Sourcef("%s\n%s", cdata.Include(name+".h"), body.Source.String())
	return out
}

// CFiles renders the scene and each of its rooms as C.
func (s *Scene) CFiles() []CFile {
	files := []CFile{{Name: s.Name, Data: guarded(s.Name, s.sceneC())}}
	for _, r := range s.Rooms {
		files = append(files, CFile{Name: r.Name, Data: guarded(r.Name, r.C())})
	}
	return files
}

func (s *Scene) sceneC() *cdata.CData {
	c := cdata.New()
	hdr := s.Name + "_header00"
	roomList := s.Name + "_roomList"
	spawnList := s.Name + "_playerEntryList"
	entranceList := s.Name + "_entranceList"

	c.Headerf("extern SceneCmd %s[];\n", hdr)
	c.Sourcef("SceneCmd %s[] = {\n", hdr)
	c.Sourcef("\tSCENE_CMD_COL_HEADER(&%s),\n", s.Collision.Name)
	c.Sourcef("\tSCENE_CMD_ROOM_LIST(%d, %s),\n", len(s.Rooms), roomList)
	if len(s.CutsceneCameras) > 0 {
		c.Sourcef("\tSCENE_CMD_ACTOR_CUTSCENE_CAM_LIST(%d, %s_csCameraList),\n", len(s.CutsceneCameras), s.Name)
	}
	c.Sourcef("\tSCENE_CMD_SPECIAL_FILES(0x%02X, 0x%04X),\n", s.SpecialFiles.NaviHint, s.SpecialFiles.GlobalObject)
	c.Sourcef("\tSCENE_CMD_SKYBOX_SETTINGS(0x%02X, 0x%02X, %s),\n", s.Skybox.SkyboxID, s.Skybox.Weather, cbool(s.Skybox.Indoors))
	if len(s.Spawns) > 0 {
		c.Sourcef("\tSCENE_CMD_ENTRANCE_LIST(%s),\n", entranceList)
		c.Sourcef("\tSCENE_CMD_SPAWN_LIST(%d, %s),\n", len(s.EntranceActors), spawnList)
	}
	c.Sourcef("\tSCENE_CMD_END(),\n};\n\n")

	c.Headerf("extern RomFile %s[];\n", roomList)
	c.Sourcef("RomFile %s[] = {\n", roomList)
	for _, r := range s.Rooms {
		c.Sourcef("\tROM_FILE(%s),\n", r.Name)
	}
	c.Sourcef("};\n\n")

	if len(s.EntranceActors) > 0 {
		c.Headerf("extern ActorEntry %s[];\n", spawnList)
		c.Sourcef("ActorEntry %s[] = {\n", spawnList)
		for _, a := range s.EntranceActors {
			c.Sourcef("\t{ 0x%04X, %s, %s, 0x%04X },\n", uint16(a.ActorID), vec3s(a.Pos), vec3s(a.Rot), a.Params)
		}
		c.Sourcef("};\n\n")

		c.Headerf("extern Spawn %s[];\n", entranceList)
		c.Sourcef("Spawn %s[] = {\n", entranceList)
		for _, sp := range s.Spawns {
			c.Sourcef("\t{ %d, %d },\n", sp.SpawnIndex, sp.RoomIndex)
		}
		c.Sourcef("};\n\n")
	}

	for i, cam := range s.CutsceneCameras {
		name := fmt.Sprintf("%s_csCameraPoints_%d", s.Name, i)
		c.Headerf("extern Vec3s %s[];\n", name)
		c.Sourcef("Vec3s %s[] = {\n", name)
		for _, p := range cam.Points {
			c.Sourcef("\t%s,\n", vec3s(p))
		}
		c.Sourcef("};\n\n")
	}
	if len(s.CutsceneCameras) > 0 {
		c.Headerf("extern CutsceneCameraEntry %s_csCameraList[];\n", s.Name)
		c.Sourcef("CutsceneCameraEntry %s_csCameraList[] = {\n", s.Name)
		for i, cam := range s.CutsceneCameras {
			c.Sourcef("\t{ %d, %d, %s_csCameraPoints_%d },\n", cam.Type, len(cam.Points), s.Name, i)
		}
		c.Sourcef("};\n\n")
	}

	c.Append(s.Collision.C(s.Name))
	return c
}

// C renders the collision arrays and header. prefix names the arrays.
func (h *CollisionHeader) C(prefix string) *cdata.CData {
	c := cdata.New()
	vertices := prefix + "_vertices"
	polys := prefix + "_polygons"
	types := prefix + "_polygonTypes"
	cams := prefix + "_bgCamInfo"
	camData := prefix + "_camData"
	water := prefix + "_waterBoxes"

	c.Headerf("extern SurfaceType %s[];\n", types)
	c.Sourcef("SurfaceType %s[] = {\n", types)
	for _, st := range h.SurfaceTypes {
		w0, w1 := st.Words()
		c.Sourcef("\t{ 0x%08X, 0x%08X },\n", w0, w1)
	}
	c.Sourcef("};\n\n")

	c.Headerf("extern CollisionPoly %s[];\n", polys)
	c.Sourcef("CollisionPoly %s[] = {\n", polys)
	for _, p := range h.Polygons {
		c.Sourcef("\t{ 0x%04X, 0x%04X, 0x%04X, 0x%04X, %s, 0x%04X },\n",
			p.Type, p.Indices[0], p.Indices[1], p.Indices[2], vec3s(p.Normal), uint16(clampS16(p.Dist)))
	}
	c.Sourcef("};\n\n")

	idx, data := h.camDataIndices()
	if len(data) > 0 {
		c.Headerf("extern Vec3s %s[];\n", camData)
		c.Sourcef("Vec3s %s[] = {\n", camData)
		for _, v := range data {
			c.Sourcef("\t%s,\n", vec3s(v))
		}
		c.Sourcef("};\n\n")
	}
	if len(h.BgCams) > 0 {
		c.Headerf("extern BgCamInfo %s[];\n", cams)
		c.Sourcef("BgCamInfo %s[] = {\n", cams)
		for i, cam := range h.BgCams {
			ptr := "NULL"
			if len(cam.Data) > 0 {
				ptr = fmt.Sprintf("&%s[%d]", camData, idx[i])
			}
			c.Sourcef("\t{ 0x%04X, %d, %s },\n", cam.Setting, len(cam.Data), ptr)
		}
		c.Sourcef("};\n\n")
	}

	if len(h.WaterBoxes) > 0 {
		c.Headerf("extern WaterBox %s[];\n", water)
		c.Sourcef("WaterBox %s[] = {\n", water)
		for _, wb := range h.WaterBoxes {
			c.Sourcef("\t{ %d, %d, %d, %d, %d, 0x%08X },\n", wb.XMin, wb.YSurface, wb.ZMin, wb.XLength, wb.ZLength, wb.Properties)
		}
		c.Sourcef("};\n\n")
	}

	c.Headerf("extern Vec3s %s[%d];\n", vertices, len(h.Vertices))
	c.Sourcef("Vec3s %s[%d] = {\n", vertices, len(h.Vertices))
	for _, v := range h.Vertices {
		c.Sourcef("\t%s,\n", vec3s(v))
	}
	c.Sourcef("};\n\n")

	orNull := func(n int, name string) string {
		if n == 0 {
			return "NULL"
		}
		return name
	}
	c.Headerf("extern CollisionHeader %s;\n", h.Name)
	c.Sourcef("CollisionHeader %s = {\n", h.Name)
	c.Sourcef("\t%s,\n\t%s,\n", vec3s(h.MinBounds), vec3s(h.MaxBounds))
	c.Sourcef("\t%d,\n\t%s,\n", len(h.Vertices), vertices)
	c.Sourcef("\t%d,\n\t%s,\n", len(h.Polygons), polys)
	c.Sourcef("\t%s,\n", types)
	c.Sourcef("\t%s,\n", orNull(len(h.BgCams), cams))
	c.Sourcef("\t%d,\n\t%s\n};\n\n", len(h.WaterBoxes), orNull(len(h.WaterBoxes), water))
	return c
}

func clampS16(v int32) int16 {
	return int16(min(max(v, -0x8000), 0x7FFF))
}

func dlRef(dl *asset.DisplayList) string {
	if dl == nil {
		return "NULL"
	}
	return dl.Name
}

// C renders the room header, its shape and its model.
func (r *Room) C() *cdata.CData {
	c := cdata.New()
	hdr := r.Name + "_header00"
	shape := r.Name + "_shapeHeader"
	entries := r.Name + "_shapeDListEntry"

	c.Headerf("extern SceneCmd %s[];\n", hdr)
	c.Sourcef("SceneCmd %s[] = {\n", hdr)
	c.Sourcef("\tSCENE_CMD_ECHO_SETTINGS(0x%02X),\n", r.Echo)
	c.Sourcef("\tSCENE_CMD_ROOM_BEHAVIOR(0x00, 0x00, %s, %s),\n", cbool(r.ShowInvisActors), cbool(r.DisableWarpSongs))
	c.Sourcef("\tSCENE_CMD_SKYBOX_DISABLES(%s, %s),\n", cbool(r.DisableSky), cbool(r.DisableSunMoon))
	c.Sourcef("\tSCENE_CMD_TIME_SETTINGS(0x%02X, 0x%02X, %d),\n", r.Hour, r.Minute, r.TimeSpeed)
	c.Sourcef("\tSCENE_CMD_ROOM_SHAPE(&%s),\n", shape)
	c.Sourcef("\tSCENE_CMD_END(),\n};\n\n")

	if r.Shape.Model != nil {
		c.Append(r.Shape.Model.C())
	}

	n := len(r.Shape.Entries)
	switch r.Shape.Type {
	case ShapeCullable:
		c.Headerf("extern RoomShapeCullableEntry %s[%d];\n", entries, n)
		c.Sourcef("RoomShapeCullableEntry %s[%d] = {\n", entries, n)
		for _, e := range r.Shape.Entries {
			c.Sourcef("\t{ %s, %d, %s, %s },\n", vec3s(e.Center), e.Radius, dlRef(e.Opaque), dlRef(e.Transparent))
		}
		c.Sourcef("};\n\n")
		c.Headerf("extern RoomShapeCullable %s;\n", shape)
		c.Sourcef("RoomShapeCullable %s = {\n\t%s,\n\tARRAY_COUNT(%s),\n\t%s,\n\t%s + ARRAY_COUNT(%s)\n};\n\n",
			shape, ShapeCullable, entries, entries, entries, entries)
	case ShapeImage:
		writeDListEntries(c, entries, r.Shape.Entries)
		c.Headerf("extern RoomShapeImageSingle %s;\n", shape)
		c.Sourcef("RoomShapeImageSingle %s = {\n\t{ %s, ROOM_SHAPE_IMAGE_AMOUNT_SINGLE, %s },\n\tNULL, 0, NULL, 0, 0, 0, 0, 0, 0\n};\n\n",
			shape, ShapeImage, entries)
	default:
		if n == 0 {
			c.Headerf("extern RoomShapeNormal %s;\n", shape)
			c.Sourcef("RoomShapeNormal %s = { %s, 0, NULL, NULL };\n\n", shape, r.Shape.Type)
			break
		}
		writeDListEntries(c, entries, r.Shape.Entries)
		c.Headerf("extern RoomShapeNormal %s;\n", shape)
		c.Sourcef("RoomShapeNormal %s = {\n\t%s,\n\tARRAY_COUNT(%s),\n\t%s,\n\t%s + ARRAY_COUNT(%s)\n};\n\n",
			shape, r.Shape.Type, entries, entries, entries, entries)
	}
	return c
}

func writeDListEntries(c *cdata.CData, name string, entries []DisplayListEntry) {
	c.Headerf("extern RoomShapeDListsEntry %s[%d];\n", name, len(entries))
	c.Sourcef("RoomShapeDListsEntry %s[%d] = {\n", name, len(entries))
	for _, e := range entries {
		c.Sourcef("\t{ %s, %s },\n", dlRef(e.Opaque), dlRef(e.Transparent))
	}
	c.Sourcef("};\n\n")
}
