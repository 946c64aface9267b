package scene_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/mapforge/internal/object"
	"github.com/cory-johannsen/mapforge/internal/scene"
	"github.com/cory-johannsen/mapforge/internal/terrain"
)

func ref(s string) *string { return &s }

func TestResourceTableFirstUseOrder(t *testing.T) {
	table := scene.NewResourceTable()
	assert.Equal(t, 1, table.Ref("res://a.scn", "PackedScene"))
	assert.Equal(t, 2, table.Ref("res://b.scn", "PackedScene"))
	assert.Equal(t, 1, table.Ref("res://a.scn", "PackedScene"))
	assert.Equal(t, 3, table.Ref("res://c.scn", "PackedScene"))

	resources := table.Resources()
	require.Len(t, resources, 3)
	assert.Equal(t, "res://a.scn", resources[0].Path)
	assert.Equal(t, "res://b.scn", resources[1].Path)
	assert.Equal(t, "res://c.scn", resources[2].Path)
	for i, r := range resources {
		assert.Equal(t, i+1, r.ID)
	}
}

func TestTransformRoundTrip(t *testing.T) {
	tr := scene.TransformFrom(object.Rotation{Pitch: 10, Yaw: 135, Roll: -5}, [3]float64{12.5, 48.25, -300})
	parsed, err := scene.ParseTransform(tr.String())
	require.NoError(t, err)
	for i := range tr.Basis {
		assert.InDelta(t, tr.Basis[i], parsed.Basis[i], 1e-9)
	}
	for i := range tr.Origin {
		assert.InDelta(t, tr.Origin[i], parsed.Origin[i], 1e-9)
	}
}

func TestBuildSpawnAttachment(t *testing.T) {
	cp := &object.ParsedObject{
		TypeName: "Village Flag",
		Category: object.CategoryControlPoint,
		Position: [3]float64{100, 0, 100},
	}
	objects := []*object.ParsedObject{
		cp,
		// Within the attach radius of the control point.
		{TypeName: "village_spawnpoint_1", TemplateClass: "SpawnPoint", Team: 1, Position: [3]float64{110, 0, 105}},
		{TypeName: "village_spawnpoint_2", TemplateClass: "SpawnPoint", Team: 2, Position: [3]float64{95, 0, 90}},
		// Far from any control point, so it lands under its team HQ.
		{TypeName: "base_spawnpoint_1", TemplateClass: "SpawnPoint", Team: 1, Position: [3]float64{900, 0, 900}},
	}

	doc, warnings := scene.Build(objects, scene.BuildOptions{
		Bounds: terrain.Bounds{MinX: 0, MaxX: 1024, MinZ: 0, MaxZ: 1024},
	})
	assert.Contains(t, warnings, "team 2 has no HQ spawn points")

	cpNode, ok := doc.FindNode("CapturePoint_village_flag")
	require.True(t, ok)
	assert.Equal(t, "Node3D", cpNode.Type)
	children := doc.ChildrenOf("CapturePoint_village_flag")
	require.Len(t, children, 3)
	assert.Equal(t, "CaptureZone", children[0].Name)
	assert.Equal(t, "Spawn_T1_1", children[1].Name)
	assert.Equal(t, "Spawn_T2_1", children[2].Name)

	_, ok = doc.FindNode("HQ_Team1/Spawn_1")
	assert.True(t, ok)
	_, ok = doc.FindNode("HQ_Team2")
	assert.False(t, ok)
}

func TestBuildSharedResourcesKeepOneID(t *testing.T) {
	objects := []*object.ParsedObject{
		{TypeName: "Oak1", Category: object.CategoryStaticDecoration, ResolvedTargetType: ref("res://trees/oak.scn")},
		{TypeName: "Birch1", Category: object.CategoryStaticDecoration, ResolvedTargetType: ref("res://trees/birch.scn")},
		{TypeName: "Oak2", Category: object.CategoryStaticDecoration, ResolvedTargetType: ref("res://trees/oak.scn")},
	}
	doc, _ := scene.Build(objects, scene.BuildOptions{})
	assert.Equal(t, 2, doc.Table.Len())

	children := doc.ChildrenOf("Decorations")
	require.Len(t, children, 3)
	assert.Equal(t, children[0].Resource, children[2].Resource)
	assert.NotEqual(t, children[0].Resource, children[1].Resource)
}

func TestBuildSpawnerKinds(t *testing.T) {
	objects := []*object.ParsedObject{
		{TypeName: "tankspawner", SpawnedType: "lighttank", Team: 1, Category: object.CategorySpawner, ResolvedTargetType: ref("res://vehicles/tank.scn")},
		{TypeName: "mg42spawner", SpawnedType: "mg42", Team: 2, Category: object.CategorySpawner, ResolvedTargetType: ref("res://weapons/mg.scn")},
	}
	doc, _ := scene.Build(objects, scene.BuildOptions{})

	vehicles := doc.ChildrenOf("Spawners_Vehicle")
	require.Len(t, vehicles, 1)
	assert.Equal(t, "VehicleSpawner", vehicles[0].Type)

	emplacements := doc.ChildrenOf("Spawners_Emplacement")
	require.Len(t, emplacements, 1)
	assert.Equal(t, "EmplacementSpawner", emplacements[0].Type)
}

func TestEmitLayout(t *testing.T) {
	objects := []*object.ParsedObject{
		{
			TypeName:           "Oak1",
			Category:           object.CategoryStaticDecoration,
			Position:           [3]float64{10, 5, -20},
			ResolvedTargetType: ref("res://trees/oak.scn"),
		},
	}
	doc, _ := scene.Build(objects, scene.BuildOptions{
		TargetMap: "MP_Tungsten",
		Bounds:    terrain.Bounds{MinX: 0, MaxX: 512, MinZ: 0, MaxZ: 512},
	})
	out := scene.Emit(doc)

	assert.True(t, strings.HasPrefix(out, "[scene format=3 steps=1]\n"))
	assert.Contains(t, out, `[res id=1 type="PackedScene" path="res://trees/oak.scn"]`)
	assert.Contains(t, out, `[node name="Root" type="Node3D"]`)
	assert.Contains(t, out, `[node name="Terrain" type="TerrainLayer" parent="."]`)
	assert.Contains(t, out, "map = MP_Tungsten")
	assert.Contains(t, out, `[node name="Decoration_1" type="StaticMesh" parent="Decorations"]`)
	assert.Contains(t, out, "resource = Res(1)")
	assert.Contains(t, out, "transform = Basis(")
}

func TestEmitEveryResourceReferenced(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		paths := rapid.SliceOfN(rapid.SampledFrom([]string{
			"res://a.scn", "res://b.scn", "res://c.scn", "res://d.scn",
		}), 1, 12).Draw(t, "paths")

		var objects []*object.ParsedObject
		for i, p := range paths {
			objects = append(objects, &object.ParsedObject{
				TypeName:           paths[i],
				Category:           object.CategoryStaticDecoration,
				ResolvedTargetType: ref(p),
			})
		}
		doc, _ := scene.Build(objects, scene.BuildOptions{})

		seen := make(map[int]bool)
		for _, n := range doc.Nodes {
			if n.Resource != 0 {
				_, ok := doc.Table.Lookup(n.Resource)
				if !ok {
					t.Fatalf("node %s references unknown resource %d", n.Name, n.Resource)
				}
				seen[n.Resource] = true
			}
		}
		if len(seen) != doc.Table.Len() {
			t.Fatalf("table has %d entries, nodes reference %d", doc.Table.Len(), len(seen))
		}
	})
}
