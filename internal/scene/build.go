package scene

import (
	"fmt"
	"math"
	"strings"

	"github.com/cory-johannsen/mapforge/internal/object"
	"github.com/cory-johannsen/mapforge/internal/terrain"
)

// BuildOptions parameterizes document assembly.
type BuildOptions struct {
	// TargetMap names the destination terrain, recorded on the terrain layer.
	TargetMap string
	// Bounds is the playable terrain extent; the combat area volume covers it.
	Bounds terrain.Bounds
	// AttachRadius is the maximum distance at which a spawn point attaches
	// to a capture point instead of its team HQ. 0 means 75.
	AttachRadius float64
	// HQBoundsExtent is the half-size of each HQ boundary volume. 0 means 50.
	HQBoundsExtent float64
}

// Build assembles the node-tree document from the resolved, transformed
// object set. Skipped and unmapped objects are omitted. Returns the
// document plus warnings for objects that could not be placed in the tree.
//
// Postcondition: every node resource reference resolves to a table entry;
// resource identifiers follow first-use order over the emitted objects.
func Build(objects []*object.ParsedObject, opts BuildOptions) (*Document, []string) {
	if opts.AttachRadius == 0 {
		opts.AttachRadius = 75
	}
	if opts.HQBoundsExtent == 0 {
		opts.HQBoundsExtent = 50
	}

	doc := &Document{
		FormatVersion: FormatVersion,
		Table:         NewResourceTable(),
	}
	var warnings []string

	doc.Nodes = append(doc.Nodes, Node{Name: "Root", Type: "Node3D"})
	doc.Nodes = append(doc.Nodes, Node{
		Name:   "CombatArea",
		Type:   "Volume",
		Parent: ".",
		Props: []Prop{
			{Key: "center", Value: fmt.Sprintf("%g, %g", opts.Bounds.CenterX(), opts.Bounds.CenterZ())},
			{Key: "size", Value: fmt.Sprintf("%g, %g", opts.Bounds.MaxX-opts.Bounds.MinX, opts.Bounds.MaxZ-opts.Bounds.MinZ)},
		},
	})
	terrainNode := Node{Name: "Terrain", Type: "TerrainLayer", Parent: "."}
	if opts.TargetMap != "" {
		terrainNode.Props = []Prop{{Key: "map", Value: opts.TargetMap}}
	}
	doc.Nodes = append(doc.Nodes, terrainNode)

	var (
		spawnPoints []*object.ParsedObject
		points      []*object.ParsedObject
		spawners    []*object.ParsedObject
		decorations []*object.ParsedObject
	)
	for _, o := range objects {
		switch {
		case isSpawnPoint(o):
			spawnPoints = append(spawnPoints, o)
		case o.Category == object.CategoryControlPoint:
			points = append(points, o)
		case o.Category == object.CategorySpawner:
			spawners = append(spawners, o)
		case o.Category == object.CategoryStaticDecoration:
			if o.ResolvedTargetType != nil {
				decorations = append(decorations, o)
			}
		}
	}

	hqSpawns, cpSpawns := attachSpawns(spawnPoints, points, opts.AttachRadius)

	for team := 1; team <= 2; team++ {
		spawns := hqSpawns[team]
		if len(spawns) == 0 {
			warnings = append(warnings, fmt.Sprintf("team %d has no HQ spawn points", team))
			continue
		}
		buildHQ(doc, team, spawns, opts.HQBoundsExtent)
	}

	for i, cp := range points {
		buildCapturePoint(doc, cp, i, cpSpawns[cp])
	}

	for team, spawns := range hqSpawns {
		if team != 0 {
			continue
		}
		for range spawns {
			warnings = append(warnings, "spawn point without a team dropped from the tree")
		}
	}

	buildSpawners(doc, spawners)
	buildDecorations(doc, decorations)

	return doc, warnings
}

func buildHQ(doc *Document, team int, spawns []*object.ParsedObject, extent float64) {
	name := fmt.Sprintf("HQ_Team%d", team)
	var cx, cz float64
	for _, s := range spawns {
		cx += s.Position[0]
		cz += s.Position[2]
	}
	cx /= float64(len(spawns))
	cz /= float64(len(spawns))

	doc.Nodes = append(doc.Nodes, Node{
		Name:   name,
		Type:   "Node3D",
		Parent: ".",
		Props:  []Prop{{Key: "team", Value: fmt.Sprintf("%d", team)}},
	})
	doc.Nodes = append(doc.Nodes, Node{
		Name:   "Bounds",
		Type:   "Volume",
		Parent: name,
		Props: []Prop{
			{Key: "center", Value: fmt.Sprintf("%g, %g", cx, cz)},
			{Key: "extent", Value: fmt.Sprintf("%g", extent)},
		},
	})
	for i, s := range spawns {
		tr := TransformFrom(s.Rotation, s.Position)
		doc.Nodes = append(doc.Nodes, Node{
			Name:      fmt.Sprintf("Spawn_%d", i+1),
			Type:      "SpawnPoint",
			Parent:    name,
			Transform: &tr,
			Props:     []Prop{{Key: "team", Value: fmt.Sprintf("%d", team)}},
		})
	}
}

func buildCapturePoint(doc *Document, cp *object.ParsedObject, index int, spawns []*object.ParsedObject) {
	name := fmt.Sprintf("CapturePoint_%s", sanitizeName(cp.TypeName))
	if _, exists := doc.FindNode(name); exists {
		name = fmt.Sprintf("%s_%d", name, index+1)
	}

	tr := TransformFrom(cp.Rotation, cp.Position)
	doc.Nodes = append(doc.Nodes, Node{
		Name:      name,
		Type:      "Node3D",
		Parent:    ".",
		Transform: &tr,
	})
	doc.Nodes = append(doc.Nodes, Node{
		Name:   "CaptureZone",
		Type:   "Volume",
		Parent: name,
		Props: []Prop{
			{Key: "center", Value: fmt.Sprintf("%g, %g", cp.Position[0], cp.Position[2])},
		},
	})

	counts := make(map[int]int)
	for _, s := range spawns {
		counts[s.Team]++
		str := TransformFrom(s.Rotation, s.Position)
		doc.Nodes = append(doc.Nodes, Node{
			Name:      fmt.Sprintf("Spawn_T%d_%d", s.Team, counts[s.Team]),
			Type:      "SpawnPoint",
			Parent:    name,
			Transform: &str,
			Props:     []Prop{{Key: "team", Value: fmt.Sprintf("%d", s.Team)}},
		})
	}
}

func buildSpawners(doc *Document, spawners []*object.ParsedObject) {
	containers := map[string]bool{}
	counts := map[string]int{}
	for _, s := range spawners {
		if s.ResolvedTargetType == nil {
			continue
		}
		kind := spawnerKind(s)
		container := "Spawners_" + kind
		if !containers[container] {
			doc.Nodes = append(doc.Nodes, Node{Name: container, Type: "Node3D", Parent: "."})
			containers[container] = true
		}
		counts[container]++
		tr := TransformFrom(s.Rotation, s.Position)
		doc.Nodes = append(doc.Nodes, Node{
			Name:      fmt.Sprintf("Spawner_%d", counts[container]),
			Type:      kind + "Spawner",
			Parent:    container,
			Transform: &tr,
			Resource:  doc.Table.Ref(*s.ResolvedTargetType, "PackedScene"),
			Props:     []Prop{{Key: "team", Value: fmt.Sprintf("%d", s.Team)}},
		})
	}
}

func buildDecorations(doc *Document, decorations []*object.ParsedObject) {
	if len(decorations) == 0 {
		return
	}
	doc.Nodes = append(doc.Nodes, Node{Name: "Decorations", Type: "Node3D", Parent: "."})
	for i, d := range decorations {
		tr := TransformFrom(d.Rotation, d.Position)
		doc.Nodes = append(doc.Nodes, Node{
			Name:      fmt.Sprintf("Decoration_%d", i+1),
			Type:      "StaticMesh",
			Parent:    "Decorations",
			Transform: &tr,
			Resource:  doc.Table.Ref(*d.ResolvedTargetType, "PackedScene"),
		})
	}
}

// attachSpawns assigns each spawn point to the nearest control point within
// radius, or to its team HQ otherwise.
func attachSpawns(
	spawns []*object.ParsedObject,
	points []*object.ParsedObject,
	radius float64,
) (map[int][]*object.ParsedObject, map[*object.ParsedObject][]*object.ParsedObject) {
	hq := make(map[int][]*object.ParsedObject)
	cp := make(map[*object.ParsedObject][]*object.ParsedObject)

	for _, s := range spawns {
		var nearest *object.ParsedObject
		best := radius
		for _, p := range points {
			d := math.Hypot(s.Position[0]-p.Position[0], s.Position[2]-p.Position[2])
			if d <= best {
				best = d
				nearest = p
			}
		}
		if nearest != nil {
			cp[nearest] = append(cp[nearest], s)
		} else {
			hq[s.Team] = append(hq[s.Team], s)
		}
	}
	return hq, cp
}

func isSpawnPoint(o *object.ParsedObject) bool {
	if strings.EqualFold(o.TemplateClass, "SpawnPoint") {
		return true
	}
	lower := strings.ToLower(o.TypeName)
	return strings.Contains(lower, "spawnpoint") || strings.Contains(lower, "soldierspawn")
}

// spawnerKind buckets a vehicle/emplacement spawner by what it emits.
func spawnerKind(o *object.ParsedObject) string {
	probe := strings.ToLower(o.SpawnedType + " " + o.TypeName)
	for _, kw := range []string{"machinegun", "mg42", "browning", "aa", "artillery", "defgun", "cannon", "turret"} {
		if strings.Contains(probe, kw) {
			return "Emplacement"
		}
	}
	return "Vehicle"
}

// sanitizeName converts a source type into a stable node name: lowercase,
// [a-z0-9_] only.
func sanitizeName(name string) string {
	s := strings.ToLower(name)
	s = strings.ReplaceAll(s, " ", "_")
	var b strings.Builder
	for _, r := range s {
		if r == '_' || (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}
