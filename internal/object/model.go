// Package object builds the typed object model from parsed script
// instructions: template defaults merged with instance overrides, one
// immutable ParsedObject per placed instance.
package object

// Category is the gameplay role of a parsed object.
type Category int

const (
	CategoryUnknown Category = iota
	CategorySpawner
	CategoryControlPoint
	CategoryStaticDecoration
	CategoryTerrainConfig
)

// String returns the category name for logs and summaries.
func (c Category) String() string {
	switch c {
	case CategorySpawner:
		return "spawner"
	case CategoryControlPoint:
		return "control-point"
	case CategoryStaticDecoration:
		return "static-decoration"
	case CategoryTerrainConfig:
		return "terrain-config"
	default:
		return "unknown"
	}
}

// Rotation holds Euler angles in degrees, in source file order.
type Rotation struct {
	Pitch float64
	Yaw   float64
	Roll  float64
}

// ParsedObject is one placed instance. Position and Rotation are mutated by
// the geometry transformer and ResolvedTargetType is set by the asset
// resolver; every other field is fixed at build time.
type ParsedObject struct {
	// TypeName is the source type used for asset resolution. For templated
	// instances this is the template name.
	TypeName string
	// TemplateClass is the legacy engine class of the cited template
	// (e.g. "ObjectSpawner", "SpawnPoint", "ControlPoint"). Empty when the
	// template is unresolved.
	TemplateClass string
	// SpawnedType is the type a spawner template emits, when declared.
	SpawnedType string
	Position    [3]float64
	Rotation    Rotation
	// Team is 1 or 2 for owned objects, 0 when unset/neutral.
	Team        int
	TemplateRef string
	Category    Category
	// Unresolved marks an instance whose cited template was never defined.
	// Resolution proceeds on the literal type name.
	Unresolved bool
	// ResolvedTargetType is the target asset identifier, nil until the
	// resolver assigns one (and nil for skipped/unmapped outcomes).
	ResolvedTargetType *string
}

// TemplateDefaults is the immutable property set declared by an
// ObjectTemplate.create block.
type TemplateDefaults struct {
	Name        string
	Class       string
	SpawnedType string
	Position    *[3]float64
	Rotation    *Rotation
	Team        *int
	Geometry    string
}

// InstanceOverrides is the immutable property set collected from the
// Object.* instructions following one Object.create.
type InstanceOverrides struct {
	Position *[3]float64
	Rotation *Rotation
	Team     *int
	Geometry string
}

// Merge combines template defaults and instance overrides into a
// ParsedObject, field by field: an override wins wherever it is set,
// otherwise the template default applies, otherwise the zero value.
func Merge(templateRef string, def TemplateDefaults, ov InstanceOverrides) ParsedObject {
	obj := ParsedObject{
		TypeName:      templateRef,
		TemplateClass: def.Class,
		SpawnedType:   def.SpawnedType,
		TemplateRef:   templateRef,
	}

	switch {
	case ov.Position != nil:
		obj.Position = *ov.Position
	case def.Position != nil:
		obj.Position = *def.Position
	}
	switch {
	case ov.Rotation != nil:
		obj.Rotation = *ov.Rotation
	case def.Rotation != nil:
		obj.Rotation = *def.Rotation
	}
	switch {
	case ov.Team != nil:
		obj.Team = *ov.Team
	case def.Team != nil:
		obj.Team = *def.Team
	}

	return obj
}
