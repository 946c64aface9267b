package object

import "strings"

// Rule is one classification predicate. Rules are evaluated in order; the
// first match wins.
type Rule struct {
	Name     string
	Category Category
	Match    func(o *ParsedObject) bool
}

// Classifier assigns a Category to each object from an ordered rule list
// supplied by the caller.
type Classifier struct {
	rules []Rule
}

// NewClassifier constructs a Classifier from the given ordered rules.
func NewClassifier(rules []Rule) *Classifier {
	return &Classifier{rules: rules}
}

// Classify returns the category of the first matching rule, or
// CategoryUnknown when no rule matches.
func (c *Classifier) Classify(o *ParsedObject) Category {
	for _, r := range c.rules {
		if r.Match(o) {
			return r.Category
		}
	}
	return CategoryUnknown
}

// DefaultRules returns the standard rule set for legacy level scripts.
// The final rule is a catch-all mapping everything else to static
// decoration, matching the legacy static-object file semantics.
func DefaultRules() []Rule {
	return []Rule{
		{
			Name:     "terrain-config",
			Category: CategoryTerrainConfig,
			Match: func(o *ParsedObject) bool {
				return containsAny(o.TypeName, "terrain", "water", "seafloor", "skybox") ||
					strings.EqualFold(o.TemplateClass, "Terrain")
			},
		},
		{
			Name:     "control-point",
			Category: CategoryControlPoint,
			Match: func(o *ParsedObject) bool {
				return strings.EqualFold(o.TemplateClass, "ControlPoint") ||
					containsAny(o.TypeName, "controlpoint", "flagbase", "_cpoint")
			},
		},
		{
			Name:     "spawner",
			Category: CategorySpawner,
			Match: func(o *ParsedObject) bool {
				return strings.EqualFold(o.TemplateClass, "ObjectSpawner") ||
					strings.EqualFold(o.TemplateClass, "SpawnPoint") ||
					containsAny(o.TypeName, "spawner", "spawnpoint")
			},
		},
		{
			Name:     "static-decoration",
			Category: CategoryStaticDecoration,
			Match:    func(o *ParsedObject) bool { return true },
		},
	}
}

func containsAny(s string, subs ...string) bool {
	lower := strings.ToLower(s)
	for _, sub := range subs {
		if strings.Contains(lower, sub) {
			return true
		}
	}
	return false
}
