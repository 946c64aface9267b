// Package validate checks an assembled scene document against the gameplay
// readiness rules. Every rule runs; a failed rule never hides the others.
package validate

import (
	"fmt"
	"strings"

	"github.com/cory-johannsen/mapforge/internal/scene"
)

// Issue is the outcome of a single rule.
type Issue struct {
	Rule   string
	Passed bool
	Detail string
}

// Options parameterizes the spawn-count rules.
type Options struct {
	// MinHQSpawns is the minimum spawn points per team HQ. 0 means 4.
	MinHQSpawns int
	// MinCPSpawns is the minimum spawns per team at each capture point.
	// 0 means 3.
	MinCPSpawns int
}

// Validate runs every readiness rule against the document. It never stops
// at the first failure.
//
// Postcondition: the result covers every rule, passed or failed.
func Validate(doc *scene.Document, opts Options) []Issue {
	if opts.MinHQSpawns == 0 {
		opts.MinHQSpawns = 4
	}
	if opts.MinCPSpawns == 0 {
		opts.MinCPSpawns = 3
	}

	var issues []Issue
	for team := 1; team <= 2; team++ {
		issues = append(issues, checkHQ(doc, team, opts.MinHQSpawns)...)
	}
	issues = append(issues, checkNodeExists(doc, "combat area", "CombatArea", "Volume"))
	issues = append(issues, checkNodeExists(doc, "terrain layer", "Terrain", "TerrainLayer"))
	issues = append(issues, checkCapturePoints(doc, opts.MinCPSpawns)...)
	issues = append(issues, checkResourceRefs(doc))
	return issues
}

// AllPassed reports whether every issue passed.
func AllPassed(issues []Issue) bool {
	for _, i := range issues {
		if !i.Passed {
			return false
		}
	}
	return true
}

func checkHQ(doc *scene.Document, team, minSpawns int) []Issue {
	name := fmt.Sprintf("HQ_Team%d", team)
	hqRule := fmt.Sprintf("team %d HQ exists with bounds volume", team)
	spawnRule := fmt.Sprintf("team %d HQ spawn count", team)

	if _, ok := doc.FindNode(name); !ok {
		return []Issue{
			{Rule: hqRule, Detail: "node missing"},
			{Rule: spawnRule, Detail: fmt.Sprintf("got 0, need ≥%d", minSpawns)},
		}
	}

	bounds := false
	spawns := 0
	for _, c := range doc.ChildrenOf(name) {
		switch {
		case c.Type == "Volume":
			bounds = true
		case c.Type == "SpawnPoint":
			spawns++
		}
	}

	issues := []Issue{{Rule: hqRule, Passed: bounds}}
	if !bounds {
		issues[0].Detail = "no bounds volume child"
	}
	spawnIssue := Issue{Rule: spawnRule, Passed: spawns >= minSpawns}
	if !spawnIssue.Passed {
		spawnIssue.Detail = fmt.Sprintf("got %d, need ≥%d", spawns, minSpawns)
	}
	return append(issues, spawnIssue)
}

func checkNodeExists(doc *scene.Document, rule, name, nodeType string) Issue {
	n, ok := doc.FindNode(name)
	issue := Issue{Rule: rule + " exists", Passed: ok && n.Type == nodeType}
	if !issue.Passed {
		issue.Detail = fmt.Sprintf("no %s node of type %s", name, nodeType)
	}
	return issue
}

func checkCapturePoints(doc *scene.Document, minSpawns int) []Issue {
	var issues []Issue
	for _, n := range doc.Nodes {
		if n.Parent != "." || !strings.HasPrefix(n.Name, "CapturePoint_") {
			continue
		}
		zone := false
		perTeam := make(map[int]int)
		for _, c := range doc.ChildrenOf(n.Name) {
			switch c.Type {
			case "Volume":
				zone = true
			case "SpawnPoint":
				perTeam[teamOf(c)]++
			}
		}
		zoneIssue := Issue{Rule: n.Name + " has capture zone", Passed: zone}
		if !zone {
			zoneIssue.Detail = "no zone volume child"
		}
		issues = append(issues, zoneIssue)
		for team := 1; team <= 2; team++ {
			got := perTeam[team]
			issue := Issue{
				Rule:   fmt.Sprintf("%s team %d spawns", n.Name, team),
				Passed: got >= minSpawns,
			}
			if !issue.Passed {
				issue.Detail = fmt.Sprintf("got %d, need ≥%d", got, minSpawns)
			}
			issues = append(issues, issue)
		}
	}
	return issues
}

func checkResourceRefs(doc *scene.Document) Issue {
	var dangling []string
	for _, n := range doc.Nodes {
		if n.Resource == 0 {
			continue
		}
		if _, ok := doc.Table.Lookup(n.Resource); !ok {
			dangling = append(dangling, fmt.Sprintf("%s -> %d", n.Path(), n.Resource))
		}
	}
	issue := Issue{Rule: "resource references resolve", Passed: len(dangling) == 0}
	if !issue.Passed {
		issue.Detail = strings.Join(dangling, ", ")
	}
	return issue
}

func teamOf(n scene.Node) int {
	for _, p := range n.Props {
		if p.Key == "team" {
			var team int
			if _, err := fmt.Sscanf(p.Value, "%d", &team); err == nil {
				return team
			}
		}
	}
	return 0
}
