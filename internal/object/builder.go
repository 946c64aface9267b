package object

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cory-johannsen/mapforge/internal/script"
)

// Builder turns an ordered instruction stream into ParsedObjects. Template
// definitions may arrive in any file before the instances that cite them;
// Build takes the full result of the parse pass.
type Builder struct {
	classifier *Classifier
}

// NewBuilder constructs a Builder using the given classifier.
//
// Precondition: classifier must be non-nil.
func NewBuilder(classifier *Classifier) *Builder {
	return &Builder{classifier: classifier}
}

// Build consumes instructions in order and returns one ParsedObject per
// Object.create, plus diagnostics for undefined templates, orphan property
// instructions, and out-of-range team values.
//
// Postcondition: returns objects in instance creation order; never fails.
func (b *Builder) Build(res script.Result) ([]*ParsedObject, []script.Diag) {
	templates := collectTemplates(res.Instructions)

	var (
		objects []*ParsedObject
		diags   []script.Diag

		currentRef  string
		current     InstanceOverrides
		currentFile string
		currentLine int
		active      bool
	)

	finalize := func() {
		if !active {
			return
		}
		obj := b.finalizeInstance(currentRef, current, templates)
		if obj.Unresolved {
			diags = append(diags, script.Diag{File: currentFile, Line: currentLine,
				Msg: fmt.Sprintf("instance %q cites undefined template; resolving on literal type name", currentRef)})
		}
		objects = append(objects, obj)
		active = false
	}

	for _, inst := range res.Instructions {
		switch inst.Kind {
		case script.KindCreateInstance:
			finalize()
			currentRef = inst.Args[0]
			current = InstanceOverrides{}
			currentFile = inst.File
			currentLine = inst.Line
			active = true
		case script.KindPosition:
			if !active {
				diags = append(diags, orphanDiag(inst))
				continue
			}
			v, _ := script.SplitVec3(inst.Args[0])
			current.Position = &v
		case script.KindRotation:
			if !active {
				diags = append(diags, orphanDiag(inst))
				continue
			}
			v, _ := script.SplitVec3(inst.Args[0])
			r := Rotation{Pitch: v[0], Yaw: v[1], Roll: v[2]}
			current.Rotation = &r
		case script.KindTeam:
			if !active {
				diags = append(diags, orphanDiag(inst))
				continue
			}
			team, _ := strconv.Atoi(inst.Args[0])
			if team < 0 || team > 2 {
				diags = append(diags, script.Diag{File: inst.File, Line: inst.Line,
					Msg: fmt.Sprintf("team %d out of range [0, 2]; leaving unset", team)})
				continue
			}
			current.Team = &team
		case script.KindGeometry:
			if !active {
				diags = append(diags, orphanDiag(inst))
				continue
			}
			if len(inst.Args) > 0 {
				current.Geometry = inst.Args[0]
			}
		}
	}
	finalize()

	for _, obj := range objects {
		obj.Category = b.classifier.Classify(obj)
	}
	return objects, diags
}

// finalizeInstance performs the two-stage merge against the cited template,
// or falls back to the literal type name when the template is undefined.
func (b *Builder) finalizeInstance(ref string, ov InstanceOverrides, templates map[string]TemplateDefaults) *ParsedObject {
	def, found := templates[strings.ToLower(ref)]
	obj := Merge(ref, def, ov)
	obj.Unresolved = !found
	return &obj
}

// collectTemplates runs a first pass over the instruction stream gathering
// every ObjectTemplate.create block into immutable defaults, keyed by
// lowercased template name.
func collectTemplates(instructions []script.Instruction) map[string]TemplateDefaults {
	templates := make(map[string]TemplateDefaults)
	var (
		current TemplateDefaults
		active  bool
	)
	flush := func() {
		if active {
			templates[strings.ToLower(current.Name)] = current
			active = false
		}
	}

	for _, inst := range instructions {
		switch inst.Kind {
		case script.KindCreateTemplate:
			flush()
			current = TemplateDefaults{Class: inst.Args[0], Name: inst.Args[1]}
			active = true
		case script.KindTemplateProperty:
			if !active {
				continue
			}
			applyTemplateProperty(&current, inst)
		case script.KindCreateInstance:
			// Instance blocks end any open template block.
			flush()
		}
	}
	flush()
	return templates
}

func applyTemplateProperty(def *TemplateDefaults, inst script.Instruction) {
	switch strings.ToLower(inst.Verb) {
	case "setobjecttemplate":
		// Args are <slot> <type>; the slot index is irrelevant here.
		if len(inst.Args) >= 2 {
			def.SpawnedType = inst.Args[1]
		}
	case "setposition", "absoluteposition":
		if len(inst.Args) == 1 {
			if v, err := script.SplitVec3(inst.Args[0]); err == nil {
				def.Position = &v
			}
		}
	case "setrotation", "rotation":
		if len(inst.Args) == 1 {
			if v, err := script.SplitVec3(inst.Args[0]); err == nil {
				r := Rotation{Pitch: v[0], Yaw: v[1], Roll: v[2]}
				def.Rotation = &r
			}
		}
	case "setteam":
		if len(inst.Args) == 1 {
			if team, err := strconv.Atoi(inst.Args[0]); err == nil && team >= 0 && team <= 2 {
				def.Team = &team
			}
		}
	case "geometry":
		if len(inst.Args) >= 1 {
			def.Geometry = inst.Args[0]
		}
	}
}

func orphanDiag(inst script.Instruction) script.Diag {
	return script.Diag{File: inst.File, Line: inst.Line,
		Msg: fmt.Sprintf("%s.%s before any Object.create; ignoring", inst.Receiver, inst.Verb)}
}
