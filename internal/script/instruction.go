// Package script parses the legacy console-script level format into ordered
// instructions. Parsing is total: malformed lines become diagnostics, never
// errors, so a single bad line cannot abort a conversion.
package script

import "strings"

// Kind classifies an instruction into the closed set of verbs the converter
// understands. Anything else is KindOpaque with its raw tokens preserved.
type Kind int

const (
	// KindOpaque is any recognized-shape instruction the converter does not
	// interpret. Raw tokens are kept verbatim for diagnostic output.
	KindOpaque Kind = iota
	// KindCreateTemplate declares reusable defaults: ObjectTemplate.create <class> <name>.
	KindCreateTemplate
	// KindTemplateProperty is any ObjectTemplate setter following a create.
	KindTemplateProperty
	// KindCreateInstance places an object: Object.create <template-or-type>.
	KindCreateInstance
	// KindPosition sets an instance position: Object.absolutePosition x/y/z.
	KindPosition
	// KindRotation sets an instance rotation: Object.rotation pitch/yaw/roll.
	KindRotation
	// KindTeam assigns an instance to a team: Object.setTeam n.
	KindTeam
	// KindGeometry names an instance's geometry: Object.geometry <name>.
	KindGeometry
	// KindInclude splices another script file: include <path> or run <path>.
	KindInclude
)

// String returns the kind name for logs and diagnostics.
func (k Kind) String() string {
	switch k {
	case KindCreateTemplate:
		return "create-template"
	case KindTemplateProperty:
		return "template-property"
	case KindCreateInstance:
		return "create-instance"
	case KindPosition:
		return "position"
	case KindRotation:
		return "rotation"
	case KindTeam:
		return "team"
	case KindGeometry:
		return "geometry"
	case KindInclude:
		return "include"
	default:
		return "opaque"
	}
}

// Instruction is one parsed line: Receiver.Verb followed by raw argument
// tokens. Instructions are ephemeral; the object builder consumes them in
// file order within a single pass.
type Instruction struct {
	Receiver string
	Verb     string
	Args     []string
	Kind     Kind
	File     string
	Line     int
}

// Classify maps a receiver/verb pair to its Kind. Matching is
// case-insensitive since the legacy engine was.
func Classify(receiver, verb string) Kind {
	r := strings.ToLower(receiver)
	v := strings.ToLower(verb)
	switch r {
	case "objecttemplate":
		if v == "create" {
			return KindCreateTemplate
		}
		return KindTemplateProperty
	case "object":
		switch v {
		case "create":
			return KindCreateInstance
		case "absoluteposition", "setposition":
			return KindPosition
		case "rotation", "setrotation":
			return KindRotation
		case "setteam":
			return KindTeam
		case "geometry":
			return KindGeometry
		}
	}
	return KindOpaque
}
