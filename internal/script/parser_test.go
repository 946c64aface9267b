package script_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/mapforge/internal/script"
)

func TestParse_InstanceBlock(t *testing.T) {
	text := `Object.create lighttankspawner
Object.absolutePosition 450.345/78.6349/249.093
Object.rotation 0/0.103998/1.52588e-005
Object.setTeam 1
`
	res := script.Parse(text, "spawns.con")
	assert.Empty(t, res.Diags)
	require.Len(t, res.Instructions, 4)

	create := res.Instructions[0]
	assert.Equal(t, script.KindCreateInstance, create.Kind)
	assert.Equal(t, "Object", create.Receiver)
	assert.Equal(t, "create", create.Verb)
	assert.Equal(t, []string{"lighttankspawner"}, create.Args)
	assert.Equal(t, 1, create.Line)

	pos := res.Instructions[1]
	assert.Equal(t, script.KindPosition, pos.Kind)
	v, err := script.SplitVec3(pos.Args[0])
	require.NoError(t, err)
	assert.InDelta(t, 450.345, v[0], 1e-9)
	assert.InDelta(t, 78.6349, v[1], 1e-9)
	assert.InDelta(t, 249.093, v[2], 1e-9)

	rot := res.Instructions[2]
	assert.Equal(t, script.KindRotation, rot.Kind)
	rv, err := script.SplitVec3(rot.Args[0])
	require.NoError(t, err)
	assert.InDelta(t, 1.52588e-005, rv[2], 1e-12)

	team := res.Instructions[3]
	assert.Equal(t, script.KindTeam, team.Kind)
	assert.Equal(t, []string{"1"}, team.Args)
}

func TestParse_TemplateBlock(t *testing.T) {
	text := `ObjectTemplate.create ObjectSpawner lighttankspawner
ObjectTemplate.setObjectTemplate 1 lighttank
ObjectTemplate.setSpawnDelay 30
`
	res := script.Parse(text, "templates.con")
	assert.Empty(t, res.Diags)
	require.Len(t, res.Instructions, 3)
	assert.Equal(t, script.KindCreateTemplate, res.Instructions[0].Kind)
	assert.Equal(t, []string{"ObjectSpawner", "lighttankspawner"}, res.Instructions[0].Args)
	assert.Equal(t, script.KindTemplateProperty, res.Instructions[1].Kind)
	assert.Equal(t, script.KindTemplateProperty, res.Instructions[2].Kind)
}

func TestParse_CommentsAndBlanks(t *testing.T) {
	text := `rem this is a comment
REM case insensitive

; semicolon comment
beginrem
Object.create ignored
endrem
Object.create kept
`
	res := script.Parse(text, "test.con")
	assert.Empty(t, res.Diags)
	require.Len(t, res.Instructions, 1)
	assert.Equal(t, []string{"kept"}, res.Instructions[0].Args)
}

func TestParse_QuotedArguments(t *testing.T) {
	text := `Object.create "control point alpha"` + "\n"
	res := script.Parse(text, "test.con")
	assert.Empty(t, res.Diags)
	require.Len(t, res.Instructions, 1)
	assert.Equal(t, []string{"control point alpha"}, res.Instructions[0].Args)
}

func TestParse_UnterminatedQuote_DiagnosticAndSkip(t *testing.T) {
	text := `Object.create "broken
Object.create good
`
	res := script.Parse(text, "test.con")
	require.Len(t, res.Diags, 1)
	assert.Contains(t, res.Diags[0].Msg, "unterminated quote")
	require.Len(t, res.Instructions, 1)
	assert.Equal(t, []string{"good"}, res.Instructions[0].Args)
}

func TestParse_MalformedLine_NeverAborts(t *testing.T) {
	text := `garbage without a dot
Object.absolutePosition not/numbers/here
Object.setTeam abc
Object.create survivor
`
	res := script.Parse(text, "test.con")
	assert.Len(t, res.Diags, 3)
	require.Len(t, res.Instructions, 1)
	assert.Equal(t, []string{"survivor"}, res.Instructions[0].Args)
}

func TestParse_MissingVectorFieldsDefaultZero(t *testing.T) {
	res := script.Parse("Object.absolutePosition 12.5\n", "test.con")
	assert.Empty(t, res.Diags)
	require.Len(t, res.Instructions, 1)
	v, err := script.SplitVec3(res.Instructions[0].Args[0])
	require.NoError(t, err)
	assert.Equal(t, [3]float64{12.5, 0, 0}, v)
}

func TestParse_TooManyVectorFields_Diagnostic(t *testing.T) {
	res := script.Parse("Object.absolutePosition 1/2/3/4\n", "test.con")
	assert.Len(t, res.Diags, 1)
	assert.Empty(t, res.Instructions)
}

func TestParse_IncludeOutsideDirectory_Diagnostic(t *testing.T) {
	res := script.Parse("include other.con\n", "test.con")
	require.Len(t, res.Diags, 1)
	assert.Contains(t, res.Diags[0].Msg, "other.con")
	// The directive itself is still recorded for diagnostic fidelity.
	require.Len(t, res.Instructions, 1)
	assert.Equal(t, script.KindInclude, res.Instructions[0].Kind)
}

func TestParseFile_Include(t *testing.T) {
	dir := t.TempDir()
	inner := filepath.Join(dir, "inner.con")
	outer := filepath.Join(dir, "outer.con")
	require.NoError(t, os.WriteFile(inner, []byte("Object.create fromInner\n"), 0644))
	require.NoError(t, os.WriteFile(outer, []byte("Object.create fromOuter\ninclude inner.con\n"), 0644))

	res, err := script.ParseFile(outer)
	require.NoError(t, err)
	assert.Empty(t, res.Diags)

	var created []string
	for _, inst := range res.Instructions {
		if inst.Kind == script.KindCreateInstance {
			created = append(created, inst.Args[0])
		}
	}
	assert.Equal(t, []string{"fromOuter", "fromInner"}, created)
}

func TestParseFile_IncludeCycle_DiagnosticNotHang(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.con")
	b := filepath.Join(dir, "b.con")
	require.NoError(t, os.WriteFile(a, []byte("Object.create fromA\nrun b.con\n"), 0644))
	require.NoError(t, os.WriteFile(b, []byte("Object.create fromB\nrun a.con\n"), 0644))

	res, err := script.ParseFile(a)
	require.NoError(t, err)
	require.NotEmpty(t, res.Diags)
	assert.Contains(t, res.Diags[0].Msg, "cycle")
}

func TestParseFile_MissingInclude_Diagnostic(t *testing.T) {
	dir := t.TempDir()
	root := filepath.Join(dir, "root.con")
	require.NoError(t, os.WriteFile(root, []byte("include nope.con\nObject.create kept\n"), 0644))

	res, err := script.ParseFile(root)
	require.NoError(t, err)
	require.Len(t, res.Diags, 1)

	var created int
	for _, inst := range res.Instructions {
		if inst.Kind == script.KindCreateInstance {
			created++
		}
	}
	assert.Equal(t, 1, created)
}

func TestParseFile_MissingRootFile_Error(t *testing.T) {
	_, err := script.ParseFile("/nonexistent/root.con")
	assert.Error(t, err)
}

func TestSplitVec3_ScientificNotation(t *testing.T) {
	v, err := script.SplitVec3("1.52588e-005/-2.5e3/+0.5")
	require.NoError(t, err)
	assert.InDelta(t, 1.52588e-005, v[0], 1e-15)
	assert.InDelta(t, -2500, v[1], 1e-9)
	assert.InDelta(t, 0.5, v[2], 1e-9)
}

func TestSplitVec3_NonFiniteRejected(t *testing.T) {
	for _, arg := range []string{"nan/0/0", "0/NaN/0", "inf/0/0", "0/0/-Inf", "+inf/0/0"} {
		_, err := script.SplitVec3(arg)
		assert.Error(t, err, arg)
	}
}

func TestParse_NonFinitePositionIsDiagnostic(t *testing.T) {
	res := script.Parse("Object.create lighttankspawner\nObject.absolutePosition nan/0/0\n", "level.con")
	require.Len(t, res.Instructions, 1)
	assert.Equal(t, script.KindCreateInstance, res.Instructions[0].Kind)
	require.Len(t, res.Diags, 1)
	assert.Equal(t, 2, res.Diags[0].Line)
	assert.Contains(t, res.Diags[0].Msg, "non-finite")
}

// TestVec3RoundTrip is a property-based test: for any well-formed vector,
// format-then-parse reproduces the three floats within 1e-4.
func TestVec3RoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		var v [3]float64
		for i := range v {
			v[i] = rapid.Float64Range(-1e6, 1e6).Draw(t, "component")
		}
		got, err := script.SplitVec3(script.FormatVec3(v))
		require.NoError(t, err)
		for i := range v {
			assert.InDelta(t, v[i], got[i], 1e-4)
		}
	})
}

// TestParse_Total is a property-based test: Parse never panics and always
// returns a Result for arbitrary input text.
func TestParse_Total(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		text := rapid.String().Draw(t, "text")
		res := script.Parse(text, "fuzz.con")
		for _, inst := range res.Instructions {
			assert.Greater(t, inst.Line, 0)
			assert.NotEmpty(t, inst.Receiver)
		}
	})
}
