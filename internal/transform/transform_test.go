package transform_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/mapforge/internal/object"
	"github.com/cory-johannsen/mapforge/internal/terrain"
	"github.com/cory-johannsen/mapforge/internal/transform"
)

func flatOracle() terrain.Oracle {
	return terrain.NewConstant(50, terrain.Bounds{MinX: 0, MaxX: 1000, MinZ: 0, MaxZ: 1000})
}

func objectsAt(positions ...[3]float64) []*object.ParsedObject {
	objs := make([]*object.ParsedObject, len(positions))
	for i, p := range positions {
		objs[i] = &object.ParsedObject{TypeName: "thing", Position: p}
	}
	return objs
}

func TestPlan_CentroidOntoTerrainCenter(t *testing.T) {
	objs := objectsAt(
		[3]float64{100, 7, 100},
		[3]float64{300, 9, 100},
		[3]float64{200, 8, 400},
	)
	p := transform.Plan(objs, flatOracle(), transform.Options{})

	assert.InDelta(t, 200.0, p.CentroidX, 1e-9)
	assert.InDelta(t, 200.0, p.CentroidZ, 1e-9)
	assert.InDelta(t, 300.0, p.TranslateX, 1e-9, "target center 500 minus centroid 200")
	assert.InDelta(t, 300.0, p.TranslateZ, 1e-9)
	assert.Equal(t, transform.Turn0, p.Rotation)
}

func TestPlan_TerrainCenterNotOrigin(t *testing.T) {
	oracle := terrain.NewConstant(0, terrain.Bounds{MinX: -2000, MaxX: -1000, MinZ: 3000, MaxZ: 5000})
	objs := objectsAt([3]float64{0, 0, 0})

	p := transform.Plan(objs, oracle, transform.Options{})
	assert.InDelta(t, -1500.0, p.TranslateX, 1e-9)
	assert.InDelta(t, 4000.0, p.TranslateZ, 1e-9)
}

func TestPlan_NoObjects(t *testing.T) {
	p := transform.Plan(nil, flatOracle(), transform.Options{})
	assert.Zero(t, p.TranslateX)
	assert.Zero(t, p.TranslateZ)
	assert.Equal(t, transform.Turn0, p.Rotation)
}

func TestApply_CentroidAgreesWithTerrainCenter(t *testing.T) {
	objs := objectsAt(
		[3]float64{120, 80, 340},
		[3]float64{410, 75, 95},
		[3]float64{260, 90, 210},
		[3]float64{55, 60, 470},
	)
	oracle := flatOracle()
	p := transform.Plan(objs, oracle, transform.Options{})
	transform.Apply(objs, p, oracle)

	var cx, cz float64
	for _, o := range objs {
		cx += o.Position[0]
		cz += o.Position[2]
	}
	cx /= float64(len(objs))
	cz /= float64(len(objs))

	assert.InDelta(t, 500.0, cx, 1e-3)
	assert.InDelta(t, 500.0, cz, 1e-3)
}

func TestApply_HeightAlwaysFromOracle(t *testing.T) {
	objs := objectsAt([3]float64{100, 9999, 100})
	oracle := flatOracle()
	p := transform.Plan(objs, oracle, transform.Options{})
	transform.Apply(objs, p, oracle)

	assert.InDelta(t, 50.0, objs[0].Position[1], 1e-9, "source height discarded")
}

func TestApply_YawAdjustedByRotation(t *testing.T) {
	objs := objectsAt([3]float64{0, 0, 0}, [3]float64{10, 0, 0})
	objs[0].Rotation.Yaw = 45
	objs[1].Rotation.Yaw = 350

	oracle := flatOracle()
	p := transform.Plan(objs, oracle, transform.Options{})
	p.Rotation = transform.Turn90
	transform.Apply(objs, p, oracle)

	assert.InDelta(t, 135.0, objs[0].Rotation.Yaw, 1e-9)
	assert.InDelta(t, 80.0, objs[1].Rotation.Yaw, 1e-9, "wraps past 360")
}

func TestApply_QuarterTurnGeometry(t *testing.T) {
	// Two objects on the X axis around their centroid rotate onto the Z axis.
	objs := objectsAt([3]float64{490, 0, 500}, [3]float64{510, 0, 500})
	oracle := flatOracle()
	p := transform.Plan(objs, oracle, transform.Options{})
	p.Rotation = transform.Turn90
	transform.Apply(objs, p, oracle)

	assert.InDelta(t, 500.0, objs[0].Position[0], 1e-9)
	assert.InDelta(t, 490.0, objs[0].Position[2], 1e-9)
	assert.InDelta(t, 500.0, objs[1].Position[0], 1e-9)
	assert.InDelta(t, 510.0, objs[1].Position[2], 1e-9)
}

func TestPlan_AutoOrientPicksInBoundsRotation(t *testing.T) {
	// A long east-west line on a tall narrow terrain: only a quarter turn
	// keeps the layout inside the bounds.
	oracle := terrain.NewConstant(0, terrain.Bounds{MinX: 0, MaxX: 100, MinZ: 0, MaxZ: 1000})
	objs := objectsAt(
		[3]float64{-400, 0, 0},
		[3]float64{400, 0, 0},
	)

	p := transform.Plan(objs, oracle, transform.Options{
		AutoOrient: true,
		Metric:     transform.BoundsSpread{},
	})
	assert.True(t, p.Rotation == transform.Turn90 || p.Rotation == transform.Turn270,
		"got rotation %v", p.Rotation)
	assert.Zero(t, p.Residual)
}

func TestPlan_AutoOrientTieBreaksToZero(t *testing.T) {
	// A symmetric layout scores identically for all four candidates.
	oracle := flatOracle()
	objs := objectsAt(
		[3]float64{-10, 0, 0},
		[3]float64{10, 0, 0},
		[3]float64{0, 0, -10},
		[3]float64{0, 0, 10},
	)

	p := transform.Plan(objs, oracle, transform.Options{
		AutoOrient: true,
		Metric:     transform.BoundsSpread{},
	})
	assert.Equal(t, transform.Turn0, p.Rotation)
}

func TestMetricByName(t *testing.T) {
	m, err := transform.MetricByName("spread")
	require.NoError(t, err)
	assert.Equal(t, "spread", m.Name())

	m, err = transform.MetricByName("slope")
	require.NoError(t, err)
	assert.Equal(t, "slope", m.Name())

	_, err = transform.MetricByName("hausdorff")
	assert.Error(t, err)
}

func TestSlopeRoughness_PrefersFlatGround(t *testing.T) {
	// West half flat, east half steep.
	rows := [][]float64{
		{0, 0, 40, 80},
		{0, 0, 40, 80},
		{0, 0, 40, 80},
		{0, 0, 40, 80},
	}
	g, err := terrain.NewGrid(rows, terrain.Bounds{MinX: 0, MaxX: 300, MinZ: 0, MaxZ: 300})
	require.NoError(t, err)

	m := transform.SlopeRoughness{Step: 10}
	flat := m.Score([][2]float64{{20, 150}}, g)
	steep := m.Score([][2]float64{{250, 150}}, g)
	assert.Less(t, flat, steep)
}

// TestApply_CentroidProperty is a property-based test: for any object set,
// the post-apply centroid lands on the terrain center within 1e-3.
func TestApply_CentroidProperty(t *testing.T) {
	oracle := flatOracle()
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(1, 40).Draw(t, "n")
		objs := make([]*object.ParsedObject, n)
		for i := range objs {
			objs[i] = &object.ParsedObject{Position: [3]float64{
				rapid.Float64Range(-5000, 5000).Draw(t, "x"),
				rapid.Float64Range(-100, 100).Draw(t, "y"),
				rapid.Float64Range(-5000, 5000).Draw(t, "z"),
			}}
		}
		p := transform.Plan(objs, oracle, transform.Options{AutoOrient: true, Metric: transform.BoundsSpread{}})
		transform.Apply(objs, p, oracle)

		var cx, cz float64
		for _, o := range objs {
			cx += o.Position[0]
			cz += o.Position[2]
		}
		cx /= float64(n)
		cz /= float64(n)
		assert.InDelta(t, 500.0, cx, 1e-3)
		assert.InDelta(t, 500.0, cz, 1e-3)
	})
}
