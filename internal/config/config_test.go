package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func validConfig() Config {
	return Config{
		Paths: PathsConfig{
			SourceDir:     "testdata/level",
			CatalogFile:   "testdata/catalog.json",
			MappingFile:   "testdata/mappings.yaml",
			HeightmapFile: "testdata/height.raw",
			OutputFile:    "out/level.scene",
		},
		Target: TargetConfig{
			Map:  "MP_Tungsten",
			Era:  "ww2",
			MinX: 0, MaxX: 2048,
			MinZ: 0, MaxZ: 2048,
		},
		Terrain: TerrainConfig{
			Provider:       "raster",
			GridResolution: 256,
			RasterScale:    0.1,
		},
		Transform: TransformConfig{
			AutoOrient:        true,
			OrientationMetric: "spread",
		},
		Validate: ValidateConfig{
			MinHQSpawns: 4,
			MinCPSpawns: 3,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

func TestValidConfig(t *testing.T) {
	cfg := validConfig()
	assert.NoError(t, cfg.validate())
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.yaml")
	err := os.WriteFile(path, []byte(`
paths:
  source_dir: /maps/berlin
  catalog_file: /maps/catalog.json
  output_file: /maps/out.scene
target:
  map: MP_Harbor
terrain:
  provider: constant
  constant_height: 72.5
logging:
  level: debug
  format: console
`), 0644)
	require.NoError(t, err)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/maps/berlin", cfg.Paths.SourceDir)
	assert.Equal(t, "MP_Harbor", cfg.Target.Map)
	assert.Equal(t, "constant", cfg.Terrain.Provider)
	assert.Equal(t, 72.5, cfg.Terrain.ConstantHeight)
	assert.Equal(t, 256, cfg.Terrain.GridResolution)
	assert.Equal(t, 4, cfg.Validate.MinHQSpawns)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadInvalidPath(t *testing.T) {
	_, err := Load("/nonexistent/path.yaml")
	assert.Error(t, err)
}

func TestValidateTerrainProvider(t *testing.T) {
	for _, provider := range []string{"constant", "mesh", "raster"} {
		cfg := validConfig()
		cfg.Terrain.Provider = provider
		if provider == "mesh" {
			cfg.Paths.MeshFile = "testdata/terrain.obj"
		}
		assert.NoError(t, cfg.validate(), "provider %q should be valid", provider)
	}
	cfg := validConfig()
	cfg.Terrain.Provider = "procedural"
	assert.Error(t, cfg.validate())
}

func TestValidateRasterRequiresHeightmap(t *testing.T) {
	cfg := validConfig()
	cfg.Paths.HeightmapFile = ""
	assert.Error(t, cfg.validate())
}

func TestValidateMeshRequiresMeshFile(t *testing.T) {
	cfg := validConfig()
	cfg.Terrain.Provider = "mesh"
	cfg.Paths.MeshFile = ""
	assert.Error(t, cfg.validate())
}

func TestValidateTargetBounds(t *testing.T) {
	cfg := validConfig()
	cfg.Target.MaxX = cfg.Target.MinX
	assert.Error(t, cfg.validate())

	cfg = validConfig()
	cfg.Target.MaxZ = cfg.Target.MinZ - 1
	assert.Error(t, cfg.validate())
}

func TestValidateTargetMapEmpty(t *testing.T) {
	cfg := validConfig()
	cfg.Target.Map = ""
	assert.Error(t, cfg.validate())
}

func TestValidateGridResolution(t *testing.T) {
	cfg := validConfig()
	cfg.Terrain.GridResolution = 1
	assert.Error(t, cfg.validate())
}

func TestValidateOrientationMetric(t *testing.T) {
	for _, metric := range []string{"spread", "slope"} {
		cfg := validConfig()
		cfg.Transform.OrientationMetric = metric
		assert.NoError(t, cfg.validate(), "metric %q should be valid", metric)
	}
	cfg := validConfig()
	cfg.Transform.OrientationMetric = "hausdorff"
	assert.Error(t, cfg.validate())
}

func TestValidateSpawnMinima(t *testing.T) {
	cfg := validConfig()
	cfg.Validate.MinHQSpawns = 0
	assert.Error(t, cfg.validate())

	cfg = validConfig()
	cfg.Validate.MinCPSpawns = 0
	assert.Error(t, cfg.validate())
}

func TestValidateLoggingLevel(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "error"} {
		cfg := validConfig()
		cfg.Logging.Level = level
		assert.NoError(t, cfg.validate(), "level %q should be valid", level)
	}
	cfg := validConfig()
	cfg.Logging.Level = "trace"
	assert.Error(t, cfg.validate())
}

func TestValidateLoggingFormat(t *testing.T) {
	for _, format := range []string{"json", "console"} {
		cfg := validConfig()
		cfg.Logging.Format = format
		assert.NoError(t, cfg.validate(), "format %q should be valid", format)
	}
	cfg := validConfig()
	cfg.Logging.Format = "xml"
	assert.Error(t, cfg.validate())
}

// Property-based tests

func TestPropertyGridResolutionRange(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		res := rapid.IntRange(2, 4096).Draw(t, "res")
		cfg := validConfig()
		cfg.Terrain.GridResolution = res
		assert.NoError(t, cfg.validate())
	})
}

func TestPropertyBoundsOrdering(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		min := rapid.Float64Range(-10000, 10000).Draw(t, "min")
		span := rapid.Float64Range(1, 10000).Draw(t, "span")
		cfg := validConfig()
		cfg.Target.MinX, cfg.Target.MaxX = min, min+span
		cfg.Target.MinZ, cfg.Target.MaxZ = min, min+span
		assert.NoError(t, cfg.validate())
	})
}
