// Package config provides Viper-based configuration loading for the converter.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// PathsConfig holds the input and output file locations for a run.
type PathsConfig struct {
	// SourceDir is the directory containing the legacy level scripts.
	SourceDir string `mapstructure:"source_dir"`
	// CatalogFile is the JSON asset catalog for the target game.
	CatalogFile string `mapstructure:"catalog_file"`
	// MappingFile is the YAML source-to-target mapping table.
	MappingFile string `mapstructure:"mapping_file"`
	// HeightmapFile is the raw heightmap for the target terrain.
	// Required only when terrain.provider is "raster".
	HeightmapFile string `mapstructure:"heightmap_file"`
	// MeshFile is the terrain vertex dump for the target terrain.
	// Required only when terrain.provider is "mesh".
	MeshFile string `mapstructure:"mesh_file"`
	// OutputFile is the scene document to write.
	OutputFile string `mapstructure:"output_file"`
}

// TargetConfig identifies the destination map and era.
type TargetConfig struct {
	// Map is the target map identifier used to filter restricted assets.
	Map string `mapstructure:"map"`
	// Era is the setting tag carried in the map context (e.g. "ww2").
	Era string `mapstructure:"era"`
	// MinX, MaxX, MinZ, MaxZ bound the target terrain in world space.
	MinX float64 `mapstructure:"min_x"`
	MaxX float64 `mapstructure:"max_x"`
	MinZ float64 `mapstructure:"min_z"`
	MaxZ float64 `mapstructure:"max_z"`
}

// TerrainConfig selects and parameterizes the height provider.
type TerrainConfig struct {
	// Provider is the height source: "constant", "mesh", or "raster".
	Provider string `mapstructure:"provider"`
	// GridResolution is the sample count per axis of the cached height grid.
	GridResolution int `mapstructure:"grid_resolution"`
	// ConstantHeight is the fixed height used by the "constant" provider.
	ConstantHeight float64 `mapstructure:"constant_height"`
	// RasterScale converts raw heightmap sample values to world units.
	RasterScale float64 `mapstructure:"raster_scale"`
	// RasterOffset is added to scaled heightmap samples.
	RasterOffset float64 `mapstructure:"raster_offset"`
}

// TransformConfig controls the geometry re-basing step.
type TransformConfig struct {
	// AutoOrient enables the 0/90/180/270 degree orientation search.
	AutoOrient bool `mapstructure:"auto_orient"`
	// OrientationMetric selects the alignment residual: "spread" or "slope".
	OrientationMetric string `mapstructure:"orientation_metric"`
}

// ValidateConfig holds the structural validation thresholds.
type ValidateConfig struct {
	// MinHQSpawns is the minimum spawn point count per team HQ.
	MinHQSpawns int `mapstructure:"min_hq_spawns"`
	// MinCPSpawns is the minimum per-team spawn count per capture point.
	MinCPSpawns int `mapstructure:"min_cp_spawns"`
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
}

// Config is the top-level application configuration.
type Config struct {
	Paths     PathsConfig     `mapstructure:"paths"`
	Target    TargetConfig    `mapstructure:"target"`
	Terrain   TerrainConfig   `mapstructure:"terrain"`
	Transform TransformConfig `mapstructure:"transform"`
	Validate  ValidateConfig  `mapstructure:"validate"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// Validate checks all configuration invariants.
//
// Postcondition: Returns nil if configuration is valid, or an error describing all violations.
func (c Config) validate() error {
	var errs []string

	if err := validatePaths(c.Paths, c.Terrain.Provider); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateTarget(c.Target); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateTerrain(c.Terrain); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateTransform(c.Transform); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateThresholds(c.Validate); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateLogging(c.Logging); err != nil {
		errs = append(errs, err.Error())
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validatePaths(p PathsConfig, provider string) error {
	var errs []string
	if p.SourceDir == "" {
		errs = append(errs, "paths.source_dir must not be empty")
	}
	if p.CatalogFile == "" {
		errs = append(errs, "paths.catalog_file must not be empty")
	}
	if p.OutputFile == "" {
		errs = append(errs, "paths.output_file must not be empty")
	}
	if provider == "raster" && p.HeightmapFile == "" {
		errs = append(errs, "paths.heightmap_file must be set when terrain.provider is raster")
	}
	if provider == "mesh" && p.MeshFile == "" {
		errs = append(errs, "paths.mesh_file must be set when terrain.provider is mesh")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateTarget(t TargetConfig) error {
	var errs []string
	if t.Map == "" {
		errs = append(errs, "target.map must not be empty")
	}
	if t.MaxX <= t.MinX {
		errs = append(errs, fmt.Sprintf("target.max_x must exceed target.min_x, got [%g, %g]", t.MinX, t.MaxX))
	}
	if t.MaxZ <= t.MinZ {
		errs = append(errs, fmt.Sprintf("target.max_z must exceed target.min_z, got [%g, %g]", t.MinZ, t.MaxZ))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateTerrain(t TerrainConfig) error {
	var errs []string
	validProviders := map[string]bool{"constant": true, "mesh": true, "raster": true}
	if !validProviders[t.Provider] {
		errs = append(errs, fmt.Sprintf("terrain.provider must be one of [constant, mesh, raster], got %q", t.Provider))
	}
	if t.GridResolution < 2 {
		errs = append(errs, fmt.Sprintf("terrain.grid_resolution must be >= 2, got %d", t.GridResolution))
	}
	if t.Provider == "raster" && t.RasterScale == 0 {
		errs = append(errs, "terrain.raster_scale must not be zero")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateTransform(t TransformConfig) error {
	validMetrics := map[string]bool{"spread": true, "slope": true}
	if !validMetrics[t.OrientationMetric] {
		return fmt.Errorf("transform.orientation_metric must be one of [spread, slope], got %q", t.OrientationMetric)
	}
	return nil
}

func validateThresholds(v ValidateConfig) error {
	var errs []string
	if v.MinHQSpawns < 1 {
		errs = append(errs, fmt.Sprintf("validate.min_hq_spawns must be >= 1, got %d", v.MinHQSpawns))
	}
	if v.MinCPSpawns < 1 {
		errs = append(errs, fmt.Sprintf("validate.min_cp_spawns must be >= 1, got %d", v.MinCPSpawns))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateLogging(l LoggingConfig) error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[l.Level] {
		return fmt.Errorf("logging.level must be one of [debug, info, warn, error], got %q", l.Level)
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("logging.format must be one of [json, console], got %q", l.Format)
	}
	return nil
}

// Load reads configuration from the given file path, applies environment variable
// overrides, and validates the result.
//
// Precondition: path must be a valid file path to a YAML configuration file.
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	// Environment variable overrides with MAPFORGE_ prefix
	v.SetEnvPrefix("MAPFORGE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// LoadFromViper builds a Config from an already-configured Viper instance.
//
// Precondition: v must be non-nil and have configuration values set.
// Postcondition: Returns a valid Config or a non-nil error.
func LoadFromViper(v *viper.Viper) (Config, error) {
	if v == nil {
		return Config{}, errors.New("viper instance must not be nil")
	}
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("target.era", "ww2")
	v.SetDefault("target.min_x", 0.0)
	v.SetDefault("target.max_x", 2048.0)
	v.SetDefault("target.min_z", 0.0)
	v.SetDefault("target.max_z", 2048.0)

	v.SetDefault("terrain.provider", "raster")
	v.SetDefault("terrain.grid_resolution", 256)
	v.SetDefault("terrain.constant_height", 0.0)
	v.SetDefault("terrain.raster_scale", 1.0)
	v.SetDefault("terrain.raster_offset", 0.0)

	v.SetDefault("transform.auto_orient", true)
	v.SetDefault("transform.orientation_metric", "spread")

	v.SetDefault("validate.min_hq_spawns", 4)
	v.SetDefault("validate.min_cp_spawns", 3)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}
