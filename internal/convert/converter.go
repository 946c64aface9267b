// Package convert orchestrates the conversion pipeline: parse the legacy
// scripts, build the object model, resolve assets and re-base geometry,
// emit the scene document, and validate it.
package convert

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/cory-johannsen/mapforge/internal/catalog"
	"github.com/cory-johannsen/mapforge/internal/config"
	"github.com/cory-johannsen/mapforge/internal/object"
	"github.com/cory-johannsen/mapforge/internal/resolver"
	"github.com/cory-johannsen/mapforge/internal/scene"
	"github.com/cory-johannsen/mapforge/internal/script"
	"github.com/cory-johannsen/mapforge/internal/terrain"
	"github.com/cory-johannsen/mapforge/internal/transform"
	"github.com/cory-johannsen/mapforge/internal/validate"
)

// Converter runs the pipeline for one configured level.
type Converter struct {
	cfg    config.Config
	logger *zap.Logger
}

// New constructs a Converter.
//
// Precondition: cfg has passed config.Validate; logger must be non-nil.
func New(cfg config.Config, logger *zap.Logger) *Converter {
	return &Converter{cfg: cfg, logger: logger}
}

// Run executes the full pipeline and writes the scene document to the
// configured output file. Fatal problems (missing inputs, unreadable
// catalog) return an error before any output is written. Validation
// failures are recorded on the report; the document is still written.
//
// Postcondition: on a nil error the output file exists and the report
// carries every diagnostic, resolution stat, and validation issue.
func (c *Converter) Run(ctx context.Context) (*Report, error) {
	report := &Report{
		RunID:      uuid.NewString(),
		ByCategory: make(map[object.Category]int),
		Stats:      resolver.NewStats(),
	}
	logger := c.logger.With(zap.String("run_id", report.RunID))
	overall := time.Now()

	// Parse.
	t0 := time.Now()
	parsed, files, err := c.parseSources()
	if err != nil {
		return nil, err
	}
	report.SourceFiles = files
	report.ParseDiags = parsed.Diags
	logger.Info("stage complete",
		zap.String("stage", "parse"),
		zap.Int("files", files),
		zap.Int("instructions", len(parsed.Instructions)),
		zap.Int("diagnostics", len(parsed.Diags)),
		zap.Duration("elapsed", time.Since(t0)))

	// Build the object model.
	t0 = time.Now()
	builder := object.NewBuilder(object.NewClassifier(object.DefaultRules()))
	objects, buildDiags := builder.Build(parsed)
	report.Objects = len(objects)
	report.BuildDiags = buildDiags
	for _, o := range objects {
		report.ByCategory[o.Category]++
	}
	logger.Info("stage complete",
		zap.String("stage", "build"),
		zap.Int("objects", len(objects)),
		zap.Int("diagnostics", len(buildDiags)),
		zap.Duration("elapsed", time.Since(t0)))

	// Load the catalog, mapping table, and terrain oracle.
	cat, err := catalog.Load(c.cfg.Paths.CatalogFile)
	if err != nil {
		return nil, fmt.Errorf("loading catalog: %w", err)
	}
	mappings, err := catalog.LoadMappings(c.cfg.Paths.MappingFile)
	if err != nil {
		return nil, fmt.Errorf("loading mapping table: %w", err)
	}
	oracle, err := c.buildOracle()
	if err != nil {
		return nil, fmt.Errorf("building terrain oracle: %w", err)
	}

	mapCtx := catalog.MapContext{
		TargetMap: c.cfg.Target.Map,
		Era:       c.cfg.Target.Era,
		MinX:      c.cfg.Target.MinX,
		MaxX:      c.cfg.Target.MaxX,
		MinZ:      c.cfg.Target.MinZ,
		MaxZ:      c.cfg.Target.MaxZ,
	}

	// Resolve assets in parallel; the transform runs on the same objects
	// afterwards, so only the resolver writes during this stage, each
	// goroutine into its own object's slot.
	t0 = time.Now()
	if err := c.resolveAll(ctx, objects, cat, mappings, mapCtx, report.Stats); err != nil {
		return nil, err
	}
	logger.Info("stage complete",
		zap.String("stage", "resolve"),
		zap.Int("resolved", report.Stats.Total()),
		zap.Duration("elapsed", time.Since(t0)))

	// Re-base geometry onto the target terrain.
	t0 = time.Now()
	metric, err := transform.MetricByName(c.cfg.Transform.OrientationMetric)
	if err != nil {
		return nil, err
	}
	placement := transform.Plan(objects, oracle, transform.Options{
		AutoOrient: c.cfg.Transform.AutoOrient,
		Metric:     metric,
	})
	transform.Apply(objects, placement, oracle)
	logger.Info("stage complete",
		zap.String("stage", "transform"),
		zap.Float64("translate_x", placement.TranslateX),
		zap.Float64("translate_z", placement.TranslateZ),
		zap.Int("rotation_deg", int(placement.Rotation)*90),
		zap.Duration("elapsed", time.Since(t0)))

	// Assemble and emit the scene document.
	t0 = time.Now()
	doc, warnings := scene.Build(objects, scene.BuildOptions{
		TargetMap: c.cfg.Target.Map,
		Bounds:    oracle.Bounds(),
	})
	report.TreeWarnings = warnings
	out := scene.Emit(doc)
	if err := os.WriteFile(c.cfg.Paths.OutputFile, []byte(out), 0644); err != nil {
		return nil, fmt.Errorf("writing output %s: %w", c.cfg.Paths.OutputFile, err)
	}
	logger.Info("stage complete",
		zap.String("stage", "emit"),
		zap.String("output", c.cfg.Paths.OutputFile),
		zap.Int("nodes", len(doc.Nodes)),
		zap.Int("resources", doc.Table.Len()),
		zap.Duration("elapsed", time.Since(t0)))

	// Validate. Failures never suppress the written document.
	t0 = time.Now()
	report.Issues = validate.Validate(doc, validate.Options{
		MinHQSpawns: c.cfg.Validate.MinHQSpawns,
		MinCPSpawns: c.cfg.Validate.MinCPSpawns,
	})
	logger.Info("stage complete",
		zap.String("stage", "validate"),
		zap.Int("rules", len(report.Issues)),
		zap.Bool("passed", report.Validated()),
		zap.Duration("elapsed", time.Since(t0)))

	logger.Info("run complete",
		zap.Duration("elapsed", time.Since(overall)),
		zap.Bool("validated", report.Validated()))
	return report, nil
}

// parseSources parses the level's root script files. When the source
// directory carries an init.con entry file it alone is parsed, since it
// includes the rest of the level; otherwise every top-level .con file is
// parsed in name order.
func (c *Converter) parseSources() (script.Result, int, error) {
	dir := c.cfg.Paths.SourceDir
	entry := filepath.Join(dir, "init.con")
	if _, err := os.Stat(entry); err == nil {
		res, err := script.ParseFile(entry)
		if err != nil {
			return script.Result{}, 0, err
		}
		return res, 1, nil
	}

	matches, err := filepath.Glob(filepath.Join(dir, "*.con"))
	if err != nil {
		return script.Result{}, 0, fmt.Errorf("scanning source directory: %w", err)
	}
	if len(matches) == 0 {
		return script.Result{}, 0, fmt.Errorf("no script files in %s", dir)
	}
	sort.Strings(matches)

	var merged script.Result
	for _, m := range matches {
		res, err := script.ParseFile(m)
		if err != nil {
			return script.Result{}, 0, err
		}
		merged.Instructions = append(merged.Instructions, res.Instructions...)
		merged.Diags = append(merged.Diags, res.Diags...)
	}
	return merged, len(matches), nil
}

// resolveAll resolves every resolvable object under a bounded errgroup.
// Each goroutine writes only its own object's ResolvedTargetType, so no
// shared mutable state is touched until the group returns.
func (c *Converter) resolveAll(
	ctx context.Context,
	objects []*object.ParsedObject,
	cat *catalog.Catalog,
	mappings *catalog.MappingTable,
	mapCtx catalog.MapContext,
	stats *resolver.Stats,
) error {
	r := resolver.New(cat, mappings)
	resolutions := make([]resolver.Resolution, len(objects))
	mask := make([]bool, len(objects))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for i, o := range objects {
		if !needsAsset(o) {
			continue
		}
		mask[i] = true
		i, o := i, o
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			resolutions[i] = r.Resolve(resolveKey(o), mapCtx)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("resolving assets: %w", err)
	}

	for i, o := range objects {
		if !mask[i] {
			continue
		}
		stats.Record(resolutions[i])
		o.ResolvedTargetType = resolutions[i].TargetID
	}
	return nil
}

// needsAsset reports whether resolution applies: decorations and vehicle
// or emplacement spawners reference target assets; terrain-config objects
// go through too so their deliberate omission lands on the skipped tier
// of the stats rather than vanishing. Control points and soldier spawn
// points are structural and resolve to nothing.
func needsAsset(o *object.ParsedObject) bool {
	switch o.Category {
	case object.CategoryStaticDecoration, object.CategoryTerrainConfig:
		return true
	case object.CategorySpawner:
		return !isSoldierSpawn(o)
	default:
		return false
	}
}

func isSoldierSpawn(o *object.ParsedObject) bool {
	if strings.EqualFold(o.TemplateClass, "SpawnPoint") {
		return true
	}
	lower := strings.ToLower(o.TypeName)
	return strings.Contains(lower, "spawnpoint") || strings.Contains(lower, "soldierspawn")
}

// resolveKey picks the source type to resolve: a spawner resolves what it
// spawns when declared, everything else resolves its own type name.
func resolveKey(o *object.ParsedObject) string {
	if o.Category == object.CategorySpawner && o.SpawnedType != "" {
		return o.SpawnedType
	}
	return o.TypeName
}

// buildOracle constructs the configured terrain height provider.
func (c *Converter) buildOracle() (terrain.Oracle, error) {
	bounds := terrain.Bounds{
		MinX: c.cfg.Target.MinX,
		MaxX: c.cfg.Target.MaxX,
		MinZ: c.cfg.Target.MinZ,
		MaxZ: c.cfg.Target.MaxZ,
	}
	switch c.cfg.Terrain.Provider {
	case "constant":
		return terrain.NewConstant(c.cfg.Terrain.ConstantHeight, bounds), nil
	case "mesh":
		verts, err := terrain.LoadMeshVertices(c.cfg.Paths.MeshFile)
		if err != nil {
			return nil, err
		}
		return terrain.FromMesh(verts, c.cfg.Terrain.GridResolution, bounds)
	case "raster":
		return terrain.FromRaster(
			c.cfg.Paths.HeightmapFile,
			c.cfg.Terrain.RasterScale,
			c.cfg.Terrain.RasterOffset,
			bounds)
	default:
		return nil, fmt.Errorf("unknown terrain provider %q", c.cfg.Terrain.Provider)
	}
}
